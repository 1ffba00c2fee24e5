// Command chic_run generates or reads events, walks their chi_c decay
// chains through the detector model and writes the histograms.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/decibelcooper/chicplot/analysis"
	"github.com/decibelcooper/chicplot/config"
)

var (
	cardPath      string
	detectorPath  string
	output        string
	seed          uint64
	logLevel      string
	profileMode   string
	exampleConfig bool
)

var rootCmd = &cobra.Command{
	Use:   "chic_run [flags] <nEvents>",
	Short: "Simulate chi_c -> J/psi gamma -> e+ e- gamma in the ALICE central barrel",
	Args: func(cmd *cobra.Command, args []string) error {
		if exampleConfig {
			return nil
		}
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one argument, the number of events")
		}
		if _, err := parseEvents(args[0]); err != nil {
			return err
		}
		return nil
	},
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          run,
}

func run(cmd *cobra.Command, args []string) error {
	if exampleConfig {
		fmt.Fprint(cmd.OutOrStdout(), config.ExampleRunCard)
		return nil
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q", logLevel)
	}
	logrus.SetLevel(level)

	switch profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q; valid: cpu, mem", profileMode)
	}

	n, err := parseEvents(args[0])
	if err != nil {
		return err
	}

	card := config.DefaultRunCard()
	if cardPath != "" {
		if card, err = config.ReadRunCard(cardPath); err != nil {
			return err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		card.Run.Output = output
	}
	if flags.Changed("seed") {
		card.Run.Seed = seed
	}
	if flags.Changed("detector") {
		card.Run.Detector = detectorPath
	}
	if err := card.Validate(); err != nil {
		return err
	}

	det := config.DefaultDetector()
	if card.Run.Detector != "" {
		if det, err = config.LoadDetector(card.Run.Detector); err != nil {
			return err
		}
	}

	if _, err := analysis.Run(card, det, n, logrus.StandardLogger()); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

func parseEvents(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("number of events must be a positive integer, got %q", arg)
	}
	return n, nil
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&cardPath, "config", "c", "", "run card (INI); see --example-config")
	f.StringVar(&detectorPath, "detector", "", "detector description (YAML), overrides the run card")
	f.StringVarP(&output, "output", "o", "pythia_chic2.root", "output file (.root or .yoda)")
	f.Uint64Var(&seed, "seed", 0, "master random seed (0 draws one)")
	f.StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	f.StringVar(&profileMode, "profile", "", "write a cpu or mem profile to the working directory")
	f.BoolVar(&exampleConfig, "example-config", false, "print a documented run card and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
