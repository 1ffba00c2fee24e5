package chicplot

import (
	"fmt"
	"strconv"
	"strings"
)

// FloatArrayFlags collects a repeated float flag. The first Set replaces the
// default values, later ones append.
type FloatArrayFlags struct {
	Array   []float64
	beenSet bool
}

// Set parses a value, or a comma-separated list of values.
func (f *FloatArrayFlags) Set(s string) error {
	var vals []float64
	for _, field := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return err
		}
		vals = append(vals, v)
	}

	if !f.beenSet {
		f.beenSet = true
		f.Array = nil
	}
	f.Array = append(f.Array, vals...)
	return nil
}

func (f *FloatArrayFlags) String() string {
	return fmt.Sprint(f.Array)
}

// Type names the flag value in pflag usage output.
func (f *FloatArrayFlags) Type() string { return "floats" }

// Ranges pairs consecutive values into [lo, hi) intervals.
func (f *FloatArrayFlags) Ranges() ([][2]float64, error) {
	if len(f.Array) < 2 {
		return nil, fmt.Errorf("need at least two edges, got %v", f.Array)
	}
	out := make([][2]float64, 0, len(f.Array)-1)
	for i := 1; i < len(f.Array); i++ {
		lo, hi := f.Array[i-1], f.Array[i]
		if hi <= lo {
			return nil, fmt.Errorf("edges must increase, got %g after %g", hi, lo)
		}
		out = append(out, [2]float64{lo, hi})
	}
	return out, nil
}
