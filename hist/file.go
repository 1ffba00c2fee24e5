package hist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/root"
	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hbook/rootcnv"
	"go-hep.org/x/hep/hbook/yodacnv"
)

// Format identifies an output file format by its extension.
type Format string

const (
	ROOT Format = ".root"
	YODA Format = ".yoda"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch f := Format(strings.ToLower(filepath.Ext(path))); f {
	case ROOT, YODA:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported histogram file extension %q", f)
	}
}

// Write stores every histogram of s in path, in booking order. The format
// follows the extension of path.
func Write(path string, s *Set) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	switch format {
	case ROOT:
		return writeROOT(path, s)
	default:
		return writeYODA(path, s)
	}
}

func writeROOT(path string, s *Set) error {
	f, err := groot.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %v: %w", path, err)
	}
	defer f.Close()

	for _, name := range s.names {
		var obj root.Object
		if h, ok := s.h1[name]; ok {
			obj = rhist.NewH1DFrom(h)
		} else {
			obj = rhist.NewH2DFrom(s.h2[name])
		}
		if err := f.Put(name, obj); err != nil {
			return fmt.Errorf("unable to write %q to %v: %w", name, path, err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to close %v: %w", path, err)
	}
	return nil
}

func writeYODA(path string, s *Set) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %v: %w", path, err)
	}
	defer f.Close()

	objs := make([]yodacnv.Marshaler, 0, len(s.names))
	for _, name := range s.names {
		if h, ok := s.h1[name]; ok {
			objs = append(objs, h)
		} else {
			objs = append(objs, s.h2[name])
		}
	}
	if err := yodacnv.Write(f, objs...); err != nil {
		return fmt.Errorf("unable to write %v: %w", path, err)
	}
	return f.Close()
}

// Read loads every 1-D and 2-D histogram stored in path. Other objects are
// skipped.
func Read(path string) (*Set, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case ROOT:
		return readROOT(path)
	default:
		return readYODA(path)
	}
}

func readROOT(path string) (*Set, error) {
	f, err := groot.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v: %w", path, err)
	}
	defer f.Close()

	s := NewSet()
	for _, key := range f.Keys() {
		obj, err := key.Object()
		if err != nil {
			return nil, fmt.Errorf("unable to read %q from %v: %w", key.Name(), path, err)
		}
		switch h := obj.(type) {
		case rhist.H2:
			hh := rootcnv.H2D(h)
			hh.Ann["name"] = key.Name()
			s.add2D(hh)
		case rhist.H1:
			hh := rootcnv.H1D(h)
			hh.Ann["name"] = key.Name()
			s.add1D(hh)
		}
	}
	return s, nil
}

func readYODA(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v: %w", path, err)
	}
	defer f.Close()

	objs, err := yodacnv.Read(f)
	if err != nil {
		return nil, fmt.Errorf("unable to read %v: %w", path, err)
	}

	s := NewSet()
	for _, obj := range objs {
		switch h := obj.(type) {
		case *hbook.H1D:
			fixName(h.Ann)
			s.add1D(h)
		case *hbook.H2D:
			fixName(h.Ann)
			s.add2D(h)
		}
	}
	return s, nil
}

// fixName restores the name of a histogram read back from a YODA path.
func fixName(ann hbook.Annotation) {
	if Name(ann) != "" {
		return
	}
	if path, ok := ann["path"].(string); ok {
		ann["name"] = strings.TrimPrefix(path, "/")
	}
}
