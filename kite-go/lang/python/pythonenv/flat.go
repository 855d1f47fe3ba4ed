package pythonenv

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// FlatItem describes one module file of a source tree
type FlatItem struct {
	Name      string `yaml:"name"`
	Path      string `yaml:"path"`
	IsPackage bool   `yaml:"package,omitempty"`
	IsStub    bool   `yaml:"stub,omitempty"`
	// Shadowed is set when another file provides the module name
	Shadowed bool `yaml:"shadowed,omitempty"`
	Version  int  `yaml:"version"`
}

// FlatSourceTree is the representation of source trees used for listings
type FlatSourceTree struct {
	Files []FlatItem `yaml:"files"`
}

// WriteTable writes the listing as an aligned table
func (f FlatSourceTree) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 4, 4, 2, ' ', 0)
	for _, item := range f.Files {
		var flags string
		if item.IsPackage {
			flags += "p"
		}
		if item.IsStub {
			flags += "s"
		}
		if item.Shadowed {
			flags += "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\tv%d\n", item.Name, flags, item.Path, item.Version)
	}
	return tw.Flush()
}
