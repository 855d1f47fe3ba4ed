package pythonenv

import (
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyinfer/kite-golib/errors"
	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v2"
)

// LoadLimits reads analysis limits from a YAML file. Options missing from
// the file keep their default value; unknown options are an error.
func LoadLimits(fs afero.Fs, path string) (pythontype.Limits, error) {
	buf, err := afero.ReadFile(fs, path)
	if err != nil {
		return pythontype.Limits{}, errors.NewHostError(path, errors.WithStack(err), "cannot read limits file %s", path)
	}
	return ParseLimits(path, buf)
}

// ParseLimits decodes YAML limits on top of a preset. The optional `base`
// key names the preset: "default" for user code or "stdlib" for library
// trees.
func ParseLimits(path string, buf []byte) (pythontype.Limits, error) {
	var doc struct {
		Base string `yaml:"base"`
	}
	// the preset has to be known before the options are applied on top of it
	_ = yaml.Unmarshal(buf, &doc)

	var limits pythontype.Limits
	switch doc.Base {
	case "", "default":
		limits = pythontype.DefaultLimits()
	case "stdlib":
		limits = pythontype.StandardLibraryLimits()
	default:
		return pythontype.Limits{}, errors.NewHostError(path, nil, "unknown limits preset %q in %s", doc.Base, path)
	}

	var file struct {
		Base   string            `yaml:"base"`
		Limits pythontype.Limits `yaml:",inline"`
	}
	file.Limits = limits
	if err := yaml.UnmarshalStrict(buf, &file); err != nil {
		return pythontype.Limits{}, errors.NewHostError(path, errors.WithStack(err), "invalid limits file %s", path)
	}
	return file.Limits.Normalize(), nil
}

// MarshalLimits encodes limits in the format read by LoadLimits
func MarshalLimits(limits pythontype.Limits) ([]byte, error) {
	return yaml.Marshal(limits)
}
