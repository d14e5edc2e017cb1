package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes r as a YAML document.
func WriteYAML(w io.Writer, r *Result, o Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ToAPI(r, o)); err != nil {
		return err
	}
	return enc.Close()
}
