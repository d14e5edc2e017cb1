package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

func hasGlobMeta(s string) bool { return strings.ContainsAny(s, "*?[") }

// ExpandInputs expands glob patterns among positional paths on fs. Plain
// paths and "-" pass through unchanged; a pattern matching nothing is an
// error.
func ExpandInputs(fs afero.Fs, args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		if a == "-" || !hasGlobMeta(a) {
			out = append(out, a)
			continue
		}
		m, err := afero.Glob(fs, a)
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", a, err)
		}
		if len(m) == 0 {
			return nil, fmt.Errorf("no input matched %q", a)
		}
		out = append(out, m...)
	}
	return out, nil
}
