// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"msalign/internal/output"
)

// Format names.
const (
	FormatFASTA = "fasta"
	FormatText  = "text"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatYAML  = "yaml"
)

// WriteFunc renders one result.
type WriteFunc func(w io.Writer, r *output.Result, o output.Options) error

var (
	mu       sync.RWMutex
	registry = map[string]WriteFunc{}
)

func init() {
	Register(FormatFASTA, output.WriteFASTA)
	Register(FormatText, output.WriteText)
	Register(FormatJSON, output.WriteJSON)
	Register(FormatJSONL, output.WriteJSONL)
	Register(FormatYAML, output.WriteYAML)
}

// Register installs fn for format, replacing any previous writer.
func Register(format string, fn WriteFunc) {
	mu.Lock()
	defer mu.Unlock()
	registry[format] = fn
}

// Lookup returns the writer for format.
func Lookup(format string) (WriteFunc, error) {
	mu.RLock()
	defer mu.RUnlock()
	fn, ok := registry[format]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (no writer registered)", format)
	}
	return fn, nil
}

// Formats lists the registered format names, sorted.
func Formats() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for f := range registry {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Write renders r in format to w. Broken pipes are not errors.
func Write(format string, w io.Writer, r *output.Result, o output.Options) error {
	fn, err := Lookup(format)
	if err != nil {
		return err
	}
	return IgnoreBrokenPipe(fn(w, r, o))
}
