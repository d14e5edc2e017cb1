// internal/output/json.go
package output

import (
	"encoding/json"
	"io"
)

// WriteJSON writes r as one indented JSON document.
func WriteJSON(w io.Writer, r *Result, o Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ToAPI(r, o))
}

// WriteJSONL writes r as a single compact JSON line.
func WriteJSONL(w io.Writer, r *Result, o Options) error {
	return json.NewEncoder(w).Encode(ToAPI(r, o))
}
