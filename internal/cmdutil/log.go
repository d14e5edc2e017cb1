// internal/cmdutil/log.go
package cmdutil

import (
	"fmt"
	"io"
)

// Warnf prints a one-line warning to dst unless quiet is set.
func Warnf(dst io.Writer, quiet bool, format string, a ...any) {
	if quiet || dst == nil {
		return
	}
	_, _ = fmt.Fprintf(dst, "msalign: warning: "+format+"\n", a...)
}
