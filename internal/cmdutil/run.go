package cmdutil

import (
	"context"
	"time"
)

// Timeout derives a context bounded by d. d <= 0 means no deadline; the
// returned context is still cancellable.
func Timeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
