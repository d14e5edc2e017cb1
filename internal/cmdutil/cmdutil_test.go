package cmdutil

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestWarnf(t *testing.T) {
	var buf bytes.Buffer
	Warnf(&buf, false, "%d files skipped", 2)
	if got := buf.String(); got != "msalign: warning: 2 files skipped\n" {
		t.Fatalf("got %q", got)
	}
	buf.Reset()
	Warnf(&buf, true, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("quiet warning printed %q", buf.String())
	}
}

func TestTimeout(t *testing.T) {
	ctx, cancel := Timeout(context.Background(), 0)
	if _, ok := ctx.Deadline(); ok {
		t.Fatal("zero duration must not set a deadline")
	}
	cancel()
	if ctx.Err() == nil {
		t.Fatal("cancel must end the context")
	}

	ctx, cancel = Timeout(context.Background(), time.Hour)
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("expected a deadline")
	}
}
