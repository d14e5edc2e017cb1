package writers

import (
	"bufio"
	"io"
	"sort"
	"sync"

	"msalign/internal/output"
)

// Share 64 KiB buffered writers across streaming writers.
var bwPool = sync.Pool{
	New: func() any { return bufio.NewWriterSize(io.Discard, 64<<10) },
}

// StartResultWriter spins up a goroutine rendering every result sent on the
// returned channel in format. With sorted set, results are buffered and
// written by Source once the channel is closed. The error channel yields
// exactly one value after the input channel is closed; the input is always
// drained, so senders never block on a failed writer.
func StartResultWriter(out io.Writer, format string, o output.Options, sorted bool, bufSize int) (chan<- *output.Result, <-chan error) {
	if bufSize <= 0 {
		bufSize = 16
	}
	in := make(chan *output.Result, bufSize)
	done := make(chan error, 1)

	go func() {
		fn, err := Lookup(format)
		if err != nil {
			drain(in)
			done <- err
			return
		}

		bw := bwPool.Get().(*bufio.Writer)
		bw.Reset(out)
		defer func() {
			bw.Reset(io.Discard)
			bwPool.Put(bw)
		}()

		n := 0
		emit := func(r *output.Result) error {
			if format == FormatYAML && n > 0 {
				if _, err := bw.WriteString("---\n"); err != nil {
					return err
				}
			}
			n++
			return fn(bw, r, o)
		}

		if sorted {
			var buf []*output.Result
			for r := range in {
				buf = append(buf, r)
			}
			sort.SliceStable(buf, func(i, j int) bool { return buf[i].Source < buf[j].Source })
			for _, r := range buf {
				if err = emit(r); err != nil {
					break
				}
			}
		} else {
			for r := range in {
				if err = emit(r); err != nil {
					break
				}
			}
			drain(in)
		}
		if err == nil {
			err = bw.Flush()
		}
		done <- IgnoreBrokenPipe(err)
	}()

	return in, done
}

func drain(in <-chan *output.Result) {
	for range in {
	}
}
