// core/fasta/reader.go
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// Record represents a parsed FASTA sequence. Seq keeps gap characters, so
// the same type carries aligned output.
type Record struct {
	ID   string
	Desc string
	Seq  []byte
}

// Scan parses FASTA from r and calls emit once per record.
// Cancellation via ctx is checked between lines.
// emit may return an error (e.g. ctx.Err()) to stop early.
func Scan(ctx context.Context, r io.Reader, emit func(Record) error) error {
	sc := bufio.NewScanner(r)
	const maxLine = 64 * 1024 * 1024 // allow very long single-line sequences (64 MiB)
	buf := make([]byte, 64*1024)
	sc.Buffer(buf, maxLine)

	var (
		cur    *Record
		lineNo int
	)
	flush := func() error {
		if cur == nil {
			return nil
		}
		rec := *cur
		cur = nil
		return emit(rec)
	}

	for sc.Scan() {
		lineNo++
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 || line[0] == ';' {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return err
			}
			id, desc := parseHeader(line[1:])
			cur = &Record{ID: id, Desc: desc, Seq: make([]byte, 0, 256)}
			continue
		}
		if cur == nil {
			return fmt.Errorf("fasta: sequence data before first header (line %d)", lineNo)
		}
		cur.Seq = append(cur.Seq, bytes.Join(bytes.Fields(line), nil)...)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("fasta scan: %w", err)
	}
	return flush()
}

// Read collects every record from r.
func Read(ctx context.Context, r io.Reader) ([]Record, error) {
	var recs []Record
	err := Scan(ctx, r, func(rec Record) error {
		recs = append(recs, rec)
		return nil
	})
	return recs, err
}

// ReadFile opens path on fs (gzip and "-" aware) and reads every record.
func ReadFile(ctx context.Context, fs afero.Fs, path string) ([]Record, error) {
	rc, err := Open(fs, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	recs, err := Read(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// parseHeader splits a header (without '>') into the ID (first word) and the
// remaining description.
func parseHeader(h []byte) (string, string) {
	h = bytes.TrimSpace(h)
	if i := bytes.IndexAny(h, " \t"); i >= 0 {
		return string(h[:i]), string(bytes.TrimSpace(h[i+1:]))
	}
	return string(h), ""
}
