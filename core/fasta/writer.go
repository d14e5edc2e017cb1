// core/fasta/writer.go
package fasta

import (
	"bufio"
	"io"

	"github.com/spf13/afero"
)

// DefaultWidth is the line width used by WriteFile.
const DefaultWidth = 60

// Write emits records as FASTA, wrapping sequence lines at width residues.
// width <= 0 writes each sequence on a single line.
func Write(w io.Writer, recs []Record, width int) error {
	bw := bufio.NewWriter(w)
	for _, r := range recs {
		if _, err := bw.WriteString(">" + r.ID); err != nil {
			return err
		}
		if r.Desc != "" {
			if _, err := bw.WriteString(" " + r.Desc); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		seq := r.Seq
		lw := width
		if lw <= 0 {
			lw = len(seq)
		}
		for len(seq) > 0 {
			n := min(lw, len(seq))
			if _, err := bw.Write(seq[:n]); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
			seq = seq[n:]
		}
	}
	return bw.Flush()
}

// WriteFile creates (or truncates) path on fs and writes recs to it.
func WriteFile(fs afero.Fs, path string, recs []Record) error {
	fh, err := fs.Create(path)
	if err != nil {
		return err
	}
	if err := Write(fh, recs, DefaultWidth); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}
