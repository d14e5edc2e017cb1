package output

import (
	"io"

	"msalign/core/fasta"
)

// WriteFASTA writes the gapped rows as FASTA records named after the input.
func WriteFASTA(w io.Writer, r *Result, o Options) error {
	rows := r.Rows(o.Order)
	recs := make([]fasta.Record, len(rows))
	for k, row := range rows {
		recs[k] = fasta.Record{ID: row.Name, Seq: []byte(row.Aligned)}
	}
	return fasta.Write(w, recs, o.Wrap)
}
