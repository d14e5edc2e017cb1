// Package align holds multiple-sequence-alignment results.
package align

import (
	"fmt"
	"strings"

	"msalign/core/seq"
)

// Gap marks a column where a sequence has no residue.
const Gap = -1

// GapChar is the symbol used for gaps in gapped text.
const GapChar = '-'

// Alignment maps alignment columns to residue positions.
// Trace[col][i] is the residue index of Sequences[i] in column col, or Gap.
type Alignment struct {
	Sequences []seq.Sequence
	Trace     [][]int
}

// FromGapped builds an alignment from gapped rows, one per sequence and in
// the same order. Every row must have the same width, and the number of
// residues in row i must equal seqs[i].Len().
func FromGapped(seqs []seq.Sequence, rows []string) (*Alignment, error) {
	if len(rows) != len(seqs) {
		return nil, fmt.Errorf("align: %d gapped rows for %d sequences", len(rows), len(seqs))
	}
	if len(rows) == 0 {
		return &Alignment{}, nil
	}
	width := len(rows[0])
	for i, r := range rows {
		if len(r) != width {
			return nil, fmt.Errorf("align: row %d has width %d, want %d", i, len(r), width)
		}
	}

	trace := make([][]int, width)
	next := make([]int, len(rows))
	for col := 0; col < width; col++ {
		trace[col] = make([]int, len(rows))
		for i, r := range rows {
			if isGap(r[col]) {
				trace[col][i] = Gap
				continue
			}
			trace[col][i] = next[i]
			next[i]++
		}
	}
	for i, n := range next {
		if n != seqs[i].Len() {
			return nil, fmt.Errorf("align: row %d holds %d residues, sequence has %d", i, n, seqs[i].Len())
		}
	}
	return &Alignment{Sequences: seqs, Trace: trace}, nil
}

func isGap(c byte) bool { return c == GapChar || c == '.' }

// Width returns the number of alignment columns.
func (a *Alignment) Width() int { return len(a.Trace) }

// Gapped renders each sequence as a gapped row.
func (a *Alignment) Gapped() []string {
	rows := make([]strings.Builder, len(a.Sequences))
	res := make([]string, len(a.Sequences))
	for i, s := range a.Sequences {
		res[i] = s.String()
		rows[i].Grow(len(a.Trace))
	}
	for _, col := range a.Trace {
		for i, p := range col {
			if p == Gap {
				rows[i].WriteByte(GapChar)
			} else {
				rows[i].WriteByte(res[i][p])
			}
		}
	}
	out := make([]string, len(rows))
	for i := range rows {
		out[i] = rows[i].String()
	}
	return out
}

// Reorder returns a copy whose row k is row order[k] of a. order must be a
// permutation of the sequence indices.
func (a *Alignment) Reorder(order []int) (*Alignment, error) {
	if err := CheckPermutation(order, len(a.Sequences)); err != nil {
		return nil, err
	}
	seqs := make([]seq.Sequence, len(order))
	for k, i := range order {
		seqs[k] = a.Sequences[i]
	}
	trace := make([][]int, len(a.Trace))
	for col, c := range a.Trace {
		trace[col] = make([]int, len(order))
		for k, i := range order {
			trace[col][k] = c[i]
		}
	}
	return &Alignment{Sequences: seqs, Trace: trace}, nil
}

// CheckPermutation reports whether order holds each of 0..n-1 exactly once.
func CheckPermutation(order []int, n int) error {
	if len(order) != n {
		return fmt.Errorf("align: order has %d entries, want %d", len(order), n)
	}
	seen := make([]bool, n)
	for _, i := range order {
		if i < 0 || i >= n || seen[i] {
			return fmt.Errorf("align: order %v is not a permutation of 0..%d", order, n-1)
		}
		seen[i] = true
	}
	return nil
}

// String prints one gapped row per line.
func (a *Alignment) String() string {
	return strings.Join(a.Gapped(), "\n")
}
