// Package output renders alignment results as FASTA, Clustal-style text,
// JSON, JSONL or YAML.
package output

import (
	"strconv"

	"gonum.org/v1/gonum/mat"

	"msalign/core/align"
	"msalign/core/newick"
	"msalign/pkg/api"
)

// Row orders.
const (
	OrderInput = "input"
	OrderTree  = "tree"
)

// DefaultWrap is the number of alignment columns per line.
const DefaultWrap = 60

// Result is one finished alignment plus the metadata needed to render it.
type Result struct {
	Source    string
	SeqType   string
	Names     []string         // input order
	Alignment *align.Alignment // input order
	Order     []int            // tool order
	Tree      *newick.Tree
	Distances *mat.Dense // nil unless computed or supplied
}

// Options control rendering.
type Options struct {
	Order string // OrderInput | OrderTree
	Wrap  int    // columns per line, <= 0 for no wrapping
	Color bool
}

// Row is one gapped sequence with its input position.
type Row struct {
	Index   int
	Name    string
	Aligned string
}

// Rows returns the gapped rows in the requested order.
func (r *Result) Rows(order string) []Row {
	gapped := r.Alignment.Gapped()
	idx := make([]int, len(gapped))
	if order == OrderTree && len(r.Order) == len(gapped) {
		copy(idx, r.Order)
	} else {
		for i := range idx {
			idx[i] = i
		}
	}
	rows := make([]Row, len(idx))
	for k, i := range idx {
		rows[k] = Row{Index: i, Name: r.name(i), Aligned: gapped[i]}
	}
	return rows
}

func (r *Result) name(i int) string {
	if i < len(r.Names) && r.Names[i] != "" {
		return r.Names[i]
	}
	return "seq" + strconv.Itoa(i)
}

// ToAPI converts r to the stable wire schema.
func ToAPI(r *Result, o Options) api.AlignmentV1 {
	rows := r.Rows(o.Order)
	v := api.AlignmentV1{
		Source:    r.Source,
		SeqType:   r.SeqType,
		Width:     r.Alignment.Width(),
		Order:     append([]int{}, r.Order...),
		Sequences: make([]api.AlignedSequenceV1, len(rows)),
	}
	if r.Tree != nil {
		v.GuideTree = r.Tree.String()
	}
	for k, row := range rows {
		v.Sequences[k] = api.AlignedSequenceV1{Index: row.Index, Name: row.Name, Aligned: row.Aligned}
	}
	if r.Distances != nil {
		n, _ := r.Distances.Dims()
		v.DistanceMatrix = make([][]float64, n)
		for i := range v.DistanceMatrix {
			v.DistanceMatrix[i] = mat.Row(nil, i, r.Distances)
		}
	}
	return v
}
