// pkg/api/alignment_v1.go
package api

// AlignmentV1 is the stable JSON/JSONL/YAML schema for one alignment.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type AlignmentV1 struct {
	Source         string              `json:"source,omitempty" yaml:"source,omitempty"`
	SeqType        string              `json:"seq_type" yaml:"seq_type"` // "DNA" | "Protein"
	Width          int                 `json:"width" yaml:"width"`
	Order          []int               `json:"order" yaml:"order,flow"` // tool (guide tree) order
	GuideTree      string              `json:"guide_tree,omitempty" yaml:"guide_tree,omitempty"`
	Sequences      []AlignedSequenceV1 `json:"sequences" yaml:"sequences"`
	DistanceMatrix [][]float64         `json:"distance_matrix,omitempty" yaml:"distance_matrix,omitempty"`
}

// AlignedSequenceV1 is one gapped row. Index is the input position.
type AlignedSequenceV1 struct {
	Index   int    `json:"index" yaml:"index"`
	Name    string `json:"name" yaml:"name"`
	Aligned string `json:"aligned" yaml:"aligned"`
}
