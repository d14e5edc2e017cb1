// Package seq holds the sequence types handed to alignment tools.
//
// A Sequence knows its residues and its Kind. Tools that can only align one
// kind of sequence use Kind to choose their command-line switches and to
// reject anything else.
package seq

import "fmt"

// Kind classifies a sequence by alphabet.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNucleotide
	KindProtein
)

func (k Kind) String() string {
	switch k {
	case KindNucleotide:
		return "nucleotide"
	case KindProtein:
		return "protein"
	default:
		return "unknown"
	}
}

// Sequence is an ungapped biological sequence.
type Sequence interface {
	Kind() Kind
	Len() int
	String() string
}

// Nucleotide is a DNA/RNA sequence in IUPAC notation.
type Nucleotide struct{ residues string }

// NewNucleotide validates raw and returns the normalized sequence.
func NewNucleotide(raw string) (Nucleotide, error) {
	s, err := validate(raw, isNucleotideRune, "A C G T U R Y S W K M B D H V N")
	if err != nil {
		return Nucleotide{}, fmt.Errorf("nucleotide: %w", err)
	}
	return Nucleotide{residues: s}, nil
}

func (n Nucleotide) Kind() Kind     { return KindNucleotide }
func (n Nucleotide) Len() int       { return len(n.residues) }
func (n Nucleotide) String() string { return n.residues }

// Protein is an amino acid sequence in one-letter code.
type Protein struct{ residues string }

// NewProtein validates raw and returns the normalized sequence.
func NewProtein(raw string) (Protein, error) {
	s, err := validate(raw, isProteinRune, proteinCodes)
	if err != nil {
		return Protein{}, fmt.Errorf("protein: %w", err)
	}
	return Protein{residues: s}, nil
}

func (p Protein) Kind() Kind     { return KindProtein }
func (p Protein) Len() int       { return len(p.residues) }
func (p Protein) String() string { return p.residues }

// Generic carries residues without alphabet checks. Its kind is always
// KindUnknown.
type Generic struct{ residues string }

func NewGeneric(raw string) Generic { return Generic{residues: Normalize(raw)} }

func (g Generic) Kind() Kind     { return KindUnknown }
func (g Generic) Len() int       { return len(g.residues) }
func (g Generic) String() string { return g.residues }

// Detect picks the narrowest sequence type that accepts raw: nucleotide
// first, then protein, otherwise Generic.
func Detect(raw string) Sequence {
	s := Normalize(raw)
	if IsNucleotide(s) {
		return Nucleotide{residues: s}
	}
	if IsProtein(s) {
		return Protein{residues: s}
	}
	return Generic{residues: s}
}

// Parse builds a sequence of the requested kind. KindUnknown means Detect.
func Parse(raw string, kind Kind) (Sequence, error) {
	switch kind {
	case KindNucleotide:
		return NewNucleotide(raw)
	case KindProtein:
		return NewProtein(raw)
	default:
		return Detect(raw), nil
	}
}

// ParseKind maps a user-facing name ("dna", "protein", "auto") to a Kind.
func ParseKind(name string) (Kind, error) {
	switch Normalize(name) {
	case "", "AUTO":
		return KindUnknown, nil
	case "DNA", "RNA", "NUCLEOTIDE", "NT":
		return KindNucleotide, nil
	case "PROTEIN", "AA":
		return KindProtein, nil
	}
	return KindUnknown, fmt.Errorf("unknown sequence type %q (want auto, dna or protein)", name)
}

// ParseAll builds one sequence per raw string. With KindUnknown the kind is
// chosen for the whole set: nucleotide if every sequence is nucleotide,
// protein if every sequence is protein, otherwise per sequence.
func ParseAll(raws []string, kind Kind) ([]Sequence, error) {
	if kind == KindUnknown {
		kind = commonKind(raws)
	}
	out := make([]Sequence, len(raws))
	for i, raw := range raws {
		s, err := Parse(raw, kind)
		if err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

func commonKind(raws []string) Kind {
	nuc, prot := true, true
	for _, raw := range raws {
		s := Normalize(raw)
		nuc = nuc && IsNucleotide(s)
		prot = prot && IsProtein(s)
	}
	switch {
	case len(raws) == 0:
		return KindUnknown
	case nuc:
		return KindNucleotide
	case prot:
		return KindProtein
	}
	return KindUnknown
}
