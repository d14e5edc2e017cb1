// core/seq/alphabet.go
package seq

import (
	"fmt"
	"strings"
	"unicode"
)

// IUPAC nucleotide codes and the bases they stand for. U is accepted so RNA
// input classifies as nucleotide.
var nucleotideCodes = map[rune]string{
	'A': "A",
	'C': "C",
	'G': "G",
	'T': "T",
	'U': "T",
	'R': "AG",
	'Y': "CT",
	'S': "CG",
	'W': "AT",
	'K': "GT",
	'M': "AC",
	'B': "CGT",
	'D': "AGT",
	'H': "ACT",
	'V': "ACG",
	'N': "ACGT",
}

// 20 standard amino acids, ambiguity codes B/Z/X, selenocysteine (U),
// pyrrolysine (O) and the stop symbol.
const proteinCodes = "ACDEFGHIKLMNPQRSTVWYBZXUO*"

// Normalize removes whitespace/quotes and uppercases residues.
func Normalize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '\'' || r == '"' {
			continue
		}
		out = append(out, unicode.ToUpper(r))
	}
	return string(out)
}

// IsNucleotide reports whether every residue of s is an IUPAC nucleotide code.
func IsNucleotide(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if _, ok := nucleotideCodes[unicode.ToUpper(r)]; !ok {
			return false
		}
	}
	return true
}

// IsProtein reports whether every residue of s is a valid one-letter amino acid code.
func IsProtein(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(proteinCodes, unicode.ToUpper(r)) {
			return false
		}
	}
	return true
}

func validate(raw string, ok func(rune) bool, allowed string) (string, error) {
	s := Normalize(raw)
	if s == "" {
		return s, fmt.Errorf("empty sequence")
	}
	for i, r := range s {
		if !ok(r) {
			return "", fmt.Errorf("invalid residue %q at %d; allowed: %s", r, i+1, allowed)
		}
	}
	return s, nil
}

func isNucleotideRune(r rune) bool {
	_, ok := nucleotideCodes[r]
	return ok
}

func isProteinRune(r rune) bool { return strings.ContainsRune(proteinCodes, r) }
