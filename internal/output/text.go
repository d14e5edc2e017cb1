// internal/output/text.go
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TextHeader opens every text rendering.
const TextHeader = "CLUSTAL O multiple sequence alignment"

// WriteText prints the alignment in Clustal-style blocks: one line per
// sequence, each block Wrap columns wide, followed by a conservation line
// marking fully identical columns with '*'.
func WriteText(w io.Writer, r *Result, o Options) error {
	rows := r.Rows(o.Order)
	width := r.Alignment.Width()
	wrap := o.Wrap
	if wrap <= 0 {
		wrap = max(width, 1)
	}

	nameW := 0
	for _, row := range rows {
		nameW = max(nameW, len(row.Name))
	}
	nameW += 4

	var conserved, residue lipgloss.Style
	if o.Color {
		re := lipgloss.NewRenderer(w)
		conserved = re.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
		residue = re.NewStyle().Foreground(lipgloss.Color("252"))
	}
	cons := conservation(rows, width)

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n\n", TextHeader)
	for start := 0; start < width; start += wrap {
		end := min(start+wrap, width)
		for _, row := range rows {
			seg := row.Aligned[start:end]
			if o.Color {
				seg = colorize(seg, cons[start:end], conserved, residue)
			}
			fmt.Fprintf(bw, "%-*s%s\n", nameW, row.Name, seg)
		}
		fmt.Fprintf(bw, "%-*s%s\n\n", nameW, "", cons[start:end])
	}
	return bw.Flush()
}

// conservation returns '*' for columns where every row holds the same
// residue and ' ' otherwise.
func conservation(rows []Row, width int) string {
	b := make([]byte, width)
	for col := 0; col < width; col++ {
		b[col] = ' '
		if len(rows) == 0 {
			continue
		}
		c := rows[0].Aligned[col]
		if c == '-' {
			continue
		}
		same := true
		for _, row := range rows[1:] {
			if row.Aligned[col] != c {
				same = false
				break
			}
		}
		if same {
			b[col] = '*'
		}
	}
	return string(b)
}

func colorize(seg, cons string, conserved, residue lipgloss.Style) string {
	var sb strings.Builder
	for i := 0; i < len(seg); i++ {
		ch := string(seg[i])
		switch {
		case seg[i] == '-':
			sb.WriteString(ch)
		case cons[i] == '*':
			sb.WriteString(conserved.Render(ch))
		default:
			sb.WriteString(residue.Render(ch))
		}
	}
	return sb.String()
}
