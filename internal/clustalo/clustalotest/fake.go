// Package clustalotest provides an in-process stand-in for the clustalo
// binary, so adapters and commands can be tested without it installed.
//
// The fake honours the subset of the command line the adapter emits. Its
// guide tree joins sequences longest first (ties by input position), and
// rows are left-padded with gaps to a common width.
package clustalotest

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"gonum.org/v1/gonum/mat"

	"msalign/core/distmat"
	"msalign/core/fasta"
	"msalign/core/newick"
	"msalign/internal/application"
	"msalign/internal/localapp"
)

var valueFlags = map[string]bool{
	"--in":            true,
	"--out":           true,
	"--seqtype":       true,
	"--guidetree-in":  true,
	"--guidetree-out": true,
	"--distmat-in":    true,
	"--distmat-out":   true,
	"--threads":       true,
}

var boolFlags = map[string]bool{
	"--full":                     true,
	"--force":                    true,
	"--output-order=tree-order":  true,
	"--output-order=input-order": true,
}

// Fake is a localapp.Runner that behaves like clustalo on an afero.Fs.
type Fake struct {
	fs afero.Fs

	mu    sync.Mutex
	calls [][]string

	// Fail, when set, makes every run exit with code 1 and this message
	// on stderr.
	Fail string
	// Delay is waited out (or cut short by cancellation) before aligning.
	Delay time.Duration
}

var _ localapp.Runner = (*Fake)(nil)

// New returns a fake reading and writing files on fs.
func New(fs afero.Fs) *Fake { return &Fake{fs: fs} }

// Calls returns the argument lists of every run so far.
func (f *Fake) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = append([]string(nil), c...)
	}
	return out
}

// LastArgs returns the arguments of the most recent run, or nil.
func (f *Fake) LastArgs() []string {
	calls := f.Calls()
	if len(calls) == 0 {
		return nil
	}
	return calls[len(calls)-1]
}

// Run implements localapp.Runner.
func (f *Fake) Run(ctx context.Context, c localapp.Command) error {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), c.Args...))
	f.mu.Unlock()

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.Fail != "" {
		return f.exit(c, f.Fail)
	}
	opts, err := parseArgs(c.Args)
	if err != nil {
		return f.exit(c, err.Error())
	}
	if err := f.align(ctx, opts); err != nil {
		return f.exit(c, err.Error())
	}
	if c.Stdout != nil {
		fmt.Fprintf(c.Stdout, "aligned %s\n", opts["--in"])
	}
	return nil
}

func (f *Fake) exit(c localapp.Command, msg string) error {
	if c.Stderr != nil {
		fmt.Fprintln(c.Stderr, "ERROR: "+msg)
	}
	return &application.ProcessError{Binary: c.Binary, Args: c.Args, ExitCode: 1}
}

func parseArgs(args []string) (map[string]string, error) {
	opts := map[string]string{}
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case valueFlags[a]:
			if i+1 >= len(args) {
				return nil, fmt.Errorf("option %s requires a value", a)
			}
			opts[a] = args[i+1]
			i++
		case boolFlags[a]:
			opts[a] = ""
		default:
			return nil, fmt.Errorf("unknown option %q", a)
		}
	}
	if _, ok := opts["--in"]; !ok {
		return nil, fmt.Errorf("no sequence input was specified")
	}
	if _, ok := opts["--out"]; !ok {
		return nil, fmt.Errorf("no output file was specified")
	}
	_, treeIn := opts["--guidetree-in"]
	_, treeOut := opts["--guidetree-out"]
	if treeIn && treeOut {
		return nil, fmt.Errorf("can't read and write a guide tree at the same time")
	}
	_, full := opts["--full"]
	if _, ok := opts["--distmat-out"]; ok && !full {
		return nil, fmt.Errorf("distance matrix output is only possible with --full")
	}
	switch opts["--seqtype"] {
	case "", "DNA", "RNA", "Protein":
	default:
		return nil, fmt.Errorf("unknown sequence type %q", opts["--seqtype"])
	}
	return opts, nil
}

func (f *Fake) align(ctx context.Context, opts map[string]string) error {
	recs, err := fasta.ReadFile(ctx, f.fs, opts["--in"])
	if err != nil {
		return err
	}
	n := len(recs)

	if p, ok := opts["--distmat-in"]; ok {
		m, err := distmat.ReadFile(f.fs, p)
		if err != nil {
			return err
		}
		if r, _ := m.Dims(); r != n {
			return fmt.Errorf("distance matrix has %d rows for %d sequences", r, n)
		}
	}

	var tree *newick.Tree
	if p, ok := opts["--guidetree-in"]; ok {
		raw, err := afero.ReadFile(f.fs, p)
		if err != nil {
			return err
		}
		if tree, err = newick.Parse(string(raw)); err != nil {
			return err
		}
		if tree.Len() != n {
			return fmt.Errorf("guide tree has %d leaves for %d sequences", tree.Len(), n)
		}
		for _, i := range tree.Leaves() {
			if i >= n {
				return fmt.Errorf("guide tree leaf %d names no sequence", i)
			}
		}
	} else {
		tree = guideTree(recs)
	}

	width := 0
	for _, r := range recs {
		width = max(width, len(r.Seq))
	}
	out := make([]fasta.Record, 0, n)
	for _, i := range tree.Leaves() {
		r := recs[i]
		row := strings.Repeat("-", width-len(r.Seq)) + string(r.Seq)
		out = append(out, fasta.Record{ID: r.ID, Seq: []byte(row)})
	}
	if err := fasta.WriteFile(f.fs, opts["--out"], out); err != nil {
		return err
	}

	if p, ok := opts["--guidetree-out"]; ok {
		if err := afero.WriteFile(f.fs, p, []byte(multiLine(tree.String())), 0o644); err != nil {
			return err
		}
	}
	if p, ok := opts["--distmat-out"]; ok {
		fh, err := f.fs.Create(p)
		if err != nil {
			return err
		}
		if err := writeMatrix(fh, recs); err != nil {
			_ = fh.Close()
			return err
		}
		return fh.Close()
	}
	return nil
}

// Distances are the relative length difference of two sequences.
func distances(recs []fasta.Record) *mat.Dense {
	n := len(recs)
	m := mat.NewDense(n, n, nil)
	for i := range recs {
		for j := range recs {
			li, lj := float64(len(recs[i].Seq)), float64(len(recs[j].Seq))
			if d := math.Max(li, lj); d > 0 {
				m.Set(i, j, math.Abs(li-lj)/d)
			}
		}
	}
	return m
}

// writeMatrix mimics the tool's layout: count line, then padded name and
// six-decimal values per row.
func writeMatrix(w io.Writer, recs []fasta.Record) error {
	m := distances(recs)
	if _, err := fmt.Fprintf(w, "%d\n", len(recs)); err != nil {
		return err
	}
	for i, r := range recs {
		var b strings.Builder
		fmt.Fprintf(&b, "%-10s", r.ID)
		for j := range recs {
			fmt.Fprintf(&b, " %f", m.At(i, j))
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func guideTree(recs []fasta.Record) *newick.Tree {
	order := make([]int, len(recs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(recs[order[a]].Seq) > len(recs[order[b]].Seq)
	})
	root := newick.Leaf(order[0])
	for k, i := range order[1:] {
		root = newick.Internal(root.WithLength(0.05), newick.Leaf(i).WithLength(0.1*float64(k+1)))
	}
	t, err := newick.New(root)
	if err != nil {
		panic(err)
	}
	return t
}

// multiLine breaks a Newick string the way the tool does.
func multiLine(s string) string {
	r := strings.NewReplacer("(", "(\n", ",", ",\n", ")", "\n)")
	return r.Replace(s) + "\n"
}
