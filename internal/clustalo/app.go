// Package clustalo wraps the Clustal-Omega multiple sequence aligner.
//
// An App is single-use: configure it while it is CREATED, Start or Run it,
// and read the results once it is JOINED.
//
//	app, err := clustalo.New(seqs)
//	if err != nil {
//		return err
//	}
//	if err := app.EnableFullMatrix(); err != nil {
//		return err
//	}
//	if err := app.Run(ctx); err != nil {
//		return err
//	}
//	aln, _ := app.Alignment()
//	tree, _ := app.GuideTree()
//	dist, _ := app.DistanceMatrix()
package clustalo

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"msalign/core/align"
	"msalign/core/distmat"
	"msalign/core/newick"
	"msalign/core/seq"
	"msalign/internal/application"
	"msalign/internal/msaapp"
	"msalign/internal/tempfile"
)

// DefaultBinary is the binary name looked up on PATH.
const DefaultBinary = "clustalo"

// Values of --seqtype.
const (
	SeqTypeDNA     = "DNA"
	SeqTypeProtein = "Protein"
)

// App is a single Clustal-Omega run.
type App struct {
	*msaapp.App

	seqType  string
	seqCount int

	mbed         bool
	threads      int
	distMatrix   *mat.Dense
	tree         *newick.Tree
	treeSupplied bool

	inDist  *tempfile.Slot
	outDist *tempfile.Slot
	inTree  *tempfile.Slot
	outTree *tempfile.Slot
}

// New validates seqs and prepares a run. All sequences must be nucleotide
// or all protein.
func New(seqs []seq.Sequence, opts ...msaapp.Option) (*App, error) {
	if len(seqs) == 0 {
		return nil, application.ValueErrorf("clustal-omega needs at least one sequence")
	}
	seqType, err := seqTypeOf(seqs[0])
	if err != nil {
		return nil, err
	}
	for i, s := range seqs[1:] {
		if s.Kind() != seqs[0].Kind() {
			return nil, application.TypeErrorf(
				"clustal-omega cannot align mixed sequence types: sequence 0 is %s, sequence %d is %s",
				seqs[0].Kind(), i+1, s.Kind())
		}
	}

	a := &App{seqType: seqType, seqCount: len(seqs), mbed: true}
	base, err := msaapp.New(seqs, DefaultBinary, hooks{a}, opts...)
	if err != nil {
		return nil, err
	}
	a.App = base
	ws := base.Workspace()
	a.inDist = ws.Slot("mat")
	a.outDist = ws.Slot("mat")
	a.inTree = ws.Slot("tree")
	a.outTree = ws.Slot("tree")
	return a, nil
}

func seqTypeOf(s seq.Sequence) (string, error) {
	switch s.Kind() {
	case seq.KindNucleotide:
		return SeqTypeDNA, nil
	case seq.KindProtein:
		return SeqTypeProtein, nil
	}
	return "", application.TypeErrorf("clustal-omega cannot align sequences of type %T", s)
}

// SeqType returns the --seqtype value chosen for the input.
func (a *App) SeqType() string { return a.seqType }

// EnableFullMatrix turns off the mbed approximation, so the tool computes
// and writes the full pairwise distance matrix.
func (a *App) EnableFullMatrix() error {
	if err := a.Require("enable full matrix", application.Created); err != nil {
		return err
	}
	a.mbed = false
	return nil
}

// SetDistanceMatrix supplies a precomputed distance matrix. A *mat.Dense is
// used without copying.
func (a *App) SetDistanceMatrix(m mat.Matrix) error {
	if err := a.Require("set distance matrix", application.Created); err != nil {
		return err
	}
	n, err := distmat.Square(m)
	if err != nil {
		return application.ValueErrorf("%v", err)
	}
	if n != a.seqCount {
		return application.ValueErrorf("distance matrix of dimension %d does not fit %d sequences", n, a.seqCount)
	}
	a.distMatrix = distmat.Dense(m)
	return nil
}

// SetGuideTree supplies a precomputed guide tree. Its leaf count must equal
// the number of sequences.
func (a *App) SetGuideTree(t *newick.Tree) error {
	if err := a.Require("set guide tree", application.Created); err != nil {
		return err
	}
	if t == nil || t.Root == nil {
		return application.ValueErrorf("guide tree is empty")
	}
	if n := t.Len(); n != a.seqCount {
		return application.ValueErrorf("tree with %d leaves is not sufficient for %d sequences, must be equal", n, a.seqCount)
	}
	a.tree = t
	a.treeSupplied = true
	return nil
}

// SetThreads sets the number of threads the tool may use; 0 leaves the
// tool's default.
func (a *App) SetThreads(n int) error {
	if err := a.Require("set threads", application.Created); err != nil {
		return err
	}
	if n < 0 {
		return application.ValueErrorf("thread count must be >= 0, got %d", n)
	}
	a.threads = n
	return nil
}

// DistanceMatrix returns the matrix computed by the tool. It is only
// available when EnableFullMatrix was called before the run.
func (a *App) DistanceMatrix() (*mat.Dense, error) {
	if err := a.Require("get distance matrix", application.Joined); err != nil {
		return nil, err
	}
	if a.mbed {
		return nil, application.StateErrorf("getting the distance matrix requires EnableFullMatrix()")
	}
	return a.distMatrix, nil
}

// GuideTree returns the guide tree, either the one supplied or the one
// computed by the tool.
func (a *App) GuideTree() (*newick.Tree, error) {
	if err := a.Require("get guide tree", application.Joined); err != nil {
		return nil, err
	}
	return a.tree, nil
}

// Align runs Clustal-Omega over seqs with default settings and returns the
// alignment in input order.
func Align(ctx context.Context, seqs []seq.Sequence, opts ...msaapp.Option) (*align.Alignment, error) {
	app, err := New(seqs, opts...)
	if err != nil {
		return nil, err
	}
	if err := app.Run(ctx); err != nil {
		return nil, err
	}
	return app.Alignment()
}

// hooks implements msaapp.Tool.
type hooks struct{ a *App }

func (h hooks) BuildArguments(in, out string) ([]string, error) {
	a := h.a
	args := []string{
		"--in", in,
		"--out", out,
		"--seqtype", a.seqType,
		// tree order, so the output order follows the guide tree
		"--output-order=tree-order",
	}
	// The tool rejects a guide tree as both input and output, so only
	// request one when none is supplied.
	if !a.treeSupplied {
		p, err := a.outTree.Path()
		if err != nil {
			return nil, err
		}
		args = append(args, "--guidetree-out", p)
	}
	if !a.mbed {
		p, err := a.outDist.Path()
		if err != nil {
			return nil, err
		}
		args = append(args, "--full", "--distmat-out", p)
	}
	if a.distMatrix != nil {
		p, err := a.inDist.Path()
		if err != nil {
			return nil, err
		}
		if err := distmat.WriteFile(a.Workspace().Fs(), p, a.distMatrix); err != nil {
			return nil, fmt.Errorf("write distance matrix: %w", err)
		}
		args = append(args, "--distmat-in", p)
	}
	if a.treeSupplied {
		p, err := a.inTree.Path()
		if err != nil {
			return nil, err
		}
		if err := writeTree(a.inTree, a.tree); err != nil {
			return nil, fmt.Errorf("write guide tree: %w", err)
		}
		args = append(args, "--guidetree-in", p)
	}
	if a.threads > 0 {
		args = append(args, "--threads", strconv.Itoa(a.threads))
	}
	return args, nil
}

func (h hooks) EvaluateOutput(context.Context) error {
	a := h.a
	if !a.mbed {
		p, err := a.outDist.Path()
		if err != nil {
			return err
		}
		m, err := distmat.ReadFile(a.Workspace().Fs(), p)
		if err != nil {
			return fmt.Errorf("read distance matrix: %w", err)
		}
		if r, c := m.Dims(); r != a.seqCount || c != a.seqCount {
			return application.ValueErrorf("distance matrix from clustalo is %dx%d, expected %dx%d", r, c, a.seqCount, a.seqCount)
		}
		a.distMatrix = m
	}
	if !a.treeSupplied {
		t, err := readTree(a.outTree)
		if err != nil {
			return fmt.Errorf("read guide tree: %w", err)
		}
		a.tree = t
	}
	return nil
}

func writeTree(s *tempfile.Slot, t *newick.Tree) error {
	fh, err := s.Create()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(fh, t.String()); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

func readTree(s *tempfile.Slot) (*newick.Tree, error) {
	fh, err := s.Open()
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	raw, err := io.ReadAll(fh)
	if err != nil {
		return nil, err
	}
	return newick.Parse(strings.ReplaceAll(string(raw), "\n", ""))
}
