// Package msaapp is the shared base for multiple-sequence-alignment tools
// that read FASTA and write a gapped FASTA alignment.
//
// Input sequences are written as records named "0", "1", ... so the output
// can be mapped back to input positions whatever order the tool chooses.
// The alignment is always returned in input order; Order reports the order
// the tool emitted the sequences in.
package msaapp

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"msalign/core/align"
	"msalign/core/fasta"
	"msalign/core/seq"
	"msalign/internal/application"
	"msalign/internal/localapp"
	"msalign/internal/logging"
	"msalign/internal/tempfile"
)

// Tool supplies the tool-specific half of an alignment run.
type Tool interface {
	// BuildArguments returns the command line given the input and output
	// FASTA paths.
	BuildArguments(in, out string) ([]string, error)
	// EvaluateOutput reads any extra results after the alignment was parsed.
	EvaluateOutput(ctx context.Context) error
}

// App runs an alignment tool over a fixed set of sequences.
type App struct {
	*localapp.App

	seqs []seq.Sequence
	tool Tool
	ws   *tempfile.Workspace
	in   *tempfile.Slot
	out  *tempfile.Slot
	log  *logging.Logger

	alignment *align.Alignment
	order     []int
}

// New prepares an App. defaultBinary is used unless WithBinary overrides it.
func New(seqs []seq.Sequence, defaultBinary string, tool Tool, opts ...Option) (*App, error) {
	if len(seqs) == 0 {
		return nil, application.ValueErrorf("at least one sequence is required")
	}
	o := options{binary: defaultBinary, runner: localapp.ExecRunner{}, logger: logging.NopLogger()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}

	ws := tempfile.New(o.fs, o.tempDir, "msalign-")
	log := o.logger.With("run_id", uuid.NewString(), "tool", filepath.Base(o.binary))
	a := &App{
		seqs: append([]seq.Sequence(nil), seqs...),
		tool: tool,
		ws:   ws,
		in:   ws.Slot("fa"),
		out:  ws.Slot("fa"),
		log:  log,
	}
	a.App = localapp.New(o.binary, delegate{a},
		localapp.WithRunner(o.runner),
		localapp.WithLogger(log),
		localapp.WithWorkDir(o.workDir),
		localapp.WithEnv(o.env...),
	)
	return a, nil
}

// Sequences returns the input sequences.
func (a *App) Sequences() []seq.Sequence { return a.seqs }

// Workspace returns the run's temporary workspace, for tools that need
// additional files.
func (a *App) Workspace() *tempfile.Workspace { return a.ws }

// Logger returns the run-scoped logger.
func (a *App) Logger() *logging.Logger { return a.log }

// Alignment returns the alignment in input order.
func (a *App) Alignment() (*align.Alignment, error) {
	if err := a.Require("get alignment", application.Joined); err != nil {
		return nil, err
	}
	return a.alignment, nil
}

// Order returns the input indices in the order the tool emitted them.
func (a *App) Order() ([]int, error) {
	if err := a.Require("get alignment order", application.Joined); err != nil {
		return nil, err
	}
	return append([]int(nil), a.order...), nil
}

// OrderedAlignment returns the alignment with rows in the tool's order.
func (a *App) OrderedAlignment() (*align.Alignment, error) {
	if err := a.Require("get alignment", application.Joined); err != nil {
		return nil, err
	}
	return a.alignment.Reorder(a.order)
}

func (a *App) writeInput() (string, error) {
	recs := make([]fasta.Record, len(a.seqs))
	for i, s := range a.seqs {
		recs[i] = fasta.Record{ID: strconv.Itoa(i), Seq: []byte(s.String())}
	}
	path, err := a.in.Path()
	if err != nil {
		return "", err
	}
	if err := fasta.WriteFile(a.ws.Fs(), path, recs); err != nil {
		return "", fmt.Errorf("write input sequences: %w", err)
	}
	return path, nil
}

func (a *App) readOutput(ctx context.Context) error {
	path, err := a.out.Path()
	if err != nil {
		return err
	}
	recs, err := fasta.ReadFile(ctx, a.ws.Fs(), path)
	if err != nil {
		return fmt.Errorf("read alignment: %w", err)
	}
	if len(recs) != len(a.seqs) {
		return application.ValueErrorf("alignment holds %d sequences, expected %d", len(recs), len(a.seqs))
	}

	order := make([]int, len(recs))
	rows := make([]string, len(recs))
	for k, r := range recs {
		i, err := strconv.Atoi(r.ID)
		if err != nil || i < 0 || i >= len(a.seqs) {
			return application.ValueErrorf("alignment record %q is not an input sequence index", r.ID)
		}
		order[k] = i
		rows[i] = string(r.Seq)
	}
	if err := align.CheckPermutation(order, len(a.seqs)); err != nil {
		return application.ValueErrorf("alignment records: %v", err)
	}
	aln, err := align.FromGapped(a.seqs, rows)
	if err != nil {
		return application.ValueErrorf("alignment: %v", err)
	}
	a.alignment, a.order = aln, order
	a.log.Debug("alignment parsed", "sequences", len(rows), "columns", aln.Width())
	return nil
}

// delegate adapts App to localapp.Delegate without exporting the hooks.
type delegate struct{ a *App }

func (d delegate) Arguments(context.Context) ([]string, error) {
	in, err := d.a.writeInput()
	if err != nil {
		return nil, err
	}
	out, err := d.a.out.Path()
	if err != nil {
		return nil, err
	}
	return d.a.tool.BuildArguments(in, out)
}

func (d delegate) Evaluate(ctx context.Context) error {
	if err := d.a.readOutput(ctx); err != nil {
		return err
	}
	return d.a.tool.EvaluateOutput(ctx)
}

func (d delegate) CleanUp() error { return d.a.ws.Close() }
