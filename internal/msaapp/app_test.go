package msaapp

import (
	"context"
	"strconv"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msalign/core/fasta"
	"msalign/core/seq"
	"msalign/internal/application"
	"msalign/internal/localapp"
)

type stubTool struct {
	evaluated bool
}

func (s *stubTool) BuildArguments(in, out string) ([]string, error) {
	return []string{"-i", in, "-o", out}, nil
}

func (s *stubTool) EvaluateOutput(context.Context) error {
	s.evaluated = true
	return nil
}

// reversingAligner reads the input FASTA and writes it back in reverse
// order, padding every row with leading gaps to a common width.
func reversingAligner(fs afero.Fs, mangle func([]fasta.Record) []fasta.Record) localapp.Runner {
	return localapp.RunnerFunc(func(ctx context.Context, c localapp.Command) error {
		recs, err := fasta.ReadFile(ctx, fs, c.Args[1])
		if err != nil {
			return err
		}
		width := 0
		for _, r := range recs {
			width = max(width, len(r.Seq))
		}
		out := make([]fasta.Record, 0, len(recs))
		for i := len(recs) - 1; i >= 0; i-- {
			r := recs[i]
			pad := make([]byte, width-len(r.Seq))
			for j := range pad {
				pad[j] = '-'
			}
			out = append(out, fasta.Record{ID: r.ID, Seq: append(pad, r.Seq...)})
		}
		if mangle != nil {
			out = mangle(out)
		}
		return fasta.WriteFile(fs, c.Args[3], out)
	})
}

func sequences(t *testing.T, raw ...string) []seq.Sequence {
	t.Helper()
	out := make([]seq.Sequence, len(raw))
	for i, r := range raw {
		p, err := seq.NewProtein(r)
		require.NoError(t, err)
		out[i] = p
	}
	return out
}

func TestRunParsesAlignmentAndOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	tool := &stubTool{}
	app, err := New(sequences(t, "ACDE", "AC", "ACD"), "aligner", tool,
		WithFs(fs), WithRunner(reversingAligner(fs, nil)))
	require.NoError(t, err)

	require.NoError(t, app.Run(context.Background()))
	assert.True(t, tool.evaluated)

	aln, err := app.Alignment()
	require.NoError(t, err)
	assert.Equal(t, []string{"ACDE", "--AC", "-ACD"}, aln.Gapped())

	order, err := app.Order()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0}, order)

	ordered, err := app.OrderedAlignment()
	require.NoError(t, err)
	assert.Equal(t, []string{"-ACD", "--AC", "ACDE"}, ordered.Gapped())

	dir := app.Workspace().Dir()
	ok, _ := afero.DirExists(fs, dir)
	assert.False(t, ok, "workspace removed after join")
}

func TestInputRecordsAreIndexed(t *testing.T) {
	fs := afero.NewMemMapFs()
	var ids []string
	runner := localapp.RunnerFunc(func(ctx context.Context, c localapp.Command) error {
		recs, err := fasta.ReadFile(ctx, fs, c.Args[1])
		if err != nil {
			return err
		}
		for _, r := range recs {
			ids = append(ids, r.ID)
		}
		return fasta.WriteFile(fs, c.Args[3], recs)
	})
	app, err := New(sequences(t, "AC", "AC", "AC"), "aligner", &stubTool{}, WithFs(fs), WithRunner(runner))
	require.NoError(t, err)
	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, []string{"0", "1", "2"}, ids)
}

func TestGettersRequireJoined(t *testing.T) {
	app, err := New(sequences(t, "AC"), "aligner", &stubTool{}, WithFs(afero.NewMemMapFs()))
	require.NoError(t, err)

	_, err = app.Alignment()
	assert.ErrorIs(t, err, application.ErrState)
	_, err = app.Order()
	assert.ErrorIs(t, err, application.ErrState)
	_, err = app.OrderedAlignment()
	assert.ErrorIs(t, err, application.ErrState)
}

func TestEmptyInput(t *testing.T) {
	_, err := New(nil, "aligner", &stubTool{})
	assert.ErrorIs(t, err, application.ErrValue)
}

func TestBadOutputIDs(t *testing.T) {
	for name, mangle := range map[string]func([]fasta.Record) []fasta.Record{
		"foreign id": func(r []fasta.Record) []fasta.Record { r[0].ID = "seqA"; return r },
		"duplicate":  func(r []fasta.Record) []fasta.Record { r[0].ID = r[1].ID; return r },
		"missing":    func(r []fasta.Record) []fasta.Record { return r[1:] },
		"range":      func(r []fasta.Record) []fasta.Record { r[0].ID = strconv.Itoa(len(r)); return r },
	} {
		fs := afero.NewMemMapFs()
		app, err := New(sequences(t, "AC", "ACD"), "aligner", &stubTool{},
			WithFs(fs), WithRunner(reversingAligner(fs, mangle)))
		require.NoError(t, err)
		err = app.Run(context.Background())
		assert.ErrorIs(t, err, application.ErrValue, name)
		assert.Equal(t, application.Finished, app.State(), name)
	}
}

func TestBinaryOption(t *testing.T) {
	app, err := New(sequences(t, "AC"), "aligner", &stubTool{}, WithBinary("/opt/bin/aligner2"))
	require.NoError(t, err)
	assert.Equal(t, "/opt/bin/aligner2", app.Binary())

	app, err = New(sequences(t, "AC"), "aligner", &stubTool{}, WithBinary(""))
	require.NoError(t, err)
	assert.Equal(t, "aligner", app.Binary())
}
