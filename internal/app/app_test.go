package app

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"msalign/core/distmat"
	"msalign/core/newick"
	"msalign/internal/clustalo/clustalotest"
	"msalign/pkg/api"
)

const minerals = ">biqtite\nBIQTITE\n>titanite\nTITANITE\n>bismite\nBISMITE\n>iqlite\nIQLITE\n"

type harness struct {
	fs   afero.Fs
	fake *clustalotest.Fake
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/minerals.fa", []byte(minerals), 0o644))
	return &harness{fs: fs, fake: clustalotest.New(fs)}
}

func (h *harness) run(ctx context.Context, args ...string) (int, string, string) {
	var out, errb bytes.Buffer
	code := RunWith(ctx, args, &out, &errb, Deps{Fs: h.fs, Runner: h.fake})
	return code, out.String(), errb.String()
}

func (h *harness) flagValue(flag string) string {
	args := h.fake.LastArgs()
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func TestAlignFASTAInInputOrder(t *testing.T) {
	h := newHarness(t)
	code, out, errOut := h.run(context.Background(), "align", "-i", "/data/minerals.fa")
	require.Equal(t, ExitOK, code, errOut)
	assert.Equal(t, ">biqtite\n-BIQTITE\n>titanite\nTITANITE\n>bismite\n-BISMITE\n>iqlite\n--IQLITE\n", out)
	assert.Equal(t, "Protein", h.flagValue("--seqtype"))
}

func TestAlignTextInTreeOrder(t *testing.T) {
	h := newHarness(t)
	code, out, errOut := h.run(context.Background(), "align", "-i", "/data/minerals.fa", "-f", "text", "--order", "tree")
	require.Equal(t, ExitOK, code, errOut)
	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 3)
	assert.Equal(t, "titanite    TITANITE", lines[2])
	assert.Equal(t, "biqtite     -BIQTITE", lines[3])
}

func TestAlignFullWritesTreeAndMatrix(t *testing.T) {
	h := newHarness(t)
	code, out, errOut := h.run(context.Background(),
		"align", "-i", "/data/minerals.fa", "-f", "json",
		"--distmat-out", "/out/minerals.mat", "--guidetree-out", "/out/minerals.dnd")
	require.Equal(t, ExitOK, code, errOut)
	assert.Contains(t, errOut, "--distmat-out implies --full")
	assert.Contains(t, h.fake.LastArgs(), "--full")

	var doc api.AlignmentV1
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []int{1, 0, 2, 3}, doc.Order)
	assert.Len(t, doc.DistanceMatrix, 4)
	assert.NotEmpty(t, doc.GuideTree)

	m, err := distmat.ReadFile(h.fs, "/out/minerals.mat")
	require.NoError(t, err)
	r, _ := m.Dims()
	assert.Equal(t, 4, r)

	raw, err := afero.ReadFile(h.fs, "/out/minerals.dnd")
	require.NoError(t, err)
	tree, err := newick.Parse(string(raw))
	require.NoError(t, err)
	assert.Equal(t, doc.Order, tree.Leaves())
}

func TestAlignSuppliedGuideTree(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, afero.WriteFile(h.fs, "/data/in.dnd", []byte("(\n(3,2),\n(0,1));\n"), 0o644))
	code, out, errOut := h.run(context.Background(),
		"align", "-i", "/data/minerals.fa", "--guidetree-in", "/data/in.dnd", "--order", "tree", "-f", "yaml")
	require.Equal(t, ExitOK, code, errOut)
	assert.NotEmpty(t, h.flagValue("--guidetree-in"))
	assert.Empty(t, h.flagValue("--guidetree-out"))

	var doc api.AlignmentV1
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []int{3, 2, 0, 1}, doc.Order)
	assert.Equal(t, "iqlite", doc.Sequences[0].Name)
}

func TestAlignGuideTreeLeafMismatch(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, afero.WriteFile(h.fs, "/data/in.dnd", []byte("(0,1);"), 0o644))
	code, _, errOut := h.run(context.Background(), "align", "-i", "/data/minerals.fa", "--guidetree-in", "/data/in.dnd")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, errOut, "2 leaves")
	assert.Empty(t, h.fake.Calls())
}

func TestAlignSuppliedDistanceMatrix(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, afero.WriteFile(h.fs, "/data/in.mat",
		[]byte("4\n0 0 1 1 1\n1 1 0 1 1\n2 1 1 0 1\n3 1 1 1 0\n"), 0o644))
	code, _, errOut := h.run(context.Background(), "align", "-i", "/data/minerals.fa", "--distmat-in", "/data/in.mat")
	require.Equal(t, ExitOK, code, errOut)
	assert.NotEmpty(t, h.flagValue("--distmat-in"))
}

func TestAlignToFile(t *testing.T) {
	h := newHarness(t)
	code, out, errOut := h.run(context.Background(), "align", "-i", "/data/minerals.fa", "-o", "/out/aln.fa", "--wrap", "4")
	require.Equal(t, ExitOK, code, errOut)
	assert.Empty(t, out)
	raw, err := afero.ReadFile(h.fs, "/out/aln.fa")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), ">biqtite\n-BIQ\nTITE\n"))
}

func TestThreadsFromEnvironment(t *testing.T) {
	h := newHarness(t)
	t.Setenv("MSALIGN_THREADS", "6")
	code, _, errOut := h.run(context.Background(), "align", "-i", "/data/minerals.fa")
	require.Equal(t, ExitOK, code, errOut)
	assert.Equal(t, "6", h.flagValue("--threads"))
}

func TestFlagBeatsEnvironment(t *testing.T) {
	h := newHarness(t)
	t.Setenv("MSALIGN_OUTPUT_FORMAT", "yaml")
	code, out, errOut := h.run(context.Background(), "align", "-i", "/data/minerals.fa", "-f", "fasta")
	require.Equal(t, ExitOK, code, errOut)
	assert.True(t, strings.HasPrefix(out, ">biqtite"))
}

func TestUsageErrors(t *testing.T) {
	cases := map[string][]string{
		"missing input":  {"align"},
		"unknown flag":   {"align", "-i", "/data/minerals.fa", "--bogus"},
		"unknown cmd":    {"realign"},
		"bad format":     {"align", "-i", "/data/minerals.fa", "-f", "xml"},
		"bad seqtype":    {"align", "-i", "/data/minerals.fa", "--seqtype", "dna"},
		"missing file":   {"align", "-i", "/data/nope.fa"},
		"tree conflict":  {"align", "-i", "/data/minerals.fa", "--guidetree-in", "a", "--guidetree-out", "b"},
		"negative jobs":  {"batch", "-j", "0", "/data/minerals.fa"},
		"no batch input": {"batch"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			code, _, errOut := h.run(context.Background(), args...)
			assert.Equal(t, ExitUsage, code, errOut)
			assert.Contains(t, errOut, "msalign: ")
		})
	}
}

func TestProcessFailure(t *testing.T) {
	h := newHarness(t)
	h.fake.Fail = "segmentation fault"
	code, _, errOut := h.run(context.Background(), "align", "-i", "/data/minerals.fa")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, errOut, "exited with code 1")
	assert.Contains(t, errOut, "segmentation fault")
}

func TestInterrupted(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code, _, errOut := h.run(ctx, "align", "-i", "/data/minerals.fa")
	assert.Equal(t, ExitInterrupted, code)
	assert.Contains(t, errOut, "interrupted")
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	code, out, _ := h.run(context.Background(), "version")
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "msalign version dev\n", out)

	code, out, _ = h.run(context.Background(), "--version")
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "msalign version dev\n", out)
}

func TestHelpWithoutArgs(t *testing.T) {
	h := newHarness(t)
	code, out, _ := h.run(context.Background())
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Available Commands")
}

func (h *harness) writeInputs(t *testing.T, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, afero.WriteFile(h.fs, "/batch/"+n, []byte(minerals), 0o644))
	}
}

func TestBatchToStdoutSorted(t *testing.T) {
	h := newHarness(t)
	h.writeInputs(t, "c.fa", "a.fa", "b.fa")
	code, out, errOut := h.run(context.Background(), "batch", "-j", "3", "-f", "jsonl", "--sort", "/batch/*.fa")
	require.Equal(t, ExitOK, code, errOut)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	var sources []string
	for _, l := range lines {
		var doc api.AlignmentV1
		require.NoError(t, json.Unmarshal([]byte(l), &doc))
		sources = append(sources, doc.Source)
	}
	assert.Equal(t, []string{"/batch/a.fa", "/batch/b.fa", "/batch/c.fa"}, sources)
	assert.Len(t, h.fake.Calls(), 3)
}

func TestBatchOutDir(t *testing.T) {
	h := newHarness(t)
	h.writeInputs(t, "one.fasta", "two.fa")
	code, out, errOut := h.run(context.Background(), "batch", "-f", "text", "--out-dir", "/aligned", "/batch/one.fasta", "/batch/two.fa")
	require.Equal(t, ExitOK, code, errOut)
	assert.Empty(t, out)
	for _, p := range []string{"/aligned/one.aln", "/aligned/two.aln"} {
		raw, err := afero.ReadFile(h.fs, p)
		require.NoError(t, err, p)
		assert.Contains(t, string(raw), "CLUSTAL O")
	}
}

func TestBatchStopsOnFailure(t *testing.T) {
	h := newHarness(t)
	h.writeInputs(t, "a.fa")
	code, _, errOut := h.run(context.Background(), "batch", "/batch/a.fa", "/batch/missing.fa")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, errOut, "missing.fa")
}

func TestResultName(t *testing.T) {
	assert.Equal(t, "globins.aln.fa", resultName("/x/globins.fasta.gz", "fasta"))
	assert.Equal(t, "globins.json", resultName("globins.fa", "json"))
	assert.Equal(t, "reads.txt.yaml", resultName("reads.txt", "yaml"))
}
