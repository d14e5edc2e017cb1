package newick

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimple(t *testing.T) {
	tr, err := Parse("((0:0.1,1:0.2):0.05,(2:0.3,3:0.25):0.15);")
	require.NoError(t, err)
	assert.Equal(t, 4, tr.Len())
	assert.Equal(t, []int{0, 1, 2, 3}, tr.Leaves())
}

func TestParseMultiLineToolOutput(t *testing.T) {
	// guide trees as written by the aligner, one token per line
	raw := "(\n(\n1:0.2\n,\n3:0.3)\n:0.1,\n(\n0:0.1\n,\n2:0.2)\n:0.1);\n"
	tr, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 0, 2}, tr.Leaves())
}

func TestParseIgnoresInternalLabels(t *testing.T) {
	tr, err := Parse("((0,1)95:0.5,2);")
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Len())
	assert.InDelta(t, 0.5, tr.Root.Children[0].Length, 1e-12)
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"(0,1)",
		"(0,1);x",
		"(a,b);",
		"(0,0);",
		"(0,1:xyz);",
		"(0,,1);",
		"(0,1;",
	} {
		_, err := Parse(in)
		assert.Error(t, err, "Parse(%q)", in)
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, in := range []string{
		"((0:0.1,1:0.2):0.05,(2:0.3,3:0.25):0.15);",
		"(0,1,2);",
		"((2:1,0:1e-05):0.5,1:2.25);",
	} {
		tr, err := Parse(in)
		require.NoError(t, err, in)
		again, err := Parse(tr.String())
		require.NoError(t, err)
		assert.Equal(t, tr.String(), again.String())
		assert.Equal(t, tr.Leaves(), again.Leaves())
	}
}

func TestStringIsSingleLine(t *testing.T) {
	root := Internal(
		Internal(Leaf(0).WithLength(0.1), Leaf(1).WithLength(0.2)).WithLength(0.05),
		Leaf(2).WithLength(0.3),
	)
	tr, err := New(root)
	require.NoError(t, err)
	assert.Equal(t, "((0:0.1,1:0.2):0.05,2:0.3);", tr.String())
	assert.NotContains(t, tr.String(), "\n")
}

func TestNewRejectsInvalid(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(Internal(Leaf(0), Leaf(0)))
	assert.Error(t, err)

	_, err = New(Internal(Leaf(0), Internal()))
	assert.Error(t, err)
}
