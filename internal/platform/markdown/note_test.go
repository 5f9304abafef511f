package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWithoutFrontmatter(t *testing.T) {
	n, err := Parse("# Title\n\nbody\n")
	require.NoError(t, err)
	assert.Empty(t, n.Meta)
	assert.Equal(t, "# Title\n\nbody\n", n.Body)
}

func TestParseRoundTripsMeta(t *testing.T) {
	n, err := Parse("---\nlever: sleep_hours\nrating: better\n---\n# Review\n")
	require.NoError(t, err)
	assert.Equal(t, "sleep_hours", n.Meta["lever"])
	assert.Equal(t, "# Review\n", n.Body)

	out, err := n.Render()
	require.NoError(t, err)
	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, n, again)
}

func TestParseEdgeFences(t *testing.T) {
	n, err := Parse("---\n---\nbody")
	require.NoError(t, err)
	assert.Equal(t, "body", n.Body)

	n, err = Parse("---\r\nk: v\r\n---")
	require.NoError(t, err)
	assert.Equal(t, "v", n.Meta["k"])
	assert.Empty(t, n.Body)

	_, err = Parse("---\nk: v\nbody without fence\n")
	assert.Error(t, err)
}

func TestSetBlockKeepsSurroundingText(t *testing.T) {
	n := Note{Body: "# Evening walk\n\nmy own notes\n"}
	n.SetBlock("review", "first pass")
	assert.Equal(t, "# Evening walk\n\nmy own notes\n\n<!-- leverlab:review:start -->\nfirst pass\n<!-- leverlab:review:end -->\n", n.Body)

	n.Body += "\nadded later\n"
	n.SetBlock("review", "second pass\n")
	got, ok := n.Block("review")
	require.True(t, ok)
	assert.Equal(t, "second pass", got)
	assert.Contains(t, n.Body, "my own notes")
	assert.Contains(t, n.Body, "added later")
	assert.NotContains(t, n.Body, "first pass")
}

func TestSetBlockOnEmptyBody(t *testing.T) {
	n := Note{}
	n.SetBlock("review", "x")
	assert.Equal(t, "<!-- leverlab:review:start -->\nx\n<!-- leverlab:review:end -->\n", n.Body)
	_, ok := n.Block("other")
	assert.False(t, ok)
}
