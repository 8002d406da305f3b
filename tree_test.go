package rfcparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// leafSpans concatenates all terminal leaf spans in document order.
func leafSpans(input string, n *Node) string {
	w := &strings.Builder{}
	n.Walk(func(c *Node) bool {
		if c.Terminal() {
			w.WriteString(c.Text(input))
		}
		return true
	})
	return w.String()
}

func labelGrammar(t *testing.T) *Grammar {
	t.Helper()
	g := New("test")
	g.Define("domain", Seq(Ref("label"), Star(Seq(Lit("."), Ref("label")))))
	g.Define("label", Plus(Ref("_ld")))
	g.Define("_ld", Class("a-z0-9"))
	require.NoError(t, g.Resolve())
	return g
}

func TestLeafSpansCoverMatchedInput(t *testing.T) {
	g := labelGrammar(t)
	input := "foo.bar.baz"
	m, err := g.Match("domain", input)
	require.NoError(t, err)
	require.Equal(t, len(input), m.End)
	require.Equal(t, input, leafSpans(input, m.Root))
}

func TestPruneInlinesInternalRules(t *testing.T) {
	g := labelGrammar(t)
	input := "ab.cd"
	m, err := g.Match("domain", input)
	require.NoError(t, err)

	var before []string
	m.Root.Walk(func(n *Node) bool {
		if !n.Terminal() {
			before = append(before, n.Rule)
		}
		return true
	})
	require.Contains(t, before, "_ld")

	pruned := m.Root.Prune()
	var after []string
	pruned.Walk(func(n *Node) bool {
		if !n.Terminal() {
			after = append(after, n.Rule)
		}
		return true
	})
	require.Equal(t, []string{"domain", "label", "label"}, after)

	// Span coverage survives pruning.
	require.Equal(t, input, leafSpans(input, pruned))
}

func TestFind(t *testing.T) {
	g := labelGrammar(t)
	m, err := g.Match("domain", "a.b.c")
	require.NoError(t, err)

	labels := m.Root.Find("label")
	require.Len(t, labels, 3)
	require.Equal(t, "a", labels[0].Text("a.b.c"))
	require.Equal(t, "c", labels[2].Text("a.b.c"))
}
