package rfcparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlternationOrderMatters(t *testing.T) {
	g := New("test")
	g.Define("rule", Alt(Lit("a"), Lit("ab")))
	require.NoError(t, g.Resolve())

	m, err := g.Match("rule", "ab")
	require.NoError(t, err)
	// First-match-wins: "a" is committed to even though "ab" is longer.
	require.Equal(t, 1, m.End)
}

func TestSequence(t *testing.T) {
	g := New("test")
	g.Define("rule", Seq(Lit("foo"), Lit("bar")))
	require.NoError(t, g.Resolve())

	m, err := g.Match("rule", "foobar")
	require.NoError(t, err)
	require.Equal(t, 6, m.End)

	_, err = g.Match("rule", "fooqux")
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	require.Equal(t, 3, perr.Pos.Offset)
	require.Equal(t, []string{`"bar"`}, perr.Expected)
}

func TestOptionalFallsBackToZeroWidth(t *testing.T) {
	g := New("test")
	g.Define("rule", Seq(Opt(Lit("a")), Lit("b")))
	require.NoError(t, g.Resolve())

	m, err := g.Match("rule", "b")
	require.NoError(t, err)
	require.Equal(t, 1, m.End)

	m, err = g.Match("rule", "ab")
	require.NoError(t, err)
	require.Equal(t, 2, m.End)
}

func TestRepetitionBounds(t *testing.T) {
	g := New("test")
	g.Define("rule", Rep(Lit("a"), 2, 3))
	require.NoError(t, g.Resolve())

	_, err := g.Match("rule", "a")
	require.Error(t, err)

	m, err := g.Match("rule", "aa")
	require.NoError(t, err)
	require.Equal(t, 2, m.End)

	// Greedy, but capped at max; the fourth "a" is simply not consumed.
	m, err = g.Match("rule", "aaaa")
	require.NoError(t, err)
	require.Equal(t, 3, m.End)
}

func TestRepetitionGivesBackWithinSequence(t *testing.T) {
	// An RFC 1034 label body: letters/digits/hyphens that must end with a
	// letter or digit. The greedy run has to back off one character.
	g := New("test")
	g.Define("rule", Seq(Star(Class("a-z0-9-")), Class("a-z0-9")))
	require.NoError(t, g.Resolve())

	m, err := g.Match("rule", "a1-b2")
	require.NoError(t, err)
	require.Equal(t, 5, m.End)

	m, err = g.Match("rule", "ab-")
	require.NoError(t, err)
	require.Equal(t, 2, m.End)
}

func TestAlternationIsACommitPoint(t *testing.T) {
	// Once "aa" is chosen, a later sibling failure must not reopen the
	// choice and try "a".
	g := New("test")
	g.Define("rule", Seq(Alt(Lit("aa"), Lit("a")), Lit("ab")))
	require.NoError(t, g.Resolve())

	_, err := g.Match("rule", "aab")
	require.Error(t, err)
}

func TestDeepestFailureWins(t *testing.T) {
	g := New("test")
	g.Define("rule", Alt(
		Seq(Lit("ab"), Lit("x")),
		Lit("a"),
	))
	require.NoError(t, g.Resolve())

	m, err := g.Match("rule", "abz")
	// The second alternative matches "a", but the parse error for a full
	// attempt of the first one reached offset 2.
	require.NoError(t, err)
	require.Equal(t, 1, m.End)

	g2 := New("test")
	g2.Define("rule", Alt(
		Seq(Lit("ab"), Lit("x")),
		Seq(Lit("ab"), Lit("y")),
	))
	require.NoError(t, g2.Resolve())
	_, err = g2.Match("rule", "abz")
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	require.Equal(t, 2, perr.Pos.Offset)
	require.Equal(t, []string{`"x"`, `"y"`}, perr.Expected)
}

func TestCaseInsensitiveLiteral(t *testing.T) {
	g := New("test")
	g.Define("rule", Fold("gmt"))
	require.NoError(t, g.Resolve())

	for _, input := range []string{"GMT", "gmt", "Gmt"} {
		m, err := g.Match("rule", input)
		require.NoError(t, err, input)
		require.Equal(t, 3, m.End)
	}

	g2 := New("test")
	g2.Define("rule", Lit("gmt"))
	require.NoError(t, g2.Resolve())
	_, err := g2.Match("rule", "GMT")
	require.Error(t, err)
}

func TestCharClass(t *testing.T) {
	g := New("test")
	g.Define("rule", Plus(Class("a-zA-Z0-9._~-")))
	require.NoError(t, g.Resolve())

	m, err := g.Match("rule", "Ab9._~-")
	require.NoError(t, err)
	require.Equal(t, 7, m.End)

	_, err = g.Match("rule", "!")
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	require.Equal(t, []string{"[a-zA-Z0-9._~-]"}, perr.Expected)
}

func TestParseClassErrors(t *testing.T) {
	for _, spec := range []string{"", `\`, `\q`, "z-a"} {
		_, err := ParseClass(spec)
		require.Error(t, err, spec)
	}
}

func TestRecursionGuard(t *testing.T) {
	// Left recursion: subdomain invokes itself at the same offset.
	g := New("test")
	g.Define("subdomain", Alt(
		Seq(Ref("subdomain"), Lit("."), Ref("label")),
		Ref("label"),
	))
	g.Define("label", Plus(Class("a-z")))
	require.NoError(t, g.Resolve())

	_, err := g.Match("subdomain", "a.b")
	require.Error(t, err)
	rerr, ok := err.(*RecursionError)
	require.True(t, ok)
	require.Equal(t, "subdomain", rerr.Rule)
}

func TestMaxDepth(t *testing.T) {
	g := New("test")
	g.Define("nested", Alt(
		Seq(Lit("("), Ref("nested"), Lit(")")),
		Lit("x"),
	))
	parser := MustParser[string](g, "nested", MaxDepth(8))

	_, err := parser.Parse("((x))")
	require.NoError(t, err)

	_, err = parser.Parse(strings.Repeat("(", 20) + "x" + strings.Repeat(")", 20))
	require.Error(t, err)
	rerr, ok := err.(*RecursionError)
	require.True(t, ok)
	require.Equal(t, 8, rerr.Depth)
}

func TestUnresolvedRuleErrorListsAllMissing(t *testing.T) {
	g := New("test")
	g.Define("a", Seq(Ref("missing1"), Ref("b")))
	g.Define("b", Ref("missing2"))

	err := g.Resolve()
	require.Error(t, err)
	uerr, ok := err.(*UnresolvedRuleError)
	require.True(t, ok)
	require.Equal(t, []string{"missing1", "missing2"}, uerr.Missing)

	// Resolution failures surface before any input is parsed.
	_, err = g.Match("a", "anything")
	require.Error(t, err)
	_, ok = err.(*UnresolvedRuleError)
	require.True(t, ok)
}

func TestCompose(t *testing.T) {
	core := New("core")
	core.Define("DIGIT", Class("0-9"))
	core.Define("ALPHA", Class("a-zA-Z"))
	core.Define("_internal", Lit("x"))
	require.NoError(t, core.Resolve())

	g := New("test")
	require.NoError(t, g.Compose(core))
	g.Define("rule", Seq(Ref("ALPHA"), Plus(Ref("DIGIT"))))
	require.NoError(t, g.Resolve())

	m, err := g.Match("rule", "a42")
	require.NoError(t, err)
	require.Equal(t, 3, m.End)

	// Internal rules are not imported by a bare Compose.
	_, ok := g.Rule("_internal")
	require.False(t, ok)

	// Selective import of a missing name reports the namespaced rule.
	g2 := New("test2")
	err = g2.Compose(core, "DIGIT", "NOPE")
	require.Error(t, err)
	uerr, ok := err.(*UnresolvedRuleError)
	require.True(t, ok)
	require.Equal(t, []string{"core.NOPE"}, uerr.Missing)
}

func TestMatchUnknownStartRule(t *testing.T) {
	g := New("test")
	g.Define("rule", Lit("a"))
	require.NoError(t, g.Resolve())

	_, err := g.Match("nope", "a")
	require.Error(t, err)
	_, ok := err.(*UnresolvedRuleError)
	require.True(t, ok)
}

func TestTrace(t *testing.T) {
	g := New("test")
	g.Define("rule", Seq(Ref("inner"), Lit("b")))
	g.Define("inner", Lit("a"))
	w := &strings.Builder{}
	parser := MustParser[string](g, "rule", Trace(w))

	_, err := parser.Parse("ab")
	require.NoError(t, err)
	require.Contains(t, w.String(), "rule @ 0")
	require.Contains(t, w.String(), "inner @ 0")
}

func TestPositionAt(t *testing.T) {
	pos := PositionAt("ab\ncd", 4)
	require.Equal(t, Position{Offset: 4, Line: 2, Column: 2}, pos)
	require.Equal(t, "2:2", pos.String())
}
