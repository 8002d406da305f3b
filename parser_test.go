package rfcparse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConsumesWholeInput(t *testing.T) {
	g := labelGrammar(t)
	parser := MustParser[string](g, "domain")

	v, err := parser.Parse("aa.bb")
	require.NoError(t, err)
	require.Equal(t, "aa.bb", v)

	// A valid prefix with trailing garbage is a failure, not a partial
	// success.
	_, err = parser.Parse("aa.bb!")
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	require.Equal(t, 5, perr.Position().Offset)
	require.Contains(t, perr.Expected, "end of input")
}

func TestTrailingErrorKeepsDeeperExpectations(t *testing.T) {
	g := labelGrammar(t)
	parser := MustParser[string](g, "domain")

	// "aa." matches "aa" and then fails the continuation one byte past the
	// matched prefix, so the error reports what the continuation wanted.
	_, err := parser.Parse("aa.")
	require.Error(t, err)
	perr := err.(*ParseError)
	require.Equal(t, 3, perr.Position().Offset)
	require.Contains(t, perr.Expected, "[a-z0-9]")
}

func TestParseFrom(t *testing.T) {
	g := New("test")
	g.Define("word", Plus(Class("a-z")))
	g.Define("number", Plus(Class("0-9")))
	parser := MustParser[string](g, "word")

	v, err := parser.ParseFrom("number", "42")
	require.NoError(t, err)
	require.Equal(t, "42", v)

	_, err = parser.ParseFrom("number", "abc")
	require.Error(t, err)
}

func TestMatches(t *testing.T) {
	g := labelGrammar(t)
	parser := MustParser[string](g, "domain")

	require.True(t, parser.Matches("domain", "aa.bb"))
	require.False(t, parser.Matches("domain", "aa.bb!"))
	require.False(t, parser.Matches("domain", ""))
	require.True(t, parser.Matches("label", "aa"))
}

func TestKeepInternal(t *testing.T) {
	g := labelGrammar(t)
	internal := 0
	trans := NewTransformer().
		On("_ld", func(c *Capture) (interface{}, error) {
			internal++
			return c.Text(), nil
		}).
		On("domain", func(c *Capture) (interface{}, error) {
			return c.Text(), nil
		})

	// Internal rules are pruned before transformation by default, so their
	// actions never fire.
	parser := MustParser[string](g, "domain", Transform(trans))
	_, err := parser.Parse("aa.bb")
	require.NoError(t, err)
	require.Equal(t, 0, internal)

	keeping := MustParser[string](g, "domain", Transform(trans), KeepInternal())
	_, err = keeping.Parse("aa.bb")
	require.NoError(t, err)
	require.Equal(t, 4, internal)
}

func TestTransformerTypeMismatch(t *testing.T) {
	g := labelGrammar(t)
	parser := MustParser[int](g, "domain")

	// Default action yields the span text, which is not an int.
	_, err := parser.Parse("aa")
	require.Error(t, err)
	require.Contains(t, err.Error(), "want int")
}

func TestMustParserPanicsOnUnresolved(t *testing.T) {
	g := New("broken")
	g.Define("top", Ref("missing"))
	require.Panics(t, func() {
		MustParser[string](g, "top")
	})
}
