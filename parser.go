package rfcparse

import "fmt"

// A Parser wires a resolved grammar, a start rule and a transformer into a
// single parse(text) operation producing a T. A built Parser is immutable
// and safe for concurrent use.
type Parser[T any] struct {
	g       *Grammar
	start   string
	opts    *parserOptions
	actions map[*Rule]Action
}

// NewParser builds a parser for the grammar's start rule. The grammar is
// resolved if it has not been already; configuration errors surface here,
// never at parse time.
func NewParser[T any](g *Grammar, start string, options ...Option) (*Parser[T], error) {
	opts := defaultOptions()
	for _, option := range options {
		if err := option(opts); err != nil {
			return nil, err
		}
	}
	if !g.resolved {
		if err := g.Resolve(); err != nil {
			return nil, err
		}
	}
	if _, ok := g.rules[start]; !ok {
		return nil, &UnresolvedRuleError{Grammar: g.name, Missing: []string{start}}
	}
	p := &Parser[T]{g: g, start: start, opts: opts}
	if opts.transformer != nil {
		p.actions = opts.transformer.bind(g)
	}
	return p, nil
}

// MustParser calls NewParser and panics on error.
func MustParser[T any](g *Grammar, start string, options ...Option) *Parser[T] {
	p, err := NewParser[T](g, start, options...)
	if err != nil {
		panic(err)
	}
	return p
}

// Grammar returns the parser's grammar.
func (p *Parser[T]) Grammar() *Grammar { return p.g }

// Parse matches text from the start rule, requiring the whole input to be
// consumed, then prunes internal rules and applies the transformer. All
// failures are positional errors: *ParseError for syntax, *SemanticError for
// domain constraint violations.
func (p *Parser[T]) Parse(text string) (T, error) {
	return p.ParseFrom(p.start, text)
}

// ParseFrom is Parse from an alternative start rule. Grammars serving
// several entry points (the cookie date grammar classifies tokens by
// re-parsing them as time, day, month or year) share one Parser this way.
func (p *Parser[T]) ParseFrom(start, text string) (T, error) {
	var zero T
	result, m, err := p.g.match(start, text, p.opts)
	if err != nil {
		return zero, err
	}
	if result.End < len(text) {
		return zero, trailingError(m, result.End)
	}
	root := result.Root
	if !p.opts.keepInternal {
		root = root.Prune()
	}
	value, err := applyActions(p.actions, text, root)
	if err != nil {
		return zero, err
	}
	out, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("rule %q: transformer produced %T, want %T", start, value, zero)
	}
	return out, nil
}

// Matches reports whether text matches in full, without transforming. It is
// the cheap membership test transformers use to classify sub-spans.
func (p *Parser[T]) Matches(start, text string) bool {
	result, _, err := p.g.match(start, text, p.opts)
	return err == nil && result.End == len(text)
}

// trailingError reports unconsumed input. When a failed continuation got
// deeper than the matched prefix, its expectations pinpoint the failure
// better than "end of input" alone.
func trailingError(m *matcher, end int) *ParseError {
	err := m.parseError()
	if m.failPos < end {
		err.Pos = PositionAt(m.input, end)
		err.Expected = nil
	}
	err.Expected = append(err.Expected, "end of input")
	return err
}
