package rfcparse

import (
	"fmt"
	"sort"
	"strings"
)

// Error is implemented by all positional errors produced by this package.
type Error interface {
	error
	// Unadorned message.
	Message() string
	// Position the error occurred at.
	Position() Position
}

// Position of a byte offset within an input string.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// PositionAt computes the line/column position of a byte offset in input.
func PositionAt(input string, offset int) Position {
	if offset > len(input) {
		offset = len(input)
	}
	pos := Position{Offset: offset, Line: 1, Column: 1}
	for _, c := range []byte(input[:offset]) {
		if c == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}

func formatError(pos Position, message string) string {
	return fmt.Sprintf("%s: %s", pos, message)
}

// UnresolvedRuleError is reported by Grammar.Resolve when rule references do
// not correspond to any definition. It carries all missing names, not just
// the first, so a grammar can be fixed in one pass.
type UnresolvedRuleError struct {
	Grammar string
	Missing []string
}

func (u *UnresolvedRuleError) Error() string {
	return formatError(u.Position(), u.Message())
}

func (u *UnresolvedRuleError) Message() string {
	return fmt.Sprintf("grammar %q: unresolved rule references: %s", u.Grammar, strings.Join(u.Missing, ", "))
}

func (u *UnresolvedRuleError) Position() Position { return Position{Line: 1, Column: 1} }

// RecursionError is reported when a rule is invoked twice at the same input
// offset without consuming anything in between, or when the rule invocation
// stack exceeds the configured depth limit.
type RecursionError struct {
	Rule string
	Pos  Position
	// Depth is non-zero when the error was triggered by the depth limit
	// rather than by left recursion.
	Depth int
}

func (r *RecursionError) Error() string { return formatError(r.Pos, r.Message()) }

func (r *RecursionError) Message() string {
	if r.Depth > 0 {
		return fmt.Sprintf("rule %q: exceeded maximum rule nesting depth (%d)", r.Rule, r.Depth)
	}
	return fmt.Sprintf("rule %q: infinite recursion (invoked twice at the same offset)", r.Rule)
}

func (r *RecursionError) Position() Position { return r.Pos }

// ParseError is a syntax failure: the input did not match the grammar. It
// reports the deepest offset reached across the whole attempt and the union
// of terminals expected there. Input retains the original text for context.
type ParseError struct {
	Input    string
	Pos      Position
	Expected []string
}

func (p *ParseError) Error() string { return formatError(p.Pos, p.Message()) }

func (p *ParseError) Message() string {
	found := "end of input"
	if p.Pos.Offset < len(p.Input) {
		found = fmt.Sprintf("%q", p.Input[p.Pos.Offset:p.Pos.Offset+1])
	}
	if len(p.Expected) == 0 {
		return fmt.Sprintf("unexpected %s", found)
	}
	expected := make([]string, len(p.Expected))
	copy(expected, p.Expected)
	sort.Strings(expected)
	return fmt.Sprintf("unexpected %s (expected %s)", found, strings.Join(expected, " or "))
}

func (p *ParseError) Position() Position { return p.Pos }

// SemanticError is raised by transformers when input is syntactically valid
// but violates a domain constraint, e.g. a port outside 0-65535. It is
// distinct from ParseError so callers can tell malformed syntax from a
// well-formed but invalid value.
type SemanticError struct {
	Pos Position
	Msg string
}

// Semantic creates a SemanticError at the given input offset. Line and
// column are filled in when the error crosses the transformer boundary.
func Semantic(offset int, format string, args ...interface{}) *SemanticError {
	return &SemanticError{Pos: Position{Offset: offset}, Msg: fmt.Sprintf(format, args...)}
}

func (s *SemanticError) Error() string { return formatError(s.Pos, s.Message()) }

func (s *SemanticError) Message() string { return s.Msg }

func (s *SemanticError) Position() Position { return s.Pos }
