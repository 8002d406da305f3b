package rfcparse

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is a node in a rule body: a terminal, a rule reference, or a
// combinator over other expressions. Expressions are built with the
// constructors in this file or loaded from grammar text by package abnf.
type Expression interface {
	fmt.Stringer
	// match attempts the expression at pos, returning the end offset and
	// the parse nodes produced.
	match(m *matcher, pos int) (int, []*Node, bool)
}

// Lit matches a literal string byte for byte.
func Lit(text string) Expression {
	return &litExpr{text: text, desc: strconv.Quote(text)}
}

// Fold matches a literal string ASCII case-insensitively. Needed for
// HTTP-date month and weekday names and cookie date tokens.
func Fold(text string) Expression {
	return &litExpr{text: text, fold: true, desc: strconv.Quote(text) + "i"}
}

// Ref references the named rule, resolved by Grammar.Resolve.
func Ref(name string) Expression { return &refExpr{name: name} }

// Seq matches its sub-expressions in order, each starting where the previous
// ended. Greedy repetitions directly inside a sequence back off down to their
// minimum when a later element cannot otherwise match.
func Seq(exprs ...Expression) Expression {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return &seqExpr{exprs: exprs}
}

// Alt is an ordered choice: branches are tried in declaration order and the
// first branch that matches is committed to.
func Alt(exprs ...Expression) Expression {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return &altExpr{exprs: exprs}
}

// Opt attempts its inner expression, falling back to a zero-width match.
func Opt(expr Expression) Expression { return &optExpr{expr: expr} }

// Rep matches between min and max repetitions of expr, greedily. A max < 0
// means unbounded.
func Rep(expr Expression, min, max int) Expression {
	return &repExpr{expr: expr, min: min, max: max}
}

// Star is Rep(expr, 0, -1).
func Star(expr Expression) Expression { return Rep(expr, 0, -1) }

// Plus is Rep(expr, 1, -1).
func Plus(expr Expression) Expression { return Rep(expr, 1, -1) }

type litExpr struct {
	text string
	fold bool
	desc string
}

func (l *litExpr) String() string { return l.desc }

func (l *litExpr) match(m *matcher, pos int) (int, []*Node, bool) {
	end := pos + len(l.text)
	if end > len(m.input) {
		m.fail(pos, l.desc)
		return 0, nil, false
	}
	span := m.input[pos:end]
	if l.fold {
		if !strings.EqualFold(span, l.text) {
			m.fail(pos, l.desc)
			return 0, nil, false
		}
	} else if span != l.text {
		m.fail(pos, l.desc)
		return 0, nil, false
	}
	return end, []*Node{{Start: pos, End: end}}, true
}

type charRange struct{ lo, hi byte }

type classExpr struct {
	ranges []charRange
	desc   string
}

func (c *classExpr) String() string { return c.desc }

func (c *classExpr) match(m *matcher, pos int) (int, []*Node, bool) {
	if pos < len(m.input) {
		b := m.input[pos]
		for _, r := range c.ranges {
			if b >= r.lo && b <= r.hi {
				return pos + 1, []*Node{{Start: pos, End: pos + 1}}, true
			}
		}
	}
	m.fail(pos, c.desc)
	return 0, nil, false
}

// ParseClass builds a character class from a range/singleton spec such as
// "a-zA-Z0-9._~-". A "-" is literal first, last, or escaped. Classes are
// byte-wise: grammars in this package match octets, as ABNF does.
func ParseClass(spec string) (Expression, error) {
	var ranges []charRange
	chars := []byte(spec)
	next := func() (byte, bool, error) {
		if len(chars) == 0 {
			return 0, false, nil
		}
		b := chars[0]
		chars = chars[1:]
		if b != '\\' {
			return b, true, nil
		}
		if len(chars) == 0 {
			return 0, false, fmt.Errorf("character class %q: trailing backslash", spec)
		}
		e := chars[0]
		chars = chars[1:]
		switch e {
		case 't':
			return '\t', true, nil
		case 'n':
			return '\n', true, nil
		case 'r':
			return '\r', true, nil
		case '\\', ']', '[', '-':
			return e, true, nil
		}
		return 0, false, fmt.Errorf("character class %q: unknown escape %q", spec, "\\"+string(e))
	}
	for {
		lo, ok, err := next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		// A dash forms a range unless it is the last character.
		if len(chars) >= 2 && chars[0] == '-' {
			chars = chars[1:]
			hi, ok, err := next()
			if err != nil {
				return nil, err
			}
			if !ok || hi < lo {
				return nil, fmt.Errorf("character class %q: invalid range", spec)
			}
			ranges = append(ranges, charRange{lo, hi})
			continue
		}
		ranges = append(ranges, charRange{lo, lo})
	}
	if len(ranges) == 0 {
		return nil, fmt.Errorf("character class %q: empty", spec)
	}
	return &classExpr{ranges: ranges, desc: "[" + spec + "]"}, nil
}

// Class is like ParseClass but panics on a malformed spec. Use it for
// grammars built in code, where the spec is a compile-time constant.
func Class(spec string) Expression {
	expr, err := ParseClass(spec)
	if err != nil {
		panic(err)
	}
	return expr
}

type refExpr struct {
	name   string
	target *Rule
}

func (r *refExpr) String() string { return r.name }

func (r *refExpr) match(m *matcher, pos int) (int, []*Node, bool) {
	if r.target == nil {
		m.abort(&UnresolvedRuleError{Grammar: m.g.name, Missing: []string{r.name}})
	}
	return m.invoke(r.name, r.target, pos)
}

type seqExpr struct {
	exprs []Expression
}

func (s *seqExpr) String() string {
	parts := make([]string, len(s.exprs))
	for i, e := range s.exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

func (s *seqExpr) match(m *matcher, pos int) (int, []*Node, bool) {
	return m.matchSeq(s.exprs, pos)
}

type altExpr struct {
	exprs []Expression
}

func (a *altExpr) String() string {
	parts := make([]string, len(a.exprs))
	for i, e := range a.exprs {
		parts[i] = "(" + e.String() + ")"
	}
	return strings.Join(parts, " | ")
}

func (a *altExpr) match(m *matcher, pos int) (int, []*Node, bool) {
	for _, e := range a.exprs {
		if end, nodes, ok := e.match(m, pos); ok {
			return end, nodes, true
		}
	}
	return 0, nil, false
}

type optExpr struct {
	expr Expression
}

func (o *optExpr) String() string { return "(" + o.expr.String() + ")?" }

func (o *optExpr) match(m *matcher, pos int) (int, []*Node, bool) {
	if end, nodes, ok := o.expr.match(m, pos); ok {
		return end, nodes, true
	}
	return pos, nil, true
}

type repExpr struct {
	expr     Expression
	min, max int
}

func (r *repExpr) String() string {
	switch {
	case r.min == 0 && r.max < 0:
		return "(" + r.expr.String() + ")*"
	case r.min == 1 && r.max < 0:
		return "(" + r.expr.String() + ")+"
	case r.max < 0:
		return fmt.Sprintf("(%s){%d,}", r.expr, r.min)
	case r.min == r.max:
		return fmt.Sprintf("(%s){%d}", r.expr, r.min)
	default:
		return fmt.Sprintf("(%s){%d,%d}", r.expr, r.min, r.max)
	}
}

// Standalone repetition matches greedily with no give-back; give-back only
// happens when the repetition is a direct element of a sequence.
func (r *repExpr) match(m *matcher, pos int) (int, []*Node, bool) {
	ends, nodes := m.repeat(r, pos)
	if len(ends)-1 < r.min {
		return 0, nil, false
	}
	n := len(ends) - 1
	return ends[n], nodes[n], true
}
