package rfcparse

import "io"

// Match is a successful application of a grammar to a prefix of the input.
// End is the offset one past the last matched byte; callers that require the
// whole input to be consumed must check End themselves (the Parser facade
// does).
type Match struct {
	Root *Node
	End  int
}

// Match applies the grammar from the start rule to input. The grammar must
// have been resolved. On failure the returned error is a *ParseError with
// the deepest offset reached and the terminals expected there, or a
// configuration error (*UnresolvedRuleError, *RecursionError) if the grammar
// itself is broken.
func (g *Grammar) Match(start, input string) (*Match, error) {
	result, _, err := g.match(start, input, defaultOptions())
	return result, err
}

func (g *Grammar) match(start, input string, opts *parserOptions) (result *Match, m *matcher, err error) {
	if !g.resolved {
		if rerr := g.Resolve(); rerr != nil {
			return nil, nil, rerr
		}
	}
	rule, ok := g.rules[start]
	if !ok {
		return nil, nil, &UnresolvedRuleError{Grammar: g.name, Missing: []string{start}}
	}
	m = &matcher{
		g:        g,
		input:    input,
		maxDepth: opts.maxDepth,
		trace:    opts.trace,
		failPos:  -1,
	}
	defer m.recover(&err)
	end, nodes, matched := m.invoke(start, rule, 0)
	if !matched {
		return nil, m, m.parseError()
	}
	return &Match{Root: nodes[0], End: end}, m, nil
}

type frame struct {
	rule *Rule
	pos  int
}

type matcher struct {
	g        *Grammar
	input    string
	maxDepth int
	trace    io.Writer
	stack    []frame

	failPos  int
	expected []string
	seen     map[string]bool
}

// fail records a terminal expectation. Only the deepest offset reached across
// the whole attempt is kept; expectations at that offset accumulate as a set.
func (m *matcher) fail(pos int, desc string) {
	if pos < m.failPos {
		return
	}
	if pos > m.failPos {
		m.failPos = pos
		m.expected = m.expected[:0]
		m.seen = nil
	}
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	if !m.seen[desc] {
		m.seen[desc] = true
		m.expected = append(m.expected, desc)
	}
}

func (m *matcher) parseError() *ParseError {
	offset := m.failPos
	if offset < 0 {
		offset = 0
	}
	expected := make([]string, len(m.expected))
	copy(expected, m.expected)
	return &ParseError{
		Input:    m.input,
		Pos:      PositionAt(m.input, offset),
		Expected: expected,
	}
}

// invoke applies a rule at pos, producing a single tagged node on success.
// A rule invoked twice at the same offset within the same call stack cannot
// terminate, so it aborts the whole attempt.
func (m *matcher) invoke(name string, rule *Rule, pos int) (int, []*Node, bool) {
	for _, f := range m.stack {
		if f.rule == rule && f.pos == pos {
			m.abort(&RecursionError{Rule: name, Pos: PositionAt(m.input, pos)})
		}
	}
	if len(m.stack) >= m.maxDepth {
		m.abort(&RecursionError{Rule: name, Pos: PositionAt(m.input, pos), Depth: m.maxDepth})
	}
	m.stack = append(m.stack, frame{rule, pos})
	m.traceEnter(name, pos)
	end, children, ok := rule.Expr.match(m, pos)
	m.stack = m.stack[:len(m.stack)-1]
	m.traceExit(name, pos, end, ok)
	if !ok {
		return 0, nil, false
	}
	return end, []*Node{{Rule: name, Start: pos, End: end, Children: children, rule: rule}}, true
}

// matchSeq matches elements in order. Repetitions that are direct elements
// greedily consume as much as possible, then back off one repetition at a
// time down to their minimum when the remainder of the sequence fails.
func (m *matcher) matchSeq(exprs []Expression, pos int) (int, []*Node, bool) {
	var rec func(i, p int, acc []*Node) (int, []*Node, bool)
	rec = func(i, p int, acc []*Node) (int, []*Node, bool) {
		if i == len(exprs) {
			return p, acc, true
		}
		if rep, ok := exprs[i].(*repExpr); ok {
			ends, nodes := m.repeat(rep, p)
			for n := len(ends) - 1; n >= rep.min; n-- {
				next := make([]*Node, 0, len(acc)+len(nodes[n]))
				next = append(next, acc...)
				next = append(next, nodes[n]...)
				if end, out, ok := rec(i+1, ends[n], next); ok {
					return end, out, true
				}
			}
			return 0, nil, false
		}
		end, nodes, ok := exprs[i].match(m, p)
		if !ok {
			return 0, nil, false
		}
		next := make([]*Node, 0, len(acc)+len(nodes))
		next = append(next, acc...)
		next = append(next, nodes...)
		return rec(i+1, end, next)
	}
	return rec(0, pos, nil)
}

// repeat matches rep.expr greedily from pos. ends[n] is the offset after n
// repetitions and nodes[n] the accumulated nodes; len(ends)-1 is the greedy
// count, capped at rep.max. A zero-width repetition terminates the loop.
func (m *matcher) repeat(rep *repExpr, pos int) (ends []int, nodes [][]*Node) {
	ends = []int{pos}
	nodes = [][]*Node{nil}
	cur := pos
	var acc []*Node
	for rep.max < 0 || len(ends)-1 < rep.max {
		end, ns, ok := rep.expr.match(m, cur)
		if !ok || end == cur {
			break
		}
		acc = append(acc[:len(acc):len(acc)], ns...)
		ends = append(ends, end)
		nodes = append(nodes, acc)
		cur = end
	}
	return ends, nodes
}

type matchAbort struct{ err error }

// abort unwinds the whole attempt with a configuration error.
func (m *matcher) abort(err error) {
	panic(matchAbort{err})
}

func (m *matcher) recover(err *error) {
	if msg := recover(); msg != nil {
		if abort, ok := msg.(matchAbort); ok {
			*err = abort.err
			return
		}
		panic(msg)
	}
}
