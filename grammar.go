package rfcparse

import (
	"sort"
	"strings"
)

// A Grammar is a named set of rules. Rules reference each other by name and
// references are resolved by Resolve, not at definition time, so forward
// references and cross-grammar imports are legal while building.
//
// A resolved Grammar is immutable and safe for concurrent use.
type Grammar struct {
	name     string
	rules    map[string]*Rule
	order    []string
	resolved bool
}

// A Rule is a named production with a body expression.
type Rule struct {
	Name string
	Expr Expression
}

// New creates an empty grammar. The name doubles as the namespace other
// grammars import rules from.
func New(name string) *Grammar {
	return &Grammar{name: name, rules: map[string]*Rule{}}
}

func (g *Grammar) Name() string { return g.name }

// Define registers or replaces a rule. Expressions passed to Define are owned
// by this grammar; reusing one across grammars is undefined.
func (g *Grammar) Define(name string, expr Expression) *Rule {
	rule := &Rule{Name: name, Expr: expr}
	if _, ok := g.rules[name]; !ok {
		g.order = append(g.order, name)
	}
	g.rules[name] = rule
	g.resolved = false
	return rule
}

// Rule returns the named rule, if defined.
func (g *Grammar) Rule(name string) (*Rule, bool) {
	r, ok := g.rules[name]
	return r, ok
}

// Rules returns the defined rule names in definition order.
func (g *Grammar) Rules() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Compose imports rules from another, already resolved, grammar under their
// own names. With no explicit names every non-internal rule is imported.
// Imported rules are plain aliases: their bodies keep resolving against the
// source grammar, so internal helpers of the source need not be imported.
func (g *Grammar) Compose(other *Grammar, names ...string) error {
	if !other.resolved {
		if err := other.Resolve(); err != nil {
			return err
		}
	}
	if len(names) == 0 {
		for _, name := range other.order {
			if !Internal(name) {
				names = append(names, name)
			}
		}
	}
	var missing []string
	for _, name := range names {
		rule, ok := other.rules[name]
		if !ok {
			missing = append(missing, other.name+"."+name)
			continue
		}
		if _, ok := g.rules[name]; !ok {
			g.order = append(g.order, name)
		}
		g.rules[name] = rule
	}
	if len(missing) > 0 {
		return &UnresolvedRuleError{Grammar: g.name, Missing: missing}
	}
	g.resolved = false
	return nil
}

// Resolve validates that every rule reference in every registered rule's body
// has a definition, binding references to their target rules. All missing
// names are collected into a single UnresolvedRuleError.
func (g *Grammar) Resolve() error {
	missing := map[string]bool{}
	for _, name := range g.order {
		rule := g.rules[name]
		walkExpr(rule.Expr, func(e Expression) {
			ref, ok := e.(*refExpr)
			if !ok {
				return
			}
			if ref.target != nil {
				// Alias body already bound by the source grammar.
				return
			}
			target, ok := g.rules[ref.name]
			if !ok {
				missing[ref.name] = true
				return
			}
			ref.target = target
		})
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		return &UnresolvedRuleError{Grammar: g.name, Missing: names}
	}
	g.resolved = true
	return nil
}

// Internal reports whether a rule name denotes an internal helper rule.
// Internal rules structure a grammar but are inlined out of parse trees.
func Internal(name string) bool { return strings.HasPrefix(name, "_") }

func walkExpr(e Expression, fn func(Expression)) {
	fn(e)
	switch e := e.(type) {
	case *seqExpr:
		for _, c := range e.exprs {
			walkExpr(c, fn)
		}
	case *altExpr:
		for _, c := range e.exprs {
			walkExpr(c, fn)
		}
	case *optExpr:
		walkExpr(e.expr, fn)
	case *repExpr:
		walkExpr(e.expr, fn)
	}
}
