package abnf

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/rfcparse/rfcparse"
)

// Build converts a parsed grammar file into a resolved grammar named name.
// Import directives are looked up in imports, keyed by namespace; every
// referenced namespace must already be built and resolved.
func Build(name string, file *File, imports map[string]*rfcparse.Grammar) (*rfcparse.Grammar, error) {
	g := rfcparse.New(name)
	for _, imp := range file.Imports {
		src, ok := imports[imp.Namespace]
		if !ok {
			return nil, fmt.Errorf("%s: unknown import namespace %q", imp.Pos, imp.Namespace)
		}
		if err := g.Compose(src, imp.Names...); err != nil {
			return nil, fmt.Errorf("%s: %w", imp.Pos, err)
		}
	}
	for _, decl := range file.Rules {
		expr, err := buildExpr(decl.Expr)
		if err != nil {
			return nil, fmt.Errorf("%s: rule %q: %w", decl.Pos, decl.Name, err)
		}
		g.Define(decl.Name, expr)
	}
	if err := g.Resolve(); err != nil {
		return nil, err
	}
	return g, nil
}

// Load parses and builds in one step.
func Load(name, filename, source string, imports map[string]*rfcparse.Grammar) (*rfcparse.Grammar, error) {
	file, err := Parse(filename, source)
	if err != nil {
		return nil, err
	}
	return Build(name, file, imports)
}

// MustLoad is Load, panicking on error. Intended for grammars embedded in
// the binary, where a failure is a programming error.
func MustLoad(name, filename, source string, imports map[string]*rfcparse.Grammar) *rfcparse.Grammar {
	g, err := Load(name, filename, source, imports)
	if err != nil {
		panic(err)
	}
	return g
}

func buildExpr(e *Expr) (rfcparse.Expression, error) {
	alts := make([]rfcparse.Expression, 0, len(e.Alts))
	for _, alt := range e.Alts {
		seq, err := buildSeq(alt)
		if err != nil {
			return nil, err
		}
		alts = append(alts, seq)
	}
	return rfcparse.Alt(alts...), nil
}

func buildSeq(s *Seq) (rfcparse.Expression, error) {
	terms := make([]rfcparse.Expression, 0, len(s.Terms))
	for _, term := range s.Terms {
		expr, err := buildTerm(term)
		if err != nil {
			return nil, err
		}
		terms = append(terms, expr)
	}
	return rfcparse.Seq(terms...), nil
}

func buildTerm(t *Term) (rfcparse.Expression, error) {
	var expr rfcparse.Expression
	switch {
	case t.Literal != nil:
		if t.Literal.Fold {
			expr = rfcparse.Fold(t.Literal.Value)
		} else {
			expr = rfcparse.Lit(t.Literal.Value)
		}
	case t.Class != nil:
		var err error
		expr, err = rfcparse.ParseClass(t.Class.Spec)
		if err != nil {
			return nil, posError(t.Pos, err)
		}
	case t.Group != nil:
		var err error
		expr, err = buildExpr(t.Group)
		if err != nil {
			return nil, err
		}
	default:
		expr = rfcparse.Ref(t.Ref)
	}
	if t.Rep == nil {
		return expr, nil
	}
	switch rep := t.Rep; {
	case rep.Star:
		return rfcparse.Star(expr), nil
	case rep.Plus:
		return rfcparse.Plus(expr), nil
	case rep.Opt:
		return rfcparse.Opt(expr), nil
	case rep.Bounds.Max != nil:
		if *rep.Bounds.Max < rep.Bounds.Min {
			return nil, posError(t.Pos, fmt.Errorf("repetition %s: max below min", rep.Bounds))
		}
		return rfcparse.Rep(expr, rep.Bounds.Min, *rep.Bounds.Max), nil
	case rep.Bounds.Comma:
		return rfcparse.Rep(expr, rep.Bounds.Min, -1), nil
	default:
		return rfcparse.Rep(expr, rep.Bounds.Min, rep.Bounds.Min), nil
	}
}

func posError(pos lexer.Position, err error) error {
	return fmt.Errorf("%s: %w", pos, err)
}
