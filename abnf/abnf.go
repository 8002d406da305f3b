// Package abnf loads rule sets written in the grammar notation this library
// uses for its RFC grammars. The notation is ABNF-like, with ";"-terminated
// rules, "|" alternation, "(...)" grouping, "?", "*", "+" and "{m,n}"
// repetition suffixes, quoted terminals (an "i" suffix marks a literal
// case-insensitive), "[...]" character classes and a cross-grammar import
// directive:
//
//	// RFC 3986 scheme.
//	%import core (ALPHA, DIGIT) ;
//	scheme = ALPHA (ALPHA | DIGIT | [+.-])* ;
//
// The notation itself is parsed with participle; Build converts the AST into
// a resolved rfcparse.Grammar.
package abnf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var def = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "comment", Pattern: `//[^\n]*`},
	{Name: "whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Directive", Pattern: `%[a-z]+`},
	{Name: "Class", Pattern: `\[(?:\\.|[^\\\]])+\]`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"i?`},
	{Name: "Number", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[=|;(){},*+?]`},
})

var parser = participle.MustBuild[File](participle.Lexer(def))

// File is the AST of one grammar source.
type File struct {
	Imports []*Import   `parser:"@@*"`
	Rules   []*RuleDecl `parser:"@@*"`
}

func (f *File) String() string {
	w := &strings.Builder{}
	for _, imp := range f.Imports {
		fmt.Fprintf(w, "%s\n", imp)
	}
	for _, rule := range f.Rules {
		fmt.Fprintf(w, "%s\n", rule)
	}
	return w.String()
}

// Import names rules pulled in from another grammar's namespace. Without an
// explicit name list every non-internal rule of the namespace is imported.
type Import struct {
	Pos       lexer.Position
	Namespace string   `parser:"\"%import\" @Ident"`
	Names     []string `parser:"(\"(\" @Ident (\",\" @Ident)* \")\")? \";\""`
}

func (i *Import) String() string {
	if len(i.Names) == 0 {
		return fmt.Sprintf("%%import %s ;", i.Namespace)
	}
	return fmt.Sprintf("%%import %s (%s) ;", i.Namespace, strings.Join(i.Names, ", "))
}

// RuleDecl is one "name = expression ;" production.
type RuleDecl struct {
	Pos  lexer.Position
	Name string `parser:"@Ident \"=\""`
	Expr *Expr  `parser:"@@ \";\""`
}

func (r *RuleDecl) String() string { return fmt.Sprintf("%s = %s ;", r.Name, r.Expr) }

// Expr is a set of alternatives separated by "|".
type Expr struct {
	Alts []*Seq `parser:"@@ (\"|\" @@)*"`
}

func (e *Expr) String() string {
	parts := make([]string, len(e.Alts))
	for i, alt := range e.Alts {
		parts[i] = alt.String()
	}
	return strings.Join(parts, " | ")
}

// Seq is a sequence of terms.
type Seq struct {
	Terms []*Term `parser:"@@+"`
}

func (s *Seq) String() string {
	parts := make([]string, len(s.Terms))
	for i, term := range s.Terms {
		parts[i] = term.String()
	}
	return strings.Join(parts, " ")
}

// Term is a single matchable item with an optional repetition suffix.
type Term struct {
	Pos     lexer.Position
	Literal *Literal `parser:"( @String"`
	Class   *Class   `parser:"| @Class"`
	Ref     string   `parser:"| @Ident"`
	Group   *Expr    `parser:"| \"(\" @@ \")\" )"`
	Rep     *Rep     `parser:"@@?"`
}

func (t *Term) String() string {
	out := ""
	switch {
	case t.Literal != nil:
		out = t.Literal.String()
	case t.Class != nil:
		out = "[" + t.Class.Spec + "]"
	case t.Group != nil:
		out = "(" + t.Group.String() + ")"
	default:
		out = t.Ref
	}
	if t.Rep != nil {
		out += t.Rep.String()
	}
	return out
}

// Literal is a quoted terminal, case-insensitive when suffixed with "i".
type Literal struct {
	Value string
	Fold  bool
}

// Capture strips the optional fold suffix and unquotes the literal.
func (l *Literal) Capture(values []string) error {
	s := values[0]
	if strings.HasSuffix(s, "i") {
		l.Fold = true
		s = s[:len(s)-1]
	}
	value, err := strconv.Unquote(s)
	if err != nil {
		return fmt.Errorf("literal %s: %w", s, err)
	}
	l.Value = value
	return nil
}

func (l *Literal) String() string {
	out := strconv.Quote(l.Value)
	if l.Fold {
		out += "i"
	}
	return out
}

// Class is a character class, stored as the raw spec between the brackets.
type Class struct {
	Spec string
}

func (c *Class) Capture(values []string) error {
	s := values[0]
	c.Spec = s[1 : len(s)-1]
	return nil
}

// Rep is a repetition suffix.
type Rep struct {
	Star   bool    `parser:"  @\"*\""`
	Plus   bool    `parser:"| @\"+\""`
	Opt    bool    `parser:"| @\"?\""`
	Bounds *Bounds `parser:"| @@"`
}

func (r *Rep) String() string {
	switch {
	case r.Star:
		return "*"
	case r.Plus:
		return "+"
	case r.Opt:
		return "?"
	default:
		return r.Bounds.String()
	}
}

// Bounds is a {m}, {m,} or {m,n} repetition count.
type Bounds struct {
	Min   int  `parser:"\"{\" @Number"`
	Comma bool `parser:"@\",\"?"`
	Max   *int `parser:"@Number? \"}\""`
}

func (b *Bounds) String() string {
	switch {
	case b.Max != nil:
		return fmt.Sprintf("{%d,%d}", b.Min, *b.Max)
	case b.Comma:
		return fmt.Sprintf("{%d,}", b.Min)
	default:
		return fmt.Sprintf("{%d}", b.Min)
	}
}

// Parse parses grammar notation into its AST. The filename is used in error
// positions only.
func Parse(filename, source string) (*File, error) {
	return parser.ParseString(filename, source)
}
