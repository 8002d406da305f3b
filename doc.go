// Package rfcparse matches text against ABNF-style grammars and transforms
// the resulting parse trees into validated, typed values.
//
// A Grammar maps rule names to body expressions (terminals, rule references,
// sequences, ordered-choice alternations, optionals and bounded repetitions)
// built either in code with the constructors in this package or loaded from
// grammar text by package abnf. Matching is recursive descent with PEG
// semantics: alternation commits to the first matching branch, repetition is
// greedy but backs off within its enclosing sequence, and whitespace is
// never skipped implicitly. Terminal matching is case-sensitive unless a
// literal is explicitly marked case-insensitive.
//
// A successful match yields a tree of Nodes covering the matched input
// exactly. A Transformer walks the tree bottom-up, converting spans into
// typed values and enforcing constraints the grammar cannot express; the
// Parser facade combines the two, requiring the whole input to match:
//
//	g := rfcparse.New("greeting")
//	g.Define("greeting", rfcparse.Seq(rfcparse.Fold("hello"), rfcparse.Lit(" "), rfcparse.Ref("name")))
//	g.Define("name", rfcparse.Plus(rfcparse.Class("a-zA-Z")))
//	parser := rfcparse.MustParser[string](g, "greeting",
//		rfcparse.Transform(rfcparse.NewTransformer().On("greeting", func(c *rfcparse.Capture) (interface{}, error) {
//			name, _ := c.Child("name")
//			return name.V, nil
//		})))
//	who, err := parser.Parse("Hello world")
//
// Package rfc provides ready-made parsers for the RFC grammars this library
// ships: URIs (RFC 3986), cookie dates and Set-Cookie headers (RFC 6265) and
// domain names (RFC 1034, RFC 822).
//
// Errors are positional and split into three classes: configuration errors
// (UnresolvedRuleError, RecursionError) for broken grammars, ParseError for
// input that does not match, and SemanticError for input that matches but
// violates a domain constraint.
package rfcparse
