// Package rfc exposes one ready-made parser per supported RFC grammar: URIs
// (RFC 3986), cookie dates and Set-Cookie headers (RFC 6265) and domain
// names (RFC 1034 and RFC 822). The grammar sources are embedded and built
// on first use; a built grammar is immutable and shared by all calls.
package rfc

import (
	_ "embed"
	"sync"

	"github.com/rfcparse/rfcparse"
	"github.com/rfcparse/rfcparse/abnf"
)

var (
	//go:embed grammars/core.abnf
	coreSource string
	//go:embed grammars/uri.abnf
	uriSource string
	//go:embed grammars/date.abnf
	dateSource string
	//go:embed grammars/cookie.abnf
	cookieSource string
	//go:embed grammars/domain.abnf
	domainSource string
	//go:embed grammars/domain822.abnf
	domain822Source string
)

var coreGrammar = sync.OnceValue(func() *rfcparse.Grammar {
	return abnf.MustLoad("core", "core.abnf", coreSource, nil)
})

func load(name, filename, source string) func() *rfcparse.Grammar {
	return sync.OnceValue(func() *rfcparse.Grammar {
		imports := map[string]*rfcparse.Grammar{"core": coreGrammar()}
		return abnf.MustLoad(name, filename, source, imports)
	})
}

var (
	uriGrammar       = load("uri", "uri.abnf", uriSource)
	dateGrammar      = load("date", "date.abnf", dateSource)
	cookieGrammar    = load("cookie", "cookie.abnf", cookieSource)
	domainGrammar    = load("domain", "domain.abnf", domainSource)
	domain822Grammar = load("domain822", "domain822.abnf", domain822Source)
)
