package rfc

import (
	"sync"

	"github.com/rfcparse/rfcparse"
)

// maxLabelOctets is the RFC 1034 section 3.1 label bound.
const maxLabelOctets = 63

var domainTransformer = sync.OnceValue(func() *rfcparse.Transformer {
	labels := func(rule string) rfcparse.Action {
		return func(c *rfcparse.Capture) (interface{}, error) {
			out := []string{}
			for _, v := range c.All(rule) {
				out = append(out, v.V.(string))
			}
			return out, nil
		}
	}
	t := rfcparse.NewTransformer()
	t.On("label", func(c *rfcparse.Capture) (interface{}, error) {
		if len(c.Text()) > maxLabelOctets {
			return nil, rfcparse.Semantic(c.Offset(), "label %q exceeds 63 octets", c.Text())
		}
		return c.Text(), nil
	})
	t.On("subdomain", labels("label"))
	t.On("domain", func(c *rfcparse.Capture) (interface{}, error) {
		if sub, ok := c.Child("subdomain"); ok {
			return sub.V, nil
		}
		// The RFC 1034 root domain, written as a single space.
		return []string{}, nil
	})
	return t
})

var domain822Transformer = sync.OnceValue(func() *rfcparse.Transformer {
	t := rfcparse.NewTransformer()
	t.On("domain", func(c *rfcparse.Capture) (interface{}, error) {
		out := []string{}
		for _, v := range c.All("element") {
			out = append(out, v.V.(string))
		}
		return out, nil
	})
	return t
})

var domainParser = sync.OnceValue(func() *rfcparse.Parser[[]string] {
	return rfcparse.MustParser[[]string](domainGrammar(), "domain", rfcparse.Transform(domainTransformer()))
})

var domain822Parser = sync.OnceValue(func() *rfcparse.Parser[[]string] {
	return rfcparse.MustParser[[]string](domain822Grammar(), "domain", rfcparse.Transform(domain822Transformer()))
})

// ParseDomain parses an RFC 1034 domain name into its labels. Labels must
// start with a letter, end with a letter or digit and stay within 63 octets.
// The root domain (a single space) yields no labels.
func ParseDomain(text string) ([]string, error) {
	return domainParser().Parse(text)
}

// ParseDomain822 parses an RFC 822 domain into its dot-separated elements.
func ParseDomain822(text string) ([]string, error) {
	return domain822Parser().Parse(text)
}
