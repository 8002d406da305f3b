package rfc

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rfcparse/rfcparse"
)

// URI is the typed result of parsing an RFC 3986 URI. Exactly one of IP and
// Host is set: IP for dotted-quad hosts, Host for registered names, split
// into labels. Zero values mean the component was absent (the grammars here
// never produce a port of 0 or an empty fragment distinct from no fragment).
type URI struct {
	Scheme   string
	Userinfo string
	IP       string
	Host     []string
	Port     int
	Path     string
	Query    map[string]string
	Fragment string
}

// Hostname returns the IP or the joined host labels.
func (u *URI) Hostname() string {
	if u.IP != "" {
		return u.IP
	}
	return strings.Join(u.Host, ".")
}

// String serializes the URI canonically: lower-cased scheme and host, query
// keys sorted and minimally percent-encoded. Parsing the result yields a URI
// equal to the receiver.
func (u *URI) String() string {
	w := &strings.Builder{}
	w.WriteString(u.Scheme)
	w.WriteString("://")
	if u.Userinfo != "" {
		w.WriteString(u.Userinfo)
		w.WriteByte('@')
	}
	w.WriteString(u.Hostname())
	if u.Port != 0 {
		w.WriteByte(':')
		w.WriteString(strconv.Itoa(u.Port))
	}
	w.WriteString(u.Path)
	if len(u.Query) > 0 {
		keys := make([]string, 0, len(u.Query))
		for k := range u.Query {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i == 0 {
				w.WriteByte('?')
			} else {
				w.WriteByte('&')
			}
			w.WriteString(encodeQuery(k))
			if v := u.Query[k]; v != "" {
				w.WriteByte('=')
				w.WriteString(encodeQuery(v))
			}
		}
	}
	if u.Fragment != "" {
		w.WriteByte('#')
		w.WriteString(u.Fragment)
	}
	return w.String()
}

// Equal reports whether two URIs have identical components.
func (u *URI) Equal(o *URI) bool {
	if u.Scheme != o.Scheme || u.Userinfo != o.Userinfo || u.IP != o.IP ||
		u.Port != o.Port || u.Path != o.Path || u.Fragment != o.Fragment {
		return false
	}
	if strings.Join(u.Host, ".") != strings.Join(o.Host, ".") {
		return false
	}
	if len(u.Query) != len(o.Query) {
		return false
	}
	for k, v := range u.Query {
		if ov, ok := o.Query[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// WithPath returns a copy with the path replaced. A non-empty path gains a
// leading slash if it lacks one.
func (u *URI) WithPath(path string) *URI {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	out := *u
	out.Path = path
	return &out
}

// ResolveReference rebases the URI with a network-path ("//host/...") or
// absolute-path ("/...") reference, returning the new URI. The scheme is
// always kept; a reference with an authority replaces authority, path,
// query and fragment, an absolute-path reference replaces path, query and
// fragment only.
func (u *URI) ResolveReference(ref string) (*URI, error) {
	rel, err := relParser().Parse(ref)
	if err != nil {
		return nil, err
	}
	out := *u
	if rel.hasAuthority {
		out.Userinfo = rel.uri.Userinfo
		out.IP = rel.uri.IP
		out.Host = rel.uri.Host
		out.Port = rel.uri.Port
	}
	if rel.uri.Path != "" || rel.hasAuthority {
		out.Path = rel.uri.Path
		out.Query = rel.uri.Query
		out.Fragment = rel.uri.Fragment
	} else {
		if rel.hasQuery {
			out.Query = rel.uri.Query
		}
		out.Fragment = rel.uri.Fragment
	}
	return &out, nil
}

// ParseURI parses an absolute RFC 3986 URI with an authority. It fails with
// a *rfcparse.ParseError on malformed syntax and a *rfcparse.SemanticError
// for well-formed input with invalid values (port out of range, IPv4 octet
// over 255, IPv6 literals, which are unsupported).
func ParseURI(text string) (*URI, error) {
	return uriParser().Parse(text)
}

type hostValue struct {
	ip     string
	labels []string
}

type relRef struct {
	uri          URI
	hasAuthority bool
	hasQuery     bool
}

var uriTransformer = sync.OnceValue(func() *rfcparse.Transformer {
	ipv4 := rfcparse.MustParser[any](uriGrammar(), "ipv4_address")
	t := rfcparse.NewTransformer()
	t.On("scheme", func(c *rfcparse.Capture) (interface{}, error) {
		return strings.ToLower(c.Text()), nil
	})
	t.On("host", func(c *rfcparse.Capture) (interface{}, error) {
		if _, ok := c.Child("ip_literal"); ok {
			return nil, rfcparse.Semantic(c.Offset(), "IPv6 addresses are not supported")
		}
		name := strings.ToLower(c.Text())
		if ipv4.Matches("ipv4_address", name) {
			for _, octet := range strings.Split(name, ".") {
				if n, _ := strconv.Atoi(octet); n > 255 {
					return nil, rfcparse.Semantic(c.Offset(), "IPv4 octet %q exceeds 255", octet)
				}
			}
			return hostValue{ip: name}, nil
		}
		return hostValue{labels: strings.Split(name, ".")}, nil
	})
	t.On("port", func(c *rfcparse.Capture) (interface{}, error) {
		if c.Text() == "" {
			return 0, nil
		}
		port, err := strconv.Atoi(c.Text())
		if err != nil || port > 65535 {
			return nil, rfcparse.Semantic(c.Offset(), "port %q out of range 0-65535", c.Text())
		}
		return port, nil
	})
	t.On("path_abempty", func(c *rfcparse.Capture) (interface{}, error) {
		return c.Text(), nil
	})
	t.On("qkey", decodeAction)
	t.On("qvalue", decodeAction)
	t.On("qpair", func(c *rfcparse.Capture) (interface{}, error) {
		key, _ := c.Child("qkey")
		pair := [2]string{key.V.(string), ""}
		if value, ok := c.Child("qvalue"); ok {
			pair[1] = value.V.(string)
		}
		return pair, nil
	})
	t.On("query", func(c *rfcparse.Capture) (interface{}, error) {
		query := map[string]string{}
		for _, pair := range c.All("qpair") {
			kv := pair.V.([2]string)
			if kv[0] == "" && kv[1] == "" {
				continue
			}
			query[kv[0]] = kv[1]
		}
		return query, nil
	})
	t.On("uri", func(c *rfcparse.Capture) (interface{}, error) {
		uri, err := assembleURI(c)
		if err != nil {
			return nil, err
		}
		scheme, _ := c.Child("scheme")
		uri.Scheme = scheme.V.(string)
		return uri, nil
	})
	t.On("relative_ref", func(c *rfcparse.Capture) (interface{}, error) {
		uri, err := assembleURI(c)
		if err != nil {
			return nil, err
		}
		_, hasAuthority := c.Child("host")
		_, hasQuery := c.Child("query")
		return &relRef{uri: *uri, hasAuthority: hasAuthority, hasQuery: hasQuery}, nil
	})
	return t
})

// assembleURI collects the authority, path, query and fragment values common
// to the uri and relative_ref start rules.
func assembleURI(c *rfcparse.Capture) (*URI, error) {
	uri := &URI{Query: map[string]string{}}
	if userinfo, ok := c.Child("userinfo"); ok {
		uri.Userinfo = userinfo.V.(string)
	}
	if host, ok := c.Child("host"); ok {
		hv := host.V.(hostValue)
		uri.IP = hv.ip
		uri.Host = hv.labels
	}
	if port, ok := c.Child("port"); ok {
		uri.Port = port.V.(int)
	}
	if path, ok := c.Child("path_abempty"); ok {
		uri.Path = path.V.(string)
	}
	if query, ok := c.Child("query"); ok {
		uri.Query = query.V.(map[string]string)
	}
	if fragment, ok := c.Child("fragment"); ok {
		uri.Fragment = fragment.V.(string)
	}
	return uri, nil
}

var uriParser = sync.OnceValue(func() *rfcparse.Parser[*URI] {
	return rfcparse.MustParser[*URI](uriGrammar(), "uri", rfcparse.Transform(uriTransformer()))
})

var relParser = sync.OnceValue(func() *rfcparse.Parser[*relRef] {
	return rfcparse.MustParser[*relRef](uriGrammar(), "relative_ref", rfcparse.Transform(uriTransformer()))
})

func decodeAction(c *rfcparse.Capture) (interface{}, error) {
	decoded, err := decodePercent(c.Text())
	if err != nil {
		return nil, rfcparse.Semantic(c.Offset(), "%s", err)
	}
	return decoded, nil
}

// decodePercent resolves %XX escapes. The grammars only admit well-formed
// escapes, but the helper validates anyway for direct callers.
func decodePercent(s string) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}
	w := &strings.Builder{}
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			w.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", &invalidEscapeError{s[i:]}
		}
		hi, ok1 := unhex(s[i+1])
		lo, ok2 := unhex(s[i+2])
		if !ok1 || !ok2 {
			return "", &invalidEscapeError{s[i : i+3]}
		}
		w.WriteByte(hi<<4 | lo)
		i += 2
	}
	return w.String(), nil
}

type invalidEscapeError struct{ seq string }

func (e *invalidEscapeError) Error() string {
	return "invalid percent-encoding sequence " + strconv.Quote(e.seq)
}

func unhex(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

const upperhex = "0123456789ABCDEF"

// encodeQuery re-escapes only what the query grammar cannot carry raw.
func encodeQuery(s string) string {
	if strings.IndexFunc(s, needsEscape) < 0 {
		return s
	}
	w := &strings.Builder{}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if needsEscape(rune(b)) {
			w.WriteByte('%')
			w.WriteByte(upperhex[b>>4])
			w.WriteByte(upperhex[b&15])
		} else {
			w.WriteByte(b)
		}
	}
	return w.String()
}

func needsEscape(r rune) bool {
	if r > 0x7e {
		return true
	}
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case strings.ContainsRune("._~-!$'()*+,;:@/?", r):
		return false
	}
	return true
}
