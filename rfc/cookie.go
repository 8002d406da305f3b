package rfc

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rfcparse/rfcparse"
)

// SetCookie is the literal content of a Set-Cookie header: the cookie pair
// plus the attributes present, undigested. Cookie applies the RFC 6265
// storage-model rules to a SetCookie in the context of a request URI.
type SetCookie struct {
	Name       string
	Value      string
	Expires    *CookieDate
	MaxAge     *int
	Domain     string
	Path       string
	Secure     bool
	HttpOnly   bool
	Extensions map[string]string
}

// Cookie is a stored cookie per the RFC 6265 section 5.3 storage model.
type Cookie struct {
	Name       string
	Value      string
	Domain     string
	Path       string
	Persistent bool
	HostOnly   bool
	Secure     bool
	HttpOnly   bool
	ExpiryTime time.Time
	Created    time.Time
}

// sessionExpiry stands in for "no expiry": session cookies outlive any
// realistic clock.
var sessionExpiry = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

type avPair struct {
	name  string
	value interface{}
}

var cookieTransformer = sync.OnceValue(func() *rfcparse.Transformer {
	t := rfcparse.NewTransformer()
	t.On("cookie_value", func(c *rfcparse.Capture) (interface{}, error) {
		return strings.Trim(c.Text(), `"`), nil
	})
	t.On("cookie_pair", func(c *rfcparse.Capture) (interface{}, error) {
		name, _ := c.Child("cookie_name")
		value, _ := c.Child("cookie_value")
		return [2]string{name.V.(string), value.V.(string)}, nil
	})
	t.On("expires_av", func(c *rfcparse.Capture) (interface{}, error) {
		value, _ := c.Child("av_value")
		date, err := ParseCookieDate(value.V.(string))
		if err != nil {
			return nil, err
		}
		return avPair{"Expires", date}, nil
	})
	t.On("max_age_av", func(c *rfcparse.Capture) (interface{}, error) {
		age, _ := c.Child("max_age")
		seconds, err := strconv.Atoi(age.V.(string))
		if err != nil {
			return nil, err
		}
		return avPair{"Max-Age", seconds}, nil
	})
	t.On("domain_av", func(c *rfcparse.Capture) (interface{}, error) {
		value, _ := c.Child("domain_value")
		domain := strings.ToLower(strings.TrimPrefix(value.V.(string), "."))
		if domain != "" {
			if _, err := ParseDomain(domain); err != nil {
				return nil, rfcparse.Semantic(value.Start, "invalid cookie domain %q", domain)
			}
		}
		return avPair{"Domain", domain}, nil
	})
	t.On("path_av", func(c *rfcparse.Capture) (interface{}, error) {
		value, _ := c.Child("av_value")
		return avPair{"Path", value.V.(string)}, nil
	})
	t.On("secure_av", func(c *rfcparse.Capture) (interface{}, error) {
		return avPair{"Secure", true}, nil
	})
	t.On("httponly_av", func(c *rfcparse.Capture) (interface{}, error) {
		return avPair{"HttpOnly", true}, nil
	})
	t.On("extension_av", func(c *rfcparse.Capture) (interface{}, error) {
		name, value := c.Text(), ""
		if i := strings.IndexByte(name, '='); i >= 0 {
			name, value = name[:i], name[i+1:]
		}
		return avPair{name, value}, nil
	})
	t.On("cookie_av", func(c *rfcparse.Capture) (interface{}, error) {
		return c.Children()[0].V, nil
	})
	t.On("set_cookie", func(c *rfcparse.Capture) (interface{}, error) {
		pair, _ := c.Child("cookie_pair")
		kv := pair.V.([2]string)
		sc := &SetCookie{
			Name:       kv[0],
			Value:      kv[1],
			Extensions: map[string]string{},
		}
		for _, av := range c.All("cookie_av") {
			pair := av.V.(avPair)
			switch pair.name {
			case "Expires":
				date := pair.value.(*CookieDate)
				sc.Expires = date
			case "Max-Age":
				seconds := pair.value.(int)
				sc.MaxAge = &seconds
			case "Domain":
				sc.Domain = pair.value.(string)
			case "Path":
				sc.Path = pair.value.(string)
			case "Secure":
				sc.Secure = true
			case "HttpOnly":
				sc.HttpOnly = true
			case "":
				// Empty extension between separators; nothing to keep.
			default:
				sc.Extensions[pair.name] = pair.value.(string)
			}
		}
		return sc, nil
	})
	return t
})

var setCookieParser = sync.OnceValue(func() *rfcparse.Parser[*SetCookie] {
	return rfcparse.MustParser[*SetCookie](cookieGrammar(), "set_cookie", rfcparse.Transform(cookieTransformer()))
})

// ParseSetCookieHeader parses a Set-Cookie header into its literal parts
// without applying the storage model.
func ParseSetCookieHeader(header string) (*SetCookie, error) {
	return setCookieParser().Parse(strings.TrimSpace(header))
}

// ParseSetCookie parses a Set-Cookie header received for the given request
// URI and applies the RFC 6265 section 5.3 storage model: expiry precedence
// of Max-Age over Expires, domain matching against the request host, and the
// default path. A Domain attribute that does not cover the request host is a
// semantic error.
func ParseSetCookie(header string, uri *URI) (*Cookie, error) {
	sc, err := ParseSetCookieHeader(header)
	if err != nil {
		return nil, err
	}
	return NewCookie(sc, uri, time.Now())
}

// NewCookie applies the storage model to a parsed header at the given
// creation time.
func NewCookie(sc *SetCookie, uri *URI, now time.Time) (*Cookie, error) {
	cookie := &Cookie{
		Name:     sc.Name,
		Value:    sc.Value,
		Secure:   sc.Secure,
		HttpOnly: sc.HttpOnly,
		Created:  now,
	}
	switch {
	case sc.MaxAge != nil:
		cookie.Persistent = true
		cookie.ExpiryTime = now.Add(time.Duration(*sc.MaxAge) * time.Second)
	case sc.Expires != nil:
		cookie.Persistent = true
		cookie.ExpiryTime = sc.Expires.Time()
	default:
		cookie.ExpiryTime = sessionExpiry
	}
	host := strings.ToLower(uri.Hostname())
	if sc.Domain != "" {
		if !DomainMatches(host, sc.Domain) || uri.IP != "" && host != sc.Domain {
			return nil, rfcparse.Semantic(0, "cookie domain %q does not cover request host %q", sc.Domain, host)
		}
		cookie.Domain = sc.Domain
	} else {
		cookie.HostOnly = true
		cookie.Domain = host
	}
	if strings.HasPrefix(sc.Path, "/") {
		cookie.Path = sc.Path
	} else {
		cookie.Path = DefaultPath(uri.Path)
	}
	return cookie, nil
}

// DomainMatches reports whether host domain-matches domain per RFC 6265
// section 5.1.3: identical, or domain is a dot-boundary suffix of host.
func DomainMatches(host, domain string) bool {
	host, domain = strings.ToLower(host), strings.ToLower(domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// PathMatches reports whether a request path path-matches a cookie path per
// RFC 6265 section 5.1.4.
func PathMatches(requestPath, cookiePath string) bool {
	if requestPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(requestPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || requestPath[len(cookiePath)] == '/'
}

// DefaultPath computes the default cookie path of a request path per RFC
// 6265 section 5.1.4.
func DefaultPath(requestPath string) string {
	if requestPath == "" || !strings.HasPrefix(requestPath, "/") {
		return "/"
	}
	i := strings.LastIndexByte(requestPath, '/')
	if i == 0 {
		return "/"
	}
	return requestPath[:i]
}
