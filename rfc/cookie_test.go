package rfc

import (
	"testing"
	"time"

	"github.com/rfcparse/rfcparse"
	"github.com/stretchr/testify/require"
)

func TestParseSetCookieHeader(t *testing.T) {
	sc, err := ParseSetCookieHeader("id=a3fWa; Expires=Wed, 21 Oct 2015 07:28:00 GMT; Secure; HttpOnly")
	require.NoError(t, err)
	require.Equal(t, "id", sc.Name)
	require.Equal(t, "a3fWa", sc.Value)
	require.NotNil(t, sc.Expires)
	require.Equal(t, time.Date(2015, time.October, 21, 7, 28, 0, 0, time.UTC), sc.Expires.Time())
	require.True(t, sc.Secure)
	require.True(t, sc.HttpOnly)
	require.Nil(t, sc.MaxAge)
	require.Empty(t, sc.Domain)
}

func TestParseSetCookieHeaderAttributes(t *testing.T) {
	sc, err := ParseSetCookieHeader("sid=31d4d96e407aad42; Max-Age=3600; Domain=.Example.COM; Path=/accounts; SameSite=Lax")
	require.NoError(t, err)
	require.Equal(t, "sid", sc.Name)
	require.Equal(t, "31d4d96e407aad42", sc.Value)
	require.NotNil(t, sc.MaxAge)
	require.Equal(t, 3600, *sc.MaxAge)
	// Leading dot stripped, lower-cased.
	require.Equal(t, "example.com", sc.Domain)
	require.Equal(t, "/accounts", sc.Path)
	require.Equal(t, map[string]string{"SameSite": "Lax"}, sc.Extensions)
}

func TestParseSetCookieHeaderQuotedValue(t *testing.T) {
	sc, err := ParseSetCookieHeader(`name="quoted-value?"; Path=/`)
	require.NoError(t, err)
	require.Equal(t, "quoted-value?", sc.Value)
}

func TestParseSetCookieHeaderEmptyValue(t *testing.T) {
	sc, err := ParseSetCookieHeader("flag=; Secure")
	require.NoError(t, err)
	require.Equal(t, "flag", sc.Name)
	require.Empty(t, sc.Value)
	require.True(t, sc.Secure)
}

func TestParseSetCookieHeaderErrors(t *testing.T) {
	// No "=" in the cookie pair.
	_, err := ParseSetCookieHeader("nopair; Secure")
	require.Error(t, err)
	_, ok := err.(*rfcparse.ParseError)
	require.True(t, ok)

	// Syntactically an attribute value, semantically not a domain.
	_, err = ParseSetCookieHeader("a=b; Domain=-bad-")
	require.Error(t, err)
	serr, ok := err.(*rfcparse.SemanticError)
	require.True(t, ok)
	require.Contains(t, serr.Message(), "invalid cookie domain")
}

func mustURI(t *testing.T, text string) *URI {
	t.Helper()
	uri, err := ParseURI(text)
	require.NoError(t, err)
	return uri
}

func TestNewCookieStorageModel(t *testing.T) {
	now := time.Date(2023, time.February, 7, 12, 0, 0, 0, time.UTC)
	uri := mustURI(t, "https://www.example.com/accounts/login")

	sc, err := ParseSetCookieHeader("sid=abc; Max-Age=3600; Expires=Tue, 07-Feb-2023 13:20:04 GMT; Domain=example.com; Secure")
	require.NoError(t, err)
	cookie, err := NewCookie(sc, uri, now)
	require.NoError(t, err)

	require.Equal(t, "sid", cookie.Name)
	require.Equal(t, "abc", cookie.Value)
	require.Equal(t, "example.com", cookie.Domain)
	require.False(t, cookie.HostOnly)
	require.True(t, cookie.Secure)
	require.True(t, cookie.Persistent)
	// Max-Age wins over Expires.
	require.Equal(t, now.Add(time.Hour), cookie.ExpiryTime)
	// Default path from the request, no Path attribute given.
	require.Equal(t, "/accounts", cookie.Path)
	require.Equal(t, now, cookie.Created)
}

func TestNewCookieExpiresOnly(t *testing.T) {
	now := time.Date(2023, time.February, 7, 12, 0, 0, 0, time.UTC)
	sc, err := ParseSetCookieHeader("sid=abc; Expires=Tue, 07-Feb-2023 13:20:04 GMT")
	require.NoError(t, err)
	cookie, err := NewCookie(sc, mustURI(t, "https://example.com/"), now)
	require.NoError(t, err)
	require.True(t, cookie.Persistent)
	require.Equal(t, time.Date(2023, time.February, 7, 13, 20, 4, 0, time.UTC), cookie.ExpiryTime)
}

func TestNewCookieSessionCookie(t *testing.T) {
	sc, err := ParseSetCookieHeader("sid=abc; Path=/app")
	require.NoError(t, err)
	cookie, err := NewCookie(sc, mustURI(t, "https://example.com/"), time.Now())
	require.NoError(t, err)
	require.False(t, cookie.Persistent)
	require.Equal(t, sessionExpiry, cookie.ExpiryTime)
	require.Equal(t, "/app", cookie.Path)
}

func TestNewCookieHostOnly(t *testing.T) {
	sc, err := ParseSetCookieHeader("sid=abc")
	require.NoError(t, err)
	cookie, err := NewCookie(sc, mustURI(t, "https://WWW.Example.com/a"), time.Now())
	require.NoError(t, err)
	require.True(t, cookie.HostOnly)
	require.Equal(t, "www.example.com", cookie.Domain)
}

func TestNewCookieDomainMismatch(t *testing.T) {
	sc, err := ParseSetCookieHeader("sid=abc; Domain=other.com")
	require.NoError(t, err)
	_, err = NewCookie(sc, mustURI(t, "https://example.com/"), time.Now())
	require.Error(t, err)
	serr, ok := err.(*rfcparse.SemanticError)
	require.True(t, ok)
	require.Contains(t, serr.Message(), "does not cover")

	// An IP request host only accepts a Domain equal to the address itself.
	_, err = NewCookie(&SetCookie{Name: "sid", Value: "abc", Domain: "0.0.1"},
		mustURI(t, "https://127.0.0.1/"), time.Now())
	require.Error(t, err)

	same, err := NewCookie(&SetCookie{Name: "sid", Value: "abc", Domain: "127.0.0.1"},
		mustURI(t, "https://127.0.0.1/"), time.Now())
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", same.Domain)
	require.False(t, same.HostOnly)
}

func TestDomainMatches(t *testing.T) {
	require.True(t, DomainMatches("example.com", "example.com"))
	require.True(t, DomainMatches("www.example.com", "example.com"))
	require.True(t, DomainMatches("a.b.example.com", "EXAMPLE.com"))
	require.False(t, DomainMatches("example.com", "www.example.com"))
	require.False(t, DomainMatches("badexample.com", "example.com"))
}

func TestPathMatches(t *testing.T) {
	tests := []struct {
		request, cookie string
		want            bool
	}{
		{"/", "/", true},
		{"/accounts", "/accounts", true},
		{"/accounts/login", "/accounts", true},
		{"/accounts/login", "/accounts/", true},
		{"/accountsextra", "/accounts", false},
		{"/", "/accounts", false},
		{"/other", "/accounts", false},
	}
	for _, test := range tests {
		require.Equal(t, test.want, PathMatches(test.request, test.cookie),
			"request %q cookie %q", test.request, test.cookie)
	}
}

func TestDefaultPath(t *testing.T) {
	require.Equal(t, "/", DefaultPath(""))
	require.Equal(t, "/", DefaultPath("nolead"))
	require.Equal(t, "/", DefaultPath("/"))
	require.Equal(t, "/", DefaultPath("/login"))
	require.Equal(t, "/accounts", DefaultPath("/accounts/login"))
}
