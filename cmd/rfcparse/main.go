package main

import (
	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/rfcparse/rfcparse/rfc"
)

var (
	version string = "dev"
	cli     struct {
		Version kong.VersionFlag
		URI     uriCmd    `cmd:"" help:"Parse an RFC 3986 URI."`
		Date    dateCmd   `cmd:"" help:"Parse an RFC 6265 cookie date."`
		Cookie  cookieCmd `cmd:"" help:"Parse an RFC 6265 Set-Cookie header."`
		Domain  domainCmd `cmd:"" help:"Parse a domain name."`
	}
)

type uriCmd struct {
	Text string `arg:"" help:"URI to parse."`
}

func (c *uriCmd) Run() error {
	uri, err := rfc.ParseURI(c.Text)
	if err != nil {
		return err
	}
	repr.Println(uri)
	return nil
}

type dateCmd struct {
	Text string `arg:"" help:"Cookie date to parse."`
}

func (c *dateCmd) Run() error {
	date, err := rfc.ParseCookieDate(c.Text)
	if err != nil {
		return err
	}
	repr.Println(date)
	return nil
}

type cookieCmd struct {
	Text string `arg:"" help:"Set-Cookie header value to parse."`
	URI  string `help:"Request URI establishing the cookie context." default:"https://localhost/"`
}

func (c *cookieCmd) Run() error {
	uri, err := rfc.ParseURI(c.URI)
	if err != nil {
		return err
	}
	cookie, err := rfc.ParseSetCookie(c.Text, uri)
	if err != nil {
		return err
	}
	repr.Println(cookie)
	return nil
}

type domainCmd struct {
	Text   string `arg:"" help:"Domain name to parse."`
	RFC822 bool   `help:"Use the RFC 822 domain grammar instead of RFC 1034."`
}

func (c *domainCmd) Run() error {
	var (
		labels []string
		err    error
	)
	if c.RFC822 {
		labels, err = rfc.ParseDomain822(c.Text)
	} else {
		labels, err = rfc.ParseDomain(c.Text)
	}
	if err != nil {
		return err
	}
	repr.Println(labels)
	return nil
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Description(`Parse RFC-grammar text into typed values.`),
		kong.Vars{"version": version},
	)
	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}
