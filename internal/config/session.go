package config

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// apiTimeout bounds API requests. Direct media downloads get no client
// timeout; a multi-gigabyte video takes as long as it takes and
// cancellation comes from the context.
const apiTimeout = 30 * time.Second

// boostyOrigin is the URL the session cookies are registered under;
// boostyDomain widens them to domain cookies so they match api.boosty.to
// and the media subdomains too.
const (
	boostyOrigin = "https://boosty.to/"
	boostyDomain = "boosty.to"
)

// ParseCookieHeader splits a raw "k=v; k2=v2" Cookie header into cookies.
// Malformed pairs are dropped; browsers are sloppy about trailing
// semicolons and so are users pasting them.
func ParseCookieHeader(raw string) []*http.Cookie {
	var cookies []*http.Cookie
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: name, Value: strings.TrimSpace(value)})
	}
	return cookies
}

// NewSessions builds the two HTTP clients a run uses: one for the API with
// a request timeout, one for media downloads without. Both share a cookie
// jar seeded from the configured Cookie header.
func NewSessions(c *Config) (apiClient, downloadClient *http.Client, err error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, nil, err
	}
	if cookies := ParseCookieHeader(c.Auth.Cookie); len(cookies) > 0 {
		origin, _ := url.Parse(boostyOrigin)
		for _, ck := range cookies {
			// A host-only cookie would stop at boosty.to and never be
			// sent to the API or CDN subdomains.
			ck.Domain = boostyDomain
		}
		jar.SetCookies(origin, cookies)
	}
	apiClient = &http.Client{Jar: jar, Timeout: apiTimeout}
	downloadClient = &http.Client{Jar: jar}
	return apiClient, downloadClient, nil
}
