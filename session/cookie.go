package session

import (
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultCookieName is used when CookieOptions.Name is empty.
const DefaultCookieName = "sid"

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Name     string
	Path     string
	Secure   bool
	SameSite http.SameSite
	// Domain is applied only when the request host equals it or is a
	// subdomain of it. A leading dot is ignored.
	Domain string
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Name == "" {
		o.Name = DefaultCookieName
	}
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	o.Domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(o.Domain)), ".")
	return o
}

// domainFor returns the Domain attribute to send for a request to host.
func (o CookieOptions) domainFor(host string) string {
	if o.Domain == "" {
		return ""
	}
	host = requestHostname(host)
	if host == o.Domain || strings.HasSuffix(host, "."+o.Domain) {
		return o.Domain
	}
	return ""
}

func (o CookieOptions) issue(value string, expiresAt time.Time, maxAge time.Duration, host string) *http.Cookie {
	seconds := int(maxAge / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return &http.Cookie{
		Name:     o.Name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.domainFor(host),
		Expires:  expiresAt.UTC(),
		MaxAge:   seconds,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	}
}

func (o CookieOptions) clear(host string) *http.Cookie {
	return &http.Cookie{
		Name:     o.Name,
		Value:    "",
		Path:     o.Path,
		Domain:   o.domainFor(host),
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	}
}

func requestHostname(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(host, ".")
}
