package httpx

import (
	"net/http"
	"strings"
	"time"
)

// SessionCookie describes the session-token cookie. A single instance is
// shared by the login and logout paths so both always agree on the SameSite
// policy and transport attributes.
type SessionCookie struct {
	Name     string
	Secure   bool // HTTPS-only; should be true outside local dev
	SameSite http.SameSite
	TTL      time.Duration
	Domain   string // optional, for subdomain setups
}

// ParseSameSite maps a config string to a SameSite mode. Unknown values fall
// back to Lax, which is the safe default for a same-site frontend.
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}

// Set attaches the token to the response. HttpOnly is always on; scripts
// never get to read the session token.
func (c SessionCookie) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
		MaxAge:   int(c.TTL.Seconds()),
	})
}

// Clear expires the cookie immediately. This only removes client-side state;
// an already-issued token stays valid until its own expiry.
func (c SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
		MaxAge:   -1,
	})
}

// Read returns the token carried by the request cookie, if present.
func (c SessionCookie) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
