// Package cookie holds the storefront's shopper identity cookies: the signed
// owner cookie and the guest cart token.
package cookie

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// OwnerCookieName carries "<uuid>.<hex hmac-sha256>" for identified shoppers.
	OwnerCookieName = "mv_owner"

	// GuestCookieName carries the guest cart token.
	GuestCookieName = "mv_guest"
)

// Config scopes and signs the storefront's cookies.
type Config struct {
	// Domain is left empty to scope cookies to the serving host.
	Domain string
	Secure bool
	secret []byte
}

func NewConfig(domain string, secure bool, secret string) *Config {
	return &Config{
		Domain: domain,
		Secure: secure,
		secret: []byte(secret),
	}
}

// Set writes an HttpOnly, SameSite=Lax cookie valid for maxAge.
func (c *Config) Set(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   c.Domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires a cookie. Domain and path must match the original.
func (c *Config) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Domain:   c.Domain,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SignOwner returns the owner cookie value for id.
func (c *Config) SignOwner(id uuid.UUID) string {
	return id.String() + "." + c.mac(id.String())
}

// VerifyOwner parses an owner cookie value. ok is false for a malformed value
// or a bad signature.
func (c *Config) VerifyOwner(value string) (uuid.UUID, bool) {
	raw, sig, found := strings.Cut(value, ".")
	if !found || len(c.secret) == 0 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	if !hmac.Equal([]byte(sig), []byte(c.mac(raw))) {
		return uuid.Nil, false
	}
	return id, true
}

func (c *Config) mac(payload string) string {
	h := hmac.New(sha256.New, c.secret)
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

// NewGuestToken returns a random 128-bit hex token.
func NewGuestToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(err)
	}
	return hex.EncodeToString(b)
}

// ValidGuestToken rejects anything that NewGuestToken could not have made.
func ValidGuestToken(token string) bool {
	if len(token) != 32 {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}

// Get returns the named cookie's value, or "" if absent.
func Get(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
