package security

import (
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// GenerateSessionToken creates a new random token for a session cookie
func GenerateSessionToken() string {
	return uuid.New().String()
}

// HashSessionToken returns the hex BLAKE2b-256 digest stored in place of the
// raw token
func HashSessionToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// IsSecureRequest reports whether the client reached the server over HTTPS,
// directly or through a TLS-terminating proxy
func IsSecureRequest(r *http.Request) bool {
	switch {
	case r.TLS != nil, r.URL.Scheme == "https":
		return true
	default:
		return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	}
}

// CreateSessionCookie creates a session cookie with proper security flags.
// The Secure flag follows the request scheme.
func CreateSessionCookie(r *http.Request, name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateDeleteCookie creates a cookie that clears name on the client
func CreateDeleteCookie(r *http.Request, name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}
