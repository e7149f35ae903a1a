// Package theme persists the light/dark colour mode in a signed cookie.
package theme

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// Mode is the colour mode.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ParseMode accepts "light" or "dark".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Light, Dark:
		return Mode(s), nil
	}
	return "", fmt.Errorf("theme: unknown mode %q", s)
}

// Opposite returns the other mode.
func (m Mode) Opposite() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// TransitionHook runs around a mode switch: before is called with the old
// and new mode, and the returned func (if any) after the cookie is written.
type TransitionHook func(from, to Mode) (after func())

type cookiePayload struct {
	Mode  Mode
	SetAt time.Time
}

// Store reads and writes the theme cookie. One Store is created per
// process and injected where needed.
type Store struct {
	codec  *securecookie.SecureCookie
	name   string
	maxAge int
	secure bool
}

// NewStore creates a store from a hash key and block key (32 bytes each).
func NewStore(hashKey, blockKey []byte, secure bool) *Store {
	maxAge := 365 * 24 * time.Hour
	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(int(maxAge.Seconds()))
	return &Store{
		codec:  codec,
		name:   "soup_theme",
		maxAge: int(maxAge.Seconds()),
		secure: secure,
	}
}

// CookieName is the name of the theme cookie.
func (s *Store) CookieName() string { return s.name }

// Current returns the request's mode. A missing or tampered cookie is light.
func (s *Store) Current(r *http.Request) Mode {
	cookie, err := r.Cookie(s.name)
	if err != nil {
		return Light
	}
	return s.Decode(cookie.Value)
}

// Decode reads a raw cookie value; used by live sessions that only hold
// the upgrade request's cookies.
func (s *Store) Decode(value string) Mode {
	var p cookiePayload
	if err := s.codec.Decode(s.name, value, &p); err != nil {
		return Light
	}
	if _, err := ParseMode(string(p.Mode)); err != nil {
		return Light
	}
	return p.Mode
}

// Encode produces the signed cookie value for mode.
func (s *Store) Encode(mode Mode) (string, error) {
	return s.codec.Encode(s.name, cookiePayload{Mode: mode, SetAt: time.Now()})
}

// Set writes mode to the response.
func (s *Store) Set(w http.ResponseWriter, mode Mode) error {
	encoded, err := s.Encode(mode)
	if err != nil {
		return fmt.Errorf("encode theme cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    encoded,
		Path:     "/",
		MaxAge:   s.maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Toggle flips the request's mode and writes the result, invoking hook
// around the switch.
func (s *Store) Toggle(w http.ResponseWriter, r *http.Request, hook TransitionHook) (Mode, error) {
	from := s.Current(r)
	to := from.Opposite()

	var after func()
	if hook != nil {
		after = hook(from, to)
	}
	if err := s.Set(w, to); err != nil {
		return from, err
	}
	if after != nil {
		after()
	}
	return to, nil
}
