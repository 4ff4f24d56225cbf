// Package referral keeps the visitor's referral code in a long-lived cookie.
package referral

import (
	"net/http"
	"net/url"
	"time"
)

const (
	CookieName = "workdora_referral"
	cookieAge  = 365 * 24 * time.Hour
)

// CookieStore is a write-once slot scoped to one request/response pair.
type CookieStore struct {
	w      http.ResponseWriter
	r      *http.Request
	secure bool
	saved  string
}

func NewCookieStore(w http.ResponseWriter, r *http.Request, secure bool) *CookieStore {
	return &CookieStore{w: w, r: r, secure: secure}
}

func (s *CookieStore) Get() (string, bool) {
	if s.saved != "" {
		return s.saved, true
	}
	c, err := s.r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	code, err := url.QueryUnescape(c.Value)
	if err != nil || code == "" {
		return "", false
	}
	return code, true
}

// Save stores code unless a code is already present.
func (s *CookieStore) Save(code string) error {
	if _, ok := s.Get(); ok {
		return nil
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     CookieName,
		Value:    url.QueryEscape(code),
		Path:     "/",
		MaxAge:   int(cookieAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.saved = code
	return nil
}
