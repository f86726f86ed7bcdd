package auth

import "time"

// Session is the caller-held result of a successful login. The token is
// immutable once issued; there is no refresh.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Identity  Identity  `json:"identity"`
}

// Active reports whether the session still holds a token.
func (s *Session) Active() bool {
	return s != nil && s.Token != ""
}

// Invalidate discards the locally held token (logout). Nothing is revoked
// server side: a copy of the token stays valid until it expires.
func (s *Session) Invalidate() {
	if s == nil {
		return
	}
	*s = Session{}
}
