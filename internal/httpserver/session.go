// internal/httpserver/session.go
//
// Player sessions. A session is a random UUID carried as the subject of an
// HS256 JWT, in the mines_session cookie or an Authorization bearer header.
// A missing, expired or tampered token gets a new session.

package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
)

const (
	sessionCookieName = "mines_session"
	sessionTTL        = 30 * 24 * time.Hour
)

// sessionID returns the caller's session ID, minting and setting a new one
// when the request carries no valid token.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if tok := bearerOrCookie(r); tok != "" {
		if id, err := s.parseSession(tok); err == nil {
			return id
		}
		hlog.FromRequest(r).Debug().Msg("discarding invalid session token")
	}

	id := uuid.NewString()
	tok, exp, err := s.signSession(id)
	if err != nil {
		// The game still works for this one request.
		hlog.FromRequest(r).Error().Err(err).Msg("sign session")
		return id
	}
	s.setSessionCookie(w, tok, exp)
	return id
}

// signSession creates the token for session id.
func (s *Server) signSession(id string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(sessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString([]byte(s.cfg.SessionSecret))
	return ss, exp, err
}

// parseSession verifies tok and returns its session ID.
func (s *Server) parseSession(tok string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SessionSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !t.Valid {
		return "", errors.New("invalid token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// setSessionCookie writes the session cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.cfg.SecureCookies {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a token from the Authorization header or the session cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}
