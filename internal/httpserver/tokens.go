package httpserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// signGameToken creates an HS256 JWT whose subject is the game ID. Holding it
// is what lets a client act on that game.
func (s *Server) signGameToken(gameID string) (string, error) {
	now := s.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   gameID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.SessionTTL)),
	})
	ss, err := t.SignedString(s.secret())
	if err != nil {
		return "", fmt.Errorf("sign game token: %w", err)
	}
	return ss, nil
}

// checkGameToken verifies tok and that it was issued for gameID.
func (s *Server) checkGameToken(tok, gameID string) error {
	if tok == "" {
		return errUnauthorized
	}
	var claims jwt.RegisteredClaims
	t, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !t.Valid {
		return fmt.Errorf("%w: %v", errForbidden, err)
	}
	if claims.Subject != gameID {
		return errForbidden
	}
	return nil
}

func (s *Server) secret() []byte {
	if s.opts.JWTSecret == "" {
		return []byte("dev_secret_change_me")
	}
	return []byte(s.opts.JWTSecret)
}

// tokenFrom extracts a bearer token from the Authorization header, falling
// back to the "token" query parameter (browsers cannot set headers on
// WebSocket handshakes).
func tokenFrom(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return r.URL.Query().Get("token")
}
