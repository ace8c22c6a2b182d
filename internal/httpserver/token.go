package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

// sessionClaims is what a player token carries: their name and, in the
// subject, the one session the token is good for.
type sessionClaims struct {
	Player string `json:"player"`
	jwt.RegisteredClaims
}

// signToken issues the HS256 token a player presents on every session call.
func (s *Server) signToken(sessionID, player string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Player: player,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// parseToken verifies a token and returns its claims.
func (s *Server) parseToken(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !t.Valid || claims.Player == "" || claims.Subject == "" {
		return nil, fmt.Errorf("incomplete token claims")
	}
	return claims, nil
}

// bearerOrQuery extracts a token from the Authorization header or, for
// EventSource connections that cannot set headers, the token query param.
func bearerOrQuery(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return r.URL.Query().Get("token")
}

// ctxPlayerKey is the context key type for the authenticated player name.
type ctxPlayerKey struct{}

// requirePlayer admits only requests carrying a valid token issued for the
// session in the URL, and puts the player name in the request context.
func (s *Server) requirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerOrQuery(r)
		if tok == "" {
			jsonError(w, "a player token is required", http.StatusUnauthorized)
			return
		}
		claims, err := s.parseToken(tok)
		if err != nil {
			jsonError(w, "invalid player token", http.StatusUnauthorized)
			return
		}
		if claims.Subject != chi.URLParam(r, "id") {
			jsonError(w, "token was issued for another session", http.StatusForbidden)
			return
		}
		ctx := context.WithValue(r.Context(), ctxPlayerKey{}, claims.Player)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// playerFrom returns the authenticated player name, or "" outside of
// requirePlayer routes.
func playerFrom(ctx context.Context) string {
	name, _ := ctx.Value(ctxPlayerKey{}).(string)
	return name
}
