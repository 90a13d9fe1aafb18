package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Operator identifies the cashier and terminal a request was made from.
type Operator struct {
	Cashier    string
	TerminalID string
}

// jwtClaims is the JWT payload struct used for signing and parsing.
type jwtClaims struct {
	Cashier    string `json:"cashier"`
	TerminalID string `json:"terminal_id"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for a cashier session on one terminal.
func IssueToken(secret string, op Operator, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	claims := &jwtClaims{
		Cashier:    op.Cashier,
		TerminalID: op.TerminalID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   op.Cashier,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// parseToken validates a signed token and returns its operator.
func parseToken(secret, raw string) (*Operator, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	return &Operator{Cashier: claims.Cashier, TerminalID: claims.TerminalID}, nil
}

// bearerToken returns the token from the Authorization header, falling back
// to the auth_token cookie used by the embedded browser UI.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
		return ""
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth is chi middleware that validates the operator token and records
// the Operator in the request scope. Returns 401 if the token is absent or
// invalid.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		op, err := parseToken(h.jwtSecret, raw)
		if err != nil {
			writeError(w, r, "invalid or expired token", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		sc := scopeFromContext(r.Context())
		if sc == nil {
			sc = &requestScope{}
			r = r.WithContext(context.WithValue(r.Context(), scopeKey{}, sc))
		}
		sc.operator = op
		next.ServeHTTP(w, r)
	})
}
