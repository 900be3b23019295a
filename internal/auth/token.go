package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/pkg/models"
)

// Claims are the JWT claims of a session token.
type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Principal converts the claims to a request principal.
func (c *Claims) Principal() Principal {
	return Principal{UserID: c.Subject, Email: c.Email, Role: c.Role, TokenID: c.ID}
}

func (s *Service) issueToken(u *services.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   u.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, exp, nil
}

// ParseToken verifies a session token and returns its claims. Revoked
// tokens are rejected.
func (s *Service) ParseToken(raw string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if s.revoked.has(claims.ID) {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// Revoke invalidates a token until it would have expired anyway.
func (s *Service) Revoke(c *Claims) {
	if c == nil || c.ID == "" {
		return
	}
	exp := s.now().Add(s.ttl)
	if c.ExpiresAt != nil {
		exp = c.ExpiresAt.Time
	}
	s.revoked.add(c.ID, exp, s.now())
}

// denylist holds revoked token IDs until their expiry.
type denylist struct {
	mu  sync.Mutex
	ids map[string]time.Time
}

func (d *denylist) add(id string, exp, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ids == nil {
		d.ids = make(map[string]time.Time)
	}
	for k, e := range d.ids {
		if now.After(e) {
			delete(d.ids, k)
		}
	}
	d.ids[id] = exp
}

func (d *denylist) has(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.ids[id]
	return ok
}
