package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

type Claims struct {
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(user internal.User) (*internal.Session, error) {
	if len(t.secret) == 0 {
		return nil, errors.New("missing secret")
	}
	now := t.now()
	exp := now.Add(t.ttl)
	claims := Claims{
		Name:   user.DisplayName,
		Email:  user.Email,
		Avatar: user.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return nil, fmt.Errorf("error signing token: %w", err)
	}
	return &internal.Session{User: user, Token: signed, ExpiresAt: exp}, nil
}

// Parse verifies the signature and expiry. Any "Bearer " prefix is ignored.
func (t *TokenIssuer) Parse(token string) (*Claims, error) {
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		return nil, internal.ErrUnauthorized
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tk.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internal.ErrUnauthorized, err)
	}
	if !tok.Valid {
		return nil, internal.ErrUnauthorized
	}
	return claims, nil
}

func (c *Claims) User() internal.User {
	return internal.User{ID: c.Subject, DisplayName: c.Name, Email: c.Email, AvatarURL: c.Avatar}
}
