package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nurpe/gigpay/internal/model"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Parser resolves caller identities from HMAC-signed access tokens. The
// identity is the token subject.
type Parser struct {
	secret []byte
	leeway time.Duration
}

func NewParser(secret string) *Parser {
	return &Parser{
		secret: []byte(strings.TrimSpace(secret)),
		leeway: 30 * time.Second,
	}
}

func (p *Parser) Parse(tokenString string) (model.Principal, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return model.Principal{}, ErrMissingToken
	}
	if len(p.secret) == 0 {
		return model.Principal{}, errors.New("auth secret not configured")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithLeeway(p.leeway))
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return model.Principal{}, ErrInvalidToken
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return model.Principal{}, fmt.Errorf("%w: subject claim is empty", ErrInvalidToken)
	}
	return model.Principal{ID: subject}, nil
}

// Issue signs a token for identity. Used by tooling and tests.
func (p *Parser) Issue(identity string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   identity,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
