// Package auth verifies bearer tokens and carries the calling account on the
// request context.
package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrMissingToken is returned when the Authorization header is absent.
	ErrMissingToken = constError("missing bearer token")
	// ErrInvalidToken wraps parsing and validation errors.
	ErrInvalidToken = constError("invalid bearer token")
)

// Config holds token verification parameters.
type Config struct {
	Secret string
	Issuer string
}

// Account identifies the caller whose data a request reads or writes.
type Account struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
}

// Parse validates an HS256 token and returns the account it names. The
// account ID comes from the "account_id" claim, falling back to "sub".
func Parse(token string, cfg Config) (Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Account{}, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return Account{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Account{}, ErrInvalidToken
	}

	subject, _ := claims["sub"].(string)
	accountID, _ := claims["account_id"].(string)
	if accountID == "" {
		accountID = subject
	}
	if accountID == "" {
		return Account{}, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	return Account{ID: accountID, Subject: subject}, nil
}
