// Package ticket mints a short-lived session ticket once the
// controller has decided UserAuthSuccess, the SSH analogue of the
// teacher's TokenService: a side effect of a decision already made,
// never an input to it.
package ticket

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims identifies the authenticated user and the method that
// completed the session's policy, scoped to the session layer that
// consumes the ticket downstream.
type Claims struct {
	jwt.RegisteredClaims
	Method string `json:"method"`
}

// Issuer mints tickets. Issue is called at most once per successful
// connection.
type Issuer interface {
	Issue(user, method string) (string, error)
}

// JWTIssuer signs tickets with an HMAC secret, using golang-jwt/jwt/v5
// and a claims struct shaped like a short-lived access token.
type JWTIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewJWTIssuer(secret []byte, issuer, audience string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: secret, issuer: issuer, audience: audience, ttl: ttl}
}

func (j *JWTIssuer) Issue(user, method string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user,
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{j.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		Method: method,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("ticket: sign: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a ticket previously issued by j,
// returning its claims. Used by the HTTP control plane to gate
// introspection endpoints behind a ticket a caller presents.
func (j *JWTIssuer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("ticket: invalid: %w", err)
	}
	return claims, nil
}
