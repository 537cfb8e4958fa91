// Package idtoken signs and verifies the identity tokens exchanged for sessions.
package idtoken

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/taskboard/domain"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = domain.NewError(domain.ErrCodeUnauthorized, "invalid identity token")

// Claims carried by an identity token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks an identity token and returns the identity it asserts.
type Verifier interface {
	Verify(token string) (*domain.Identity, error)
}

// HMAC signs and verifies HS256 tokens with a shared secret.
type HMAC struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewHMAC builds a signer/verifier. An empty issuer disables the issuer check.
func NewHMAC(secret, issuer string) (*HMAC, error) {
	if secret == "" {
		return nil, errors.New("identity secret must not be empty")
	}
	return &HMAC{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Sign mints a token for identity valid for ttl.
func (h *HMAC) Sign(identity domain.Identity, ttl time.Duration) (string, error) {
	if strings.TrimSpace(identity.Email) == "" {
		return "", domain.NewError(domain.ErrCodeInvalid, "email is required")
	}
	now := h.now()
	claims := Claims{
		Email: identity.Email,
		Name:  identity.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Email,
			Issuer:    h.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// Verify implements Verifier.
func (h *HMAC) Verify(token string) (*domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	var claims Claims
	parsed, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return h.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, ErrInvalidToken.Message, err)
	}
	if h.issuer != "" && !claims.VerifyIssuer(h.issuer, true) {
		return nil, ErrInvalidToken
	}
	if claims.Email == "" {
		return nil, ErrInvalidToken
	}
	return &domain.Identity{Email: claims.Email, DisplayName: claims.Name}, nil
}
