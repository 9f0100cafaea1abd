package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Caller carries everything a request asserts about who is calling:
// a wallet address (query param or request body) and, optionally, a
// bearer token.
type Caller struct {
	Address string
	Token   string
}

// Gate authorizes admin-only operations (list-all, status mutation).
type Gate interface {
	Authorize(c Caller) bool
}

// StaticAddressGate is the compatibility mode: the caller-asserted address is
// compared, case-sensitively, against the single configured admin address.
// Nothing is cryptographically proven.
type StaticAddressGate struct {
	admin string
}

func NewStaticAddressGate(adminAddress string) *StaticAddressGate {
	return &StaticAddressGate{admin: adminAddress}
}

func (g *StaticAddressGate) Authorize(c Caller) bool {
	return g.admin != "" && c.Address == g.admin
}

// TokenGate is the proven-identity variant: the caller must present an HS256
// token signed with the shared admin secret whose subject is the admin
// address. The asserted address is ignored.
type TokenGate struct {
	secret string
	admin  string
}

func NewTokenGate(secret, adminAddress string) *TokenGate {
	return &TokenGate{secret: secret, admin: adminAddress}
}

func (g *TokenGate) Authorize(c Caller) bool {
	if c.Token == "" {
		return false
	}
	claims, err := parseAdminToken(g.secret, c.Token)
	if err != nil {
		return false
	}
	return claims.Subject == g.admin
}

// GenerateAdminToken issues a token accepted by TokenGate. Used by operator
// tooling; the API itself never mints tokens.
func GenerateAdminToken(secret, adminAddress string, expiration time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   adminAddress,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    "onboarding-api",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseAdminToken(secret, tokenStr string) (*jwt.RegisteredClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
