package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer signs and verifies bearer tokens for message channel clients.
type TokenIssuer struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		auth: jwtauth.New("HS256", secret, nil),
		ttl:  ttl,
	}
}

func (i *TokenIssuer) Auth() *jwtauth.JWTAuth {
	return i.auth
}

func (i *TokenIssuer) GenerateToken(clientID, role string) (string, error) {
	claims := jwt.MapClaims{
		"client_id": clientID,
		"role":      role,
		"exp":       time.Now().Add(i.ttl).Unix(),
		"iat":       time.Now().Unix(),
	}
	_, tokenString, err := i.auth.Encode(claims)
	return tokenString, err
}

// Helper functions to extract claims, used by the channel middleware
func GetClientIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["client_id"].(string)
	if !ok || id == "" {
		return "", errors.New("client_id claim is missing or not a string")
	}
	return id, nil
}

func GetRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}
