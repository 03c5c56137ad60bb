package auth

import (
	"crypto/rsa"
	"errors"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// JWTVerifier verifies RS256 tokens and extracts the owner email claim.
// Token issuance lives in the account service; this side only checks.
type JWTVerifier struct {
	pub *rsa.PublicKey
}

func NewJWTVerifier(pubPath string) (*JWTVerifier, error) {
	b, err := os.ReadFile(pubPath)
	if err != nil {
		return nil, err
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(b)
	if err != nil {
		return nil, err
	}
	return &JWTVerifier{pub: pub}, nil
}

// VerifyToken returns the owner email if the token is valid.
func (j *JWTVerifier) VerifyToken(token string) (string, error) {
	t, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.pub, nil
	})
	if err != nil {
		return "", err
	}
	if !t.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	if v, ok := claims["email"].(string); ok {
		return v, nil
	}
	if v, ok := claims["sub"].(string); ok {
		return v, nil
	}
	return "", errors.New("email not found in token")
}
