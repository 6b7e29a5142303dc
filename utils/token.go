package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/raushankrgupta/vehicle-catalog-importer/config"
)

const tokenTTL = 12 * time.Hour

var ErrJWTSecretMissing = errors.New("JWT_SECRET is not set")

// GenerateToken issues an operator token for subject.
func GenerateToken(subject string) (string, error) {
	if config.JWTSecret == "" {
		return "", ErrJWTSecretMissing
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.JWTSecret))
}

// ValidateToken parses the token and returns its subject.
func ValidateToken(tokenString string) (string, error) {
	if config.JWTSecret == "" {
		return "", ErrJWTSecretMissing
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.JWTSecret), nil
	})
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
