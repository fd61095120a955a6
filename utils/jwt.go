package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"campusride/config"

	"github.com/golang-jwt/jwt"
)

func secretKey() []byte {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		secret = "campusride-dev"
	}
	return []byte(secret)
}

// GenerateToken creates a signed JWT with the given subject (user uid), email and role.
// The token expires after the specified duration.
func GenerateToken(subject, email, role string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"role":  role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ExtractClaimsFromToken validates the token signature and expiry and returns
// the subject uid, email and role claims.
func ExtractClaimsFromToken(tokenString string) (uid, email, role string, err error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
	if err != nil {
		return "", "", "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", "", errors.New("invalid token claims")
	}

	uid, _ = claims["sub"].(string)
	email, _ = claims["email"].(string)
	role, _ = claims["role"].(string)
	if uid == "" {
		return "", "", "", errors.New("token missing subject")
	}
	return uid, email, role, nil
}

// HashToken returns the hex encoded SHA-256 hash of a token string.
// The hash, not the raw token, is what gets cached and persisted.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
