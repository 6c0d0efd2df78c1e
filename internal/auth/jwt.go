package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vehiculos/internal/lifecycle"
)

type Claims struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken issues an HS256 token carrying the user's id and role.
func GenerateToken(secret string, userID int, role lifecycle.Role, email string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT secret is empty")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   string(role),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies the token and returns the actor it identifies.
func ParseToken(secret, tokenString string) (lifecycle.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return lifecycle.Actor{}, fmt.Errorf("invalid token: %w", err)
	}
	return lifecycle.Actor{ID: claims.UserID, Role: lifecycle.Role(claims.Role)}, nil
}
