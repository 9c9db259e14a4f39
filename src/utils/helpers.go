package utils

import (
	"os"
	"time"

	"stays/src/types"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

// GenerateJWT issues a signed bearer token for an authenticated user.
func GenerateJWT(email string, userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := types.Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func IsProd() bool {
	return os.Getenv("API_ENV") == "production"
}
