package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret     string
	tokenTTL      = 168 * time.Hour
	resetTokenTTL = time.Hour
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Configure overrides the secret and token lifetimes. Zero durations keep
// the current values.
func Configure(secret string, ttl, resetTTL time.Duration) {
	jwtSecret = secret
	if ttl > 0 {
		tokenTTL = ttl
	}
	if resetTTL > 0 {
		resetTokenTTL = resetTTL
	}
}

func TokenTTL() time.Duration {
	return tokenTTL
}

func GenerateJWT(userID uint, email, jti string, issuedAt time.Time) (string, time.Time, error) {
	expiresAt := issuedAt.Add(tokenTTL)

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func VerifyJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc)

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.ID == "" || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, jwt.ErrSignatureInvalid
	}
	return []byte(jwtSecret), nil
}
