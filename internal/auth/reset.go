package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const resetPurpose = "password_reset"

var ErrInvalidResetToken = errors.New("Invalid or expired reset token")

type resetClaims struct {
	Purpose     string `json:"purpose"`
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

func EncodeUID(userID uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(userID), 10)))
}

func DecodeUID(uid string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, ErrInvalidResetToken
	}

	id, err := strconv.ParseUint(string(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidResetToken
	}

	return uint(id), nil
}

// GenerateResetToken signs a reset token bound to the current password
// hash, so it stops verifying once the password changes.
func GenerateResetToken(userID uint, passwordHash string, issuedAt time.Time) (string, error) {
	claims := resetClaims{
		Purpose:     resetPurpose,
		Fingerprint: fingerprint(passwordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(resetTokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
}

func VerifyResetToken(tokenString string, userID uint, passwordHash string) error {
	claims := &resetClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc)
	if err != nil || !token.Valid {
		return ErrInvalidResetToken
	}

	if claims.Purpose != resetPurpose ||
		claims.Subject != strconv.FormatUint(uint64(userID), 10) ||
		claims.Fingerprint != fingerprint(passwordHash) {
		return ErrInvalidResetToken
	}

	return nil
}

func fingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}
