package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	Configure("test-secret", time.Hour, 30*time.Minute)
}

func TestJWTRoundTrip(t *testing.T) {
	now := time.Now().UTC()

	token, expiresAt, err := GenerateJWT(7, "asha@example.com", "jti-1", now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), expiresAt, time.Second)

	claims, err := VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.Equal(t, "jti-1", claims.ID)
}

func TestJWTRejectsExpiredAndTampered(t *testing.T) {
	expired, _, err := GenerateJWT(7, "asha@example.com", "jti-1", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = VerifyJWT(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	valid, _, err := GenerateJWT(7, "asha@example.com", "jti-1", time.Now())
	require.NoError(t, err)

	_, err = VerifyJWT(valid + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = VerifyJWT("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRequiresSessionID(t *testing.T) {
	token, _, err := GenerateJWT(7, "asha@example.com", "", time.Now())
	require.NoError(t, err)

	_, err = VerifyJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("short1"), ErrPasswordTooShort)
	assert.ErrorIs(t, ValidatePassword("1234567890"), ErrPasswordNumeric)
	assert.ErrorIs(t, ValidatePassword("Password1"), ErrPasswordCommon)
	assert.ErrorIs(t, ValidatePassword("ashapatel", "ashapatel", "asha@example.com"), ErrPasswordSimilar)
	assert.ErrorIs(t, ValidatePassword("asha.kumar", "someone", "asha.kumar@example.com"), ErrPasswordSimilar)
	assert.NoError(t, ValidatePassword("Tr1cky-Horse", "asha", "asha@example.com"))

	assert.ErrorIs(t, ValidateNewPassword("Tr1cky-Horse", "Tr1cky-Hors"), ErrPasswordsDontMatch)
	assert.NoError(t, ValidateNewPassword("Tr1cky-Horse", "Tr1cky-Horse"))
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Tr1cky-Horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "Tr1cky-Horse"))
	assert.False(t, CheckPassword(hash, "tr1cky-horse"))
}

func TestUIDEncoding(t *testing.T) {
	uid := EncodeUID(42)

	id, err := DecodeUID(uid)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = DecodeUID("%%%")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	_, err = DecodeUID(EncodeUID(0))
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetTokenIsSingleUse(t *testing.T) {
	now := time.Now().UTC()

	token, err := GenerateResetToken(42, "hash-before", now)
	require.NoError(t, err)

	assert.NoError(t, VerifyResetToken(token, 42, "hash-before"))
	assert.ErrorIs(t, VerifyResetToken(token, 43, "hash-before"), ErrInvalidResetToken)

	// Changing the password invalidates every outstanding token.
	assert.ErrorIs(t, VerifyResetToken(token, 42, "hash-after"), ErrInvalidResetToken)
}

func TestResetTokenExpires(t *testing.T) {
	token, err := GenerateResetToken(42, "hash", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	assert.ErrorIs(t, VerifyResetToken(token, 42, "hash"), ErrInvalidResetToken)
}

func TestLoginTokenIsNotAResetToken(t *testing.T) {
	token, _, err := GenerateJWT(42, "asha@example.com", "jti", time.Now())
	require.NoError(t, err)

	assert.ErrorIs(t, VerifyResetToken(token, 42, "hash"), ErrInvalidResetToken)
}
