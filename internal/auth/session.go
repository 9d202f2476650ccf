package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sanjeevni-health/sanjeevni/internal/models"
	"gorm.io/gorm"
)

var ErrSessionRevoked = errors.New("session has been revoked")

// IssueSession records a new session for user and returns its signed
// bearer token.
func IssueSession(tx *gorm.DB, user models.User) (string, error) {
	now := time.Now().UTC()
	jti := uuid.NewString()

	token, expiresAt, err := GenerateJWT(user.ID, user.Email, jti, now)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	session := models.Session{
		UserID:    user.ID,
		JTI:       jti,
		ExpiresAt: expiresAt,
	}

	if err := tx.Create(&session).Error; err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return token, nil
}

// ActiveSession loads the session behind claims and rejects revoked or
// expired ones.
func ActiveSession(tx *gorm.DB, claims *Claims) (models.Session, error) {
	var session models.Session

	err := tx.Where("jti = ? AND user_id = ?", claims.ID, claims.UserID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return session, ErrSessionRevoked
		}
		return session, err
	}

	if !session.Active(time.Now().UTC()) {
		return session, ErrSessionRevoked
	}

	return session, nil
}

func RevokeSession(tx *gorm.DB, userID uint, jti string) error {
	return tx.Model(&models.Session{}).
		Where("user_id = ? AND jti = ? AND revoked_at IS NULL", userID, jti).
		Update("revoked_at", time.Now().UTC()).Error
}

func RevokeAllSessions(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.Session{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", time.Now().UTC()).Error
}
