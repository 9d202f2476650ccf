package utils

import "gorm.io/gorm"

// OwnedBy restricts a query to rows owned by userID. Every per-user query
// goes through it.
func OwnedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("user_id = ?", userID)
	}
}

// FindOwned loads the row with id owned by userID into dest. Rows owned by
// someone else report gorm.ErrRecordNotFound.
func FindOwned(tx *gorm.DB, userID, id uint, dest interface{}) error {
	return tx.Scopes(OwnedBy(userID)).Where("id = ?", id).First(dest).Error
}
