package auth

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

var (
	ErrPasswordTooShort   = errors.New("This password is too short. It must contain at least 8 characters.")
	ErrPasswordNumeric    = errors.New("This password is entirely numeric.")
	ErrPasswordCommon     = errors.New("This password is too common.")
	ErrPasswordSimilar    = errors.New("The password is too similar to the account details.")
	ErrPasswordsDontMatch = errors.New("Password fields didn't match.")
)

var commonPasswords = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"12345678":   {},
	"123456789":  {},
	"qwertyuiop": {},
	"iloveyou":   {},
	"letmein1":   {},
	"welcome1":   {},
	"abc12345":   {},
	"sunshine":   {},
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword enforces the password policy. attributes are account
// values (username, email) the password must not repeat.
func ValidatePassword(password string, attributes ...string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		return ErrPasswordNumeric
	}

	lower := strings.ToLower(password)

	if _, ok := commonPasswords[lower]; ok {
		return ErrPasswordCommon
	}

	for _, attr := range attributes {
		attr = strings.ToLower(strings.TrimSpace(attr))
		if attr == "" {
			continue
		}
		if local, _, found := strings.Cut(attr, "@"); found && local == lower {
			return ErrPasswordSimilar
		}
		if attr == lower {
			return ErrPasswordSimilar
		}
	}

	return nil
}

// ValidateNewPassword checks the confirmation field and then the policy.
func ValidateNewPassword(password, confirm string, attributes ...string) error {
	if password != confirm {
		return ErrPasswordsDontMatch
	}
	return ValidatePassword(password, attributes...)
}
