package auth

import (
	"regexp"

	"github.com/anketahub/anketa-api/internal/domain"
)

// Credential formats. The password alphabet deliberately admits Cyrillic
// letters alongside Latin ones; the username must start with a letter and be
// 8 to 20 characters total.
var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	passwordPattern = regexp.MustCompile(`^[а-яА-Яa-zA-Z0-9]{8,20}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]{7,19}$`)
)

// ValidateEmail checks the email against the accepted format.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return domain.ErrInvalidEmail
	}
	return nil
}

// ValidatePassword checks the password against the accepted format.
func ValidatePassword(password string) error {
	if !passwordPattern.MatchString(password) {
		return domain.ErrInvalidPassword
	}
	return nil
}

// ValidateUsername checks the username against the accepted format.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return domain.ErrInvalidUsername
	}
	return nil
}
