package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// EmailRegex validates email format
	EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// UsernameRegex validates uploader and account names
	UsernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// GameTagRegex validates game tags used for feed grouping
	GameTagRegex = regexp.MustCompile(`^[a-zA-Z0-9 _:'\-]+$`)
)

// ValidateEmail validates an email address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("email is too long (max 254 characters)")
	}
	if !EmailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateUsername validates a username.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters")
	}
	if len(username) > 50 {
		return fmt.Errorf("username is too long (max 50 characters)")
	}
	if !UsernameRegex.MatchString(username) {
		return fmt.Errorf("username contains invalid characters (only letters, numbers, _, - allowed)")
	}
	return nil
}

// ValidatePassword validates a password.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password is too long (max 128 characters)")
	}
	return nil
}

// ValidateClipTitle validates a clip title.
func ValidateClipTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > 120 {
		return fmt.Errorf("title is too long (max 120 characters)")
	}
	if !utf8.ValidString(title) {
		return fmt.Errorf("title contains invalid characters")
	}
	return nil
}

// ValidateGameTag validates the game a clip is attributed to.
func ValidateGameTag(game string) error {
	game = strings.TrimSpace(game)
	if game == "" {
		return fmt.Errorf("game is required")
	}
	if len(game) > 80 {
		return fmt.Errorf("game is too long (max 80 characters)")
	}
	if !GameTagRegex.MatchString(game) {
		return fmt.Errorf("invalid game tag format")
	}
	return nil
}

// ValidateUploaderName validates the display name attached to an upload.
// Looser than account usernames, spaces allowed.
func ValidateUploaderName(user string) error {
	user = strings.TrimSpace(user)
	if user == "" {
		return fmt.Errorf("user is required")
	}
	if utf8.RuneCountInString(user) > 50 {
		return fmt.Errorf("user is too long (max 50 characters)")
	}
	if !utf8.ValidString(user) {
		return fmt.Errorf("user contains invalid characters")
	}
	return nil
}

// ValidateNonEmptyString validates that string is not empty after trimming.
func ValidateNonEmptyString(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateStringLength validates string length in runes.
func ValidateStringLength(s string, min, max int, fieldName string) error {
	length := utf8.RuneCountInString(s)
	if length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if length > max {
		return fmt.Errorf("%s is too long (max %d characters)", fieldName, max)
	}
	return nil
}
