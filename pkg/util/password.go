package util

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost        = 12
	minPasswordLength = 8
)

var (
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrPasswordEntirelyDigit = errors.New("password is entirely numeric")
	ErrPasswordTooCommon     = errors.New("password is too common")
)

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "12345678": {}, "qwertyui": {},
	"qwerty123": {}, "iloveyou": {}, "11111111": {}, "abc12345": {},
}

// HashPassword hashes a plain text password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword checks if a plain text password matches a hashed password
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// ValidatePassword applies the account password policy: a minimum length,
// not purely numeric and not one of a handful of well-known passwords.
func ValidatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		return ErrPasswordEntirelyDigit
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		return ErrPasswordTooCommon
	}
	return nil
}
