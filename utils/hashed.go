package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt silently truncates beyond 72 bytes; refusing longer input keeps
// the whole password in the hash.
const maxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

func GenerateHashValue(original string) (string, error) {
	if len(original) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(original), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

func VerifyHashValue(original, hashedValue string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedValue), []byte(original))
}
