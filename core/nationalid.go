package core

import (
	"regexp"

	"github.com/pkg/errors"
)

var (
	ErrInvalidNationalID = errors.New("national_id must be digits only and 10–15 characters.")

	nationalIDRegex = regexp.MustCompile(`^\d{10,15}$`)
)

// IsValidNationalID reports whether s is made of 10 to 15 ASCII digits.
func IsValidNationalID(s string) bool {
	return nationalIDRegex.MatchString(s)
}

func ValidateNationalID(s string) error {
	if !IsValidNationalID(s) {
		return ErrInvalidNationalID
	}
	return nil
}
