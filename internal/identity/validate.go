package identity

import (
	"regexp"
	"unicode/utf8"

	"spokd/internal/core"
)

const maxLocationLen = 120

var (
	phonePattern    = regexp.MustCompile(`^\+[1-9][0-9]{5,14}$`)
	codePattern     = regexp.MustCompile(`^[0-9]{6}$`)
	nicknamePattern = regexp.MustCompile(`^[\p{L}\p{N}_]{2,32}$`)
)

func validatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return core.ErrInvalidPhone
	}
	return nil
}

func validateCode(code string) error {
	if !codePattern.MatchString(code) {
		return core.ErrInvalidCode
	}
	return nil
}

func validateNickname(nickname string) error {
	if !nicknamePattern.MatchString(nickname) {
		return core.ErrInvalidNickname
	}
	return nil
}

func validateGender(gender string) error {
	switch gender {
	case "male", "female", "other":
		return nil
	default:
		return core.ErrInvalidGender
	}
}

func validateLocation(location string) error {
	if utf8.RuneCountInString(location) > maxLocationLen {
		return core.ErrInvalidLocation
	}
	return nil
}
