package service

import (
	"unicode"

	"github.com/canteen-rush/internal/config"
)

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength <= 0 && !policy.RequireNumber {
		return nil
	}

	if policy.MinLength > 0 {
		if len([]rune(password)) < policy.MinLength {
			return ErrPasswordTooWeak
		}
	}

	if policy.RequireNumber {
		hasNumber := false
		for _, r := range password {
			if unicode.IsDigit(r) {
				hasNumber = true
				break
			}
		}
		if !hasNumber {
			return ErrPasswordTooWeak
		}
	}

	return nil
}
