package validation

import (
	"fmt"
	"unicode"
)

// ValidatePassword проверяет минимальные требования к паролю: длина от
// 8 символов, хотя бы одна заглавная и строчная буква и хотя бы одна цифра.
func ValidatePassword(password string) error {
	if len([]rune(password)) < 8 {
		return fmt.Errorf("пароль должен быть не менее 8 символов")
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	switch {
	case !upper:
		return fmt.Errorf("пароль должен содержать хотя бы одну заглавную букву")
	case !lower:
		return fmt.Errorf("пароль должен содержать хотя бы одну строчную букву")
	case !digit:
		return fmt.Errorf("пароль должен содержать хотя бы одну цифру")
	}

	return nil
}
