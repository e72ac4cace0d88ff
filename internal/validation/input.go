package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinRequestTitleLength = 3
	MaxRequestTitleLength = 200
	MinRequestDescriptionLength = 10
	MaxRequestDescriptionLength = 5000
	MinUpdateNoteLength = 1
	MaxUpdateNoteLength = 2000
	MinBugTitleLength = 3
	MaxBugTitleLength = 200
	MaxBugDescriptionLength = 5000
	MaxCommentLength = 2000
	MaxLogMessageLength = 2000
	MaxReferenceURLLength = 500
	MaxTestingTypesCount = 20
	MaxTestingTypeLength = 100
	MaxQuoteAmount = 100000000.0 // 100 миллионов
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	// Базовая проверка формата
	if !strings.Contains(email, "@") {
		return fmt.Errorf("email должен содержать символ @")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("доменная часть email должна содержать точку")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	// Только буквы, цифры и подчеркивание
	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	if len(username) > 0 && unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateRequestTitle проверяет заголовок заявки на тестирование.
func ValidateRequestTitle(title string) error {
	if title == "" {
		return fmt.Errorf("заголовок заявки обязателен")
	}

	title = strings.TrimSpace(title)

	if err := ValidateLength("заголовок заявки", title, MinRequestTitleLength, MaxRequestTitleLength); err != nil {
		return err
	}

	return nil
}

// ValidateRequestDescription проверяет описание заявки.
func ValidateRequestDescription(description string) error {
	if description == "" {
		return fmt.Errorf("описание заявки обязательно")
	}

	description = strings.TrimSpace(description)

	if err := ValidateLength("описание заявки", description, MinRequestDescriptionLength, MaxRequestDescriptionLength); err != nil {
		return err
	}

	return nil
}

// ValidateTestingTypes проверяет список видов тестирования.
func ValidateTestingTypes(types []string) error {
	if len(types) == 0 {
		return fmt.Errorf("необходимо выбрать хотя бы один вид тестирования")
	}
	if len(types) > MaxTestingTypesCount {
		return fmt.Errorf("количество видов тестирования не может превышать %d", MaxTestingTypesCount)
	}

	seen := make(map[string]bool)
	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" {
			return fmt.Errorf("вид тестирования не может быть пустым")
		}

		if utf8.RuneCountInString(t) > MaxTestingTypeLength {
			return fmt.Errorf("вид тестирования не может быть длиннее %d символов", MaxTestingTypeLength)
		}

		// Проверка на дубликаты (без учета регистра)
		tLower := strings.ToLower(t)
		if seen[tLower] {
			return fmt.Errorf("вид тестирования '%s' указан дважды", t)
		}
		seen[tLower] = true
	}

	return nil
}

// ValidateBugTitle проверяет заголовок баг-репорта.
func ValidateBugTitle(title string) error {
	if title == "" {
		return fmt.Errorf("заголовок баг-репорта обязателен")
	}

	title = strings.TrimSpace(title)

	if err := ValidateLength("заголовок баг-репорта", title, MinBugTitleLength, MaxBugTitleLength); err != nil {
		return err
	}

	return nil
}

// ValidateBugDescription проверяет описание баг-репорта.
func ValidateBugDescription(description *string) error {
	if description != nil && *description != "" {
		desc := strings.TrimSpace(*description)
		if err := ValidateLength("описание баг-репорта", desc, 0, MaxBugDescriptionLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateUpdateNote проверяет заметку в обновлении по заявке.
func ValidateUpdateNote(note string) error {
	if strings.TrimSpace(note) == "" {
		return fmt.Errorf("заметка обязательна")
	}

	note = strings.TrimSpace(note)

	if err := ValidateLength("заметка", note, MinUpdateNoteLength, MaxUpdateNoteLength); err != nil {
		return err
	}

	return nil
}

// ValidateComment проверяет комментарий к баг-репорту.
func ValidateComment(content string) error {
	if content == "" {
		return fmt.Errorf("комментарий не может быть пустым")
	}

	content = strings.TrimSpace(content)

	if err := ValidateLength("комментарий", content, 1, MaxCommentLength); err != nil {
		return err
	}

	return nil
}

// ValidateQuoteAmount проверяет сумму предложения по стоимости.
func ValidateQuoteAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("сумма должна быть положительной")
	}
	if amount > MaxQuoteAmount {
		return fmt.Errorf("сумма не может превышать %.0f", MaxQuoteAmount)
	}
	return nil
}

// ValidateReferenceURL проверяет ссылку на тестируемый ресурс.
func ValidateReferenceURL(link *string) error {
	if link != nil && *link != "" {
		linkStr := strings.TrimSpace(*link)

		if err := ValidateLength("ссылка", linkStr, 0, MaxReferenceURLLength); err != nil {
			return err
		}

		parsedURL, err := url.Parse(linkStr)
		if err != nil {
			return fmt.Errorf("некорректный формат URL")
		}

		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("ссылка должна начинаться с http:// или https://")
		}

		if parsedURL.Host == "" {
			return fmt.Errorf("ссылка должна содержать доменное имя")
		}
	}
	return nil
}
