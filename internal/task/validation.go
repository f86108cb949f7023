package task

import "strings"

func ValidateText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrInvalidText
	}
	return trimmed, nil
}
