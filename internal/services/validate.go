package services

import (
	"strings"

	"github.com/promptstack-dev/promptstack/internal/apperrors"
)

const maxNameLength = 200

func validateName(field, name string) (string, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return "", apperrors.Newf(apperrors.KindValidation, "%s is required", field)
	}

	if len(name) > maxNameLength {
		return "", apperrors.Newf(apperrors.KindValidation, "%s must be at most %d characters", field, maxNameLength)
	}

	return name, nil
}

func validateText(text string) (string, error) {
	text = strings.TrimSpace(text)

	if text == "" {
		return "", apperrors.New(apperrors.KindValidation, "Text is required")
	}

	return text, nil
}
