package partner

import (
	"regexp"
	"strings"

	"github.com/qms/backend/internal/domain/shared"
)

const (
	maxCodeLength  = 50
	maxNameLength  = 200
	maxEmailLength = 200
	maxPhoneLength = 50
)

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+\.]+$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func validateCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return shared.NewValidationError("REQUIRED", "code", "code is required")
	}
	if len(code) > maxCodeLength {
		return shared.NewValidationError("INVALID_CODE", "code", "code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.') {
			return shared.NewValidationError("INVALID_CODE", "code",
				"code can only contain letters, numbers, dots, underscores, and hyphens")
		}
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewValidationError("REQUIRED", "name", "name is required")
	}
	if len(name) > maxNameLength {
		return shared.NewValidationError("INVALID_NAME", "name", "name cannot exceed 200 characters")
	}
	return nil
}

func validatePhone(field, phone string) error {
	if phone == "" {
		return nil
	}
	if len(phone) > maxPhoneLength {
		return shared.NewValidationError("INVALID_PHONE", field, "phone number cannot exceed 50 characters")
	}
	if !phonePattern.MatchString(phone) {
		return shared.NewValidationError("INVALID_PHONE", field, "invalid phone number format")
	}
	return nil
}

func validateEmail(field, email string) error {
	if email == "" {
		return nil
	}
	if len(email) > maxEmailLength {
		return shared.NewValidationError("INVALID_EMAIL", field, "email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewValidationError("INVALID_EMAIL", field, "invalid email format")
	}
	return nil
}
