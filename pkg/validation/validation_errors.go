package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MissingFieldsMessage is the stable message for absent required fields.
const MissingFieldsMessage = "Something is missing"

// FieldLabels maps struct field names to user-friendly labels
var FieldLabels = map[string]string{
	"Fullname":    "Full name",
	"Email":       "Email",
	"PhoneNumber": "Phone number",
	"Password":    "Password",
	"Role":        "Role",
	"Bio":         "Bio",
	"Skills":      "Skills",
}

// HasMissingField reports whether any failure is a "required" one.
func HasMissingField(err error) bool {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return false
	}
	for _, e := range validationErrors {
		if e.Tag() == "required" {
			return true
		}
	}
	return false
}

// Message collapses a validation failure into the single message sent to
// clients: the missing-field message wins over format errors.
func Message(err error) string {
	if HasMissingField(err) {
		return MissingFieldsMessage
	}
	return strings.Join(FormatValidationErrors(err), "; ")
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "max":
		if e.Field() == "Password" {
			return fmt.Sprintf("%s must be at most %s bytes", label, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", label, e.Param())
	case "account_role":
		return fmt.Sprintf("%s is not a valid account role", label)
	default:
		return fmt.Sprintf("%s failed validation (%s)", label, e.Tag())
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
