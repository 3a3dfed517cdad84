package errors

import (
	"strings"
	"unicode"
)

const (
	maxNameLength = 256
	maxPathLength = 500
)

// ValidateFluentName validates the name of a ground fluent such as
// "At(C1, SFO)".
//
// The rules are deliberately loose about the predicate syntax, but reject
// names that would be ambiguous in the textual literal form:
//   - No empty names or names longer than 256 characters
//   - No control characters
//   - No leading "~" (reserved for negation)
//   - No surrounding whitespace
func ValidateFluentName(name string) error {
	if err := validateName(name, ErrCodeInvalidProblem, "fluent"); err != nil {
		return err
	}
	if strings.HasPrefix(name, "~") {
		return New(ErrCodeInvalidLiteral, "fluent name cannot start with \"~\": %q", name)
	}
	return nil
}

// ValidateActionName validates the name of a ground action.
func ValidateActionName(name string) error {
	return validateName(name, ErrCodeInvalidProblem, "action")
}

func validateName(name string, code Code, what string) error {
	if name == "" {
		return New(code, "%s name cannot be empty", what)
	}
	if len(name) > maxNameLength {
		return New(code, "%s name too long (max %d characters)", what, maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(code, "%s name contains invalid control characters", what)
		}
	}
	if strings.TrimSpace(name) != name {
		return New(code, "%s name has surrounding whitespace: %q", what, name)
	}
	return nil
}

// ValidatePath validates a problem or output file path given on the command
// line or in a request.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}
