package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateName validates a table entry or argument name.
// Names are opaque to the engine but must be printable, non-empty strings
// so that they survive a JSON round trip and show up legibly in renderings.
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}

	return nil
}

// functionNameRegex matches dotted algorithm names such as "Image.add".
var functionNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidateFunctionName validates the name of a remote algorithm.
func ValidateFunctionName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "function name cannot be empty")
	}

	if !functionNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid function name: %q", name)
	}

	return nil
}

// ValidateInputPath validates a path to an input document.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidateInputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") {
		return New(ErrCodeInvalidPath, "path must name a file, not a directory")
	}

	return nil
}
