package errors

import "unicode"

// ValidateNodeName validates a node name used in a graph definition file.
// Definition files address nodes by name, so names there must be non-empty
// and printable; the in-memory graph itself puts no constraints on names.
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDefinition, "node name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidDefinition, "node name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDefinition, "node name contains control characters")
		}
	}

	return nil
}
