package service

import (
	"strings"

	"github.com/Lavodnos/stafflink/internal/model"
)

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateDocument checks the identity document against the rules of its
// type: a DNI is exactly eight digits, a CE is nine or twelve characters.
func ValidateDocument(docType, number string) error {
	number = strings.ToUpper(strings.TrimSpace(number))
	switch docType {
	case model.DocumentTypeDNI:
		if len(number) != 8 || !isDigits(number) {
			return &ValidationError{Field: "document_number", Message: "a DNI must be exactly 8 digits"}
		}
	case model.DocumentTypeCE:
		if len(number) != 9 && len(number) != 12 {
			return &ValidationError{Field: "document_number", Message: "a CE must be 9 or 12 characters"}
		}
	default:
		return &ValidationError{Field: "document_type", Message: "document type must be dni or ce"}
	}
	return nil
}

// ValidateDocumentKind checks an upload kind against the closed set.
func ValidateDocumentKind(kind string) error {
	for _, known := range model.DocumentKinds {
		if kind == known {
			return nil
		}
	}
	return &ValidationError{Field: "kind", Message: "unknown document kind: " + kind}
}
