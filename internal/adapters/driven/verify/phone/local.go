// Package phone provides phone number verification adapters: a local
// syntactic validator and a carrier-lookup HTTP client.
package phone

import (
	"context"
	"strings"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
)

// Ensure LocalVerifier implements the interface.
var _ driven.PhoneVerifier = (*LocalVerifier)(nil)

// E.164 allows at most 15 digits; anything under 7 is not a dialable
// subscriber number anywhere.
const (
	minDigits = 7
	maxDigits = 15
)

// LocalVerifier validates phone numbers syntactically without any
// network calls. It cannot determine line type or carrier; valid numbers
// classify as unknown.
type LocalVerifier struct{}

// NewLocalVerifier creates a local phone validator.
func NewLocalVerifier() *LocalVerifier {
	return &LocalVerifier{}
}

// Check validates the number's format.
func (v *LocalVerifier) Check(_ context.Context, phone string) (*domain.PhoneCheck, error) {
	return &domain.PhoneCheck{Valid: validNumber(phone)}, nil
}

// validNumber reports whether the input looks like a dialable number:
// an optional leading +, 7-15 digits, and only digits, spaces and the
// usual separator punctuation in between.
func validNumber(phone string) bool {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false
	}

	rest := strings.TrimPrefix(phone, "+")
	digits := 0
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
			// separators are fine
		default:
			return false
		}
	}
	return digits >= minDigits && digits <= maxDigits
}
