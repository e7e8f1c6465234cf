package errors

import (
	stdErrors "errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"illegal transition", ErrIllegalTransition},
		{"version conflict", ErrVersionConflict},
		{"quotation not found", ErrQuotationNotFound},
		{"order not found", ErrOrderNotFound},
		{"override not found", ErrOverrideNotFound},
		{"fulfilment not found", ErrFulfilmentNotFound},
		{"credit profile missing", ErrCreditProfileMissing},
		{"override already active", ErrOverrideAlreadyActive},
		{"confirmation mismatch", ErrConfirmationMismatch},
		{"invalid amount", ErrInvalidAmount},
		{"invalid credentials", ErrInvalidCredentials},
		{"already exists", ErrAlreadyExists},
		{"not found", ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.err) {
				t.Fatalf("expected error to match itself: %v", tc.err)
			}
		})
	}
}
