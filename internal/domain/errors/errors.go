package errors

import "errors"

var (
	// ErrIllegalTransition signals an event that is not defined for the
	// entity's current state. Nothing is mutated and nothing is logged.
	ErrIllegalTransition = errors.New("illegal transition")
	// ErrVersionConflict signals an optimistic lock mismatch. The caller
	// must re-read and retry.
	ErrVersionConflict = errors.New("version conflict")

	ErrQuotationNotFound  = errors.New("quotation not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOverrideNotFound   = errors.New("override not found")
	ErrFulfilmentNotFound = errors.New("fulfilment not found")
	// ErrCreditProfileMissing is returned when a credit check cannot run
	// because the customer has no credit profile.
	ErrCreditProfileMissing = errors.New("credit profile missing")

	// ErrOverrideAlreadyActive rejects a second pending or approved
	// override of the same kind for the same order.
	ErrOverrideAlreadyActive = errors.New("override already active")
	// ErrConfirmationMismatch is a failed delivery confirmation attempt.
	// Fulfilment state is unchanged and retry is permitted.
	ErrConfirmationMismatch = errors.New("confirmation pin mismatch")

	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
)
