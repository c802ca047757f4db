package service

import "errors"

var (
	// ErrInvalidRequest means a required field is missing or malformed.
	// Always client-fixable.
	ErrInvalidRequest = errors.New("missing required fields")

	// ErrDuplicateTransaction means the transaction id already belongs to a
	// confirmed purchase.
	ErrDuplicateTransaction = errors.New("transaction ID already used")

	// ErrNotFound means no pending record carries the presented code.
	ErrNotFound = errors.New("confirmation code not found")
)
