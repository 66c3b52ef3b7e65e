// Package services defines the business logic for the catalog and the
// contact verification flow. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes should be performed at the
// handler layer.
package services

import "errors"

// Catalog errors.
var (
	// ErrCategoryNotFound indicates that the requested category does not exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrProductNotFound indicates that the requested product does not exist.
	ErrProductNotFound = errors.New("product not found")
)

// Contact verification errors.
var (
	// ErrInvalidInput is returned when a submission or verification payload
	// fails service-level validation (empty field, malformed email, wrong
	// code shape). Handlers normally reject these at binding time; the
	// service re-checks so it is safe to call directly.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDeliveryFailed is returned when the verification email could not be
	// dispatched. The pending entry is already stored and stays live until
	// its TTL elapses or the submission is retried (which overwrites it).
	ErrDeliveryFailed = errors.New("verification email delivery failed")

	// ErrVerificationFailed is returned for every unsuccessful code check:
	// no pending entry, expired entry, wrong code, or a lost race against a
	// concurrent attempt. The cases are deliberately not distinguishable by
	// callers so responses cannot be used to probe which emails have codes
	// pending; the wrapped cause remains available for server-side logs.
	ErrVerificationFailed = errors.New("invalid or expired verification code")
)
