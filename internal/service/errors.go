package service

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("operation not permitted")
	ErrAccountDisabled    = errors.New("account is deactivated")
	ErrNotEligible        = errors.New("no completed purchase of this product")
	ErrPaymentGateway     = errors.New("payment gateway unavailable")
	// ErrPaymentVerificationFailed means the gateway reported a terminal
	// non-success state for the intent.
	ErrPaymentVerificationFailed = errors.New("payment was not completed")
)
