package domain

import "errors"

var (
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrNotOwner            = errors.New("not owner")
	ErrNotSeller           = errors.New("not seller")
	ErrDuplicateMember     = errors.New("duplicate member")
	ErrInvalidPrice        = errors.New("invalid price")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrListingInactive     = errors.New("listing inactive")
	ErrNotFound            = errors.New("not found")
	ErrPolicyRejected      = errors.New("policy rejected")

	// ErrWrongVersion signals an incompatible deployment, not an access
	// decision. Callers must abort the whole operation instead of treating
	// it as a deny.
	ErrWrongVersion = errors.New("wrong package version")
)
