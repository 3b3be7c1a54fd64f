package policy

import "errors"

// Domain errors for dispatch policy.
var (
	// ErrBudgetOutOfRange indicates the budget preference is outside [0, 1].
	ErrBudgetOutOfRange = errors.New("budget preference out of range")

	// ErrQualityOutOfRange indicates the quality preference is outside [0, 1].
	ErrQualityOutOfRange = errors.New("quality preference out of range")

	// ErrPrivacyRestricted indicates privacy mode blocked a non-local capability.
	ErrPrivacyRestricted = errors.New("privacy mode restricts dispatch to local capabilities")
)
