package capability

import "errors"

// Domain errors for the capability system.
var (
	// ErrInvalidName indicates a capability was created with an empty name.
	ErrInvalidName = errors.New("capability name cannot be empty")

	// ErrNoHandler indicates a capability was created without a handler.
	ErrNoHandler = errors.New("capability has no handler")

	// ErrNotFound indicates the requested capability was not found.
	ErrNotFound = errors.New("capability not found")

	// ErrAlreadyRegistered indicates a capability with the same name exists.
	ErrAlreadyRegistered = errors.New("capability already registered")

	// ErrNilCapability indicates a nil capability was passed to Register.
	ErrNilCapability = errors.New("capability cannot be nil")

	// ErrNotPermitted indicates dispatch policy rejected the capability.
	ErrNotPermitted = errors.New("capability not permitted by policy")
)
