package models

import "errors"

// Validation errors: rejected before any mutation.
var (
	ErrValidation          = errors.New("validation failed")
	ErrDescriptionRequired = errors.New("occurrence description is required")
	ErrTitleRequired       = errors.New("title is required")
	ErrInvalidSchedule     = errors.New("invalid work schedule")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

// Conflict errors: the request is a no-op.
var (
	ErrAlreadyClockedIn  = errors.New("already clocked in")
	ErrNotClockedIn      = errors.New("not clocked in")
	ErrAlreadyApproved   = errors.New("user already approved")
	ErrUserExists        = errors.New("username or email already exists")
	ErrChatAlreadyLinked = errors.New("telegram chat already linked to another account")
)

// Not-found errors.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEntryNotFound    = errors.New("time entry not found")
	ErrOrderNotFound    = errors.New("service order not found")
	ErrDocumentNotFound = errors.New("document not found")
)

// Access errors.
var (
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account not approved or inactive")
)

// IsValidation reports whether err belongs to the validation group.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDescriptionRequired) ||
		errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrInvalidSchedule)
}

// IsConflict reports whether err is a rejected no-op state change.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyClockedIn) ||
		errors.Is(err, ErrNotClockedIn) ||
		errors.Is(err, ErrAlreadyApproved) ||
		errors.Is(err, ErrUserExists) ||
		errors.Is(err, ErrChatAlreadyLinked)
}

// IsNotFound reports whether err names a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrDocumentNotFound)
}
