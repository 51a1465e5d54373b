package types

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrPitchNotFound        = errors.New("pitch not found")
	ErrPitchFileNotFound    = errors.New("pitch file not found")
	ErrGrantNotFound        = errors.New("unlock grant not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPreferencesNotFound  = errors.New("investor preferences not found")
	ErrObjectNotFound       = errors.New("storage object not found")

	// ErrFileAlreadyTerminal is returned by conditional updates when the
	// record left its initial state before the write landed.
	ErrFileAlreadyTerminal = errors.New("pitch file already in a terminal state")

	ErrWrongRole = errors.New("action not permitted for this account type")
)
