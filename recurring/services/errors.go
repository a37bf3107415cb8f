package services

import "errors"

var (
	// ErrInvalidFrequency rejects an unrecognized frequency unit or a
	// non-positive interval. Surfaced at template creation/edit time, never
	// silently defaulted.
	ErrInvalidFrequency = errors.New("invalid frequency")

	// ErrInvalidSchedule rejects a malformed limit policy (COUNT without a
	// positive count, DATE without a date, unknown limit type).
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrAlreadyCompleted guards the terminal state: a COMPLETED template
	// can never be resumed, held or generated from again.
	ErrAlreadyCompleted = errors.New("recurring invoice already completed")

	// ErrClaimConflict means another worker holds the processing claim for
	// the template. Expected under concurrent ticks, skipped silently.
	ErrClaimConflict = errors.New("recurring invoice claimed by another worker")
)
