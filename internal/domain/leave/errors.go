package leave

import "errors"

var (
	ErrNotFound            = errors.New("leave request not found")
	ErrInvalidType         = errors.New("unknown leave type")
	ErrInvalidDateRange    = errors.New("start date must not be after end date")
	ErrNoWorkingDays       = errors.New("requested range contains no working days")
	ErrOverlap             = errors.New("overlapping leave request exists")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
	ErrNotPending          = errors.New("leave request is not pending")
	ErrInvalidTransition   = errors.New("invalid leave status transition")
	ErrAlreadyCancelled    = errors.New("leave request already cancelled")
	ErrTooLateToCancel     = errors.New("approved leave already started")
	ErrNotAllowed          = errors.New("actor not allowed to perform this action")
)
