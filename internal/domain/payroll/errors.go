package payroll

import "errors"

var (
	ErrNotFound               = errors.New("payroll record not found")
	ErrInvalidPeriod          = errors.New("pay period must be formatted YYYY-MM")
	ErrInvalidTransition      = errors.New("invalid payroll status transition")
	ErrPaymentDetailsRequired = errors.New("payment method is required to mark a record paid")
	ErrNotAllowed             = errors.New("actor not allowed to perform this action")
)
