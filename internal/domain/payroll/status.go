package payroll

// nextStatus validates a payroll status transition. Same-status updates are
// idempotent no-ops; only draft→processed and processed→paid move forward.
func nextStatus(from, to string) (noop bool, err error) {
	if from == to {
		return true, nil
	}
	switch {
	case from == StatusDraft && to == StatusProcessed:
		return false, nil
	case from == StatusProcessed && to == StatusPaid:
		return false, nil
	default:
		return false, ErrInvalidTransition
	}
}
