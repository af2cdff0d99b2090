package leave

// statusTransitions is the closed transition table for leave requests. The
// approved→cancelled edge has an extra not-yet-started guard enforced by the
// service.
var statusTransitions = map[string]map[string]bool{
	StatusPending: {
		StatusApproved:  true,
		StatusRejected:  true,
		StatusCancelled: true,
	},
	StatusApproved: {
		StatusCancelled: true,
	},
}

func canTransition(from, to string) bool {
	return statusTransitions[from][to]
}
