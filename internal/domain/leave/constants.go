package leave

const (
	TypeAnnual    = "annual"
	TypeSick      = "sick"
	TypePersonal  = "personal"
	TypeMaternity = "maternity"
	TypePaternity = "paternity"
	TypeUnpaid    = "unpaid"

	// TypeCasual is a legacy alias of TypePersonal kept for older clients.
	TypeCasual = "casual"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// Types lists the canonical leave types in policy order.
var Types = []string{TypeAnnual, TypeSick, TypePersonal, TypeMaternity, TypePaternity, TypeUnpaid}

func ValidType(leaveType string) bool {
	if leaveType == TypeCasual {
		return true
	}
	for _, t := range Types {
		if t == leaveType {
			return true
		}
	}
	return false
}

// CanonicalType maps the casual alias onto personal.
func CanonicalType(leaveType string) string {
	if leaveType == TypeCasual {
		return TypePersonal
	}
	return leaveType
}
