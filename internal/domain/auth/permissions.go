package auth

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleAdmin    = "admin"
)

const (
	PermEmployeesRead    = "employees.read"
	PermEmployeesWrite   = "employees.write"
	PermLeaveRead        = "leave_requests.read"
	PermLeaveWrite       = "leave_requests.write"
	PermLeaveApprove     = "leave_requests.approve"
	PermPayrollRead      = "payroll.read"
	PermPayrollGenerate  = "payroll.generate"
	PermPayrollApprove   = "payroll.approve"
	PermPayrollConfigure = "payroll.configure"
	PermAttendanceRead   = "attendance.read"
	PermAttendanceWrite  = "attendance.write"
	PermSettingsRead     = "settings.read"
	PermSettingsWrite    = "settings.write"
	PermAuditRead        = "audit.read"
)

var AllPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermLeaveRead,
	PermLeaveWrite,
	PermLeaveApprove,
	PermPayrollRead,
	PermPayrollGenerate,
	PermPayrollApprove,
	PermPayrollConfigure,
	PermAttendanceRead,
	PermAttendanceWrite,
	PermSettingsRead,
	PermSettingsWrite,
	PermAuditRead,
}

// RolePermissions defines the built-in grants seeded for each tenant.
// Tenants may later attach extra permissions to a role directly in the
// role_permissions table.
var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermLeaveRead,
		PermLeaveWrite,
		PermPayrollRead,
		PermAttendanceRead,
		PermAttendanceWrite,
	},
	RoleManager: {
		PermEmployeesRead,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermPayrollRead,
		PermAttendanceRead,
		PermAttendanceWrite,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermPayrollRead,
		PermPayrollGenerate,
		PermPayrollApprove,
		PermPayrollConfigure,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermSettingsRead,
		PermSettingsWrite,
	},
	RoleAdmin: AllPermissions,
}
