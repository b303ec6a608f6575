package auth

const (
	RoleWorker     = "worker"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

const (
	PermProjectsRead      = "core.projects.read"
	PermProjectsWrite     = "core.projects.write"
	PermMembersRead       = "core.members.read"
	PermMembersWrite      = "core.members.write"
	PermTasksRead         = "tasks.read"
	PermTasksWrite        = "tasks.write"
	PermAttendanceRead    = "attendance.read"
	PermAttendanceWrite   = "attendance.write"
	PermAttendanceApprove = "attendance.approve"
	PermBudgetRead        = "budget.read"
	PermBillingRead       = "billing.read"
	PermBillingWrite      = "billing.write"
	PermInvoiceIssue      = "billing.invoices.issue"
	PermReportsRead       = "reports.read"
	PermAuditRead         = "audit.read"
	PermSystemAdmin       = "admin.system"
)

var DefaultPermissions = []string{
	PermProjectsRead,
	PermProjectsWrite,
	PermMembersRead,
	PermMembersWrite,
	PermTasksRead,
	PermTasksWrite,
	PermAttendanceRead,
	PermAttendanceWrite,
	PermAttendanceApprove,
	PermBudgetRead,
	PermBillingRead,
	PermBillingWrite,
	PermInvoiceIssue,
	PermReportsRead,
	PermAuditRead,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleWorker: {
		PermProjectsRead,
		PermTasksRead,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermBudgetRead,
		PermReportsRead,
	},
	RoleSupervisor: {
		PermProjectsRead,
		PermMembersRead,
		PermTasksRead,
		PermTasksWrite,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermAttendanceApprove,
		PermBudgetRead,
		PermBillingRead,
		PermReportsRead,
	},
	RoleAdmin: {
		PermProjectsRead,
		PermProjectsWrite,
		PermMembersRead,
		PermMembersWrite,
		PermTasksRead,
		PermTasksWrite,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermAttendanceApprove,
		PermBudgetRead,
		PermBillingRead,
		PermBillingWrite,
		PermInvoiceIssue,
		PermReportsRead,
		PermAuditRead,
		PermSystemAdmin,
	},
}
