package constants

const (
	ViewData          = "view_data"
	RecordTransaction = "record_transaction"
	ManageBudgets     = "manage_budgets"
	ManageAssignments = "manage_assignments"
	ManagePlans       = "manage_plans"
	AssignRole        = "assign_role"
)
