package constants

const (
	Superadmin = "superadmin"
	Admin      = "admin"
	Manager    = "manager"
	Viewer     = "viewer"
)

// ValidRoles is the set of allowed values for the user role column.
var ValidRoles = []string{Viewer, Manager, Admin, Superadmin}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewData:          {Viewer, Manager, Admin, Superadmin},
	RecordTransaction: {Manager, Admin, Superadmin},
	ManageBudgets:     {Admin, Superadmin},
	ManageAssignments: {Manager, Admin, Superadmin},
	ManagePlans:       {Manager, Admin, Superadmin},
	AssignRole:        {Admin, Superadmin},
}

// AllowedRole returns true if role may perform the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
