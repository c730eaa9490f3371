package enums

// UserRole is the CRM account role. It drives the default permission matrix
// and the dashboard a user lands on after login.
type UserRole string

const (
	UserRoleSuperAdmin  UserRole = "super_admin"
	UserRoleAgencyAdmin UserRole = "agency_admin"
	UserRoleAgent       UserRole = "agent"
	UserRoleStaff       UserRole = "staff"
	UserRoleUser        UserRole = "user"
)

var validUserRoles = []UserRole{
	UserRoleSuperAdmin,
	UserRoleAgencyAdmin,
	UserRoleAgent,
	UserRoleStaff,
	UserRoleUser,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	return isValid(validUserRoles, r)
}

// IsAdmin reports whether the role administers listings directly.
func (r UserRole) IsAdmin() bool {
	return r == UserRoleSuperAdmin || r == UserRoleAgencyAdmin
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	return parse(validUserRoles, "user role", value)
}

// UserRoles lists every known role in display order.
func UserRoles() []UserRole {
	return append([]UserRole(nil), validUserRoles...)
}
