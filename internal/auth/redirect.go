package auth

import "github.com/damsoledevelopers/spireleap-console/pkg/enums"

const (
	LandingPath = "/"
	LoginPath   = "/login"
)

var dashboards = map[enums.UserRole]string{
	enums.UserRoleSuperAdmin:  "/admin/dashboard",
	enums.UserRoleAgencyAdmin: "/agency/dashboard",
	enums.UserRoleAgent:       "/agent/dashboard",
	enums.UserRoleStaff:       "/staff/dashboard",
	enums.UserRoleUser:        "/customer/dashboard",
}

// DashboardFor returns the role's home page, or the landing page for
// unknown roles.
func DashboardFor(role enums.UserRole) string {
	if path, ok := dashboards[role]; ok {
		return path
	}
	return LandingPath
}
