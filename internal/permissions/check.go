package permissions

import (
	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
)

// Module names shown in the permission editor.
const (
	ModuleDashboard     = "dashboard"
	ModuleUsers         = "users"
	ModuleAgents        = "agents"
	ModuleAgencies      = "agencies"
	ModuleLeads         = "leads"
	ModuleProperties    = "properties"
	ModuleSubscriptions = "subscriptions"
	ModuleTransactions  = "transactions"
	ModulePermissions   = "permissions"
	ModuleSettings      = "settings"
	ModuleReports       = "reports"
)

// DefaultModules is the editor's row order.
var DefaultModules = []string{
	ModuleDashboard,
	ModuleUsers,
	ModuleAgents,
	ModuleAgencies,
	ModuleLeads,
	ModuleProperties,
	ModuleSubscriptions,
	ModuleTransactions,
	ModulePermissions,
	ModuleSettings,
	ModuleReports,
}

// Check answers whether role may perform action on module given matrix.
// super_admin is always allowed; everyone else gets exactly the stored flag,
// false when the module or action is missing.
func Check(role enums.UserRole, matrix backend.PermissionMatrix, module string, action enums.PermissionAction) bool {
	if role == enums.UserRoleSuperAdmin {
		return true
	}
	actions, ok := matrix[module]
	if !ok {
		return false
	}
	return Get(actions, action)
}

// Get reads one action flag.
func Get(a backend.Actions, action enums.PermissionAction) bool {
	switch action {
	case enums.PermissionActionView:
		return a.View
	case enums.PermissionActionCreate:
		return a.Create
	case enums.PermissionActionEdit:
		return a.Edit
	case enums.PermissionActionDelete:
		return a.Delete
	}
	return false
}

// Set writes one action flag.
func Set(a backend.Actions, action enums.PermissionAction, value bool) backend.Actions {
	switch action {
	case enums.PermissionActionView:
		a.View = value
	case enums.PermissionActionCreate:
		a.Create = value
	case enums.PermissionActionEdit:
		a.Edit = value
	case enums.PermissionActionDelete:
		a.Delete = value
	}
	return a
}

// Clone deep-copies a matrix.
func Clone(m backend.PermissionMatrix) backend.PermissionMatrix {
	out := make(backend.PermissionMatrix, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// withDefaults adds an all-false row for every editor module the matrix lacks.
func withDefaults(m backend.PermissionMatrix) backend.PermissionMatrix {
	out := Clone(m)
	for _, module := range DefaultModules {
		if _, ok := out[module]; !ok {
			out[module] = backend.Actions{}
		}
	}
	return out
}
