package enums

// PermissionAction is one column of the permission matrix.
type PermissionAction string

const (
	PermissionActionView   PermissionAction = "view"
	PermissionActionCreate PermissionAction = "create"
	PermissionActionEdit   PermissionAction = "edit"
	PermissionActionDelete PermissionAction = "delete"
)

var validPermissionActions = []PermissionAction{
	PermissionActionView,
	PermissionActionCreate,
	PermissionActionEdit,
	PermissionActionDelete,
}

func (a PermissionAction) String() string { return string(a) }

func (a PermissionAction) IsValid() bool {
	return isValid(validPermissionActions, a)
}

func ParsePermissionAction(value string) (PermissionAction, error) {
	return parse(validPermissionActions, "permission action", value)
}

// PermissionActions returns the matrix columns in display order.
func PermissionActions() []PermissionAction {
	return append([]PermissionAction(nil), validPermissionActions...)
}

// PermissionScope names who a permission matrix applies to.
type PermissionScope string

const (
	PermissionScopeRole   PermissionScope = "role"
	PermissionScopeAgency PermissionScope = "agency"
	PermissionScopeUser   PermissionScope = "user"
)

var validPermissionScopes = []PermissionScope{PermissionScopeRole, PermissionScopeAgency, PermissionScopeUser}

func (s PermissionScope) IsValid() bool {
	return isValid(validPermissionScopes, s)
}

func ParsePermissionScope(value string) (PermissionScope, error) {
	return parse(validPermissionScopes, "permission scope", value)
}
