package auth

// Permission is a named capability checked by the API.
type Permission string

// Permissions.
const (
	// PermDeviceRead covers every query and the event stream.
	PermDeviceRead Permission = "device:read"

	// PermDeviceOperate covers effects, brightness, DPI, poll rate and restore.
	PermDeviceOperate Permission = "device:operate"

	// PermDeviceConfigure covers device mode, custom frames, effect sync,
	// suspend and resume.
	PermDeviceConfigure Permission = "device:configure"

	// PermSystemAdmin covers discovery and device removal.
	PermSystemAdmin Permission = "system:admin"
)

// rolePermissions is the whole authorisation model.
var rolePermissions = map[Role][]Permission{
	RoleViewer: {
		PermDeviceRead,
	},
	RoleOperator: {
		PermDeviceRead,
		PermDeviceOperate,
	},
	RoleAdmin: {
		PermDeviceRead,
		PermDeviceOperate,
		PermDeviceConfigure,
		PermSystemAdmin,
	},
}

// HasPermission reports whether role grants perm.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsForRole returns a copy of the permissions granted to role,
// or nil for an unknown role.
func PermissionsForRole(role Role) []Permission {
	perms := rolePermissions[role]
	if perms == nil {
		return nil
	}
	return append([]Permission(nil), perms...)
}
