package auth

import "errors"

// Role is an authorisation tier.
type Role string

// Roles.
const (
	// RoleViewer may read device state and subscribe to events.
	RoleViewer Role = "viewer"

	// RoleOperator may also change lighting, DPI and poll rate.
	RoleOperator Role = "operator"

	// RoleAdmin may also change device modes, suspend, resume and rescan.
	RoleAdmin Role = "admin"
)

// ValidRoles lists every role.
var ValidRoles = []Role{RoleViewer, RoleOperator, RoleAdmin}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, v := range ValidRoles {
		if v == r {
			return true
		}
	}
	return false
}

// User is one configured API account.
type User struct {
	Username     string
	PasswordHash string
	Role         Role
}

// Sentinel errors.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenInvalid       = errors.New("auth: invalid token")
	ErrInvalidHash        = errors.New("auth: invalid password hash")
	ErrForbidden          = errors.New("auth: insufficient permissions")
)
