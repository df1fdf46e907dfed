package models

type Permission string

const (
	PermDocumentsRead  Permission = "documents.read"
	PermDocumentsWrite Permission = "documents.write"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Role to permission mapping is static and defined entirely in code
var rolePermissions = map[Role][]Permission{
	RoleUser:  {PermDocumentsRead},
	RoleAdmin: {PermDocumentsRead, PermDocumentsWrite},
}

// Permissions returns the permission set attached to the role
// Unknown roles have no permissions
func (r Role) Permissions() []Permission {
	perms := rolePermissions[r]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

func (r Role) Has(p Permission) bool {
	for _, perm := range rolePermissions[r] {
		if perm == p {
			return true
		}
	}
	return false
}

func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}
