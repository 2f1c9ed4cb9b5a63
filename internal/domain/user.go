package domain

const (
	RoleBanned     = "BANNED"
	RoleUser       = "USER"
	RoleStoreAdmin = "STORE_ADMIN"
	RoleAdmin      = "ADMIN"
)

// Roles a platform admin may assign from the user management screen.
var AssignableRoles = []string{RoleBanned, RoleUser, RoleStoreAdmin, RoleAdmin}

func ValidRole(r string) bool {
	for _, x := range AssignableRoles {
		if x == r {
			return true
		}
	}
	return false
}

type User struct {
	ID    string `db:"id"`
	Login string `db:"login"`
	Email string `db:"email"`
	Hash  string `db:"password_hash"`
	Role  string `db:"role"`
}

func (u *User) CanAdministerStores() bool {
	return u != nil && (u.Role == RoleStoreAdmin || u.Role == RoleAdmin)
}
