package constants

import "fmt"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// role gate message
const ErrOnlyAdminsCanAccess = "Only admins may access %s."

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

// grouped role slices
var (
	AllRoles = []string{
		RoleAdmin,
		RoleStaff,
	}

	AdminOnly = []string{
		RoleAdmin,
	}
)

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
