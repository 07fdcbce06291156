package enums

import "fmt"

// UserRole identifies which portal a user belongs to and which capabilities
// they carry. "user" is a workspace owner; managers, drivers, dropshippers
// and investors all hang off a workspace via their created_by back-reference.
type UserRole string

const (
	UserRoleAdmin       UserRole = "admin"
	UserRoleUser        UserRole = "user"
	UserRoleManager     UserRole = "manager"
	UserRoleDropshipper UserRole = "dropshipper"
	UserRoleDriver      UserRole = "driver"
	UserRoleInvestor    UserRole = "investor"
	UserRoleCustomer    UserRole = "customer"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleUser,
	UserRoleManager,
	UserRoleDropshipper,
	UserRoleDriver,
	UserRoleInvestor,
	UserRoleCustomer,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
