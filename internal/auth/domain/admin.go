package domain

import (
	"fmt"
	"time"
)

// AdminRole partitions back-office capabilities. Allow-lists on admin
// endpoints name the roles permitted to call them.
type AdminRole string

const (
	RoleSuperAdmin    AdminRole = "super-admin"
	RoleFinanceAdmin  AdminRole = "finance-admin"
	RoleApproverAdmin AdminRole = "approver-admin"
	RoleReporterAdmin AdminRole = "reporter-admin"
)

// AdminRoles lists every valid role.
var AdminRoles = []AdminRole{
	RoleSuperAdmin,
	RoleFinanceAdmin,
	RoleApproverAdmin,
	RoleReporterAdmin,
}

// ParseAdminRole validates a role string.
func ParseAdminRole(s string) (AdminRole, error) {
	for _, r := range AdminRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("domain: unknown admin role %q", s)
}

func (r AdminRole) Valid() bool {
	_, err := ParseAdminRole(string(r))
	return err == nil
}

func (r AdminRole) String() string { return string(r) }

type Admin struct {
	ID           string
	Name         string
	Email        string
	PhoneNumber  string
	PasswordHash string
	Role         AdminRole
	IsActive     bool

	// CreatedBy is the id of the admin who provisioned this account, empty
	// for the seeded root admin.
	CreatedBy string

	LastLoginTime *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
