package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleAdmin    = "ADMIN"
	RoleBusiness = "BUSINESS"
	RoleConsumer = "CONSUMER"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{Code: RoleAdmin, Name: "Administrator", Description: "Platform operator with every privilege"},
	{Code: RoleBusiness, Name: "Business", Description: "Seller listing surplus perishable stock"},
	{Code: RoleConsumer, Name: "Consumer", Description: "Shopper buying discounted stock"},
}

// RolePrivileges maps each non-admin role to its privilege codes. ADMIN receives all of them.
var RolePrivileges = map[string][]string{
	RoleBusiness: {
		PrivBusinessManage, PrivProductCreate, PrivProductUpdate, PrivProductDelete,
		PrivOrderFulfil, PrivDashboardView,
	},
	RoleConsumer: {
		PrivOrderCreate,
	},
}

// PrivilegeCodes returns the codes attached to the role
func (r *Role) PrivilegeCodes() []string {
	codes := make([]string, len(r.Privileges))
	for i, p := range r.Privileges {
		codes[i] = p.Code
	}
	return codes
}
