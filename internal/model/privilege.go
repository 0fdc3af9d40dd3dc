package model

// Privilege represents a permission granted through a role
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivBusinessManage = "business:manage"
	PrivProductCreate  = "product:create"
	PrivProductUpdate  = "product:update"
	PrivProductDelete  = "product:delete"
	PrivOrderCreate    = "order:create"
	PrivOrderFulfil    = "order:fulfil"
	PrivCategoryManage = "category:manage"
	PrivUserManage     = "user:manage"
	PrivPricingRun     = "pricing:run"
	PrivDashboardView  = "dashboard:view"
	PrivPlatformView   = "platform:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	{Code: PrivBusinessManage, Name: "Manage Own Businesses"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},
	{Code: PrivOrderCreate, Name: "Place Order"},
	{Code: PrivOrderFulfil, Name: "Fulfil Order"},
	{Code: PrivCategoryManage, Name: "Manage Categories"},
	{Code: PrivUserManage, Name: "Manage Users"},
	{Code: PrivPricingRun, Name: "Run Pricing Job"},
	{Code: PrivDashboardView, Name: "View Business Dashboard"},
	{Code: PrivPlatformView, Name: "View Platform Statistics"},
}
