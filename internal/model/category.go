package model

// Category groups products and supplies the default carbon saving per rescued unit
type Category struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	Name            string  `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" validate:"required,max=100"`
	Slug            string  `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	CarbonKgPerUnit float64 `gorm:"default:0" json:"carbon_kg_per_unit" validate:"gte=0"`
}

const CategoryOther = "Other"

// DefaultCategories are seeded on startup. Carbon figures are rough kg CO2e per unit rescued.
var DefaultCategories = []Category{
	{Name: "Fruits", Slug: "fruits", CarbonKgPerUnit: 0.4},
	{Name: "Vegetables", Slug: "vegetables", CarbonKgPerUnit: 0.3},
	{Name: "Dairy", Slug: "dairy", CarbonKgPerUnit: 1.9},
	{Name: "Bakery", Slug: "bakery", CarbonKgPerUnit: 0.6},
	{Name: "Meat & Seafood", Slug: "meat-seafood", CarbonKgPerUnit: 6.5},
	{Name: "Prepared Meals", Slug: "prepared-meals", CarbonKgPerUnit: 2.2},
	{Name: "Beverages", Slug: "beverages", CarbonKgPerUnit: 0.3},
	{Name: CategoryOther, Slug: "other", CarbonKgPerUnit: 0.5},
}
