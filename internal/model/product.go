package model

import (
	"time"

	"github.com/google/uuid"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "ACTIVE"
	ProductSoldOut  ProductStatus = "SOLD_OUT"
	ProductExpired  ProductStatus = "EXPIRED"
	ProductInactive ProductStatus = "INACTIVE"
)

// Product is a perishable item listed by a business. Prices are int64 minor units.
type Product struct {
	BaseModel
	BusinessID      uuid.UUID     `gorm:"type:uuid;not null;index;uniqueIndex:idx_business_sku,where:sku <> '' AND deleted_at IS NULL" json:"business_id"`
	Business        *Business     `gorm:"foreignKey:BusinessID" json:"business,omitempty"`
	CategoryID      uint          `gorm:"not null;index" json:"category_id"`
	Category        *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name            string        `gorm:"type:varchar(255);not null" json:"name"`
	Description     string        `gorm:"type:text" json:"description"`
	ImageURL        string        `gorm:"type:varchar(500)" json:"image_url"`
	SKU             string        `gorm:"type:varchar(50);uniqueIndex:idx_business_sku,where:sku <> '' AND deleted_at IS NULL" json:"sku"`
	Quantity        int           `gorm:"not null;default:0" json:"quantity"`
	Unit            string        `gorm:"type:varchar(20)" json:"unit"`
	OriginalPrice   int64         `gorm:"not null" json:"original_price"`
	CurrentPrice    int64         `gorm:"not null" json:"current_price"`
	DiscountPercent int           `gorm:"not null;default:0" json:"discount_percent"`
	ExpiryDate      time.Time     `gorm:"not null;index" json:"expiry_date"`
	Status          ProductStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	CarbonKgPerUnit float64       `gorm:"default:0" json:"carbon_kg_per_unit"`
	LastPricedAt    *time.Time    `json:"last_priced_at,omitempty"`
}

// IsPurchasable reports whether the product can be ordered at the given time
func (p *Product) IsPurchasable(now time.Time) bool {
	return p.Status == ProductActive && p.Quantity > 0 && p.ExpiryDate.After(now)
}

// EffectiveCarbonKg returns the per-unit carbon saving, falling back to the category default
func (p *Product) EffectiveCarbonKg() float64 {
	if p.CarbonKgPerUnit > 0 {
		return p.CarbonKgPerUnit
	}
	if p.Category != nil {
		return p.Category.CarbonKgPerUnit
	}
	return 0
}

// PriceAt returns the price for a discount percentage, rounding down
func (p *Product) PriceAt(discountPercent int) int64 {
	return p.OriginalPrice * int64(100-discountPercent) / 100
}
