package model

import (
	"time"

	"github.com/google/uuid"
)

type PriceChangeReason string

const (
	ReasonPricingJob PriceChangeReason = "PRICING_JOB"
	ReasonManual     PriceChangeReason = "MANUAL"
	ReasonExpired    PriceChangeReason = "EXPIRED"
)

// PriceHistory records every price or status change of a product
type PriceHistory struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	ProductID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"product_id"`
	OldPrice     int64             `json:"old_price"`
	NewPrice     int64             `json:"new_price"`
	OldDiscount  int               `json:"old_discount"`
	NewDiscount  int               `json:"new_discount"`
	Reason       PriceChangeReason `gorm:"type:varchar(20);not null" json:"reason"`
	DaysToExpiry int               `json:"days_to_expiry"`
	ChangedBy    string            `gorm:"type:varchar(255)" json:"changed_by"`
	CreatedAt    time.Time         `json:"created_at"`
}

func (PriceHistory) TableName() string {
	return "price_history"
}
