package model

import "github.com/google/uuid"

// Business is a seller account that lists products
type Business struct {
	BaseModel
	OwnerID       uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner         *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	Description   string    `gorm:"type:text" json:"description"`
	Address       string    `gorm:"type:varchar(500)" json:"address" validate:"required"`
	Latitude      float64   `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude     float64   `json:"longitude" validate:"gte=-180,lte=180"`
	Phone         string    `gorm:"type:varchar(20)" json:"phone"`
	WalletAddress string    `gorm:"type:varchar(42)" json:"wallet_address,omitempty" validate:"omitempty,eth_addr"`
	IsVerified    bool      `gorm:"default:false" json:"is_verified"`

	Products []Product `json:"products,omitempty"`
}
