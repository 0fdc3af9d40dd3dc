package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderReady     OrderStatus = "READY"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPending  PaymentStatus = "PENDING"
	PaymentEscrowed PaymentStatus = "ESCROWED"
	PaymentReleased PaymentStatus = "RELEASED"
	PaymentRefunded PaymentStatus = "REFUNDED"
	PaymentFailed   PaymentStatus = "FAILED"
)

// orderTransitions lists the statuses reachable from each status
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderReady, OrderCancelled},
	OrderReady:     {OrderCompleted},
}

// CanTransition reports whether from -> to is allowed
func CanTransition(from, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition exists
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// Order is a consumer's purchase from a single business
type Order struct {
	BaseModel
	ConsumerID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"consumer_id"`
	Consumer         *User         `gorm:"foreignKey:ConsumerID" json:"consumer,omitempty"`
	BusinessID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"business_id"`
	Business         *Business     `gorm:"foreignKey:BusinessID" json:"business,omitempty"`
	Status           OrderStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PaymentStatus    PaymentStatus `gorm:"type:varchar(20);not null;default:'UNPAID'" json:"payment_status"`
	TotalAmount      int64         `gorm:"not null" json:"total_amount"`
	PickupTime       *time.Time    `json:"pickup_time,omitempty"`
	Note             string        `gorm:"type:text" json:"note"`
	CarbonSavedGrams int64         `gorm:"default:0" json:"carbon_saved_grams"`
	CarbonTxHash     string        `gorm:"type:varchar(66)" json:"carbon_tx_hash,omitempty"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`

	Items []OrderItem `json:"items,omitempty"`
}

// OrderItem snapshots the product name and price at the time of purchase
type OrderItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product     *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"product_name"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Subtotal    int64     `gorm:"not null" json:"subtotal"`
	CarbonGrams int64     `gorm:"default:0" json:"carbon_grams"`
	CreatedAt   time.Time `json:"created_at"`
}

// CarbonGrams converts a per-unit saving in kg CO2e into whole grams for quantity units
func CarbonGrams(quantity int, kgPerUnit float64) int64 {
	return int64(math.Round(float64(quantity) * kgPerUnit * 1000))
}
