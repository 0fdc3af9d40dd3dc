package model

import "github.com/google/uuid"

type PaymentMethod string

const (
	MethodEscrow PaymentMethod = "ESCROW"
	MethodCash   PaymentMethod = "CASH"
)

// Payment tracks the escrow lifecycle of an order. Simulated is set when
// any hash on the row was fabricated by the demo wallet.
type Payment struct {
	BaseModel
	OrderID       uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	PayerID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"payer_id"`
	Amount        int64         `gorm:"not null" json:"amount"`
	Method        PaymentMethod `gorm:"type:varchar(20);not null" json:"method"`
	Status        PaymentStatus `gorm:"type:varchar(20);not null" json:"status"`
	EscrowTxHash  string        `gorm:"type:varchar(66)" json:"escrow_tx_hash,omitempty"`
	ReleaseTxHash string        `gorm:"type:varchar(66)" json:"release_tx_hash,omitempty"`
	RefundTxHash  string        `gorm:"type:varchar(66)" json:"refund_tx_hash,omitempty"`
	Simulated     bool          `gorm:"default:false" json:"simulated"`
	FailureReason string        `gorm:"type:text" json:"failure_reason,omitempty"`
}
