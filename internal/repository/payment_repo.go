package repository

import (
	"stocky-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(payment *model.Payment) error
	Update(payment *model.Payment) error
	FindByOrderID(orderID uuid.UUID) (*model.Payment, error)
}

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db}
}

func (r *paymentRepo) Create(payment *model.Payment) error {
	return r.db.Create(payment).Error
}

func (r *paymentRepo) Update(payment *model.Payment) error {
	return r.db.Save(payment).Error
}

func (r *paymentRepo) FindByOrderID(orderID uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.First(&payment, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}
