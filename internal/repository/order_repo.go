package repository

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"stocky-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrProductUnavailable = errors.New("product is not available")
	ErrInsufficientStock  = errors.New("insufficient stock remaining")
	ErrMixedBusinesses    = errors.New("all items must come from the same business")
	ErrStatusChanged      = errors.New("order status changed concurrently")
)

type OrderRepository interface {
	PlaceOrder(order *model.Order, now time.Time) error
	FindByID(id uuid.UUID) (*model.Order, error)
	FindByConsumer(consumerID uuid.UUID) ([]model.Order, error)
	FindByBusiness(businessID uuid.UUID, status model.OrderStatus) ([]model.Order, error)
	TransitionStatus(order *model.Order, from model.OrderStatus) error
	CancelAndRestock(order *model.Order, from model.OrderStatus, now time.Time) error
	ReservePayment(id uuid.UUID, from model.PaymentStatus) error
	UpdatePaymentStatus(id uuid.UUID, status model.PaymentStatus) error
	SetCarbonTx(id uuid.UUID, txHash string) error
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func sortedProductIDs(items []model.OrderItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	// fixed lock order so two orders over the same products cannot deadlock
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// PlaceOrder locks every product row, checks availability, decrements stock
// and inserts the order with its items in one transaction. order.Items must
// carry ProductID and Quantity; snapshots, totals and BusinessID are filled in.
func (r *orderRepo) PlaceOrder(order *model.Order, now time.Time) error {
	ids := sortedProductIDs(order.Items)

	return r.db.Transaction(func(tx *gorm.DB) error {
		var products []model.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).
			Order("id").
			Find(&products).Error; err != nil {
			return err
		}

		byID := make(map[uuid.UUID]*model.Product, len(products))
		categoryIDs := make([]uint, 0, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
			categoryIDs = append(categoryIDs, products[i].CategoryID)
		}

		var categories []model.Category
		if err := tx.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
			return err
		}
		for i := range products {
			for j := range categories {
				if categories[j].ID == products[i].CategoryID {
					products[i].Category = &categories[j]
				}
			}
		}

		var total, carbon int64
		for i := range order.Items {
			item := &order.Items[i]
			product, ok := byID[item.ProductID]
			if !ok || !product.IsPurchasable(now) {
				return fmt.Errorf("%w: %s", ErrProductUnavailable, item.ProductID)
			}
			if order.BusinessID == uuid.Nil {
				order.BusinessID = product.BusinessID
			} else if order.BusinessID != product.BusinessID {
				return ErrMixedBusinesses
			}
			if product.Quantity < item.Quantity {
				return fmt.Errorf("%w for '%s' (%d left)", ErrInsufficientStock, product.Name, product.Quantity)
			}

			product.Quantity -= item.Quantity
			updates := map[string]interface{}{"quantity": product.Quantity, "updated_by": order.CreatedBy}
			if product.Quantity == 0 {
				product.Status = model.ProductSoldOut
				updates["status"] = model.ProductSoldOut
			}
			if err := tx.Model(&model.Product{}).Where("id = ?", product.ID).Updates(updates).Error; err != nil {
				return err
			}

			item.ProductName = product.Name
			item.UnitPrice = product.CurrentPrice
			item.Subtotal = product.CurrentPrice * int64(item.Quantity)
			item.CarbonGrams = model.CarbonGrams(item.Quantity, product.EffectiveCarbonKg())
			total += item.Subtotal
			carbon += item.CarbonGrams
		}

		order.TotalAmount = total
		order.CarbonSavedGrams = carbon
		order.Status = model.OrderPending
		order.PaymentStatus = model.PaymentUnpaid

		return tx.Omit("Consumer", "Business", "Items.Product").Create(order).Error
	})
}

func (r *orderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items").Preload("Items.Product").Preload("Business").Preload("Consumer").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindByConsumer(consumerID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("Items").Preload("Business").
		Where("consumer_id = ?", consumerID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByBusiness(businessID uuid.UUID, status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	query := r.db.Preload("Items").Preload("Consumer").Where("business_id = ?", businessID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// TransitionStatus writes order.Status only if the row is still in from
func (r *orderRepo) TransitionStatus(order *model.Order, from model.OrderStatus) error {
	res := r.db.Model(&model.Order{}).
		Where("id = ? AND status = ?", order.ID, from).
		Updates(map[string]interface{}{
			"status":       order.Status,
			"completed_at": order.CompletedAt,
			"updated_by":   order.UpdatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

// CancelAndRestock marks the order CANCELLED and puts its quantities back.
// Sold-out products that have not expired become ACTIVE again.
func (r *orderRepo) CancelAndRestock(order *model.Order, from model.OrderStatus, now time.Time) error {
	ids := sortedProductIDs(order.Items)

	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", order.ID, from).
			Updates(map[string]interface{}{"status": model.OrderCancelled, "updated_by": order.UpdatedBy})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusChanged
		}

		var products []model.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id IN ?", ids).Order("id").Find(&products).Error; err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*model.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		for _, item := range order.Items {
			product, ok := byID[item.ProductID]
			if !ok {
				// deleted since the order was placed
				continue
			}
			updates := map[string]interface{}{"quantity": product.Quantity + item.Quantity}
			if product.Status == model.ProductSoldOut && product.ExpiryDate.After(now) {
				updates["status"] = model.ProductActive
			}
			if err := tx.Model(&model.Product{}).Where("id = ?", product.ID).Updates(updates).Error; err != nil {
				return err
			}
		}

		order.Status = model.OrderCancelled
		return nil
	})
}

// ReservePayment moves payment_status from `from` to PENDING. Only one caller
// wins; the others get ErrStatusChanged.
func (r *orderRepo) ReservePayment(id uuid.UUID, from model.PaymentStatus) error {
	res := r.db.Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", id, from).
		Update("payment_status", model.PaymentPending)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *orderRepo) UpdatePaymentStatus(id uuid.UUID, status model.PaymentStatus) error {
	return r.db.Model(&model.Order{}).Where("id = ?", id).Update("payment_status", status).Error
}

func (r *orderRepo) SetCarbonTx(id uuid.UUID, txHash string) error {
	return r.db.Model(&model.Order{}).Where("id = ?", id).Update("carbon_tx_hash", txHash).Error
}
