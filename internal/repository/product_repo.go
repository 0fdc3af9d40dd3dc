package repository

import (
	"time"

	"stocky-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductFilter narrows the public product listing. Zero values mean "no filter".
type ProductFilter struct {
	BusinessID         *uuid.UUID
	CategoryID         uint
	Status             model.ProductStatus
	Search             string
	MaxPrice           int64
	ExpiringWithinDays int
	Sort               string
	Page               int
	PageSize           int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uuid.UUID) (*model.Product, error)
	List(filter ProductFilter) ([]model.Product, int64, error)
	Update(product *model.Product, history *model.PriceHistory) error
	Delete(id uuid.UUID, deletedBy string) error
	ExistsSKU(businessID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error)
	FindForPricing(horizon time.Time) ([]model.Product, error)
	ApplyPriceChange(product *model.Product, history *model.PriceHistory) error
	FindPriceHistory(productID uuid.UUID) ([]model.PriceHistory, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Omit("Business", "Category").Create(product).Error
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.Preload("Category").Preload("Business").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

var productSorts = map[string]string{
	"expiry":   "expiry_date ASC",
	"price":    "current_price ASC",
	"discount": "discount_percent DESC, expiry_date ASC",
	"newest":   "created_at DESC",
}

func (r *productRepo) List(filter ProductFilter) ([]model.Product, int64, error) {
	query := r.db.Model(&model.Product{})

	if filter.BusinessID != nil {
		query = query.Where("business_id = ?", *filter.BusinessID)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.MaxPrice > 0 {
		query = query.Where("current_price <= ?", filter.MaxPrice)
	}
	if filter.ExpiringWithinDays > 0 {
		query = query.Where("expiry_date <= ?", time.Now().AddDate(0, 0, filter.ExpiringWithinDays))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := productSorts[filter.Sort]
	if !ok {
		order = productSorts["expiry"]
	}

	var products []model.Product
	err := query.Preload("Category").Preload("Business").
		Order(order).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&products).Error
	return products, total, err
}

// Update saves the product and, when history is non-nil, the matching price history row
func (r *productRepo) Update(product *model.Product, history *model.PriceHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Business", "Category").Save(product).Error; err != nil {
			return err
		}
		if history == nil {
			return nil
		}
		return tx.Create(history).Error
	})
}

func (r *productRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Product{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Product{}, "id = ?", id).Error
	})
}

func (r *productRepo) ExistsSKU(businessID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.Model(&model.Product{}).Where("business_id = ? AND sku = ?", businessID, sku)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// FindForPricing returns active products expiring before horizon, expired ones included
func (r *productRepo) FindForPricing(horizon time.Time) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("status = ? AND expiry_date < ?", model.ProductActive, horizon).
		Order("expiry_date ASC").
		Find(&products).Error
	return products, err
}

// ApplyPriceChange writes the new price/status and its history row atomically.
// The update only matches while the product is still ACTIVE at the price and
// discount recorded in history, so a sale that sold it out or another pass
// that already repriced it is not overwritten.
func (r *productRepo) ApplyPriceChange(product *model.Product, history *model.PriceHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Product{}).
			Where("id = ? AND status = ? AND current_price = ? AND discount_percent = ?",
				product.ID, model.ProductActive, history.OldPrice, history.OldDiscount).
			Updates(map[string]interface{}{
				"current_price":    product.CurrentPrice,
				"discount_percent": product.DiscountPercent,
				"status":           product.Status,
				"last_priced_at":   product.LastPricedAt,
				"updated_by":       "pricing-job",
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(history).Error
	})
}

func (r *productRepo) FindPriceHistory(productID uuid.UUID) ([]model.PriceHistory, error) {
	var history []model.PriceHistory
	err := r.db.Where("product_id = ?", productID).Order("created_at DESC").Find(&history).Error
	return history, err
}
