package service

import (
	"errors"
	"strings"
	"time"

	"stocky-api/internal/model"
	"stocky-api/internal/pricing"
	"stocky-api/internal/repository"
	"stocky-api/internal/ws"
	"stocky-api/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSKUExists       = errors.New("SKU already exists for this business")
	ErrExpiryInPast    = errors.New("expiry date must be in the future")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ProductService interface {
	ListProducts(filter repository.ProductFilter) (*ProductPage, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	CreateProduct(req *CreateProductRequest, actor Actor) (*model.Product, error)
	UpdateProduct(id uuid.UUID, req *UpdateProductRequest, actor Actor) (*model.Product, error)
	DeleteProduct(id uuid.UUID, actor Actor) error
	GetPriceHistory(id uuid.UUID) ([]model.PriceHistory, error)
}

type ProductPage struct {
	Items    []model.Product `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

type CreateProductRequest struct {
	BusinessID      uuid.UUID `json:"business_id" validate:"uuid_required"`
	CategoryID      uint      `json:"category_id" validate:"required"`
	Name            string    `json:"name" validate:"required,max=255"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"image_url" validate:"omitempty,url,max=500"`
	SKU             string    `json:"sku" validate:"omitempty,max=50"`
	Quantity        int       `json:"quantity" validate:"gte=1"`
	Unit            string    `json:"unit" validate:"omitempty,max=20"`
	OriginalPrice   int64     `json:"original_price" validate:"gt=0"`
	ExpiryDate      time.Time `json:"expiry_date" validate:"required"`
	CarbonKgPerUnit float64   `json:"carbon_kg_per_unit" validate:"gte=0"`
}

// UpdateProductRequest is a partial update; nil fields are left alone
type UpdateProductRequest struct {
	CategoryID      *uint                `json:"category_id"`
	Name            *string              `json:"name" validate:"omitempty,max=255"`
	Description     *string              `json:"description"`
	ImageURL        *string              `json:"image_url" validate:"omitempty,max=500"`
	SKU             *string              `json:"sku" validate:"omitempty,max=50"`
	Quantity        *int                 `json:"quantity" validate:"omitempty,gte=0"`
	Unit            *string              `json:"unit" validate:"omitempty,max=20"`
	OriginalPrice   *int64               `json:"original_price" validate:"omitempty,gt=0"`
	DiscountPercent *int                 `json:"discount_percent" validate:"omitempty,gte=0,lte=100"`
	ExpiryDate      *time.Time           `json:"expiry_date"`
	Status          *model.ProductStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	CarbonKgPerUnit *float64             `json:"carbon_kg_per_unit" validate:"omitempty,gte=0"`
}

type productService struct {
	productRepo  repository.ProductRepository
	businessRepo repository.BusinessRepository
	categoryRepo repository.CategoryRepository
	wsHub        *ws.Hub
	now          func() time.Time
}

func NewProductService(productRepo repository.ProductRepository, businessRepo repository.BusinessRepository, categoryRepo repository.CategoryRepository, hub *ws.Hub) ProductService {
	return &productService{
		productRepo:  productRepo,
		businessRepo: businessRepo,
		categoryRepo: categoryRepo,
		wsHub:        hub,
		now:          time.Now,
	}
}

func (s *productService) ListProducts(filter repository.ProductFilter) (*ProductPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = DefaultPageSize
	}
	if filter.PageSize > MaxPageSize {
		filter.PageSize = MaxPageSize
	}
	filter.Search = strings.TrimSpace(filter.Search)

	items, total, err := s.productRepo.List(filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Product{}
	}
	return &ProductPage{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (s *productService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) ownedBusiness(businessID uuid.UUID, actor Actor) (*model.Business, error) {
	business, err := s.businessRepo.FindByID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	if business.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return business, nil
}

func (s *productService) checkCategory(id uint) error {
	if _, err := s.categoryRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

// CreateProduct lists a product and applies the discount bands straight away,
// so stock created close to expiry is never listed at full price.
func (s *productService) CreateProduct(req *CreateProductRequest, actor Actor) (*model.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.SKU = strings.TrimSpace(req.SKU)
	if err := validator.Validate(req); err != nil {
		return nil, invalid(err)
	}

	now := s.now()
	if !req.ExpiryDate.After(now) {
		return nil, ErrExpiryInPast
	}

	business, err := s.ownedBusiness(req.BusinessID, actor)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(req.CategoryID); err != nil {
		return nil, err
	}
	if req.SKU != "" {
		exists, err := s.productRepo.ExistsSKU(business.ID, req.SKU, nil)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrSKUExists
		}
	}

	product := &model.Product{
		BusinessID:      business.ID,
		CategoryID:      req.CategoryID,
		Name:            req.Name,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		SKU:             req.SKU,
		Quantity:        req.Quantity,
		Unit:            req.Unit,
		OriginalPrice:   req.OriginalPrice,
		CurrentPrice:    req.OriginalPrice,
		ExpiryDate:      req.ExpiryDate,
		Status:          model.ProductActive,
		CarbonKgPerUnit: req.CarbonKgPerUnit,
	}
	product.CreatedBy = actor.String()
	product.UpdatedBy = actor.String()

	if d := pricing.Evaluate(product, now); d.Changed {
		product.DiscountPercent = d.Discount
		product.CurrentPrice = d.Price
		product.LastPricedAt = &now
	}

	if err := s.productRepo.Create(product); err != nil {
		// lost a race with another insert of the same SKU
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSKUExists
		}
		return nil, err
	}

	s.wsHub.Publish(ws.EventProductCreated, map[string]interface{}{
		"product":     productEvent(product),
		"business_id": business.ID,
		"user":        map[string]interface{}{"id": actor.ID, "name": actor.Name},
	})
	return product, nil
}

func productEvent(p *model.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":               p.ID,
		"name":             p.Name,
		"quantity":         p.Quantity,
		"original_price":   p.OriginalPrice,
		"current_price":    p.CurrentPrice,
		"discount_percent": p.DiscountPercent,
		"expiry_date":      p.ExpiryDate,
		"status":           p.Status,
	}
}

func (s *productService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest, actor Actor) (*model.Product, error) {
	if err := validator.Validate(req); err != nil {
		return nil, invalid(err)
	}

	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if product.Business == nil || (product.Business.OwnerID != actor.ID && !actor.IsAdmin()) {
		return nil, ErrForbidden
	}

	now := s.now()
	oldPrice, oldDiscount := product.CurrentPrice, product.DiscountPercent

	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		if err := s.checkCategory(*req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *req.CategoryID
		product.Category = nil
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, invalidf("name cannot be empty")
		}
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.SKU != nil && strings.TrimSpace(*req.SKU) != product.SKU {
		sku := strings.TrimSpace(*req.SKU)
		if sku != "" {
			exists, err := s.productRepo.ExistsSKU(product.BusinessID, sku, &product.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrSKUExists
			}
		}
		product.SKU = sku
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.CarbonKgPerUnit != nil {
		product.CarbonKgPerUnit = *req.CarbonKgPerUnit
	}
	if req.ExpiryDate != nil {
		if !req.ExpiryDate.After(now) {
			return nil, ErrExpiryInPast
		}
		product.ExpiryDate = *req.ExpiryDate
		if product.Status == model.ProductExpired {
			// relisted with a new date
			product.Status = model.ProductActive
		}
	}
	if req.Status != nil {
		if *req.Status == model.ProductActive && !product.ExpiryDate.After(now) {
			return nil, ErrExpiryInPast
		}
		product.Status = *req.Status
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
		switch {
		case product.Quantity == 0 && product.Status == model.ProductActive:
			product.Status = model.ProductSoldOut
		case product.Quantity > 0 && product.Status == model.ProductSoldOut && product.ExpiryDate.After(now):
			product.Status = model.ProductActive
		}
	}

	if req.OriginalPrice != nil {
		product.OriginalPrice = *req.OriginalPrice
	}
	if req.DiscountPercent != nil {
		product.DiscountPercent = *req.DiscountPercent
	}
	product.CurrentPrice = product.PriceAt(product.DiscountPercent)

	if product.Status == model.ProductActive {
		if d := pricing.Evaluate(product, now); d.Changed {
			product.DiscountPercent = d.Discount
			product.CurrentPrice = d.Price
			product.LastPricedAt = &now
		}
	}
	product.UpdatedBy = actor.String()

	var history *model.PriceHistory
	if product.CurrentPrice != oldPrice || product.DiscountPercent != oldDiscount {
		history = &model.PriceHistory{
			ProductID:    product.ID,
			OldPrice:     oldPrice,
			NewPrice:     product.CurrentPrice,
			OldDiscount:  oldDiscount,
			NewDiscount:  product.DiscountPercent,
			Reason:       model.ReasonManual,
			DaysToExpiry: pricing.DaysToExpiry(product.ExpiryDate, now),
			ChangedBy:    actor.String(),
		}
	}

	if err := s.productRepo.Update(product, history); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSKUExists
		}
		return nil, err
	}

	s.wsHub.Publish(ws.EventProductUpdated, map[string]interface{}{
		"product": productEvent(product),
		"user":    map[string]interface{}{"id": actor.ID, "name": actor.Name},
	})
	if product.CurrentPrice < oldPrice {
		s.wsHub.Publish(ws.EventPriceDrop, map[string]interface{}{
			"product":   productEvent(product),
			"old_price": oldPrice,
		})
	}
	return product, nil
}

func (s *productService) DeleteProduct(id uuid.UUID, actor Actor) error {
	product, err := s.GetProduct(id)
	if err != nil {
		return err
	}
	if product.Business == nil || (product.Business.OwnerID != actor.ID && !actor.IsAdmin()) {
		return ErrForbidden
	}
	return s.productRepo.Delete(id, actor.String())
}

func (s *productService) GetPriceHistory(id uuid.UUID) ([]model.PriceHistory, error) {
	if _, err := s.GetProduct(id); err != nil {
		return nil, err
	}
	return s.productRepo.FindPriceHistory(id)
}
