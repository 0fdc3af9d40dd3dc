package mocks

import (
	"time"

	"stocky-api/internal/model"
	"stocky-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(product *model.Product) error {
	args := m.Called(product)
	if args.Error(0) == nil && product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(id uuid.UUID) (*model.Product, error) {
	args := m.Called(id)
	if p := args.Get(0); p != nil {
		return p.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) List(filter repository.ProductFilter) ([]model.Product, int64, error) {
	args := m.Called(filter)
	var products []model.Product
	if p := args.Get(0); p != nil {
		products = p.([]model.Product)
	}
	return products, args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Update(product *model.Product, history *model.PriceHistory) error {
	return m.Called(product, history).Error(0)
}

func (m *MockProductRepository) Delete(id uuid.UUID, deletedBy string) error {
	return m.Called(id, deletedBy).Error(0)
}

func (m *MockProductRepository) ExistsSKU(businessID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(businessID, sku, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) FindForPricing(horizon time.Time) ([]model.Product, error) {
	args := m.Called(horizon)
	if p := args.Get(0); p != nil {
		return p.([]model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) ApplyPriceChange(product *model.Product, history *model.PriceHistory) error {
	return m.Called(product, history).Error(0)
}

func (m *MockProductRepository) FindPriceHistory(productID uuid.UUID) ([]model.PriceHistory, error) {
	args := m.Called(productID)
	if h := args.Get(0); h != nil {
		return h.([]model.PriceHistory), args.Error(1)
	}
	return nil, args.Error(1)
}
