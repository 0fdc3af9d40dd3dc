package mocks

import (
	"stocky-api/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockBusinessRepository struct {
	mock.Mock
}

func (m *MockBusinessRepository) Create(business *model.Business) error {
	args := m.Called(business)
	if args.Error(0) == nil && business.ID == uuid.Nil {
		business.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockBusinessRepository) FindByID(id uuid.UUID) (*model.Business, error) {
	args := m.Called(id)
	if b := args.Get(0); b != nil {
		return b.(*model.Business), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBusinessRepository) FindAll(search string) ([]model.Business, error) {
	args := m.Called(search)
	if b := args.Get(0); b != nil {
		return b.([]model.Business), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBusinessRepository) FindByOwner(ownerID uuid.UUID) ([]model.Business, error) {
	args := m.Called(ownerID)
	if b := args.Get(0); b != nil {
		return b.([]model.Business), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBusinessRepository) Update(business *model.Business) error {
	return m.Called(business).Error(0)
}

func (m *MockBusinessRepository) Delete(id uuid.UUID, deletedBy string) error {
	return m.Called(id, deletedBy).Error(0)
}

func (m *MockBusinessRepository) CountOpenOrders(id uuid.UUID) (int64, error) {
	args := m.Called(id)
	return args.Get(0).(int64), args.Error(1)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindAll() ([]model.Category, error) {
	args := m.Called()
	if c := args.Get(0); c != nil {
		return c.([]model.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryRepository) FindByID(id uint) (*model.Category, error) {
	args := m.Called(id)
	if c := args.Get(0); c != nil {
		return c.(*model.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryRepository) FindByName(name string) (*model.Category, error) {
	args := m.Called(name)
	if c := args.Get(0); c != nil {
		return c.(*model.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryRepository) Create(category *model.Category) error {
	return m.Called(category).Error(0)
}

func (m *MockCategoryRepository) Update(category *model.Category) error {
	return m.Called(category).Error(0)
}

func (m *MockCategoryRepository) SeedDefaults() error {
	return m.Called().Error(0)
}
