package mocks

import (
	"stocky-api/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByID(id uuid.UUID) (*model.User, error) {
	args := m.Called(id)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Create(user *model.User) error {
	args := m.Called(user)
	if args.Error(0) == nil && user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockUserRepository) Update(user *model.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepository) FindAll() ([]model.User, error) {
	args := m.Called()
	if u := args.Get(0); u != nil {
		return u.([]model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) SetActive(userID uuid.UUID, active bool) error {
	return m.Called(userID, active).Error(0)
}

func (m *MockUserRepository) UpdateWallet(userID uuid.UUID, address string) error {
	return m.Called(userID, address).Error(0)
}

func (m *MockUserRepository) UpdateTokenVersion(userID uuid.UUID, version string) error {
	return m.Called(userID, version).Error(0)
}

func (m *MockUserRepository) UpdateLastSeen(userID uuid.UUID) error {
	return m.Called(userID).Error(0)
}

func (m *MockUserRepository) AddCarbonCredits(userID uuid.UUID, grams int64) error {
	return m.Called(userID, grams).Error(0)
}

func (m *MockUserRepository) TopByCarbonCredits(limit int) ([]model.User, error) {
	args := m.Called(limit)
	if u := args.Get(0); u != nil {
		return u.([]model.User), args.Error(1)
	}
	return nil, args.Error(1)
}
