package mocks

import (
	"time"

	"stocky-api/internal/model"
	"stocky-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) PlaceOrder(order *model.Order, now time.Time) error {
	args := m.Called(order, now)
	if args.Error(0) == nil && order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(id uuid.UUID) (*model.Order, error) {
	args := m.Called(id)
	if o := args.Get(0); o != nil {
		return o.(*model.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) FindByConsumer(consumerID uuid.UUID) ([]model.Order, error) {
	args := m.Called(consumerID)
	if o := args.Get(0); o != nil {
		return o.([]model.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) FindByBusiness(businessID uuid.UUID, status model.OrderStatus) ([]model.Order, error) {
	args := m.Called(businessID, status)
	if o := args.Get(0); o != nil {
		return o.([]model.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) TransitionStatus(order *model.Order, from model.OrderStatus) error {
	return m.Called(order, from).Error(0)
}

func (m *MockOrderRepository) CancelAndRestock(order *model.Order, from model.OrderStatus, now time.Time) error {
	args := m.Called(order, from, now)
	if args.Error(0) == nil {
		order.Status = model.OrderCancelled
	}
	return args.Error(0)
}

func (m *MockOrderRepository) ReservePayment(id uuid.UUID, from model.PaymentStatus) error {
	return m.Called(id, from).Error(0)
}

func (m *MockOrderRepository) UpdatePaymentStatus(id uuid.UUID, status model.PaymentStatus) error {
	return m.Called(id, status).Error(0)
}

func (m *MockOrderRepository) SetCarbonTx(id uuid.UUID, txHash string) error {
	return m.Called(id, txHash).Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(payment *model.Payment) error {
	return m.Called(payment).Error(0)
}

func (m *MockPaymentRepository) Update(payment *model.Payment) error {
	return m.Called(payment).Error(0)
}

func (m *MockPaymentRepository) FindByOrderID(orderID uuid.UUID) (*model.Payment, error) {
	args := m.Called(orderID)
	if p := args.Get(0); p != nil {
		return p.(*model.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDashboardRepository struct {
	mock.Mock
}

func (m *MockDashboardRepository) GetBusinessStats(businessID uuid.UUID, now time.Time) (*repository.BusinessStats, error) {
	args := m.Called(businessID, now)
	if s := args.Get(0); s != nil {
		return s.(*repository.BusinessStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDashboardRepository) GetSalesMovement(businessID uuid.UUID, startDate, endDate time.Time) ([]repository.SalesMovementData, error) {
	args := m.Called(businessID, startDate, endDate)
	if d := args.Get(0); d != nil {
		return d.([]repository.SalesMovementData), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDashboardRepository) GetPlatformStats() (*repository.PlatformStats, error) {
	args := m.Called()
	if s := args.Get(0); s != nil {
		return s.(*repository.PlatformStats), args.Error(1)
	}
	return nil, args.Error(1)
}
