package mocks

import (
	"context"
	"time"

	"stocky-api/internal/model"
	"stocky-api/internal/pricing"
	"stocky-api/internal/repository"
	"stocky-api/internal/service"
	"stocky-api/pkg/blockchain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(req *service.RegisterRequest) (*model.User, error) {
	args := m.Called(req)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) Login(email, password string) (*service.LoginResponse, error) {
	args := m.Called(email, password)
	if r := args.Get(0); r != nil {
		return r.(*service.LoginResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error {
	return m.Called(userID, oldPassword, newPassword).Error(0)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.TokenValidationResponse, error) {
	args := m.Called(tokenString)
	if r := args.Get(0); r != nil {
		return r.(*service.TokenValidationResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) Me(userID uuid.UUID) (*service.TokenValidationResponse, error) {
	args := m.Called(userID)
	if r := args.Get(0); r != nil {
		return r.(*service.TokenValidationResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) Heartbeat(userID uuid.UUID) error {
	return m.Called(userID).Error(0)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) ListProducts(filter repository.ProductFilter) (*service.ProductPage, error) {
	args := m.Called(filter)
	if p := args.Get(0); p != nil {
		return p.(*service.ProductPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) GetProduct(id uuid.UUID) (*model.Product, error) {
	args := m.Called(id)
	if p := args.Get(0); p != nil {
		return p.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) CreateProduct(req *service.CreateProductRequest, actor service.Actor) (*model.Product, error) {
	args := m.Called(req, actor)
	if p := args.Get(0); p != nil {
		return p.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) UpdateProduct(id uuid.UUID, req *service.UpdateProductRequest, actor service.Actor) (*model.Product, error) {
	args := m.Called(id, req, actor)
	if p := args.Get(0); p != nil {
		return p.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) DeleteProduct(id uuid.UUID, actor service.Actor) error {
	return m.Called(id, actor).Error(0)
}

func (m *MockProductService) GetPriceHistory(id uuid.UUID) ([]model.PriceHistory, error) {
	args := m.Called(id)
	if h := args.Get(0); h != nil {
		return h.([]model.PriceHistory), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(req *service.CreateOrderRequest, actor service.Actor) (*model.Order, error) {
	args := m.Called(req, actor)
	if o := args.Get(0); o != nil {
		return o.(*model.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) GetOrder(id uuid.UUID, actor service.Actor) (*model.Order, error) {
	args := m.Called(id, actor)
	if o := args.Get(0); o != nil {
		return o.(*model.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) ListMyOrders(consumerID uuid.UUID) ([]model.Order, error) {
	args := m.Called(consumerID)
	if o := args.Get(0); o != nil {
		return o.([]model.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) ListBusinessOrders(businessID uuid.UUID, status model.OrderStatus, actor service.Actor) ([]model.Order, error) {
	args := m.Called(businessID, status, actor)
	if o := args.Get(0); o != nil {
		return o.([]model.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, actor service.Actor) (*model.Order, error) {
	args := m.Called(ctx, id, status, actor)
	if o := args.Get(0); o != nil {
		return o.(*model.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) PayOrder(ctx context.Context, orderID uuid.UUID, method model.PaymentMethod, actor service.Actor) (*model.Payment, error) {
	args := m.Called(ctx, orderID, method, actor)
	if p := args.Get(0); p != nil {
		return p.(*model.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentService) Release(ctx context.Context, order *model.Order) (*model.Payment, error) {
	args := m.Called(ctx, order)
	if p := args.Get(0); p != nil {
		return p.(*model.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentService) Refund(ctx context.Context, order *model.Order) (*model.Payment, error) {
	args := m.Called(ctx, order)
	if p := args.Get(0); p != nil {
		return p.(*model.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentService) Settle(ctx context.Context, orderID uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, orderID)
	if p := args.Get(0); p != nil {
		return p.(*model.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentService) GetPaymentByOrder(orderID uuid.UUID, actor service.Actor) (*model.Payment, error) {
	args := m.Called(orderID, actor)
	if p := args.Get(0); p != nil {
		return p.(*model.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentService) NetworkStatus(ctx context.Context) *blockchain.NetworkStatus {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.(*blockchain.NetworkStatus)
	}
	return nil
}

type MockCarbonService struct {
	mock.Mock
}

func (m *MockCarbonService) CarbonSaved(items []model.OrderItem) int64 {
	return m.Called(items).Get(0).(int64)
}

func (m *MockCarbonService) MintForOrder(ctx context.Context, order *model.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockCarbonService) GetMyCredits(ctx context.Context, userID uuid.UUID) (*service.CarbonSummary, error) {
	args := m.Called(ctx, userID)
	if s := args.Get(0); s != nil {
		return s.(*service.CarbonSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCarbonService) GetLeaderboard(limit int) ([]service.LeaderboardEntry, error) {
	args := m.Called(limit)
	if e := args.Get(0); e != nil {
		return e.([]service.LeaderboardEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) RunPricingPass(ctx context.Context, now time.Time) (*service.PricingReport, error) {
	args := m.Called(ctx, now)
	if r := args.Get(0); r != nil {
		return r.(*service.PricingReport), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAIService struct {
	mock.Mock
}

func (m *MockAIService) AnalyzeImage(ctx context.Context, filename string, data []byte) (*service.AnalysisResult, error) {
	args := m.Called(ctx, filename, data)
	if r := args.Get(0); r != nil {
		return r.(*service.AnalysisResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAIService) SuggestPrice(originalPrice int64, expiry time.Time) (*pricing.Suggestion, error) {
	args := m.Called(originalPrice, expiry)
	if s := args.Get(0); s != nil {
		return s.(*pricing.Suggestion), args.Error(1)
	}
	return nil, args.Error(1)
}
