package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"stocky-api/internal/model"
	"stocky-api/internal/repository"
	"stocky-api/internal/ws"
	"stocky-api/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const MaxOrderItems = 50

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrOrderConflict      = errors.New("order was updated by someone else, reload and retry")
	ErrProductUnavailable = repository.ErrProductUnavailable
	ErrInsufficientStock  = repository.ErrInsufficientStock
	ErrMixedBusinesses    = repository.ErrMixedBusinesses
)

type OrderService interface {
	CreateOrder(req *CreateOrderRequest, actor Actor) (*model.Order, error)
	GetOrder(id uuid.UUID, actor Actor) (*model.Order, error)
	ListMyOrders(consumerID uuid.UUID) ([]model.Order, error)
	ListBusinessOrders(businessID uuid.UUID, status model.OrderStatus, actor Actor) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, actor Actor) (*model.Order, error)
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"gte=1,lte=1000"`
}

type CreateOrderRequest struct {
	Items      []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	PickupTime *time.Time         `json:"pickup_time"`
	Note       string             `json:"note" validate:"max=500"`
}

type orderService struct {
	orderRepo    repository.OrderRepository
	businessRepo repository.BusinessRepository
	payments     PaymentService
	carbon       CarbonService
	wsHub        *ws.Hub
	log          *zap.Logger
	now          func() time.Time
}

func NewOrderService(orderRepo repository.OrderRepository, businessRepo repository.BusinessRepository, payments PaymentService, carbon CarbonService, hub *ws.Hub, log *zap.Logger) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		businessRepo: businessRepo,
		payments:     payments,
		carbon:       carbon,
		wsHub:        hub,
		log:          log.Named("orders"),
		now:          time.Now,
	}
}

// mergeItems folds repeated product lines into one, keeping first-seen order
func mergeItems(reqs []OrderItemRequest) []model.OrderItem {
	index := make(map[uuid.UUID]int, len(reqs))
	items := make([]model.OrderItem, 0, len(reqs))
	for _, r := range reqs {
		if i, ok := index[r.ProductID]; ok {
			items[i].Quantity += r.Quantity
			continue
		}
		index[r.ProductID] = len(items)
		items = append(items, model.OrderItem{ProductID: r.ProductID, Quantity: r.Quantity})
	}
	return items
}

func (s *orderService) CreateOrder(req *CreateOrderRequest, actor Actor) (*model.Order, error) {
	if err := validator.Validate(req); err != nil {
		return nil, invalid(err)
	}

	items := mergeItems(req.Items)
	if len(items) > MaxOrderItems {
		return nil, invalidf("an order may contain at most %d products", MaxOrderItems)
	}

	now := s.now()
	if req.PickupTime != nil && req.PickupTime.Before(now) {
		return nil, invalidf("pickup_time must be in the future")
	}

	order := &model.Order{
		ConsumerID: actor.ID,
		PickupTime: req.PickupTime,
		Note:       strings.TrimSpace(req.Note),
		Items:      items,
	}
	order.CreatedBy = actor.String()
	order.UpdatedBy = actor.String()

	if err := s.orderRepo.PlaceOrder(order, now); err != nil {
		return nil, err
	}

	s.wsHub.Publish(ws.EventOrderCreated, map[string]interface{}{
		"order_id":     order.ID,
		"business_id":  order.BusinessID,
		"consumer_id":  order.ConsumerID,
		"total_amount": order.TotalAmount,
		"items":        len(order.Items),
	})
	return order, nil
}

func (s *orderService) find(id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func isBusinessOwner(order *model.Order, actor Actor) bool {
	return order.Business != nil && order.Business.OwnerID == actor.ID
}

func canViewOrder(order *model.Order, actor Actor) bool {
	return actor.IsAdmin() || order.ConsumerID == actor.ID || isBusinessOwner(order, actor)
}

func (s *orderService) GetOrder(id uuid.UUID, actor Actor) (*model.Order, error) {
	order, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !canViewOrder(order, actor) {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *orderService) ListMyOrders(consumerID uuid.UUID) ([]model.Order, error) {
	return s.orderRepo.FindByConsumer(consumerID)
}

func (s *orderService) ListBusinessOrders(businessID uuid.UUID, status model.OrderStatus, actor Actor) ([]model.Order, error) {
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
	return s.orderRepo.FindByBusiness(businessID, status)
}

// allowed reports whether actor may move order to status. The business side
// drives fulfilment; a consumer may only withdraw an order still PENDING.
func allowed(order *model.Order, status model.OrderStatus, actor Actor) bool {
	if actor.IsAdmin() || isBusinessOwner(order, actor) {
		return true
	}
	return order.ConsumerID == actor.ID && status == model.OrderCancelled && order.Status == model.OrderPending
}

// UpdateStatus applies one transition. Cancelling restocks and refunds;
// completing releases escrow and credits carbon savings. A chain failure
// after the status has been written is returned, and the order keeps its
// new status so the settlement can be retried.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, actor Actor) (*model.Order, error) {
	order, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !canViewOrder(order, actor) {
		return nil, ErrForbidden
	}
	if !model.CanTransition(order.Status, status) {
		return nil, ErrInvalidTransition
	}
	if !allowed(order, status, actor) {
		return nil, ErrForbidden
	}

	from := order.Status
	now := s.now()
	order.UpdatedBy = actor.String()

	switch status {
	case model.OrderCancelled:
		err = s.orderRepo.CancelAndRestock(order, from, now)
	case model.OrderCompleted:
		order.Status = status
		order.CompletedAt = &now
		err = s.orderRepo.TransitionStatus(order, from)
	default:
		order.Status = status
		err = s.orderRepo.TransitionStatus(order, from)
	}
	if err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrOrderConflict
		}
		return nil, err
	}

	s.wsHub.Publish(ws.EventOrderStatusChanged, map[string]interface{}{
		"order_id":    order.ID,
		"business_id": order.BusinessID,
		"consumer_id": order.ConsumerID,
		"from":        from,
		"status":      order.Status,
		"changed_by":  actor.Name,
	})

	switch status {
	case model.OrderCancelled:
		if _, err := s.payments.Refund(ctx, order); err != nil {
			return order, err
		}
	case model.OrderCompleted:
		// the pickup happened, so the savings are credited even when the
		// release has to be retried later through Settle
		_, releaseErr := s.payments.Release(ctx, order)
		if err := s.carbon.MintForOrder(ctx, order); err != nil {
			s.log.Error("credit carbon savings", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
		if releaseErr != nil {
			return order, releaseErr
		}
	}
	return order, nil
}
