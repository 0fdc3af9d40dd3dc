package service

import (
	"context"
	"testing"
	"time"

	"stocky-api/internal/model"
	"stocky-api/internal/repository"
	"stocky-api/pkg/blockchain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func (f *orderFixture) orderService(wallet blockchain.Wallet) *orderService {
	log := zap.NewNop()
	payments := NewPaymentService(f.payments, f.orders, f.users, wallet, nil, log)
	carbon := NewCarbonService(f.users, f.orders, wallet, log)
	return NewOrderService(f.orders, f.business, payments, carbon, nil, log).(*orderService)
}

func TestMergeItems(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	items := mergeItems([]OrderItemRequest{
		{ProductID: a, Quantity: 1},
		{ProductID: b, Quantity: 2},
		{ProductID: a, Quantity: 3},
	})
	require.Len(t, items, 2)
	assert.Equal(t, a, items[0].ProductID)
	assert.Equal(t, 4, items[0].Quantity)
	assert.Equal(t, 2, items[1].Quantity)
}

func TestOrderService_CreateOrder(t *testing.T) {
	t.Run("places a merged order", func(t *testing.T) {
		f := newOrderFixture()
		svc := f.orderService(demoWallet())
		productID := uuid.New()

		f.orders.On("PlaceOrder", mock.MatchedBy(func(o *model.Order) bool {
			return o.ConsumerID == f.consumer.ID && len(o.Items) == 1 && o.Items[0].Quantity == 3 && o.Note == "ring twice"
		}), mock.AnythingOfType("time.Time")).Return(nil).Once()

		order, err := svc.CreateOrder(&CreateOrderRequest{
			Items: []OrderItemRequest{{ProductID: productID, Quantity: 1}, {ProductID: productID, Quantity: 2}},
			Note:  "  ring twice ",
		}, f.consumer)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, order.ID)
		f.orders.AssertExpectations(t)
	})

	t.Run("stock errors come back unchanged", func(t *testing.T) {
		f := newOrderFixture()
		svc := f.orderService(demoWallet())
		f.orders.On("PlaceOrder", mock.Anything, mock.Anything).Return(repository.ErrInsufficientStock).Once()

		_, err := svc.CreateOrder(&CreateOrderRequest{Items: []OrderItemRequest{{ProductID: uuid.New(), Quantity: 9}}}, f.consumer)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})

	t.Run("pickup in the past", func(t *testing.T) {
		f := newOrderFixture()
		svc := f.orderService(demoWallet())
		past := time.Now().Add(-time.Hour)

		_, err := svc.CreateOrder(&CreateOrderRequest{
			Items:      []OrderItemRequest{{ProductID: uuid.New(), Quantity: 1}},
			PickupTime: &past,
		}, f.consumer)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty order", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.orderService(demoWallet()).CreateOrder(&CreateOrderRequest{}, f.consumer)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestOrderService_UpdateStatus_Rules(t *testing.T) {
	t.Run("consumer cannot confirm", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("FindByID", f.order.ID).Return(f.order, nil)

		_, err := f.orderService(demoWallet()).UpdateStatus(context.Background(), f.order.ID, model.OrderConfirmed, f.consumer)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("consumer cannot cancel once confirmed", func(t *testing.T) {
		f := newOrderFixture()
		f.order.Status = model.OrderConfirmed
		f.orders.On("FindByID", f.order.ID).Return(f.order, nil)

		_, err := f.orderService(demoWallet()).UpdateStatus(context.Background(), f.order.ID, model.OrderCancelled, f.consumer)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("skipping steps", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("FindByID", f.order.ID).Return(f.order, nil)

		_, err := f.orderService(demoWallet()).UpdateStatus(context.Background(), f.order.ID, model.OrderCompleted, f.owner)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("outsider", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("FindByID", f.order.ID).Return(f.order, nil)

		_, err := f.orderService(demoWallet()).UpdateStatus(context.Background(), f.order.ID, model.OrderConfirmed, Actor{ID: uuid.New()})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("lost race", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("FindByID", f.order.ID).Return(f.order, nil)
		f.orders.On("TransitionStatus", f.order, model.OrderPending).Return(repository.ErrStatusChanged).Once()

		_, err := f.orderService(demoWallet()).UpdateStatus(context.Background(), f.order.ID, model.OrderConfirmed, f.owner)
		assert.ErrorIs(t, err, ErrOrderConflict)
	})
}

func TestOrderService_UpdateStatus_CancelRefunds(t *testing.T) {
	f := newOrderFixture()
	svc := f.orderService(demoWallet())
	payment := &model.Payment{OrderID: f.order.ID, Method: model.MethodEscrow, Status: model.PaymentEscrowed}

	f.orders.On("FindByID", f.order.ID).Return(f.order, nil)
	f.orders.On("CancelAndRestock", f.order, model.OrderPending, mock.AnythingOfType("time.Time")).Return(nil).Once()
	f.payments.On("FindByOrderID", f.order.ID).Return(payment, nil)
	f.payments.On("Update", payment).Return(nil).Once()
	f.orders.On("UpdatePaymentStatus", f.order.ID, model.PaymentRefunded).Return(nil).Once()

	order, err := svc.UpdateStatus(context.Background(), f.order.ID, model.OrderCancelled, f.consumer)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, order.Status)
	assert.Equal(t, model.PaymentRefunded, payment.Status)
	assert.NotEmpty(t, payment.RefundTxHash)
	f.orders.AssertExpectations(t)
}

func TestOrderService_UpdateStatus_CompleteReleasesAndMints(t *testing.T) {
	f := newOrderFixture()
	f.order.Status = model.OrderReady
	svc := f.orderService(demoWallet())
	payment := &model.Payment{OrderID: f.order.ID, Method: model.MethodEscrow, Status: model.PaymentEscrowed}

	f.orders.On("FindByID", f.order.ID).Return(f.order, nil)
	f.orders.On("TransitionStatus", f.order, model.OrderReady).Return(nil).Once()
	f.payments.On("FindByOrderID", f.order.ID).Return(payment, nil)
	f.payments.On("Update", payment).Return(nil).Once()
	f.orders.On("UpdatePaymentStatus", f.order.ID, model.PaymentReleased).Return(nil).Once()
	f.users.On("AddCarbonCredits", f.consumer.ID, int64(900)).Return(nil).Once()
	f.users.On("FindByID", f.consumer.ID).Return(f.buyer(buyerWallet), nil)
	f.orders.On("SetCarbonTx", f.order.ID, mock.AnythingOfType("string")).Return(nil).Once()

	order, err := svc.UpdateStatus(context.Background(), f.order.ID, model.OrderCompleted, f.owner)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, order.Status)
	require.NotNil(t, order.CompletedAt)
	assert.Equal(t, model.PaymentReleased, payment.Status)
	assert.NotEmpty(t, order.CarbonTxHash)
	f.orders.AssertExpectations(t)
	f.users.AssertExpectations(t)
}

func TestOrderService_UpdateStatus_MintFailureDoesNotFailCompletion(t *testing.T) {
	f := newOrderFixture()
	f.order.Status = model.OrderReady
	svc := f.orderService(brokenWallet{})
	payment := &model.Payment{OrderID: f.order.ID, Method: model.MethodCash, Status: model.PaymentPending}

	f.orders.On("FindByID", f.order.ID).Return(f.order, nil)
	f.orders.On("TransitionStatus", f.order, model.OrderReady).Return(nil).Once()
	f.payments.On("FindByOrderID", f.order.ID).Return(payment, nil)
	f.payments.On("Update", payment).Return(nil).Once()
	f.orders.On("UpdatePaymentStatus", f.order.ID, model.PaymentReleased).Return(nil).Once()
	f.users.On("AddCarbonCredits", f.consumer.ID, int64(900)).Return(nil).Once()
	f.users.On("FindByID", f.consumer.ID).Return(f.buyer(buyerWallet), nil)

	order, err := svc.UpdateStatus(context.Background(), f.order.ID, model.OrderCompleted, f.owner)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, order.Status)
	assert.Empty(t, order.CarbonTxHash)
	f.orders.AssertNotCalled(t, "SetCarbonTx", mock.Anything, mock.Anything)
}

func TestOrderService_UpdateStatus_ReleaseFailureKeepsCompletion(t *testing.T) {
	f := newOrderFixture()
	f.order.Status = model.OrderReady
	svc := f.orderService(brokenWallet{})
	payment := &model.Payment{OrderID: f.order.ID, Method: model.MethodEscrow, Status: model.PaymentEscrowed}

	f.orders.On("FindByID", f.order.ID).Return(f.order, nil)
	f.orders.On("TransitionStatus", f.order, model.OrderReady).Return(nil).Once()
	f.payments.On("FindByOrderID", f.order.ID).Return(payment, nil)
	f.users.On("AddCarbonCredits", f.consumer.ID, int64(900)).Return(nil).Once()
	f.users.On("FindByID", f.consumer.ID).Return(f.buyer(buyerWallet), nil)

	order, err := svc.UpdateStatus(context.Background(), f.order.ID, model.OrderCompleted, f.owner)
	assert.ErrorIs(t, err, ErrChainFailure)
	require.NotNil(t, order)
	assert.Equal(t, model.OrderCompleted, order.Status)
	assert.Equal(t, model.PaymentEscrowed, payment.Status)
	// carbon is credited even though the escrow is still held
	f.users.AssertNumberOfCalls(t, "AddCarbonCredits", 1)
	assert.Empty(t, order.CarbonTxHash)
}

func TestOrderService_ListBusinessOrders(t *testing.T) {
	f := newOrderFixture()
	svc := f.orderService(demoWallet())
	f.business.On("FindByID", f.order.BusinessID).Return(f.order.Business, nil)
	f.orders.On("FindByBusiness", f.order.BusinessID, model.OrderPending).Return([]model.Order{*f.order}, nil).Once()

	orders, err := svc.ListBusinessOrders(f.order.BusinessID, model.OrderPending, f.owner)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = svc.ListBusinessOrders(f.order.BusinessID, "", f.consumer)
	assert.ErrorIs(t, err, ErrForbidden)
}
