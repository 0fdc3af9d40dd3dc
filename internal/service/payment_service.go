package service

import (
	"context"
	"errors"
	"fmt"

	"stocky-api/internal/model"
	"stocky-api/internal/repository"
	"stocky-api/internal/ws"
	"stocky-api/pkg/blockchain"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrOrderNotPayable        = errors.New("order cannot be paid in its current status")
	ErrAlreadyPaid            = errors.New("order has already been paid")
	ErrWalletRequired         = errors.New("set a wallet address on your profile to pay by escrow")
	ErrBusinessWalletRequired = errors.New("this business does not accept escrow payments")
	ErrNothingToSettle        = errors.New("payment has nothing left to settle")
	ErrChainFailure           = errors.New("blockchain call failed")
)

type PaymentService interface {
	PayOrder(ctx context.Context, orderID uuid.UUID, method model.PaymentMethod, actor Actor) (*model.Payment, error)
	Release(ctx context.Context, order *model.Order) (*model.Payment, error)
	Refund(ctx context.Context, order *model.Order) (*model.Payment, error)
	// Settle retries the release or refund a completed or cancelled order still owes
	Settle(ctx context.Context, orderID uuid.UUID) (*model.Payment, error)
	GetPaymentByOrder(orderID uuid.UUID, actor Actor) (*model.Payment, error)
	NetworkStatus(ctx context.Context) *blockchain.NetworkStatus
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	wallet      blockchain.Wallet
	wsHub       *ws.Hub
	log         *zap.Logger
}

func NewPaymentService(paymentRepo repository.PaymentRepository, orderRepo repository.OrderRepository, userRepo repository.UserRepository, wallet blockchain.Wallet, hub *ws.Hub, log *zap.Logger) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		wallet:      wallet,
		wsHub:       hub,
		log:         log.Named("payments"),
	}
}

func (s *paymentService) findOrder(id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *paymentService) findPayment(orderID uuid.UUID) (*model.Payment, error) {
	payment, err := s.paymentRepo.FindByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// PayOrder escrows the order total on chain, or records a cash payment
// settled at pickup. A FAILED earlier attempt may be retried.
func (s *paymentService) PayOrder(ctx context.Context, orderID uuid.UUID, method model.PaymentMethod, actor Actor) (*model.Payment, error) {
	if method != model.MethodEscrow && method != model.MethodCash {
		return nil, invalidf("method must be ESCROW or CASH")
	}

	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.ConsumerID != actor.ID {
		return nil, ErrForbidden
	}
	if order.Status != model.OrderPending && order.Status != model.OrderConfirmed {
		return nil, ErrOrderNotPayable
	}
	if order.PaymentStatus != model.PaymentUnpaid && order.PaymentStatus != model.PaymentFailed {
		return nil, ErrAlreadyPaid
	}

	// a concurrent attempt for the same order stops here, before any deposit
	previous := order.PaymentStatus
	if err := s.orderRepo.ReservePayment(order.ID, previous); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrAlreadyPaid
		}
		return nil, err
	}
	recorded := false
	defer func() {
		if recorded {
			return
		}
		if err := s.orderRepo.UpdatePaymentStatus(order.ID, previous); err != nil {
			s.log.Error("undo payment reservation", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}()

	payment, err := s.paymentRepo.FindByOrderID(order.ID)
	isNew := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !isNew {
		return nil, err
	}
	if isNew {
		payment = &model.Payment{OrderID: order.ID, PayerID: actor.ID}
		payment.CreatedBy = actor.String()
	}
	payment.Amount = order.TotalAmount
	payment.Method = method
	payment.FailureReason = ""
	payment.UpdatedBy = actor.String()

	var chainErr error
	if method == model.MethodCash {
		payment.Status = model.PaymentPending
	} else {
		chainErr = s.deposit(ctx, order, payment, actor)
		if chainErr != nil && !errors.Is(chainErr, ErrChainFailure) {
			return nil, chainErr
		}
	}

	save := s.paymentRepo.Update
	if isNew {
		save = s.paymentRepo.Create
	}
	if err := save(payment); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdatePaymentStatus(order.ID, payment.Status); err != nil {
		return nil, err
	}
	recorded = true
	order.PaymentStatus = payment.Status

	s.publish(order, payment)
	if chainErr != nil {
		return nil, chainErr
	}
	return payment, nil
}

func (s *paymentService) deposit(ctx context.Context, order *model.Order, payment *model.Payment, actor Actor) error {
	payer, err := s.userRepo.FindByID(actor.ID)
	if err != nil {
		return ErrUserNotFound
	}
	if payer.WalletAddress == "" {
		return ErrWalletRequired
	}
	if order.Business == nil || order.Business.WalletAddress == "" {
		return ErrBusinessWalletRequired
	}

	res, err := s.wallet.Deposit(ctx, blockchain.OrderRef(order.ID), order.Business.WalletAddress, blockchain.AmountToWei(order.TotalAmount))
	if err != nil {
		s.log.Warn("escrow deposit failed", zap.String("order_id", order.ID.String()), zap.Error(err))
		payment.Status = model.PaymentFailed
		payment.FailureReason = err.Error()
		return fmt.Errorf("%w: %v", ErrChainFailure, err)
	}

	payment.Status = model.PaymentEscrowed
	payment.EscrowTxHash = res.Hash
	payment.Simulated = payment.Simulated || res.Simulated
	return nil
}

// Release pays the seller once the order is completed. Orders without a
// payment row were settled in cash outside the platform.
func (s *paymentService) Release(ctx context.Context, order *model.Order) (*model.Payment, error) {
	payment, err := s.findPayment(order.ID)
	if errors.Is(err, ErrPaymentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	switch {
	case payment.Method == model.MethodCash && payment.Status == model.PaymentPending:
	case payment.Status == model.PaymentEscrowed:
		res, err := s.wallet.Release(ctx, blockchain.OrderRef(order.ID))
		if err != nil {
			s.log.Warn("escrow release failed", zap.String("order_id", order.ID.String()), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrChainFailure, err)
		}
		payment.ReleaseTxHash = res.Hash
		payment.Simulated = payment.Simulated || res.Simulated
	default:
		return payment, nil
	}

	return s.settle(order, payment, model.PaymentReleased)
}

// Refund returns escrowed funds after a cancellation
func (s *paymentService) Refund(ctx context.Context, order *model.Order) (*model.Payment, error) {
	payment, err := s.findPayment(order.ID)
	if errors.Is(err, ErrPaymentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	switch {
	case payment.Method == model.MethodCash && payment.Status == model.PaymentPending:
	case payment.Status == model.PaymentEscrowed:
		res, err := s.wallet.Refund(ctx, blockchain.OrderRef(order.ID))
		if err != nil {
			s.log.Warn("escrow refund failed", zap.String("order_id", order.ID.String()), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrChainFailure, err)
		}
		payment.RefundTxHash = res.Hash
		payment.Simulated = payment.Simulated || res.Simulated
	default:
		return payment, nil
	}

	return s.settle(order, payment, model.PaymentRefunded)
}

func (s *paymentService) settle(order *model.Order, payment *model.Payment, status model.PaymentStatus) (*model.Payment, error) {
	payment.Status = status
	if err := s.paymentRepo.Update(payment); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdatePaymentStatus(order.ID, status); err != nil {
		return nil, err
	}
	order.PaymentStatus = status
	s.publish(order, payment)
	return payment, nil
}

func (s *paymentService) Settle(ctx context.Context, orderID uuid.UUID) (*model.Payment, error) {
	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	payment, err := s.findPayment(order.ID)
	if err != nil {
		return nil, err
	}
	if payment.Status != model.PaymentEscrowed && payment.Status != model.PaymentPending {
		return nil, ErrNothingToSettle
	}

	switch order.Status {
	case model.OrderCompleted:
		return s.Release(ctx, order)
	case model.OrderCancelled:
		return s.Refund(ctx, order)
	default:
		return nil, ErrNothingToSettle
	}
}

func (s *paymentService) GetPaymentByOrder(orderID uuid.UUID, actor Actor) (*model.Payment, error) {
	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if !canViewOrder(order, actor) {
		return nil, ErrForbidden
	}
	return s.findPayment(order.ID)
}

func (s *paymentService) NetworkStatus(ctx context.Context) *blockchain.NetworkStatus {
	return s.wallet.Status(ctx)
}

func (s *paymentService) publish(order *model.Order, payment *model.Payment) {
	s.wsHub.Publish(ws.EventPaymentUpdated, map[string]interface{}{
		"order_id":    order.ID,
		"business_id": order.BusinessID,
		"consumer_id": order.ConsumerID,
		"status":      payment.Status,
		"method":      payment.Method,
		"simulated":   payment.Simulated,
	})
}
