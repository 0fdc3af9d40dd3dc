package service

import (
	"context"
	"math/big"
	"time"

	"stocky-api/internal/model"
	"stocky-api/internal/repository"
	"stocky-api/pkg/blockchain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
	recentContributions    = 20
)

type CarbonService interface {
	CarbonSaved(items []model.OrderItem) int64
	MintForOrder(ctx context.Context, order *model.Order) error
	GetMyCredits(ctx context.Context, userID uuid.UUID) (*CarbonSummary, error)
	GetLeaderboard(limit int) ([]LeaderboardEntry, error)
}

type CarbonContribution struct {
	OrderID     uuid.UUID  `json:"order_id"`
	Grams       int64      `json:"grams"`
	TxHash      string     `json:"tx_hash,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CarbonSummary is the consumer's carbon record. OnChainGrams is the token
// balance read from the carbon contract and is absent when the chain can't be read.
type CarbonSummary struct {
	TotalGrams   int64                `json:"total_grams"`
	TotalKg      float64              `json:"total_kg"`
	Wallet       string               `json:"wallet_address,omitempty"`
	OnChainGrams *int64               `json:"on_chain_grams,omitempty"`
	Recent       []CarbonContribution `json:"recent"`
}

type LeaderboardEntry struct {
	Rank     int       `json:"rank"`
	UserID   uuid.UUID `json:"user_id"`
	FullName string    `json:"full_name"`
	Grams    int64     `json:"grams"`
}

type carbonService struct {
	userRepo  repository.UserRepository
	orderRepo repository.OrderRepository
	wallet    blockchain.Wallet
	log       *zap.Logger
}

func NewCarbonService(userRepo repository.UserRepository, orderRepo repository.OrderRepository, wallet blockchain.Wallet, log *zap.Logger) CarbonService {
	return &carbonService{userRepo: userRepo, orderRepo: orderRepo, wallet: wallet, log: log.Named("carbon")}
}

// CarbonSaved sums the per-item savings captured when the order was placed
func (s *carbonService) CarbonSaved(items []model.OrderItem) int64 {
	var grams int64
	for _, it := range items {
		grams += it.CarbonGrams
	}
	return grams
}

// MintForOrder credits the consumer with the order's carbon saving. The
// credit is always booked off-chain; the token mint only happens when the
// consumer has a wallet, and a failed mint is logged rather than returned.
func (s *carbonService) MintForOrder(ctx context.Context, order *model.Order) error {
	grams := order.CarbonSavedGrams
	if grams == 0 {
		grams = s.CarbonSaved(order.Items)
	}
	if grams <= 0 {
		return nil
	}

	if err := s.userRepo.AddCarbonCredits(order.ConsumerID, grams); err != nil {
		return err
	}

	consumer, err := s.userRepo.FindByID(order.ConsumerID)
	if err != nil || consumer.WalletAddress == "" {
		return nil
	}

	res, err := s.wallet.Mint(ctx, consumer.WalletAddress, big.NewInt(grams))
	if err != nil {
		s.log.Warn("carbon mint failed, credit kept off-chain",
			zap.String("order_id", order.ID.String()),
			zap.Int64("grams", grams),
			zap.Error(err),
		)
		return nil
	}

	order.CarbonTxHash = res.Hash
	return s.orderRepo.SetCarbonTx(order.ID, res.Hash)
}

func (s *carbonService) GetMyCredits(ctx context.Context, userID uuid.UUID) (*CarbonSummary, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	orders, err := s.orderRepo.FindByConsumer(userID)
	if err != nil {
		return nil, err
	}

	summary := &CarbonSummary{
		TotalGrams: user.CarbonCredits,
		TotalKg:    float64(user.CarbonCredits) / 1000,
		Wallet:     user.WalletAddress,
		Recent:     []CarbonContribution{},
	}
	if user.WalletAddress != "" {
		balance, err := s.wallet.CarbonBalance(ctx, user.WalletAddress)
		switch {
		case err != nil:
			s.log.Debug("carbon balance unavailable", zap.String("user_id", userID.String()), zap.Error(err))
		case balance.IsInt64():
			grams := balance.Int64()
			summary.OnChainGrams = &grams
		}
	}
	for _, o := range orders {
		if o.Status != model.OrderCompleted || o.CarbonSavedGrams == 0 {
			continue
		}
		summary.Recent = append(summary.Recent, CarbonContribution{
			OrderID:     o.ID,
			Grams:       o.CarbonSavedGrams,
			TxHash:      o.CarbonTxHash,
			CompletedAt: o.CompletedAt,
		})
		if len(summary.Recent) == recentContributions {
			break
		}
	}
	return summary, nil
}

func (s *carbonService) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	if limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}

	users, err := s.userRepo.TopByCarbonCredits(limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{Rank: i + 1, UserID: u.ID, FullName: u.FullName, Grams: u.CarbonCredits}
	}
	return entries, nil
}
