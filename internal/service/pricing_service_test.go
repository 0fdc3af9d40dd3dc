package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"stocky-api/internal/model"
	"stocky-api/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func pricedProduct(name string, expiry time.Time) model.Product {
	p := model.Product{
		Name:          name,
		Quantity:      3,
		OriginalPrice: 2000,
		CurrentPrice:  2000,
		ExpiryDate:    expiry,
		Status:        model.ProductActive,
	}
	p.ID = uuid.New()
	return p
}

func historyFor(reason model.PriceChangeReason) interface{} {
	return mock.MatchedBy(func(h *model.PriceHistory) bool { return h.Reason == reason })
}

func TestPricingService_RunPricingPass(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := new(mocks.MockProductRepository)
	svc := NewPricingService(repo, nil, zap.NewNop())

	discount := pricedProduct("milk", now.Add(30*time.Hour))
	expired := pricedProduct("yoghurt", now.Add(-time.Minute))
	steady := pricedProduct("cheese", now.Add(6*24*time.Hour))
	steady.DiscountPercent = 15
	steady.CurrentPrice = 1700
	gone := pricedProduct("bread", now.Add(10*time.Hour))
	broken := pricedProduct("eggs", now.Add(2*24*time.Hour))

	repo.On("FindForPricing", now.Add(8*24*time.Hour)).
		Return([]model.Product{discount, expired, steady, gone, broken}, nil).Once()
	repo.On("ApplyPriceChange", mock.MatchedBy(func(p *model.Product) bool { return p.Name == "milk" }), historyFor(model.ReasonPricingJob)).
		Return(nil).Once()
	repo.On("ApplyPriceChange", mock.MatchedBy(func(p *model.Product) bool { return p.Name == "yoghurt" }), historyFor(model.ReasonExpired)).
		Return(nil).Once()
	repo.On("ApplyPriceChange", mock.MatchedBy(func(p *model.Product) bool { return p.Name == "bread" }), mock.Anything).
		Return(gorm.ErrRecordNotFound).Once()
	repo.On("ApplyPriceChange", mock.MatchedBy(func(p *model.Product) bool { return p.Name == "eggs" }), mock.Anything).
		Return(errors.New("connection reset")).Once()

	report, err := svc.RunPricingPass(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Scanned)
	assert.Equal(t, 1, report.Discounted)
	assert.Equal(t, 1, report.Expired)
	assert.Equal(t, 2, report.Unchanged)
	assert.Equal(t, 1, report.Failed)
	repo.AssertExpectations(t)
}

// 7d12h left floors to 7 days, so the job must load it and apply the 15% band
func TestPricingService_RunPricingPass_LastBandDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := new(mocks.MockProductRepository)
	svc := NewPricingService(repo, nil, zap.NewNop())

	p := pricedProduct("apples", now.Add(7*24*time.Hour+12*time.Hour))
	repo.On("FindForPricing", mock.MatchedBy(func(horizon time.Time) bool {
		return p.ExpiryDate.Before(horizon)
	})).Return([]model.Product{p}, nil).Once()
	repo.On("ApplyPriceChange", mock.MatchedBy(func(saved *model.Product) bool {
		return saved.DiscountPercent == 15 && saved.CurrentPrice == 1700
	}), historyFor(model.ReasonPricingJob)).Return(nil).Once()

	report, err := svc.RunPricingPass(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Discounted)
	repo.AssertExpectations(t)
}

func TestPricingService_DiscountedProductFields(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := new(mocks.MockProductRepository)
	svc := NewPricingService(repo, nil, zap.NewNop())

	p := pricedProduct("milk", now.Add(30*time.Hour))
	repo.On("FindForPricing", mock.Anything).Return([]model.Product{p}, nil).Once()

	var saved *model.Product
	var history *model.PriceHistory
	repo.On("ApplyPriceChange", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(0).(*model.Product)
		history = args.Get(1).(*model.PriceHistory)
	}).Return(nil).Once()

	_, err := svc.RunPricingPass(context.Background(), now)
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Equal(t, 50, saved.DiscountPercent)
	assert.Equal(t, int64(1000), saved.CurrentPrice)
	assert.Equal(t, model.ProductActive, saved.Status)
	assert.Equal(t, int64(2000), history.OldPrice)
	assert.Equal(t, int64(1000), history.NewPrice)
	assert.Equal(t, 1, history.DaysToExpiry)
}

func TestPricingService_StopsOnCancel(t *testing.T) {
	now := time.Now()
	repo := new(mocks.MockProductRepository)
	svc := NewPricingService(repo, nil, zap.NewNop())
	repo.On("FindForPricing", mock.Anything).
		Return([]model.Product{pricedProduct("a", now.Add(time.Hour))}, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.RunPricingPass(ctx, now)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.Scanned)
	repo.AssertNotCalled(t, "ApplyPriceChange", mock.Anything, mock.Anything)
}

func TestPricingService_LoadFailure(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	svc := NewPricingService(repo, nil, zap.NewNop())
	repo.On("FindForPricing", mock.Anything).Return(nil, errors.New("db down")).Once()

	_, err := svc.RunPricingPass(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestPricingService_OnePassAtATime(t *testing.T) {
	now := time.Now()
	repo := new(mocks.MockProductRepository)
	svc := NewPricingService(repo, nil, zap.NewNop())

	entered := make(chan struct{})
	release := make(chan struct{})
	repo.On("FindForPricing", mock.Anything).Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return([]model.Product{}, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := svc.RunPricingPass(context.Background(), now)
		done <- err
	}()
	<-entered

	report, err := svc.RunPricingPass(context.Background(), now)
	assert.ErrorIs(t, err, ErrPricingBusy)
	assert.Nil(t, report)

	close(release)
	require.NoError(t, <-done)

	// the lock is free again once the first pass returns
	repo.On("FindForPricing", mock.Anything).Return([]model.Product{}, nil).Once()
	_, err = svc.RunPricingPass(context.Background(), now)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
