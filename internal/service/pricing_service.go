package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"stocky-api/internal/model"
	"stocky-api/internal/pricing"
	"stocky-api/internal/repository"
	"stocky-api/internal/ws"
	"stocky-api/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pricingActor = "pricing-job"

var ErrPricingBusy = errors.New("a pricing pass is already running")

type PricingService interface {
	RunPricingPass(ctx context.Context, now time.Time) (*PricingReport, error)
}

// PricingReport summarises one pass over the catalogue
type PricingReport struct {
	StartedAt  time.Time     `json:"started_at"`
	Scanned    int           `json:"scanned"`
	Discounted int           `json:"discounted"`
	Expired    int           `json:"expired"`
	Unchanged  int           `json:"unchanged"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
}

type pricingService struct {
	productRepo repository.ProductRepository
	wsHub       *ws.Hub
	log         *zap.Logger

	// held for the length of a pass; shared by the cron job and the manual trigger
	running sync.Mutex
}

func NewPricingService(productRepo repository.ProductRepository, hub *ws.Hub, log *zap.Logger) PricingService {
	return &pricingService{productRepo: productRepo, wsHub: hub, log: log.Named("pricing")}
}

// RunPricingPass re-prices every active product inside the discount horizon
// and expires the ones past their date. Each product is written in its own
// transaction; one failure does not stop the pass. A cancelled ctx stops it
// between products and returns the partial report. A pass started while
// another one is running returns ErrPricingBusy straight away.
func (s *pricingService) RunPricingPass(ctx context.Context, now time.Time) (*PricingReport, error) {
	if !s.running.TryLock() {
		return nil, ErrPricingBusy
	}
	defer s.running.Unlock()

	report := &PricingReport{StartedAt: now}
	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
		report.DurationMS = report.Duration.Milliseconds()
		metrics.PricingDuration.Observe(report.Duration.Seconds())
	}()

	products, err := s.productRepo.FindForPricing(now.Add(pricing.Horizon))
	if err != nil {
		metrics.PricingRuns.WithLabelValues("error").Inc()
		return report, err
	}

	for i := range products {
		if err := ctx.Err(); err != nil {
			metrics.PricingRuns.WithLabelValues("cancelled").Inc()
			return report, err
		}
		report.Scanned++
		s.reprice(&products[i], now, report)
	}

	metrics.PricingRuns.WithLabelValues("ok").Inc()
	s.log.Info("pricing pass finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("discounted", report.Discounted),
		zap.Int("expired", report.Expired),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}

func (s *pricingService) reprice(p *model.Product, now time.Time, report *PricingReport) {
	d := pricing.Evaluate(p, now)
	if !d.Changed {
		report.Unchanged++
		return
	}

	history := &model.PriceHistory{
		ProductID:    p.ID,
		OldPrice:     p.CurrentPrice,
		NewPrice:     d.Price,
		OldDiscount:  p.DiscountPercent,
		NewDiscount:  d.Discount,
		Reason:       model.ReasonPricingJob,
		DaysToExpiry: d.DaysToExpiry,
		ChangedBy:    pricingActor,
	}
	oldPrice := p.CurrentPrice

	p.CurrentPrice = d.Price
	p.DiscountPercent = d.Discount
	p.LastPricedAt = &now
	if d.Expired {
		p.Status = model.ProductExpired
		history.Reason = model.ReasonExpired
	}

	if err := s.productRepo.ApplyPriceChange(p, history); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// sold out or edited since it was loaded
			report.Unchanged++
			return
		}
		report.Failed++
		metrics.PricingProducts.WithLabelValues("failed").Inc()
		s.log.Error("reprice product", zap.String("product_id", p.ID.String()), zap.Error(err))
		return
	}

	if d.Expired {
		report.Expired++
		metrics.PricingProducts.WithLabelValues("expired").Inc()
		s.wsHub.Publish(ws.EventProductExpired, map[string]interface{}{
			"product_id":  p.ID,
			"business_id": p.BusinessID,
			"name":        p.Name,
		})
		return
	}

	report.Discounted++
	metrics.PricingProducts.WithLabelValues("discounted").Inc()
	s.wsHub.Publish(ws.EventPriceDrop, map[string]interface{}{
		"product":   productEvent(p),
		"old_price": oldPrice,
	})
}
