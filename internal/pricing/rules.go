// Package pricing holds the days-to-expiry discount table shared by the
// scheduler, product creation and the price-suggestion endpoint.
package pricing

import (
	"time"

	"stocky-api/internal/model"
)

// Band is one row of the discount table: products with at most MaxDays
// left get DiscountPercent off their original price.
type Band struct {
	MaxDays         int `json:"max_days"`
	DiscountPercent int `json:"discount_percent"`
}

// Bands is ordered from the closest expiry outwards
var Bands = []Band{
	{MaxDays: 1, DiscountPercent: 50},
	{MaxDays: 3, DiscountPercent: 30},
	{MaxDays: 7, DiscountPercent: 15},
}

// Horizon is the exclusive upper bound of the widest band. Days are floored,
// so a product with 7d23h left still sits in the 7-day band.
var Horizon = time.Duration(Bands[len(Bands)-1].MaxDays+1) * 24 * time.Hour

// DaysToExpiry returns whole days left, negative once expiry has passed
func DaysToExpiry(expiry, now time.Time) int {
	d := expiry.Sub(now)
	if d <= 0 {
		return -1
	}
	return int(d / (24 * time.Hour))
}

// BandDiscount returns the discount for the given days left, 0 outside every band
func BandDiscount(days int) int {
	for _, b := range Bands {
		if days <= b.MaxDays {
			return b.DiscountPercent
		}
	}
	return 0
}

// Decision is the outcome of evaluating one product
type Decision struct {
	DaysToExpiry int
	Expired      bool
	Discount     int
	Price        int64
	Changed      bool
}

// Evaluate applies the table to p. The discount never goes below the one
// already on the product, so manual markdowns survive the job.
func Evaluate(p *model.Product, now time.Time) Decision {
	days := DaysToExpiry(p.ExpiryDate, now)
	if days < 0 {
		return Decision{
			DaysToExpiry: days,
			Expired:      true,
			Discount:     p.DiscountPercent,
			Price:        p.CurrentPrice,
			Changed:      p.Status != model.ProductExpired,
		}
	}

	discount := BandDiscount(days)
	if p.DiscountPercent > discount {
		discount = p.DiscountPercent
	}
	price := p.PriceAt(discount)

	return Decision{
		DaysToExpiry: days,
		Discount:     discount,
		Price:        price,
		Changed:      discount != p.DiscountPercent || price != p.CurrentPrice,
	}
}

// Suggestion is returned by the price-suggestion endpoint
type Suggestion struct {
	OriginalPrice   int64 `json:"original_price"`
	SuggestedPrice  int64 `json:"suggested_price"`
	DiscountPercent int   `json:"discount_percent"`
	DaysToExpiry    int   `json:"days_to_expiry"`
	Expired         bool  `json:"expired"`
}

func Suggest(originalPrice int64, expiry, now time.Time) Suggestion {
	p := &model.Product{OriginalPrice: originalPrice, CurrentPrice: originalPrice, ExpiryDate: expiry, Status: model.ProductActive}
	d := Evaluate(p, now)
	return Suggestion{
		OriginalPrice:   originalPrice,
		SuggestedPrice:  d.Price,
		DiscountPercent: d.Discount,
		DaysToExpiry:    d.DaysToExpiry,
		Expired:         d.Expired,
	}
}
