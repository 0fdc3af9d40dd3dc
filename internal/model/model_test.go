package model

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(OrderPending, OrderConfirmed))
	assert.True(t, CanTransition(OrderPending, OrderCancelled))
	assert.True(t, CanTransition(OrderConfirmed, OrderCancelled))
	assert.True(t, CanTransition(OrderReady, OrderCompleted))

	assert.False(t, CanTransition(OrderPending, OrderCompleted))
	assert.False(t, CanTransition(OrderReady, OrderCancelled))
	assert.False(t, CanTransition(OrderCompleted, OrderPending))
	assert.False(t, CanTransition(OrderCancelled, OrderConfirmed))

	assert.True(t, OrderCompleted.IsTerminal())
	assert.True(t, OrderCancelled.IsTerminal())
	assert.False(t, OrderReady.IsTerminal())
}

func TestProduct_PriceAt(t *testing.T) {
	p := Product{OriginalPrice: 999}
	assert.Equal(t, int64(999), p.PriceAt(0))
	assert.Equal(t, int64(499), p.PriceAt(50))
	assert.Equal(t, int64(699), p.PriceAt(30))
	assert.Equal(t, int64(0), p.PriceAt(100))
}

func TestProduct_IsPurchasable(t *testing.T) {
	now := time.Now()
	p := Product{Status: ProductActive, Quantity: 2, ExpiryDate: now.Add(time.Hour)}
	assert.True(t, p.IsPurchasable(now))

	p.Quantity = 0
	assert.False(t, p.IsPurchasable(now))

	p.Quantity = 2
	p.ExpiryDate = now.Add(-time.Minute)
	assert.False(t, p.IsPurchasable(now))

	p.ExpiryDate = now.Add(time.Hour)
	p.Status = ProductInactive
	assert.False(t, p.IsPurchasable(now))
}

func TestProduct_EffectiveCarbonKg(t *testing.T) {
	p := Product{Category: &Category{CarbonKgPerUnit: 1.9}}
	assert.Equal(t, 1.9, p.EffectiveCarbonKg())

	p.CarbonKgPerUnit = 0.25
	assert.Equal(t, 0.25, p.EffectiveCarbonKg())

	assert.Equal(t, 0.0, (&Product{}).EffectiveCarbonKg())
}

func TestUser_Password(t *testing.T) {
	u := User{}
	require.NoError(t, u.SetPassword("secret123"))
	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, u.CheckPassword("secret123"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestUser_Privileges(t *testing.T) {
	u := User{}
	assert.Empty(t, u.GetPrivilegeCodes())
	assert.False(t, u.IsAdmin())

	u.Role = &Role{Code: RoleAdmin, Privileges: []Privilege{{Code: PrivUserManage}, {Code: PrivPricingRun}}}
	assert.True(t, u.IsAdmin())
	assert.Equal(t, []string{PrivUserManage, PrivPricingRun}, u.GetPrivilegeCodes())
	assert.Equal(t, "ADMIN", u.ToResponse().Role)
}

func TestCarbonGrams(t *testing.T) {
	assert.Equal(t, int64(1900), CarbonGrams(1, 1.9))
	assert.Equal(t, int64(1200), CarbonGrams(3, 0.4))
	assert.Equal(t, int64(0), CarbonGrams(0, 6.5))
}

// Products without a SKU, and soft-deleted ones, must not collide on the business/SKU index
func TestProduct_SKUIndexIsPartial(t *testing.T) {
	s, err := schema.Parse(&Product{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	idx := s.LookIndex("idx_business_sku")
	require.NotNil(t, idx)
	assert.Equal(t, "UNIQUE", idx.Class)
	assert.Equal(t, "sku <> '' AND deleted_at IS NULL", idx.Where)

	var columns []string
	for _, f := range idx.Fields {
		columns = append(columns, f.DBName)
	}
	assert.ElementsMatch(t, []string{"business_id", "sku"}, columns)
}
