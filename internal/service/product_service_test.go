package service

import (
	"testing"
	"time"

	"stocky-api/internal/model"
	"stocky-api/internal/repository"
	"stocky-api/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type productFixture struct {
	svc        *productService
	products   *mocks.MockProductRepository
	businesses *mocks.MockBusinessRepository
	categories *mocks.MockCategoryRepository
	owner      Actor
	business   *model.Business
	now        time.Time
}

func newProductFixture() *productFixture {
	f := &productFixture{
		products:   new(mocks.MockProductRepository),
		businesses: new(mocks.MockBusinessRepository),
		categories: new(mocks.MockCategoryRepository),
		owner:      Actor{ID: uuid.New(), Name: "Baker", Role: model.RoleBusiness},
		now:        time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.business = &model.Business{Name: "Corner Bakery", OwnerID: f.owner.ID}
	f.business.ID = uuid.New()
	f.svc = NewProductService(f.products, f.businesses, f.categories, nil).(*productService)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *productFixture) createRequest() *CreateProductRequest {
	return &CreateProductRequest{
		BusinessID:    f.business.ID,
		CategoryID:    1,
		Name:          " Sourdough ",
		SKU:           "SD-1",
		Quantity:      5,
		OriginalPrice: 1000,
		ExpiryDate:    f.now.Add(50 * time.Hour),
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	t.Run("applies the discount band straight away", func(t *testing.T) {
		f := newProductFixture()
		f.businesses.On("FindByID", f.business.ID).Return(f.business, nil)
		f.categories.On("FindByID", uint(1)).Return(&model.Category{ID: 1}, nil)
		f.products.On("ExistsSKU", f.business.ID, "SD-1", (*uuid.UUID)(nil)).Return(false, nil)
		f.products.On("Create", mock.AnythingOfType("*model.Product")).Return(nil).Once()

		p, err := f.svc.CreateProduct(f.createRequest(), f.owner)
		require.NoError(t, err)
		assert.Equal(t, "Sourdough", p.Name)
		assert.Equal(t, model.ProductActive, p.Status)
		// two days left: 30% band
		assert.Equal(t, 30, p.DiscountPercent)
		assert.Equal(t, int64(700), p.CurrentPrice)
		assert.Equal(t, int64(1000), p.OriginalPrice)
		require.NotNil(t, p.LastPricedAt)
		f.products.AssertExpectations(t)
	})

	t.Run("full price outside every band", func(t *testing.T) {
		f := newProductFixture()
		f.businesses.On("FindByID", f.business.ID).Return(f.business, nil)
		f.categories.On("FindByID", uint(1)).Return(&model.Category{ID: 1}, nil)
		f.products.On("ExistsSKU", f.business.ID, "SD-1", (*uuid.UUID)(nil)).Return(false, nil)
		f.products.On("Create", mock.AnythingOfType("*model.Product")).Return(nil).Once()

		req := f.createRequest()
		req.ExpiryDate = f.now.Add(10 * 24 * time.Hour)
		p, err := f.svc.CreateProduct(req, f.owner)
		require.NoError(t, err)
		assert.Equal(t, 0, p.DiscountPercent)
		assert.Equal(t, int64(1000), p.CurrentPrice)
		assert.Nil(t, p.LastPricedAt)
	})

	t.Run("sku conflict", func(t *testing.T) {
		f := newProductFixture()
		f.businesses.On("FindByID", f.business.ID).Return(f.business, nil)
		f.categories.On("FindByID", uint(1)).Return(&model.Category{ID: 1}, nil)
		f.products.On("ExistsSKU", f.business.ID, "SD-1", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := f.svc.CreateProduct(f.createRequest(), f.owner)
		assert.ErrorIs(t, err, ErrSKUExists)
		f.products.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("several products without a SKU", func(t *testing.T) {
		f := newProductFixture()
		f.businesses.On("FindByID", f.business.ID).Return(f.business, nil)
		f.categories.On("FindByID", uint(1)).Return(&model.Category{ID: 1}, nil)
		f.products.On("Create", mock.MatchedBy(func(p *model.Product) bool { return p.SKU == "" })).Return(nil).Twice()

		for i := 0; i < 2; i++ {
			req := f.createRequest()
			req.SKU = "  "
			_, err := f.svc.CreateProduct(req, f.owner)
			require.NoError(t, err)
		}
		f.products.AssertNotCalled(t, "ExistsSKU", mock.Anything, mock.Anything, mock.Anything)
		f.products.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("duplicate key on insert", func(t *testing.T) {
		f := newProductFixture()
		f.businesses.On("FindByID", f.business.ID).Return(f.business, nil)
		f.categories.On("FindByID", uint(1)).Return(&model.Category{ID: 1}, nil)
		f.products.On("ExistsSKU", f.business.ID, "SD-1", (*uuid.UUID)(nil)).Return(false, nil)
		f.products.On("Create", mock.AnythingOfType("*model.Product")).Return(gorm.ErrDuplicatedKey).Once()

		_, err := f.svc.CreateProduct(f.createRequest(), f.owner)
		assert.ErrorIs(t, err, ErrSKUExists)
	})

	t.Run("someone else's business", func(t *testing.T) {
		f := newProductFixture()
		f.businesses.On("FindByID", f.business.ID).Return(f.business, nil)

		stranger := Actor{ID: uuid.New(), Role: model.RoleBusiness}
		_, err := f.svc.CreateProduct(f.createRequest(), stranger)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("expiry in the past", func(t *testing.T) {
		f := newProductFixture()
		req := f.createRequest()
		req.ExpiryDate = f.now.Add(-time.Hour)

		_, err := f.svc.CreateProduct(req, f.owner)
		assert.ErrorIs(t, err, ErrExpiryInPast)
	})

	t.Run("validation", func(t *testing.T) {
		f := newProductFixture()
		req := f.createRequest()
		req.OriginalPrice = 0

		_, err := f.svc.CreateProduct(req, f.owner)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func (f *productFixture) existing(expiry time.Time) *model.Product {
	p := &model.Product{
		BusinessID:    f.business.ID,
		Business:      f.business,
		CategoryID:    1,
		Name:          "Sourdough",
		Quantity:      4,
		OriginalPrice: 1000,
		CurrentPrice:  1000,
		ExpiryDate:    expiry,
		Status:        model.ProductActive,
	}
	p.ID = uuid.New()
	return p
}

func TestProductService_UpdateProduct(t *testing.T) {
	t.Run("manual discount is recorded in the history", func(t *testing.T) {
		f := newProductFixture()
		p := f.existing(f.now.Add(10 * 24 * time.Hour))
		f.products.On("FindByID", p.ID).Return(p, nil)
		f.products.On("Update", p, mock.MatchedBy(func(h *model.PriceHistory) bool {
			return h != nil && h.Reason == model.ReasonManual && h.OldPrice == 1000 && h.NewPrice == 800 && h.NewDiscount == 20
		})).Return(nil).Once()

		discount := 20
		updated, err := f.svc.UpdateProduct(p.ID, &UpdateProductRequest{DiscountPercent: &discount}, f.owner)
		require.NoError(t, err)
		assert.Equal(t, int64(800), updated.CurrentPrice)
		f.products.AssertExpectations(t)
	})

	t.Run("zero quantity sells out", func(t *testing.T) {
		f := newProductFixture()
		p := f.existing(f.now.Add(10 * 24 * time.Hour))
		f.products.On("FindByID", p.ID).Return(p, nil)
		f.products.On("Update", p, (*model.PriceHistory)(nil)).Return(nil).Once()

		qty := 0
		updated, err := f.svc.UpdateProduct(p.ID, &UpdateProductRequest{Quantity: &qty}, f.owner)
		require.NoError(t, err)
		assert.Equal(t, model.ProductSoldOut, updated.Status)
	})

	t.Run("restocking a sold out product relists it at the band price", func(t *testing.T) {
		f := newProductFixture()
		p := f.existing(f.now.Add(12 * time.Hour))
		p.Quantity = 0
		p.Status = model.ProductSoldOut
		f.products.On("FindByID", p.ID).Return(p, nil)
		f.products.On("Update", p, mock.AnythingOfType("*model.PriceHistory")).Return(nil).Once()

		qty := 3
		updated, err := f.svc.UpdateProduct(p.ID, &UpdateProductRequest{Quantity: &qty}, f.owner)
		require.NoError(t, err)
		assert.Equal(t, model.ProductActive, updated.Status)
		assert.Equal(t, 50, updated.DiscountPercent)
		assert.Equal(t, int64(500), updated.CurrentPrice)
	})

	t.Run("new expiry relists an expired product", func(t *testing.T) {
		f := newProductFixture()
		p := f.existing(f.now.Add(-time.Hour))
		p.Status = model.ProductExpired
		f.products.On("FindByID", p.ID).Return(p, nil)
		f.products.On("Update", p, mock.Anything).Return(nil).Once()

		expiry := f.now.Add(20 * 24 * time.Hour)
		updated, err := f.svc.UpdateProduct(p.ID, &UpdateProductRequest{ExpiryDate: &expiry}, f.owner)
		require.NoError(t, err)
		assert.Equal(t, model.ProductActive, updated.Status)
	})

	t.Run("not the owner", func(t *testing.T) {
		f := newProductFixture()
		p := f.existing(f.now.Add(10 * 24 * time.Hour))
		f.products.On("FindByID", p.ID).Return(p, nil)

		name := "Rye"
		_, err := f.svc.UpdateProduct(p.ID, &UpdateProductRequest{Name: &name}, Actor{ID: uuid.New(), Role: model.RoleConsumer})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestProductService_ListProducts_ClampsPaging(t *testing.T) {
	f := newProductFixture()
	f.products.On("List", mock.MatchedBy(func(filter repository.ProductFilter) bool {
		return filter.Page == 1 && filter.PageSize == MaxPageSize && filter.Search == "bread"
	})).Return(nil, int64(0), nil).Once()

	page, err := f.svc.ListProducts(repository.ProductFilter{PageSize: 1000, Search: " bread "})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Equal(t, MaxPageSize, page.PageSize)
	f.products.AssertExpectations(t)
}
