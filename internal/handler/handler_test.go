package handler

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stocky-api/internal/apperror"
	"stocky-api/internal/model"
	"stocky-api/internal/pricing"
	"stocky-api/internal/repository"
	"stocky-api/internal/service"
	"stocky-api/internal/service/mocks"
	"stocky-api/pkg/blockchain"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testUserID = uuid.MustParse("7d1f4c2e-0c4b-4f4e-9a51-3f1f0d6b2a10")

// newApp mimics RequireAuth by filling Locals for the given role; an empty role leaves the request anonymous
func newApp(role string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperror.Handler})
	if role != "" {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user_id", testUserID.String())
			c.Locals("user_email", "tester@example.com")
			c.Locals("user_name", "Tester")
			c.Locals("user_role", role)
			return c.Next()
		})
	}
	return app
}

func testActor(role string) service.Actor {
	return service.Actor{ID: testUserID, Email: "tester@example.com", Name: "Tester", Role: role}
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	return send(t, app, req)
}

func send(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{service.ErrValidation, fiber.StatusBadRequest},
		{service.ErrMixedBusinesses, fiber.StatusBadRequest},
		{service.ErrSessionReplaced, fiber.StatusUnauthorized},
		{service.ErrNotBusinessAccount, fiber.StatusForbidden},
		{service.ErrProductNotFound, fiber.StatusNotFound},
		{service.ErrInsufficientStock, fiber.StatusConflict},
		{service.ErrPricingBusy, fiber.StatusConflict},
		{service.ErrChainFailure, fiber.StatusBadGateway},
		{io.ErrUnexpectedEOF, fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		var appErr *apperror.AppError
		require.ErrorAs(t, mapError(tc.err), &appErr)
		assert.Equal(t, tc.status, appErr.Status, tc.err.Error())
	}

	existing := apperror.NotFound("gone")
	assert.Same(t, existing, mapError(existing))
}

func TestListProducts_ParsesFilters(t *testing.T) {
	products := new(mocks.MockProductService)
	h := NewProductHandler(products)
	app := newApp("")
	app.Get("/products", h.ListProducts)

	businessID := uuid.New()
	products.On("ListProducts", mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.BusinessID != nil && *f.BusinessID == businessID &&
			f.CategoryID == 3 &&
			f.Status == model.ProductActive &&
			f.Search == "milk" &&
			f.MaxPrice == 500 &&
			f.ExpiringWithinDays == 2 &&
			f.Sort == "price" &&
			f.Page == 2 && f.PageSize == 10
	})).Return(&service.ProductPage{Items: []model.Product{}, Total: 0, Page: 2, PageSize: 10}, nil).Once()

	status, body := doJSON(t, app, fiber.MethodGet,
		"/products?business_id="+businessID.String()+"&category_id=3&search=milk&max_price=500&expiring_within_days=2&sort=price&page=2&page_size=10", nil)

	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 2, body["page"])
	products.AssertExpectations(t)
}

func TestListProducts_StatusAll(t *testing.T) {
	products := new(mocks.MockProductService)
	app := newApp("")
	app.Get("/products", NewProductHandler(products).ListProducts)

	products.On("ListProducts", mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.Status == ""
	})).Return(&service.ProductPage{}, nil).Once()

	status, _ := doJSON(t, app, fiber.MethodGet, "/products?status=all", nil)
	assert.Equal(t, fiber.StatusOK, status)
	products.AssertExpectations(t)
}

func TestListProducts_BadQuery(t *testing.T) {
	products := new(mocks.MockProductService)
	app := newApp("")
	app.Get("/products", NewProductHandler(products).ListProducts)

	for _, q := range []string{"business_id=nope", "status=ROTTEN", "max_price=-1", "page=two"} {
		status, body := doJSON(t, app, fiber.MethodGet, "/products?"+q, nil)
		assert.Equal(t, fiber.StatusBadRequest, status, q)
		assert.NotEmpty(t, body["error"], q)
	}
	products.AssertNotCalled(t, "ListProducts", mock.Anything)
}

func TestCreateProduct(t *testing.T) {
	products := new(mocks.MockProductService)
	app := newApp(model.RoleBusiness)
	app.Post("/products", NewProductHandler(products).CreateProduct)

	actor := testActor(model.RoleBusiness)
	products.On("CreateProduct", mock.MatchedBy(func(r *service.CreateProductRequest) bool {
		return r.Name == "Sourdough"
	}), actor).Return(&model.Product{Name: "Sourdough", CurrentPrice: 700}, nil).Once()
	products.On("CreateProduct", mock.MatchedBy(func(r *service.CreateProductRequest) bool {
		return r.Name == "Somebody else's"
	}), actor).Return(nil, service.ErrForbidden).Once()

	status, body := doJSON(t, app, fiber.MethodPost, "/products", map[string]interface{}{"name": "Sourdough"})
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Product created", body["message"])

	status, _ = doJSON(t, app, fiber.MethodPost, "/products", map[string]interface{}{"name": "Somebody else's"})
	assert.Equal(t, fiber.StatusForbidden, status)
	products.AssertExpectations(t)
}

func TestGetProduct_NotFoundAndBadID(t *testing.T) {
	products := new(mocks.MockProductService)
	app := newApp("")
	app.Get("/products/:id", NewProductHandler(products).GetProduct)

	id := uuid.New()
	products.On("GetProduct", id).Return(nil, service.ErrProductNotFound).Once()

	status, _ := doJSON(t, app, fiber.MethodGet, "/products/"+id.String(), nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doJSON(t, app, fiber.MethodGet, "/products/42", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestProtectedHandler_RequiresActor(t *testing.T) {
	orders := new(mocks.MockOrderService)
	app := newApp("")
	app.Get("/orders/mine", NewOrderHandler(orders).ListMyOrders)

	status, _ := doJSON(t, app, fiber.MethodGet, "/orders/mine", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestCreateOrder_OutOfStock(t *testing.T) {
	orders := new(mocks.MockOrderService)
	app := newApp(model.RoleConsumer)
	app.Post("/orders", NewOrderHandler(orders).CreateOrder)

	orders.On("CreateOrder", mock.Anything, testActor(model.RoleConsumer)).
		Return(nil, service.ErrInsufficientStock).Once()

	status, body := doJSON(t, app, fiber.MethodPost, "/orders", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": uuid.NewString(), "quantity": 3}},
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, service.ErrInsufficientStock.Error(), body["error"])
}

func TestUpdateOrderStatus(t *testing.T) {
	orders := new(mocks.MockOrderService)
	app := newApp(model.RoleBusiness)
	app.Patch("/orders/:id/status", NewOrderHandler(orders).UpdateStatus)

	actor := testActor(model.RoleBusiness)
	ready, completed, skipped := uuid.New(), uuid.New(), uuid.New()

	orders.On("UpdateStatus", mock.Anything, ready, model.OrderReady, actor).
		Return(&model.Order{Status: model.OrderReady}, nil).Once()
	orders.On("UpdateStatus", mock.Anything, completed, model.OrderCompleted, actor).
		Return(&model.Order{Status: model.OrderCompleted}, service.ErrChainFailure).Once()
	orders.On("UpdateStatus", mock.Anything, skipped, model.OrderCompleted, actor).
		Return(nil, service.ErrInvalidTransition).Once()

	// lower-case input is normalised
	status, body := doJSON(t, app, fiber.MethodPatch, "/orders/"+ready.String()+"/status", map[string]string{"status": "ready"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Order updated", body["message"])

	status, body = doJSON(t, app, fiber.MethodPatch, "/orders/"+completed.String()+"/status", map[string]string{"status": "COMPLETED"})
	assert.Equal(t, fiber.StatusBadGateway, status)
	require.NotNil(t, body["data"])
	assert.Equal(t, "COMPLETED", body["data"].(map[string]interface{})["status"])

	status, _ = doJSON(t, app, fiber.MethodPatch, "/orders/"+skipped.String()+"/status", map[string]string{"status": "COMPLETED"})
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = doJSON(t, app, fiber.MethodPatch, "/orders/"+ready.String()+"/status", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, status)

	orders.AssertExpectations(t)
}

func TestPayOrder_DefaultsToEscrow(t *testing.T) {
	payments := new(mocks.MockPaymentService)
	app := newApp(model.RoleConsumer)
	app.Post("/payments/orders/:id", NewPaymentHandler(payments).PayOrder)

	orderID := uuid.New()
	actor := testActor(model.RoleConsumer)
	payments.On("PayOrder", mock.Anything, orderID, model.MethodEscrow, actor).
		Return(&model.Payment{Method: model.MethodEscrow, Simulated: true}, nil).Once()
	payments.On("PayOrder", mock.Anything, orderID, model.MethodCash, actor).
		Return(nil, service.ErrAlreadyPaid).Once()

	req := httptest.NewRequest(fiber.MethodPost, "/payments/orders/"+orderID.String(), nil)
	status, body := send(t, app, req)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, body["data"].(map[string]interface{})["simulated"])

	status, _ = doJSON(t, app, fiber.MethodPost, "/payments/orders/"+orderID.String(), map[string]string{"method": "cash"})
	assert.Equal(t, fiber.StatusConflict, status)
	payments.AssertExpectations(t)
}

func TestNetworkStatus(t *testing.T) {
	payments := new(mocks.MockPaymentService)
	app := newApp("")
	app.Get("/blockchain/status", NewPaymentHandler(payments).NetworkStatus)

	payments.On("NetworkStatus", mock.Anything).
		Return(&blockchain.NetworkStatus{Mode: "demo", ChainID: 296, BlockNumber: 1200, Connected: true}).Once()

	status, body := doJSON(t, app, fiber.MethodGet, "/blockchain/status", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "demo", body["mode"])
	assert.EqualValues(t, 296, body["chain_id"])
}

func TestGetLeaderboard_PassesLimit(t *testing.T) {
	carbon := new(mocks.MockCarbonService)
	app := newApp("")
	app.Get("/carbon/leaderboard", NewCarbonHandler(carbon).GetLeaderboard)

	carbon.On("GetLeaderboard", 5).Return([]service.LeaderboardEntry{{Rank: 1, FullName: "Ada", Grams: 4200}}, nil).Once()

	status, _ := doJSON(t, app, fiber.MethodGet, "/carbon/leaderboard?limit=5", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = doJSON(t, app, fiber.MethodGet, "/carbon/leaderboard?limit=lots", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	carbon.AssertExpectations(t)
}

func multipartImage(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/ai/analyze-image", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestAnalyzeImage(t *testing.T) {
	aiSvc := new(mocks.MockAIService)
	app := newApp(model.RoleBusiness)
	app.Post("/ai/analyze-image", NewAIHandler(aiSvc).AnalyzeImage)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{R: 240, G: 220, B: 60, A: 255})
	var pngBytes bytes.Buffer
	require.NoError(t, png.Encode(&pngBytes, img))

	aiSvc.On("AnalyzeImage", mock.Anything, "banana.png", pngBytes.Bytes()).
		Return(&service.AnalysisResult{CategoryID: 1}, nil).Once()

	status, body := send(t, app, multipartImage(t, "banana.png", pngBytes.Bytes()))
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["category_id"])

	status, _ = send(t, app, multipartImage(t, "notes.txt", []byte("definitely not an image")))
	assert.Equal(t, fiber.StatusBadRequest, status)

	req := httptest.NewRequest(fiber.MethodPost, "/ai/analyze-image", nil)
	status, _ = send(t, app, req)
	assert.Equal(t, fiber.StatusBadRequest, status)

	aiSvc.AssertExpectations(t)
}

func TestSuggestPrice(t *testing.T) {
	aiSvc := new(mocks.MockAIService)
	app := newApp("")
	app.Post("/ai/suggest-price", NewAIHandler(aiSvc).SuggestPrice)

	expiry := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	sameExpiry := mock.MatchedBy(func(tm time.Time) bool { return tm.Equal(expiry) })
	aiSvc.On("SuggestPrice", int64(1000), sameExpiry).
		Return(&pricing.Suggestion{OriginalPrice: 1000, SuggestedPrice: 700, DiscountPercent: 30}, nil).Once()
	aiSvc.On("SuggestPrice", int64(0), sameExpiry).
		Return(nil, service.ErrValidation).Once()

	status, body := doJSON(t, app, fiber.MethodPost, "/ai/suggest-price", map[string]interface{}{
		"original_price": 1000, "expiry_date": expiry,
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 700, body["suggested_price"])

	status, _ = doJSON(t, app, fiber.MethodPost, "/ai/suggest-price", map[string]interface{}{
		"original_price": 0, "expiry_date": expiry,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestRunPricingPass(t *testing.T) {
	pricingSvc := new(mocks.MockPricingService)
	app := newApp(model.RoleAdmin)
	app.Post("/pricing/run", NewPricingHandler(pricingSvc).RunPass)

	pricingSvc.On("RunPricingPass", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(&service.PricingReport{Scanned: 4, Discounted: 2, Expired: 1, Unchanged: 1}, nil).Once()

	status, body := doJSON(t, app, fiber.MethodPost, "/pricing/run", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 4, body["scanned"])
	assert.EqualValues(t, 2, body["discounted"])
}
