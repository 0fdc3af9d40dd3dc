package service

import (
	"context"
	"math/big"
	"testing"
	"time"

	"stocky-api/internal/ai"
	"stocky-api/internal/model"
	"stocky-api/internal/repository"
	"stocky-api/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Fruits":            "fruits",
		"Meat & Seafood":    "meat-seafood",
		"  Prepared Meals ": "prepared-meals",
		"Crème Brûlée!":     "crème-brûlée",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestCategoryService_CreateCategory(t *testing.T) {
	repo := new(mocks.MockCategoryRepository)
	svc := NewCategoryService(repo)

	repo.On("FindByName", "Frozen Food").Return(nil, gorm.ErrRecordNotFound).Once()
	repo.On("Create", mock.AnythingOfType("*model.Category")).Return(nil).Once()

	c, err := svc.CreateCategory(&CategoryRequest{Name: " Frozen Food ", CarbonKgPerUnit: 1.2})
	require.NoError(t, err)
	assert.Equal(t, "frozen-food", c.Slug)

	repo.On("FindByName", "Fruits").Return(&model.Category{ID: 1, Name: "Fruits"}, nil).Once()
	_, err = svc.CreateCategory(&CategoryRequest{Name: "Fruits"})
	assert.ErrorIs(t, err, ErrCategoryExists)
}

func TestCarbonService_Leaderboard(t *testing.T) {
	users := new(mocks.MockUserRepository)
	svc := NewCarbonService(users, new(mocks.MockOrderRepository), demoWallet(), zap.NewNop())

	top := []model.User{{FullName: "Ann", CarbonCredits: 5000}, {FullName: "Bo", CarbonCredits: 1200}}
	users.On("TopByCarbonCredits", 10).Return(top, nil).Once()
	users.On("TopByCarbonCredits", 100).Return([]model.User{}, nil).Once()

	entries, err := svc.GetLeaderboard(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, int64(1200), entries[1].Grams)

	_, err = svc.GetLeaderboard(5000)
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestCarbonService_GetMyCredits(t *testing.T) {
	users := new(mocks.MockUserRepository)
	orders := new(mocks.MockOrderRepository)
	svc := NewCarbonService(users, orders, demoWallet(), zap.NewNop())

	user := &model.User{FullName: "Ann", CarbonCredits: 2500, WalletAddress: buyerWallet}
	user.ID = uuid.New()
	completed := model.Order{Status: model.OrderCompleted, CarbonSavedGrams: 2500, CarbonTxHash: "0xabc"}
	pending := model.Order{Status: model.OrderPending, CarbonSavedGrams: 700}
	users.On("FindByID", user.ID).Return(user, nil)
	orders.On("FindByConsumer", user.ID).Return([]model.Order{pending, completed}, nil)

	summary, err := svc.GetMyCredits(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.5, summary.TotalKg)
	require.Len(t, summary.Recent, 1)
	assert.Equal(t, "0xabc", summary.Recent[0].TxHash)
	assert.Nil(t, summary.OnChainGrams)
}

// balanceWallet only answers balance reads
type balanceWallet struct {
	brokenWallet
	grams int64
}

func (w balanceWallet) CarbonBalance(context.Context, string) (*big.Int, error) {
	return big.NewInt(w.grams), nil
}

func TestCarbonService_GetMyCredits_OnChainBalance(t *testing.T) {
	users := new(mocks.MockUserRepository)
	orders := new(mocks.MockOrderRepository)
	svc := NewCarbonService(users, orders, balanceWallet{grams: 2400}, zap.NewNop())

	user := &model.User{FullName: "Ann", CarbonCredits: 2500, WalletAddress: buyerWallet}
	user.ID = uuid.New()
	users.On("FindByID", user.ID).Return(user, nil)
	orders.On("FindByConsumer", user.ID).Return([]model.Order{}, nil)

	summary, err := svc.GetMyCredits(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, summary.OnChainGrams)
	assert.Equal(t, int64(2400), *summary.OnChainGrams)
	assert.Equal(t, int64(2500), summary.TotalGrams)
}

func TestCarbonService_MintForOrder_WithoutWallet(t *testing.T) {
	users := new(mocks.MockUserRepository)
	orders := new(mocks.MockOrderRepository)
	svc := NewCarbonService(users, orders, demoWallet(), zap.NewNop())

	order := &model.Order{ConsumerID: uuid.New(), Items: []model.OrderItem{{CarbonGrams: 300}, {CarbonGrams: 450}}}
	users.On("AddCarbonCredits", order.ConsumerID, int64(750)).Return(nil).Once()
	users.On("FindByID", order.ConsumerID).Return(&model.User{}, nil)

	require.NoError(t, svc.MintForOrder(context.Background(), order))
	assert.Empty(t, order.CarbonTxHash)
	orders.AssertNotCalled(t, "SetCarbonTx", mock.Anything, mock.Anything)
	users.AssertExpectations(t)
}

func TestDashboardService(t *testing.T) {
	dash := new(mocks.MockDashboardRepository)
	businesses := new(mocks.MockBusinessRepository)
	svc := NewDashboardService(dash, businesses)

	owner := Actor{ID: uuid.New(), Role: model.RoleBusiness}
	biz := &model.Business{OwnerID: owner.ID}
	biz.ID = uuid.New()
	businesses.On("FindByID", biz.ID).Return(biz, nil)

	var from, to time.Time
	dash.On("GetSalesMovement", biz.ID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			from = args.Get(1).(time.Time)
			to = args.Get(2).(time.Time)
		}).
		Return([]repository.SalesMovementData{}, nil).Once()

	_, err := svc.GetSalesMovement(biz.ID, 365, owner)
	require.NoError(t, err)
	assert.Equal(t, to.AddDate(0, 0, -90), from)

	_, err = svc.GetBusinessStats(biz.ID, Actor{ID: uuid.New(), Role: model.RoleBusiness})
	assert.ErrorIs(t, err, ErrForbidden)

	dash.On("GetBusinessStats", biz.ID, mock.AnythingOfType("time.Time")).Return(&repository.BusinessStats{ActiveProducts: 4}, nil).Once()
	stats, err := svc.GetBusinessStats(biz.ID, Actor{ID: uuid.New(), Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.ActiveProducts)
}

func TestAIService_AnalyzeImage(t *testing.T) {
	categories := new(mocks.MockCategoryRepository)
	svc := NewAIService(ai.NewMockAnalyzer(), categories).(*aiService)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	categories.On("FindByName", "Bakery").Return(&model.Category{ID: 4, Name: "Bakery"}, nil).Once()

	res, err := svc.AnalyzeImage(context.Background(), "fresh-croissant.jpg", nil)
	require.NoError(t, err)
	assert.Equal(t, "Croissant", res.Name)
	assert.Equal(t, uint(4), res.CategoryID)
	require.NotNil(t, res.SuggestedExpiry)
	assert.Equal(t, now.AddDate(0, 0, 2), *res.SuggestedExpiry)
}

func TestAIService_SuggestPrice(t *testing.T) {
	svc := NewAIService(ai.NewMockAnalyzer(), new(mocks.MockCategoryRepository)).(*aiService)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	s, err := svc.SuggestPrice(1000, now.Add(60*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 30, s.DiscountPercent)
	assert.Equal(t, int64(700), s.SuggestedPrice)

	_, err = svc.SuggestPrice(0, now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.SuggestPrice(1000, time.Time{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_SetActive(t *testing.T) {
	users := new(mocks.MockUserRepository)
	svc := NewUserService(users, new(mocks.MockPrivilegeRepository), new(mocks.MockRoleRepository))
	admin := Actor{ID: uuid.New(), Role: model.RoleAdmin}

	assert.ErrorIs(t, svc.SetActive(admin.ID, false, admin), ErrValidation)

	target := uuid.New()
	users.On("FindByID", target).Return(&model.User{}, nil)
	users.On("SetActive", target, false).Return(nil).Once()
	users.On("UpdateTokenVersion", target, mock.AnythingOfType("string")).Return(nil).Once()
	require.NoError(t, svc.SetActive(target, false, admin))
	users.AssertExpectations(t)
}

func TestUserService_SetWallet(t *testing.T) {
	users := new(mocks.MockUserRepository)
	svc := NewUserService(users, new(mocks.MockPrivilegeRepository), new(mocks.MockRoleRepository))
	id := uuid.New()

	_, err := svc.SetWallet(id, "0x123")
	assert.ErrorIs(t, err, ErrValidation)

	users.On("FindByID", id).Return(&model.User{}, nil)
	users.On("UpdateWallet", id, buyerWallet).Return(nil).Once()
	resp, err := svc.SetWallet(id, " "+buyerWallet+" ")
	require.NoError(t, err)
	assert.Equal(t, buyerWallet, resp.WalletAddress)
}

func TestUserService_UpdateRolePrivileges_UnknownCode(t *testing.T) {
	roles := new(mocks.MockRoleRepository)
	privileges := new(mocks.MockPrivilegeRepository)
	svc := NewUserService(new(mocks.MockUserRepository), privileges, roles)

	roles.On("FindByCode", model.RoleBusiness).Return(&model.Role{ID: 2, Code: model.RoleBusiness}, nil)
	codes := []string{model.PrivProductCreate, "no:such"}
	privileges.On("FindByCodes", codes).Return([]model.Privilege{{Code: model.PrivProductCreate}}, nil)

	_, err := svc.UpdateRolePrivileges(model.RoleBusiness, codes)
	assert.ErrorIs(t, err, ErrValidation)
	roles.AssertNotCalled(t, "ReplacePrivileges", mock.Anything, mock.Anything)
}
