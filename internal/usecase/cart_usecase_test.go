package usecase

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) ReplaceForUser(ctx context.Context, userID string, items []model.CartItem) error {
	args := m.Called(ctx, userID, items)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteAllByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func TestCartUsecase_AddItem_SizeAdjustsPrice(t *testing.T) {
	items := new(FoodItemRepoMock)
	sizes := new(SizeOptionRepoMock)
	cartItems := new(CartItemRepoMock)
	uc := NewCartUsecase(items, sizes, cartItems)

	items.On("FindByID", mock.Anything, "f1").
		Return(model.FoodItem{ID: "f1", Name: "Rice Bowl", Price: 120, IsAvailable: true}, nil)
	sizes.On("FindByID", mock.Anything, "s1").
		Return(model.SizeOption{ID: "s1", Name: "Large", Multiplier: 1.5}, nil)

	cartItems.On("ListByUserID", mock.Anything, "u1").Return([]model.CartItem{}, nil)
	cartItems.On("ReplaceForUser", mock.Anything, "u1", mock.MatchedBy(func(rows []model.CartItem) bool {
		return len(rows) == 1 && rows[0].UnitPriceSnapshot == 180 && rows[0].SizeOptionID == "s1"
	})).Return(nil)

	out, err := uc.AddItem(context.Background(), "u1", AddCartItemInput{
		FoodItemID:   "f1",
		Quantity:     1,
		SizeOptionID: "s1",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(180), out.TotalPrice)
	cartItems.AssertExpectations(t)
}

func TestCartUsecase_AddItem_UnavailableItem(t *testing.T) {
	items := new(FoodItemRepoMock)
	uc := NewCartUsecase(items, new(SizeOptionRepoMock), new(CartItemRepoMock))

	items.On("FindByID", mock.Anything, "f1").
		Return(model.FoodItem{ID: "f1", Name: "Rice Bowl", Price: 120, IsAvailable: false}, nil)

	_, err := uc.AddItem(context.Background(), "u1", AddCartItemInput{FoodItemID: "f1", Quantity: 1})
	assertErrContains(t, err, "item not available")
}

func TestCartUsecase_AddItem_UnknownItem(t *testing.T) {
	items := new(FoodItemRepoMock)
	uc := NewCartUsecase(items, new(SizeOptionRepoMock), new(CartItemRepoMock))

	items.On("FindByID", mock.Anything, "ghost").Return(model.FoodItem{}, repo.ErrNotFound)

	_, err := uc.AddItem(context.Background(), "u1", AddCartItemInput{FoodItemID: "ghost", Quantity: 1})
	assertErrContains(t, err, "item not found")
}

func TestCartUsecase_AddItem_MergesExistingRow(t *testing.T) {
	items := new(FoodItemRepoMock)
	cartItems := new(CartItemRepoMock)
	uc := NewCartUsecase(items, new(SizeOptionRepoMock), cartItems)

	items.On("FindByID", mock.Anything, "f1").
		Return(model.FoodItem{ID: "f1", Name: "Rice Bowl", Price: 120, IsAvailable: true}, nil)

	//リモートに同じ(商品,サイズ)の行が既にある
	cartItems.On("ListByUserID", mock.Anything, "u1").Return([]model.CartItem{
		{UserID: "u1", FoodItemID: "f1", Quantity: 2, UnitPriceSnapshot: 120, SizeMultiplier: 1},
	}, nil)
	cartItems.On("ReplaceForUser", mock.Anything, "u1", mock.MatchedBy(func(rows []model.CartItem) bool {
		return len(rows) == 1 && rows[0].Quantity == 3
	})).Return(nil)

	out, err := uc.AddItem(context.Background(), "u1", AddCartItemInput{FoodItemID: "f1", Quantity: 1})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), out.TotalItems)
	cartItems.AssertExpectations(t)
}

func TestCartUsecase_GetCart_Unauthorized(t *testing.T) {
	uc := NewCartUsecase(new(FoodItemRepoMock), new(SizeOptionRepoMock), new(CartItemRepoMock))

	_, err := uc.GetCart(context.Background(), "")
	assertErrContains(t, err, "unauthorized")
}

func TestCartUsecase_ClearCart(t *testing.T) {
	cartItems := new(CartItemRepoMock)
	uc := NewCartUsecase(new(FoodItemRepoMock), new(SizeOptionRepoMock), cartItems)

	cartItems.On("ListByUserID", mock.Anything, "u1").Return([]model.CartItem{
		{UserID: "u1", FoodItemID: "f1", Quantity: 1, UnitPriceSnapshot: 120, SizeMultiplier: 1},
	}, nil)
	cartItems.On("DeleteAllByUserID", mock.Anything, "u1").Return(nil)

	assert.NoError(t, uc.ClearCart(context.Background(), "u1"))
	cartItems.AssertExpectations(t)
}
