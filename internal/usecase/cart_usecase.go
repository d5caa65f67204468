package usecase

import (
	"context"
	"net/http"

	"app/internal/cart"
	"app/internal/domain/model"
	repo "app/internal/repository"
)

// API経路のカート操作。端末ローカルは持たないので、リクエストごとに
// リモートだけを正とするReconcilerを組み立てて使う。
type CartUsecase struct {
	items     repo.FoodItemRepository
	sizes     repo.SizeOptionRepository
	cartItems repo.CartItemRepository
}

// DI
func NewCartUsecase(
	items repo.FoodItemRepository,
	sizes repo.SizeOptionRepository,
	cartItems repo.CartItemRepository,
) *CartUsecase {
	return &CartUsecase{
		items:     items,
		sizes:     sizes,
		cartItems: cartItems,
	}
}

type CartOutput struct {
	Items      []model.CartLine `json:"items"`
	TotalPrice int64            `json:"total_price"`
	TotalItems int64            `json:"total_items"`
}

type AddCartItemInput struct {
	FoodItemID   string
	Quantity     int64
	SizeOptionID string
}

type UpdateCartItemInput struct {
	FoodItemID   string
	Quantity     int64
	SizeOptionID string
}

// ユーザーのリモートカートを読み込んだReconcilerを返す。
func (u *CartUsecase) ReconcilerFor(ctx context.Context, userID string) (*cart.Reconciler, error) {
	if userID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	rec := cart.NewReconciler(nil, func(uid string) cart.Store {
		return cart.NewRemoteStore(u.cartItems, uid)
	})
	if err := rec.LoadForIdentity(ctx, cart.ForUser(userID, model.RoleCustomer)); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return rec, nil
}

func (u *CartUsecase) GetCart(ctx context.Context, userID string) (CartOutput, error) {
	rec, err := u.ReconcilerFor(ctx, userID)
	if err != nil {
		return CartOutput{}, err
	}
	return toCartOutput(rec), nil
}

func (u *CartUsecase) AddItem(ctx context.Context, userID string, in AddCartItemInput) (CartOutput, error) {
	if in.FoodItemID == "" {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	if in.Quantity < 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 0")
	}

	item, err := u.items.FindByID(ctx, in.FoodItemID)
	if err == repo.ErrNotFound {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "item not found")
	}
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !item.IsAvailable {
		return CartOutput{}, NewHTTPError(http.StatusConflict, "item not available")
	}

	var size *model.SizeOption
	if in.SizeOptionID != "" {
		s, serr := u.sizes.FindByID(ctx, in.SizeOptionID)
		if serr == repo.ErrNotFound {
			return CartOutput{}, NewHTTPError(http.StatusBadRequest, "unknown size option")
		}
		if serr != nil {
			return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		size = &s
	}

	rec, err := u.ReconcilerFor(ctx, userID)
	if err != nil {
		return CartOutput{}, err
	}

	rec.AddLine(ctx, model.NewCartLine(item, size, in.Quantity))
	return toCartOutput(rec), nil
}

func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID string, in UpdateCartItemInput) (CartOutput, error) {
	if in.FoodItemID == "" {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	if in.Quantity < 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 0")
	}

	rec, err := u.ReconcilerFor(ctx, userID)
	if err != nil {
		return CartOutput{}, err
	}

	rec.SetQuantity(ctx, in.FoodItemID, in.Quantity, in.SizeOptionID)
	return toCartOutput(rec), nil
}

func (u *CartUsecase) RemoveItem(ctx context.Context, userID string, foodItemID string, sizeOptionID string) (CartOutput, error) {
	if foodItemID == "" {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	rec, err := u.ReconcilerFor(ctx, userID)
	if err != nil {
		return CartOutput{}, err
	}

	rec.RemoveLine(ctx, foodItemID, sizeOptionID)
	return toCartOutput(rec), nil
}

func (u *CartUsecase) ClearCart(ctx context.Context, userID string) error {
	rec, err := u.ReconcilerFor(ctx, userID)
	if err != nil {
		return err
	}

	if err := rec.Clear(ctx); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func toCartOutput(rec *cart.Reconciler) CartOutput {
	t := rec.Totals()
	return CartOutput{
		Items:      rec.Lines(),
		TotalPrice: t.TotalPrice,
		TotalItems: t.TotalItems,
	}
}
