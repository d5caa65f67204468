package cart

import (
	"context"

	"app/internal/domain/model"
	"app/internal/infra/localstore"
	repo "app/internal/repository"
)

// カートの置き場。identityごとにLocal（端末）かRemote（アカウント）の
// どちらか1つが正になる。書き込みは常にカート丸ごと。
type Store interface {
	Load(ctx context.Context) ([]model.CartLine, error)
	Replace(ctx context.Context, lines []model.CartLine) error
	Clear(ctx context.Context) error
}

// ===== Local =====

// 端末ローカルのKVに載せる実装。匿名カートはここだけで完結する。
type LocalStore struct {
	s *localstore.Store
}

func NewLocalStore(s *localstore.Store) *LocalStore {
	return &LocalStore{s: s}
}

func (l *LocalStore) Load(ctx context.Context) ([]model.CartLine, error) {
	return l.s.LoadCart(ctx)
}

func (l *LocalStore) Replace(ctx context.Context, lines []model.CartLine) error {
	if len(lines) == 0 {
		return l.s.ClearCart(ctx)
	}
	return l.s.SaveCart(ctx, lines)
}

func (l *LocalStore) Clear(ctx context.Context) error {
	return l.s.ClearCart(ctx)
}

// ===== Remote =====

// リモートストアのcart_itemsをユーザーに束ねた実装。
type RemoteStore struct {
	items  repo.CartItemRepository
	userID string
}

func NewRemoteStore(items repo.CartItemRepository, userID string) *RemoteStore {
	return &RemoteStore{items: items, userID: userID}
}

func (r *RemoteStore) Load(ctx context.Context) ([]model.CartLine, error) {
	items, err := r.items.ListByUserID(ctx, r.userID)
	if err != nil {
		return nil, err
	}
	return itemsToLines(items), nil
}

func (r *RemoteStore) Replace(ctx context.Context, lines []model.CartLine) error {
	return r.items.ReplaceForUser(ctx, r.userID, linesToItems(r.userID, lines))
}

func (r *RemoteStore) Clear(ctx context.Context) error {
	return r.items.DeleteAllByUserID(ctx, r.userID)
}

// 永続形→カート行。単価は保存済みスナップショットをそのまま使う
// （ロード時にメニューの現在価格から計算し直さない）。
func itemsToLines(items []model.CartItem) []model.CartLine {
	lines := make([]model.CartLine, 0, len(items))
	for _, it := range items {
		line := model.CartLine{
			FoodItemID:     it.FoodItemID,
			Price:          it.UnitPriceSnapshot,
			Quantity:       it.Quantity,
			SizeOptionID:   it.SizeOptionID,
			SizeName:       it.SizeName,
			SizeMultiplier: it.SizeMultiplier,
		}
		if it.FoodItem != nil {
			line.Name = it.FoodItem.Name
			line.Description = it.FoodItem.Description
			line.ImageURL = it.FoodItem.ImageURL
			line.CategoryID = it.FoodItem.CategoryID
			line.IsFeatured = it.FoodItem.IsFeatured
			line.IsAvailable = it.FoodItem.IsAvailable
		}
		lines = append(lines, line)
	}
	return lines
}

func linesToItems(userID string, lines []model.CartLine) []model.CartItem {
	items := make([]model.CartItem, 0, len(lines))
	for _, l := range lines {
		mult := l.SizeMultiplier
		if mult == 0 {
			mult = 1
		}
		items = append(items, model.CartItem{
			UserID:            userID,
			FoodItemID:        l.FoodItemID,
			Quantity:          l.Quantity,
			UnitPriceSnapshot: l.Price,
			SizeOptionID:      l.SizeOptionID,
			SizeName:          l.SizeName,
			SizeMultiplier:    mult,
		})
	}
	return items
}
