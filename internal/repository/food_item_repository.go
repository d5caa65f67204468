package repository

import (
	"context"

	"app/internal/domain/model"
)

// 一覧検索
type FoodItemListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID string
	//trueなら提供中のみ
	AvailableOnly bool
}

// メニューの永続化（保存・取得）だけを約束。
type FoodItemRepository interface {
	ListPublic(ctx context.Context, q FoodItemListQuery) ([]model.FoodItem, int64, error)
	FindByID(ctx context.Context, id string) (model.FoodItem, error)

	Create(ctx context.Context, item model.FoodItem) (model.FoodItem, error)
	Update(ctx context.Context, item model.FoodItem) error
	SoftDelete(ctx context.Context, id string) error
}

type CategoryRepository interface {
	ListActive(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id string) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, id string) error
}

type SizeOptionRepository interface {
	ListActive(ctx context.Context) ([]model.SizeOption, error)
	FindByID(ctx context.Context, id string) (model.SizeOption, error)
	Create(ctx context.Context, s model.SizeOption) (model.SizeOption, error)
	Update(ctx context.Context, s model.SizeOption) error
	Delete(ctx context.Context, id string) error
}
