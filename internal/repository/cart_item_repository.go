package repository

import (
	"context"

	"app/internal/domain/model"
)

// ログインユーザーのカート明細の永続化。
// 書き込みは行パッチではなく「全削除→全挿入」のカート丸ごと単位で行う
// （部分更新で壊れた状態を残さないため）。
type CartItemRepository interface {
	//FoodItemを取りだす
	ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error)

	//カート全体を入れ替える。itemsが空なら削除のみ。
	ReplaceForUser(ctx context.Context, userID string, items []model.CartItem) error

	DeleteAllByUserID(ctx context.Context, userID string) error
}
