package repository

import (
	"context"
	"time"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

// ユーザーのカート明細をメニュー情報込みで返す
func (r *CartItemGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Preload("FoodItem").
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}

	return items, nil
}

// カート全体を「全削除→全挿入」で入れ替える。
// 行単位のパッチはしない（途中失敗で半端な状態を残さないため）。
func (r *CartItemGormRepository) ReplaceForUser(ctx context.Context, userID string, items []model.CartItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}

		if len(items) == 0 {
			return nil
		}

		now := time.Now()
		for i := range items {
			items[i].ID = 0
			items[i].UserID = userID
			items[i].CreatedAt = now
			items[i].UpdatedAt = now
			items[i].FoodItem = nil
		}

		return tx.Create(&items).Error
	})
}

// ユーザーのカートを空にする
func (r *CartItemGormRepository) DeleteAllByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartItem{}).Error
}
