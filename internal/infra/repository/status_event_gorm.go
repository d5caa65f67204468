package repository

import (
	"context"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

type StatusEventGormRepository struct {
	db *gorm.DB
}

func NewStatusEventGormRepository(db *gorm.DB) *StatusEventGormRepository {
	return &StatusEventGormRepository{db: db}
}

// 追記のみ。更新・削除はしない。
func (r *StatusEventGormRepository) Append(ctx context.Context, event model.OrderStatusEvent) error {
	return r.db.WithContext(ctx).Create(&event).Error
}

func (r *StatusEventGormRepository) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderStatusEvent, error) {
	var events []model.OrderStatusEvent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Order("id asc").
		Find(&events).Error
	if err != nil {
		return []model.OrderStatusEvent{}, err
	}
	return events, nil
}
