package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FoodItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewFoodItemGormRepository(db *gorm.DB) *FoodItemGormRepository {
	return &FoodItemGormRepository{db: db}
}

// メニューを、検索/カテゴリ/ページング付きで返す。
func (r *FoodItemGormRepository) ListPublic(ctx context.Context, q repo.FoodItemListQuery) ([]model.FoodItem, int64, error) {
	var items []model.FoodItem
	var total int64

	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 50
	}

	tx := r.db.WithContext(ctx).Model(&model.FoodItem{})

	if q.AvailableOnly {
		tx = tx.Where("is_available = ?", true)
	}

	// q はnameを対象
	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("name ILIKE ?", like)
	}

	if q.CategoryID != "" {
		tx = tx.Where("category_id = ?", q.CategoryID)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.FoodItem{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.
		Order("is_featured desc").
		Order("name asc").
		Offset(offset).Limit(q.Limit).
		Find(&items).Error; err != nil {
		return []model.FoodItem{}, 0, err
	}

	return items, total, nil
}

func (r *FoodItemGormRepository) FindByID(ctx context.Context, id string) (model.FoodItem, error) {
	var item model.FoodItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.FoodItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.FoodItem{}, err
	}
	return item, nil
}

func (r *FoodItemGormRepository) Create(ctx context.Context, item model.FoodItem) (model.FoodItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return model.FoodItem{}, err
	}
	return item, nil
}

func (r *FoodItemGormRepository) Update(ctx context.Context, item model.FoodItem) error {
	item.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).
		Model(&model.FoodItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"name":             item.Name,
			"description":      item.Description,
			"price":            item.Price,
			"image_url":        item.ImageURL,
			"category_id":      item.CategoryID,
			"is_featured":      item.IsFeatured,
			"is_available":     item.IsAvailable,
			"preparation_time": item.PreparationTime,
			"updated_at":       item.UpdatedAt,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 論理削除。既存注文のスナップショットからは参照され続ける。
func (r *FoodItemGormRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.FoodItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
