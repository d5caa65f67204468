package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SizeOptionGormRepository struct {
	db *gorm.DB
}

func NewSizeOptionGormRepository(db *gorm.DB) *SizeOptionGormRepository {
	return &SizeOptionGormRepository{db: db}
}

func (r *SizeOptionGormRepository) ListActive(ctx context.Context) ([]model.SizeOption, error) {
	var sizes []model.SizeOption
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order asc").
		Find(&sizes).Error
	if err != nil {
		return []model.SizeOption{}, err
	}
	return sizes, nil
}

func (r *SizeOptionGormRepository) FindByID(ctx context.Context, id string) (model.SizeOption, error) {
	var s model.SizeOption
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.SizeOption{}, repo.ErrNotFound
	}
	if err != nil {
		return model.SizeOption{}, err
	}
	return s, nil
}

func (r *SizeOptionGormRepository) Create(ctx context.Context, s model.SizeOption) (model.SizeOption, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return model.SizeOption{}, err
	}
	return s, nil
}

func (r *SizeOptionGormRepository) Update(ctx context.Context, s model.SizeOption) error {
	res := r.db.WithContext(ctx).
		Model(&model.SizeOption{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"name":       s.Name,
			"multiplier": s.Multiplier,
			"sort_order": s.SortOrder,
			"is_active":  s.IsActive,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *SizeOptionGormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.SizeOption{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
