package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type MenuUsecase struct {
	items      repo.FoodItemRepository
	categories repo.CategoryRepository
	sizes      repo.SizeOptionRepository
}

// DI
func NewMenuUsecase(
	items repo.FoodItemRepository,
	categories repo.CategoryRepository,
	sizes repo.SizeOptionRepository,
) *MenuUsecase {
	return &MenuUsecase{
		items:      items,
		categories: categories,
		sizes:      sizes,
	}
}

// GET /menu の入力DTO
type ListMenuInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID string
	//trueなら売り切れ・停止中を隠す
	AvailableOnly bool
}

type MenuListOutput struct {
	Items []model.FoodItem `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

func (u *MenuUsecase) ListMenu(ctx context.Context, in ListMenuInput) (MenuListOutput, error) {
	if in.Page < 1 {
		return MenuListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return MenuListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return MenuListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	items, total, err := u.items.ListPublic(ctx, repo.FoodItemListQuery{
		Page:          in.Page,
		Limit:         in.Limit,
		Q:             strings.TrimSpace(in.Q),
		CategoryID:    in.CategoryID,
		AvailableOnly: in.AvailableOnly,
	})
	if err != nil {
		return MenuListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return MenuListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *MenuUsecase) GetMenuItem(ctx context.Context, itemID string) (model.FoodItem, error) {
	if itemID == "" {
		return model.FoodItem{}, NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	item, err := u.items.FindByID(ctx, itemID)
	if err == repo.ErrNotFound {
		return model.FoodItem{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.FoodItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return item, nil
}

func (u *MenuUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	cats, err := u.categories.ListActive(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cats, nil
}

func (u *MenuUsecase) ListSizeOptions(ctx context.Context) ([]model.SizeOption, error) {
	sizes, err := u.sizes.ListActive(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return sizes, nil
}

type AdminSaveFoodItemInput struct {
	Name            string
	Description     string
	Price           int64
	ImageURL        string
	CategoryID      string
	IsFeatured      bool
	IsAvailable     bool
	PreparationTime int
}

func (u *MenuUsecase) AdminCreateFoodItem(ctx context.Context, adminUserID string, in AdminSaveFoodItemInput) (model.FoodItem, error) {
	if adminUserID == "" {
		return model.FoodItem{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateFoodItemInput(in); err != nil {
		return model.FoodItem{}, err
	}
	if _, err := u.categories.FindByID(ctx, in.CategoryID); err == repo.ErrNotFound {
		return model.FoodItem{}, NewHTTPError(http.StatusBadRequest, "unknown category")
	} else if err != nil {
		return model.FoodItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	item, err := u.items.Create(ctx, model.FoodItem{
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Price:           in.Price,
		ImageURL:        in.ImageURL,
		CategoryID:      in.CategoryID,
		IsFeatured:      in.IsFeatured,
		IsAvailable:     in.IsAvailable,
		PreparationTime: in.PreparationTime,
	})
	if err != nil {
		return model.FoodItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return item, nil
}

func (u *MenuUsecase) AdminUpdateFoodItem(ctx context.Context, adminUserID string, itemID string, in AdminSaveFoodItemInput) (model.FoodItem, error) {
	if adminUserID == "" {
		return model.FoodItem{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID == "" {
		return model.FoodItem{}, NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	if err := validateFoodItemInput(in); err != nil {
		return model.FoodItem{}, err
	}

	item, err := u.items.FindByID(ctx, itemID)
	if err == repo.ErrNotFound {
		return model.FoodItem{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.FoodItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	item.Name = strings.TrimSpace(in.Name)
	item.Description = in.Description
	item.Price = in.Price
	item.ImageURL = in.ImageURL
	item.CategoryID = in.CategoryID
	item.IsFeatured = in.IsFeatured
	item.IsAvailable = in.IsAvailable
	item.PreparationTime = in.PreparationTime

	if err := u.items.Update(ctx, item); err != nil {
		return model.FoodItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return item, nil
}

func (u *MenuUsecase) AdminDeleteFoodItem(ctx context.Context, adminUserID string, itemID string) error {
	if adminUserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	err := u.items.SoftDelete(ctx, itemID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func validateFoodItemInput(in AdminSaveFoodItemInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.CategoryID == "" {
		return NewHTTPError(http.StatusBadRequest, "category required")
	}
	if in.PreparationTime < 0 {
		return NewHTTPError(http.StatusBadRequest, "preparation_time must be >= 0")
	}
	return nil
}

type AdminSaveCategoryInput struct {
	Name      string
	SortOrder int
	IsActive  bool
}

func (u *MenuUsecase) AdminCreateCategory(ctx context.Context, adminUserID string, in AdminSaveCategoryInput) (model.Category, error) {
	if adminUserID == "" {
		return model.Category{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	c, err := u.categories.Create(ctx, model.Category{
		Name:      strings.TrimSpace(in.Name),
		SortOrder: in.SortOrder,
		IsActive:  in.IsActive,
	})
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

func (u *MenuUsecase) AdminUpdateCategory(ctx context.Context, adminUserID string, categoryID string, in AdminSaveCategoryInput) (model.Category, error) {
	if adminUserID == "" {
		return model.Category{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	c, err := u.categories.FindByID(ctx, categoryID)
	if err == repo.ErrNotFound {
		return model.Category{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	c.Name = strings.TrimSpace(in.Name)
	c.SortOrder = in.SortOrder
	c.IsActive = in.IsActive

	if err := u.categories.Update(ctx, c); err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

func (u *MenuUsecase) AdminDeleteCategory(ctx context.Context, adminUserID string, categoryID string) error {
	if adminUserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	err := u.categories.Delete(ctx, categoryID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

type AdminSaveSizeOptionInput struct {
	Name       string
	Multiplier float64
	SortOrder  int
	IsActive   bool
}

func (u *MenuUsecase) AdminCreateSizeOption(ctx context.Context, adminUserID string, in AdminSaveSizeOptionInput) (model.SizeOption, error) {
	if adminUserID == "" {
		return model.SizeOption{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.SizeOption{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Multiplier <= 0 {
		return model.SizeOption{}, NewHTTPError(http.StatusBadRequest, "multiplier must be > 0")
	}

	s, err := u.sizes.Create(ctx, model.SizeOption{
		Name:       strings.TrimSpace(in.Name),
		Multiplier: in.Multiplier,
		SortOrder:  in.SortOrder,
		IsActive:   in.IsActive,
	})
	if err != nil {
		return model.SizeOption{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}

func (u *MenuUsecase) AdminUpdateSizeOption(ctx context.Context, adminUserID string, sizeID string, in AdminSaveSizeOptionInput) (model.SizeOption, error) {
	if adminUserID == "" {
		return model.SizeOption{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.SizeOption{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Multiplier <= 0 {
		return model.SizeOption{}, NewHTTPError(http.StatusBadRequest, "multiplier must be > 0")
	}

	s, err := u.sizes.FindByID(ctx, sizeID)
	if err == repo.ErrNotFound {
		return model.SizeOption{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.SizeOption{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	s.Name = strings.TrimSpace(in.Name)
	s.Multiplier = in.Multiplier
	s.SortOrder = in.SortOrder
	s.IsActive = in.IsActive

	if err := u.sizes.Update(ctx, s); err != nil {
		return model.SizeOption{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}

func (u *MenuUsecase) AdminDeleteSizeOption(ctx context.Context, adminUserID string, sizeID string) error {
	if adminUserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	err := u.sizes.Delete(ctx, sizeID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
