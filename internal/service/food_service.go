package service

import (
	"context"
	"strings"

	"github.com/canteen-rush/internal/cache"
	"github.com/canteen-rush/internal/logger"
	"github.com/canteen-rush/internal/models"
	"github.com/canteen-rush/internal/repository"
)

// FoodService 菜品服务
type FoodService struct {
	foodItemRepo repository.FoodItemRepository
	vendorRepo   repository.VendorRepository
}

// NewFoodService 创建菜品服务
func NewFoodService(foodItemRepo repository.FoodItemRepository, vendorRepo repository.VendorRepository) *FoodService {
	return &FoodService{
		foodItemRepo: foodItemRepo,
		vendorRepo:   vendorRepo,
	}
}

// FoodItemInput 菜品创建/更新输入
type FoodItemInput struct {
	Name            string
	Description     string
	Price           *models.Money
	Category        string
	PreparationTime int
	ImageURL        string
}

// GetVendorMenu 获取档口菜单（仅可售菜品，带缓存）
func (s *FoodService) GetVendorMenu(ctx context.Context, vendorID uint) ([]models.FoodItem, error) {
	cacheKey := cache.VendorMenuKey(vendorID)
	var cached []models.FoodItem
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	vendor, err := s.vendorRepo.GetByID(vendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}

	items, _, err := s.foodItemRepo.List(repository.FoodItemListFilter{
		VendorID:      vendorID,
		OnlyAvailable: true,
		PageSize:      200,
		Page:          1,
	})
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, cacheKey, items, cache.VendorMenuTTL); err != nil {
		logger.Warnw("vendor_menu_cache_write_failed", "vendor_id", vendorID, "error", err)
	}
	return items, nil
}

// ListFoodItems 菜品列表（档口管理端，含下架菜品）
func (s *FoodService) ListFoodItems(filter repository.FoodItemListFilter) ([]models.FoodItem, int64, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	return s.foodItemRepo.List(filter)
}

// CreateFoodItem 创建菜品
func (s *FoodService) CreateFoodItem(ctx context.Context, vendorID uint, input FoodItemInput) (*models.FoodItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.Price == nil || input.Price.IsNegative() {
		return nil, ErrInvalidInput
	}
	vendor, err := s.vendorRepo.GetByID(vendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}

	prepTime := input.PreparationTime
	if prepTime <= 0 {
		prepTime = vendor.AvgPreparationTime
	}
	item := &models.FoodItem{
		VendorID:        vendorID,
		Name:            name,
		Description:     strings.TrimSpace(input.Description),
		Price:           *input.Price,
		Category:        strings.TrimSpace(input.Category),
		IsAvailable:     true,
		PreparationTime: prepTime,
		ImageURL:        strings.TrimSpace(input.ImageURL),
	}
	if err := s.foodItemRepo.Create(item); err != nil {
		return nil, err
	}
	s.invalidateMenuCache(ctx, vendorID)
	return item, nil
}

// UpdateFoodItem 更新菜品（只允许更新本档口的菜品）
func (s *FoodService) UpdateFoodItem(ctx context.Context, vendorID, itemID uint, input FoodItemInput) (*models.FoodItem, error) {
	item, err := s.getVendorFoodItem(vendorID, itemID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		item.Name = name
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		item.Description = desc
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, ErrInvalidInput
		}
		item.Price = *input.Price
	}
	if category := strings.TrimSpace(input.Category); category != "" {
		item.Category = category
	}
	if input.PreparationTime > 0 {
		item.PreparationTime = input.PreparationTime
	}
	if imageURL := strings.TrimSpace(input.ImageURL); imageURL != "" {
		item.ImageURL = imageURL
	}

	if err := s.foodItemRepo.Update(item); err != nil {
		return nil, err
	}
	s.invalidateMenuCache(ctx, vendorID)
	return item, nil
}

// ToggleFoodItem 切换菜品可售状态
func (s *FoodService) ToggleFoodItem(ctx context.Context, vendorID, itemID uint) (*models.FoodItem, error) {
	item, err := s.getVendorFoodItem(vendorID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.foodItemRepo.SetAvailable(itemID, !item.IsAvailable); err != nil {
		return nil, err
	}
	item.IsAvailable = !item.IsAvailable
	s.invalidateMenuCache(ctx, vendorID)
	return item, nil
}

// DeleteFoodItem 删除菜品
func (s *FoodService) DeleteFoodItem(ctx context.Context, vendorID, itemID uint) error {
	item, err := s.getVendorFoodItem(vendorID, itemID)
	if err != nil {
		return err
	}
	if err := s.foodItemRepo.Delete(item.ID); err != nil {
		return err
	}
	s.invalidateMenuCache(ctx, vendorID)
	return nil
}

func (s *FoodService) getVendorFoodItem(vendorID, itemID uint) (*models.FoodItem, error) {
	item, err := s.foodItemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrFoodItemNotFound
	}
	if vendorID != 0 && item.VendorID != vendorID {
		return nil, ErrFoodItemNotOfVendor
	}
	return item, nil
}

func (s *FoodService) invalidateMenuCache(ctx context.Context, vendorID uint) {
	if err := cache.Del(ctx, cache.VendorMenuKey(vendorID)); err != nil {
		logger.Warnw("vendor_menu_cache_del_failed", "vendor_id", vendorID, "error", err)
	}
}
