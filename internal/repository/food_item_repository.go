package repository

import (
	"errors"

	"github.com/canteen-rush/internal/models"

	"gorm.io/gorm"
)

// FoodItemRepository 菜品数据访问接口
type FoodItemRepository interface {
	GetByID(id uint) (*models.FoodItem, error)
	ListByIDs(ids []uint) ([]models.FoodItem, error)
	Create(item *models.FoodItem) error
	Update(item *models.FoodItem) error
	Delete(id uint) error
	List(filter FoodItemListFilter) ([]models.FoodItem, int64, error)
	SetAvailable(id uint, available bool) error
}

// GormFoodItemRepository GORM 实现
type GormFoodItemRepository struct {
	db *gorm.DB
}

// NewFoodItemRepository 创建菜品仓库
func NewFoodItemRepository(db *gorm.DB) *GormFoodItemRepository {
	return &GormFoodItemRepository{db: db}
}

// GetByID 根据 ID 获取菜品
func (r *GormFoodItemRepository) GetByID(id uint) (*models.FoodItem, error) {
	var item models.FoodItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByIDs 批量获取菜品
func (r *GormFoodItemRepository) ListByIDs(ids []uint) ([]models.FoodItem, error) {
	if len(ids) == 0 {
		return []models.FoodItem{}, nil
	}
	var items []models.FoodItem
	if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create 创建菜品
func (r *GormFoodItemRepository) Create(item *models.FoodItem) error {
	return r.db.Create(item).Error
}

// Update 更新菜品
func (r *GormFoodItemRepository) Update(item *models.FoodItem) error {
	return r.db.Save(item).Error
}

// Delete 删除菜品（软删除）
func (r *GormFoodItemRepository) Delete(id uint) error {
	return r.db.Delete(&models.FoodItem{}, id).Error
}

// List 菜品列表
func (r *GormFoodItemRepository) List(filter FoodItemListFilter) ([]models.FoodItem, int64, error) {
	query := r.db.Model(&models.FoodItem{})

	if filter.VendorID != 0 {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		condition, argCount := buildKeywordLikeCondition(r.db, []string{"name", "description"})
		query = query.Where(condition, repeatLikeArgs("%"+filter.Search+"%", argCount)...)
	}
	if filter.OnlyAvailable {
		query = query.Where("is_available = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var items []models.FoodItem
	if err := query.Order("id ASC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SetAvailable 设置菜品可售状态
func (r *GormFoodItemRepository) SetAvailable(id uint, available bool) error {
	return r.db.Model(&models.FoodItem{}).Where("id = ?", id).Update("is_available", available).Error
}
