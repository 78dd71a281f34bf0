package repository

import (
	"errors"

	"github.com/canteen-rush/internal/models"

	"gorm.io/gorm"
)

// VendorRepository 档口数据访问接口
type VendorRepository interface {
	GetByID(id uint) (*models.Vendor, error)
	GetByName(name string) (*models.Vendor, error)
	Create(vendor *models.Vendor) error
	Update(vendor *models.Vendor) error
	Delete(id uint) error
	List(filter VendorListFilter) ([]models.Vendor, int64, error)
	SetOpen(id uint, open bool) error
	AdjustLoad(id uint, delta int) error
	WithTx(tx *gorm.DB) *GormVendorRepository
}

// GormVendorRepository GORM 实现
type GormVendorRepository struct {
	db *gorm.DB
}

// NewVendorRepository 创建档口仓库
func NewVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVendorRepository) WithTx(tx *gorm.DB) *GormVendorRepository {
	if tx == nil {
		return r
	}
	return &GormVendorRepository{db: tx}
}

// GetByID 根据 ID 获取档口
func (r *GormVendorRepository) GetByID(id uint) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.First(&vendor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vendor, nil
}

// GetByName 根据名称获取档口
func (r *GormVendorRepository) GetByName(name string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.Where("name = ?", name).First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vendor, nil
}

// Create 创建档口
func (r *GormVendorRepository) Create(vendor *models.Vendor) error {
	return r.db.Create(vendor).Error
}

// Update 更新档口
func (r *GormVendorRepository) Update(vendor *models.Vendor) error {
	return r.db.Save(vendor).Error
}

// Delete 删除档口（软删除）
func (r *GormVendorRepository) Delete(id uint) error {
	return r.db.Delete(&models.Vendor{}, id).Error
}

// List 档口列表
func (r *GormVendorRepository) List(filter VendorListFilter) ([]models.Vendor, int64, error) {
	query := r.db.Model(&models.Vendor{})

	if filter.Search != "" {
		condition, argCount := buildKeywordLikeCondition(r.db, []string{"name", "location"})
		query = query.Where(condition, repeatLikeArgs("%"+filter.Search+"%", argCount)...)
	}
	if filter.OnlyOpen {
		query = query.Where("is_open = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var vendors []models.Vendor
	if err := query.Order("id ASC").Find(&vendors).Error; err != nil {
		return nil, 0, err
	}
	return vendors, total, nil
}

// SetOpen 设置营业状态
func (r *GormVendorRepository) SetOpen(id uint, open bool) error {
	return r.db.Model(&models.Vendor{}).Where("id = ?", id).Update("is_open", open).Error
}

// AdjustLoad 调整当前负载，数据库侧钳位为非负
func (r *GormVendorRepository) AdjustLoad(id uint, delta int) error {
	return r.db.Model(&models.Vendor{}).
		Where("id = ?", id).
		Update("current_load", gorm.Expr(
			"CASE WHEN current_load + ? < 0 THEN 0 ELSE current_load + ? END", delta, delta,
		)).Error
}
