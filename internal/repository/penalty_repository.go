package repository

import (
	"errors"

	"github.com/canteen-rush/internal/models"

	"gorm.io/gorm"
)

// PenaltyRepository 处罚记录数据访问接口
type PenaltyRepository interface {
	Create(penalty *models.Penalty) error
	GetByID(id uint) (*models.Penalty, error)
	List(filter PenaltyListFilter) ([]models.Penalty, int64, error)
	Clear(id uint) error
	WithTx(tx *gorm.DB) *GormPenaltyRepository
}

// GormPenaltyRepository GORM 实现
type GormPenaltyRepository struct {
	db *gorm.DB
}

// NewPenaltyRepository 创建处罚记录仓库
func NewPenaltyRepository(db *gorm.DB) *GormPenaltyRepository {
	return &GormPenaltyRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPenaltyRepository) WithTx(tx *gorm.DB) *GormPenaltyRepository {
	if tx == nil {
		return r
	}
	return &GormPenaltyRepository{db: tx}
}

// Create 创建处罚记录
func (r *GormPenaltyRepository) Create(penalty *models.Penalty) error {
	return r.db.Create(penalty).Error
}

// GetByID 根据 ID 获取处罚记录
func (r *GormPenaltyRepository) GetByID(id uint) (*models.Penalty, error) {
	var penalty models.Penalty
	if err := r.db.First(&penalty, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &penalty, nil
}

// List 处罚记录列表
func (r *GormPenaltyRepository) List(filter PenaltyListFilter) ([]models.Penalty, int64, error) {
	query := r.db.Model(&models.Penalty{})

	if filter.StudentID != 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.OnlyActive {
		query = query.Where("is_cleared = ?", false)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var penalties []models.Penalty
	if err := query.Order("id desc").Find(&penalties).Error; err != nil {
		return nil, 0, err
	}
	return penalties, total, nil
}

// Clear 标记处罚记录为已撤销（不回退用户积分）
func (r *GormPenaltyRepository) Clear(id uint) error {
	return r.db.Model(&models.Penalty{}).Where("id = ?", id).Update("is_cleared", true).Error
}
