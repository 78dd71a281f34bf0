package repository

import (
	"errors"

	"github.com/canteen-rush/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	List(filter UserListFilter) ([]models.User, int64, error)
	ApplyPenalty(id uint, points int, block bool) error
	Unblock(id uint, resetPoints bool) error
	WithTx(tx *gorm.DB) *GormUserRepository
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx 绑定事务
func (r *GormUserRepository) WithTx(tx *gorm.DB) *GormUserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

// GetByEmail 根据邮箱获取用户
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update 更新用户
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// List 用户列表
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})

	if filter.Keyword != "" {
		condition, argCount := buildKeywordLikeCondition(r.db, []string{"email", "name"})
		query = query.Where(condition, repeatLikeArgs("%"+filter.Keyword+"%", argCount)...)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.BlockedOnly {
		query = query.Where("is_blocked = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var users []models.User
	if err := query.Order("id DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ApplyPenalty 累加处罚积分与警告次数，必要时封禁
func (r *GormUserRepository) ApplyPenalty(id uint, points int, block bool) error {
	updates := map[string]interface{}{
		"penalty_points": gorm.Expr("penalty_points + ?", points),
		"warnings":       gorm.Expr("warnings + 1"),
	}
	if block {
		updates["is_blocked"] = true
	}
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}

// Unblock 解除封禁，可选清零积分与警告
func (r *GormUserRepository) Unblock(id uint, resetPoints bool) error {
	updates := map[string]interface{}{
		"is_blocked": false,
	}
	if resetPoints {
		updates["penalty_points"] = 0
		updates["warnings"] = 0
	}
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}
