package service

import (
	"context"
	"fmt"
	"time"

	"github.com/canteen-rush/internal/constants"
	"github.com/canteen-rush/internal/logger"
	"github.com/canteen-rush/internal/models"
	"github.com/canteen-rush/internal/realtime"
	"github.com/canteen-rush/internal/repository"

	"gorm.io/gorm"
)

// PenaltyService 处罚服务
type PenaltyService struct {
	penaltyRepo repository.PenaltyRepository
	userRepo    repository.UserRepository
	publisher   *realtime.Publisher
}

// NewPenaltyService 创建处罚服务
func NewPenaltyService(penaltyRepo repository.PenaltyRepository, userRepo repository.UserRepository, publisher *realtime.Publisher) *PenaltyService {
	return &PenaltyService{
		penaltyRepo: penaltyRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// penaltyTier 根据历史警告次数决定本次处罚
func penaltyTier(warnings int) (string, int) {
	switch {
	case warnings == 0:
		return models.PenaltyTypeWarning, 0
	case warnings == 1:
		return models.PenaltyTypePoints, constants.PenaltySecondOffensePoints
	default:
		return models.PenaltyTypePoints, constants.PenaltyRepeatOffensePoints
	}
}

// EvaluateLatePickup 评估迟到取餐并落处罚
// 首次警告，第二次扣 5 分，之后每次扣 10 分；累计达到阈值封禁下单。
func (s *PenaltyService) EvaluateLatePickup(ctx context.Context, studentID, orderID uint, lateByMinutes int) (*models.Penalty, error) {
	student, err := s.userRepo.GetByID(studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrUserNotFound
	}

	penaltyType, points := penaltyTier(student.Warnings)
	totalPoints := student.PenaltyPoints + points
	block := totalPoints >= constants.PenaltyBlockThreshold
	reason := fmt.Sprintf("迟到取餐 %d 分钟", lateByMinutes)
	if block {
		// 越过封禁阈值时处罚类型升级为 block，原因追加封禁说明
		penaltyType = models.PenaltyTypeBlock
		reason += fmt.Sprintf("，累计 %d 分，账号已封禁", totalPoints)
	}

	now := time.Now()
	penalty := &models.Penalty{
		StudentID: studentID,
		OrderID:   orderID,
		Type:      penaltyType,
		Points:    points,
		Reason:    reason,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.penaltyRepo.WithTx(tx).Create(penalty); err != nil {
			return err
		}
		return s.userRepo.WithTx(tx).ApplyPenalty(studentID, points, block)
	})
	if err != nil {
		return nil, err
	}

	if block {
		logger.Warnw("student_blocked",
			"student_id", studentID,
			"order_id", orderID,
			"total_points", totalPoints,
		)
	}
	if s.publisher != nil {
		s.publisher.ToStudent(ctx, studentID, constants.EventPenaltyIssued, penalty)
	}
	return penalty, nil
}

// ListStudentPenalties 获取学生自己的处罚记录
func (s *PenaltyService) ListStudentPenalties(studentID uint, page, pageSize int) ([]models.Penalty, int64, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	return s.penaltyRepo.List(repository.PenaltyListFilter{
		Page:      page,
		PageSize:  pageSize,
		StudentID: studentID,
	})
}

// ListPenalties 管理端处罚记录列表
func (s *PenaltyService) ListPenalties(filter repository.PenaltyListFilter) ([]models.Penalty, int64, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return s.penaltyRepo.List(filter)
}

// ClearPenalty 撤销一条处罚记录（只做标记，不回退积分或解封）
func (s *PenaltyService) ClearPenalty(id uint) (*models.Penalty, error) {
	penalty, err := s.penaltyRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if penalty == nil {
		return nil, ErrPenaltyNotFound
	}
	if err := s.penaltyRepo.Clear(id); err != nil {
		return nil, err
	}
	penalty.IsCleared = true
	return penalty, nil
}

// UnblockStudent 解除学生封禁，可选清零积分与警告
func (s *PenaltyService) UnblockStudent(studentID uint, resetPoints bool) (*models.User, error) {
	student, err := s.userRepo.GetByID(studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrUserNotFound
	}
	if err := s.userRepo.Unblock(studentID, resetPoints); err != nil {
		return nil, err
	}
	student.IsBlocked = false
	if resetPoints {
		student.PenaltyPoints = 0
		student.Warnings = 0
	}
	return student, nil
}
