package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/canteen-rush/internal/models"
	"github.com/canteen-rush/internal/realtime"
	"github.com/canteen-rush/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPenaltyServiceTest(t *testing.T) (*PenaltyService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:penalty_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Penalty{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	svc := NewPenaltyService(
		repository.NewPenaltyRepository(db),
		repository.NewUserRepository(db),
		realtime.NewPublisher(nil),
	)
	return svc, db
}

func TestPenaltyTier(t *testing.T) {
	cases := []struct {
		warnings   int
		wantType   string
		wantPoints int
	}{
		{0, models.PenaltyTypeWarning, 0},
		{1, models.PenaltyTypePoints, 5},
		{2, models.PenaltyTypePoints, 10},
		{7, models.PenaltyTypePoints, 10},
	}
	for _, c := range cases {
		gotType, gotPoints := penaltyTier(c.warnings)
		if gotType != c.wantType || gotPoints != c.wantPoints {
			t.Fatalf("penaltyTier(%d) = (%s, %d), want (%s, %d)", c.warnings, gotType, gotPoints, c.wantType, c.wantPoints)
		}
	}
}

func TestEvaluateLatePickupEscalates(t *testing.T) {
	svc, db := setupPenaltyServiceTest(t)
	ctx := context.Background()
	student := createTestStudent(t, db, "late@campus.edu")

	first, err := svc.EvaluateLatePickup(ctx, student.ID, 1, 8)
	if err != nil {
		t.Fatalf("first evaluation failed: %v", err)
	}
	if first.Type != models.PenaltyTypeWarning || first.Points != 0 {
		t.Fatalf("first offense should be warning, got %+v", first)
	}

	second, err := svc.EvaluateLatePickup(ctx, student.ID, 2, 10)
	if err != nil {
		t.Fatalf("second evaluation failed: %v", err)
	}
	if second.Type != models.PenaltyTypePoints || second.Points != 5 {
		t.Fatalf("second offense should cost 5 points, got %+v", second)
	}

	third, err := svc.EvaluateLatePickup(ctx, student.ID, 3, 20)
	if err != nil {
		t.Fatalf("third evaluation failed: %v", err)
	}
	if third.Type != models.PenaltyTypePoints || third.Points != 10 {
		t.Fatalf("third offense should cost 10 points, got %+v", third)
	}

	var reloaded models.User
	if err := db.First(&reloaded, student.ID).Error; err != nil {
		t.Fatalf("reload student failed: %v", err)
	}
	if reloaded.Warnings != 3 {
		t.Fatalf("expected 3 warnings, got %d", reloaded.Warnings)
	}
	if reloaded.PenaltyPoints != 15 {
		t.Fatalf("expected 15 points, got %d", reloaded.PenaltyPoints)
	}
	if reloaded.IsBlocked {
		t.Fatalf("15 points should not block")
	}
}

func TestEvaluateLatePickupBlocksAtThreshold(t *testing.T) {
	svc, db := setupPenaltyServiceTest(t)
	student := createTestStudent(t, db, "repeat@campus.edu")
	if err := db.Model(&models.User{}).Where("id = ?", student.ID).
		Updates(map[string]interface{}{"warnings": 5, "penalty_points": 45}).Error; err != nil {
		t.Fatalf("seed penalty state failed: %v", err)
	}

	penalty, err := svc.EvaluateLatePickup(context.Background(), student.ID, 9, 15)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if penalty.Points != 10 {
		t.Fatalf("expected 10 points, got %d", penalty.Points)
	}
	// 越过阈值的这条处罚自身记为 block，并在原因里注明封禁
	if penalty.Type != models.PenaltyTypeBlock {
		t.Fatalf("expected penalty type %s, got %s", models.PenaltyTypeBlock, penalty.Type)
	}
	if !strings.Contains(penalty.Reason, "封禁") {
		t.Fatalf("expected block note in reason, got %q", penalty.Reason)
	}

	var reloaded models.User
	if err := db.First(&reloaded, student.ID).Error; err != nil {
		t.Fatalf("reload student failed: %v", err)
	}
	if reloaded.PenaltyPoints != 55 {
		t.Fatalf("expected 55 points, got %d", reloaded.PenaltyPoints)
	}
	if !reloaded.IsBlocked {
		t.Fatalf("expected student to be blocked at %d points", reloaded.PenaltyPoints)
	}
}

func TestClearPenaltyMarksOnly(t *testing.T) {
	svc, db := setupPenaltyServiceTest(t)
	student := createTestStudent(t, db, "cleared@campus.edu")

	penalty, err := svc.EvaluateLatePickup(context.Background(), student.ID, 1, 6)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	cleared, err := svc.ClearPenalty(penalty.ID)
	if err != nil {
		t.Fatalf("clear penalty failed: %v", err)
	}
	if !cleared.IsCleared {
		t.Fatalf("expected penalty marked cleared")
	}

	// 撤销仅做标记，不回退警告计数
	var reloaded models.User
	if err := db.First(&reloaded, student.ID).Error; err != nil {
		t.Fatalf("reload student failed: %v", err)
	}
	if reloaded.Warnings != 1 {
		t.Fatalf("expected warnings unchanged, got %d", reloaded.Warnings)
	}

	if _, err := svc.ClearPenalty(999999); !errors.Is(err, ErrPenaltyNotFound) {
		t.Fatalf("expected ErrPenaltyNotFound, got %v", err)
	}
}

func TestUnblockStudentResetsPoints(t *testing.T) {
	svc, db := setupPenaltyServiceTest(t)
	student := createTestStudent(t, db, "blocked@campus.edu")
	if err := db.Model(&models.User{}).Where("id = ?", student.ID).
		Updates(map[string]interface{}{"warnings": 6, "penalty_points": 55, "is_blocked": true}).Error; err != nil {
		t.Fatalf("seed blocked state failed: %v", err)
	}

	unblocked, err := svc.UnblockStudent(student.ID, true)
	if err != nil {
		t.Fatalf("unblock failed: %v", err)
	}
	if unblocked.IsBlocked || unblocked.PenaltyPoints != 0 || unblocked.Warnings != 0 {
		t.Fatalf("unexpected unblocked state: %+v", unblocked)
	}

	var reloaded models.User
	if err := db.First(&reloaded, student.ID).Error; err != nil {
		t.Fatalf("reload student failed: %v", err)
	}
	if reloaded.IsBlocked || reloaded.PenaltyPoints != 0 || reloaded.Warnings != 0 {
		t.Fatalf("unexpected persisted state: %+v", reloaded)
	}
}

func TestListStudentPenalties(t *testing.T) {
	svc, db := setupPenaltyServiceTest(t)
	ctx := context.Background()
	student := createTestStudent(t, db, "s1@campus.edu")
	other := createTestStudent(t, db, "s2@campus.edu")

	for i := 0; i < 3; i++ {
		if _, err := svc.EvaluateLatePickup(ctx, student.ID, uint(i+1), 7); err != nil {
			t.Fatalf("evaluation failed: %v", err)
		}
	}
	if _, err := svc.EvaluateLatePickup(ctx, other.ID, 10, 7); err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	penalties, total, err := svc.ListStudentPenalties(student.ID, 1, 10)
	if err != nil {
		t.Fatalf("list penalties failed: %v", err)
	}
	if total != 3 || len(penalties) != 3 {
		t.Fatalf("expected 3 penalties, got total=%d len=%d", total, len(penalties))
	}
	for _, p := range penalties {
		if p.StudentID != student.ID {
			t.Fatalf("unexpected penalty for student %d", p.StudentID)
		}
	}
}
