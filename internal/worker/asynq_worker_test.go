package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/canteen-rush/internal/models"
	"github.com/canteen-rush/internal/provider"
	"github.com/canteen-rush/internal/queue"
	"github.com/canteen-rush/internal/realtime"
	"github.com/canteen-rush/internal/repository"
	"github.com/canteen-rush/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_consumer_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Penalty{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	penaltySvc := service.NewPenaltyService(
		repository.NewPenaltyRepository(db),
		repository.NewUserRepository(db),
		realtime.NewPublisher(nil),
	)
	consumer := NewConsumer(&provider.Container{PenaltyService: penaltySvc})
	return consumer, db
}

func TestHandlePenaltyProcess(t *testing.T) {
	consumer, db := setupConsumerTest(t)
	student := &models.User{
		Name:         "迟到学生",
		Email:        "late@campus.edu",
		PasswordHash: "hash",
		Role:         models.RoleStudent,
	}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("create student failed: %v", err)
	}

	task, err := queue.NewPenaltyProcessTask(queue.PenaltyProcessPayload{
		StudentID:     student.ID,
		OrderID:       7,
		LateByMinutes: 9,
	})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	if err := consumer.handlePenaltyProcess(context.Background(), task); err != nil {
		t.Fatalf("handle penalty process failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.Penalty{}).Where("student_id = ?", student.ID).Count(&count).Error; err != nil {
		t.Fatalf("count penalties failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 penalty, got %d", count)
	}
}

func TestHandlePenaltyProcessSkipsUnknownStudent(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	task, err := queue.NewPenaltyProcessTask(queue.PenaltyProcessPayload{
		StudentID:     999999,
		OrderID:       1,
		LateByMinutes: 8,
	})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	// 用户不存在时任务直接完成，不触发重试
	if err := consumer.handlePenaltyProcess(context.Background(), task); err != nil {
		t.Fatalf("expected nil error for unknown student, got %v", err)
	}
}

func TestHandlePenaltyProcessIgnoresBadPayload(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	task := asynq.NewTask(queue.TaskPenaltyProcess, []byte(`{"student_id":0,"order_id":0}`))
	if err := consumer.handlePenaltyProcess(context.Background(), task); err != nil {
		t.Fatalf("expected nil error for empty payload, got %v", err)
	}
}
