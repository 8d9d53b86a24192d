package repositories

import (
	"context"
	"time"

	"prepwise/interview/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CallRepository struct {
	DB *gorm.DB
}

func NewCallRepository(db *gorm.DB) *CallRepository {
	return &CallRepository{DB: db}
}

// Migrate creates or updates the call_records table
func (r *CallRepository) Migrate() error {
	return r.DB.AutoMigrate(&models.CallRecord{})
}

func (r *CallRepository) Create(ctx context.Context, record *models.CallRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	return r.DB.WithContext(ctx).Create(record).Error
}

// ListByUser returns the user's call attempts, newest first
func (r *CallRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.CallRecord, error) {
	var records []models.CallRecord
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// DeleteOlderThan prunes records created before the cutoff and reports how many went
func (r *CallRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.DB.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.CallRecord{})
	return result.RowsAffected, result.Error
}
