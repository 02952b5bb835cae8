package repositories

import (
	"SurgiFlow/models"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PromRepository struct {
	db *gorm.DB
}

func NewPromRepository(db *gorm.DB) *PromRepository {
	return &PromRepository{db: db}
}

func (r *PromRepository) CountSchedulesForCase(ctx context.Context, tx *gorm.DB, caseID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db, tx).Model(&models.PromSchedule{}).Where("case_id = ?", caseID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count PROM schedules: %w", err)
	}
	return count, nil
}

// CreateSchedules inserts the whole batch in one statement.
func (r *PromRepository) CreateSchedules(ctx context.Context, tx *gorm.DB, schedules []models.PromSchedule) error {
	if len(schedules) == 0 {
		return nil
	}
	if err := conn(ctx, r.db, tx).Omit(clause.Associations).Create(&schedules).Error; err != nil {
		return fmt.Errorf("failed to create PROM schedules: %w", err)
	}
	return nil
}

func (r *PromRepository) GetSchedule(ctx context.Context, tx *gorm.DB, id uint) (*models.PromSchedule, error) {
	var s models.PromSchedule
	err := conn(ctx, r.db, tx).First(&s, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get PROM schedule: %w", err)
	}
	return &s, nil
}

func (r *PromRepository) ListSchedulesForPatient(ctx context.Context, patientID uint) ([]models.PromSchedule, error) {
	var rows []models.PromSchedule
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("due_date ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list PROM schedules: %w", err)
	}
	return rows, nil
}

func (r *PromRepository) ListSchedulesForCase(ctx context.Context, tx *gorm.DB, caseID uint) ([]models.PromSchedule, error) {
	var rows []models.PromSchedule
	err := conn(ctx, r.db, tx).Where("case_id = ?", caseID).Order("due_date ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list PROM schedules: %w", err)
	}
	return rows, nil
}

// CompleteSchedule marks the schedule completed and stores its score.
func (r *PromRepository) CompleteSchedule(ctx context.Context, tx *gorm.DB, s *models.PromSchedule) error {
	err := conn(ctx, r.db, tx).Model(s).Omit(clause.Associations).
		Select("status", "completed_date", "score").
		Updates(s).Error
	if err != nil {
		return fmt.Errorf("failed to complete PROM schedule: %w", err)
	}
	return nil
}

func (r *PromRepository) CountResponses(ctx context.Context, tx *gorm.DB, scheduleID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db, tx).Model(&models.PromResponse{}).Where("prom_instance_id = ?", scheduleID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count PROM responses: %w", err)
	}
	return count, nil
}

func (r *PromRepository) CreateResponses(ctx context.Context, tx *gorm.DB, responses []models.PromResponse) error {
	if len(responses) == 0 {
		return nil
	}
	if err := conn(ctx, r.db, tx).Create(&responses).Error; err != nil {
		return fmt.Errorf("failed to create PROM responses: %w", err)
	}
	return nil
}

func (r *PromRepository) ListResponses(ctx context.Context, scheduleID uint) ([]models.PromResponse, error) {
	var rows []models.PromResponse
	err := r.db.WithContext(ctx).Where("prom_instance_id = ?", scheduleID).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list PROM responses: %w", err)
	}
	return rows, nil
}
