package repositories

import (
	"SurgiFlow/models"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var caseColumns = []string{
	"joint_type", "date_of_surgery", "cutting_time", "closing_time", "duration_minutes",
	"case_status", "surgeon_name", "procedure_type", "implant_notes", "updated_at",
}

type CaseRepository struct {
	db *gorm.DB
}

func NewCaseRepository(db *gorm.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

func (r *CaseRepository) Create(ctx context.Context, tx *gorm.DB, c *models.CaseEpisode) error {
	if err := conn(ctx, r.db, tx).Omit(clause.Associations).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create case episode: %w", err)
	}
	return nil
}

func (r *CaseRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.CaseEpisode, error) {
	var c models.CaseEpisode
	err := conn(ctx, r.db, tx).First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get case episode: %w", err)
	}
	return &c, nil
}

// GetForUpdate reads the case with a row lock where the dialect supports it.
func (r *CaseRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.CaseEpisode, error) {
	q := conn(ctx, r.db, tx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var c models.CaseEpisode
	if err := q.First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get case episode: %w", err)
	}
	return &c, nil
}

// Save writes every mutable column, including the ones set to NULL.
func (r *CaseRepository) Save(ctx context.Context, tx *gorm.DB, c *models.CaseEpisode) error {
	err := conn(ctx, r.db, tx).Model(c).Omit(clause.Associations).Select(caseColumns).Updates(c).Error
	if err != nil {
		return fmt.Errorf("failed to update case episode: %w", err)
	}
	return nil
}

func (r *CaseRepository) ListByPatient(ctx context.Context, patientID uint) ([]models.CaseEpisode, error) {
	var cases []models.CaseEpisode
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("date_of_surgery DESC").
		Order("id DESC").
		Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list case episodes: %w", err)
	}
	return cases, nil
}
