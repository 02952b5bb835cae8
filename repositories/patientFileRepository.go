package repositories

import (
	"SurgiFlow/models"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type PatientFileRepository struct {
	db *gorm.DB
}

func NewPatientFileRepository(db *gorm.DB) *PatientFileRepository {
	return &PatientFileRepository{db: db}
}

func (r *PatientFileRepository) Create(ctx context.Context, tx *gorm.DB, file *models.PatientFile) error {
	if err := conn(ctx, r.db, tx).Create(file).Error; err != nil {
		return fmt.Errorf("failed to create patient file: %w", err)
	}
	return nil
}

func (r *PatientFileRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PatientFile, error) {
	var file models.PatientFile
	err := conn(ctx, r.db, tx).First(&file, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get patient file: %w", err)
	}
	return &file, nil
}

// AssignPatient links an uploaded file to a patient.
func (r *PatientFileRepository) AssignPatient(ctx context.Context, tx *gorm.DB, fileID, patientID uint) error {
	res := conn(ctx, r.db, tx).Model(&models.PatientFile{}).Where("id = ?", fileID).Update("patient_id", patientID)
	if res.Error != nil {
		return fmt.Errorf("failed to assign patient file: %w", res.Error)
	}
	return nil
}

func (r *PatientFileRepository) ListByPatient(ctx context.Context, patientID uint) ([]models.PatientFile, error) {
	var files []models.PatientFile
	err := r.db.WithContext(ctx).Where("patient_id = ?", patientID).Order("id ASC").Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list patient files: %w", err)
	}
	return files, nil
}
