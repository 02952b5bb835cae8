package services

import (
	"SurgiFlow/apperrors"
	"SurgiFlow/database"
	"SurgiFlow/models"
	"SurgiFlow/repositories"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PatientInput carries the patient fields accepted on create and assign.
type PatientInput struct {
	FullName         string `json:"full_name" form:"full_name"`
	PreferredName    string `json:"preferred_name" form:"preferred_name"`
	IDNumber         string `json:"id_number" form:"id_number"`
	Email            string `json:"email" form:"email"`
	Phone            string `json:"phone" form:"phone"`
	Address          string `json:"address" form:"address"`
	Age              *int   `json:"age" form:"age"`
	Sex              string `json:"sex" form:"sex"`
	MedicalAid       string `json:"medical_aid" form:"medical_aid"`
	MedicalAidNumber string `json:"medical_aid_number" form:"medical_aid_number"`
	JointType        string `json:"joint_type" form:"joint_type"`
}

func (in PatientInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Email, is.EmailFormat),
		validation.Field(&in.Age, validation.Min(0), validation.Max(130)),
		validation.Field(&in.JointType, validation.Length(0, 50)),
	)
}

// ValidateWithFile checks the fields of a create-full request, where joint
// type is required because it drives PROM selection.
func (in PatientInput) ValidateWithFile() error {
	if err := in.Validate(); err != nil {
		return apperrors.BadRequest("%v", err)
	}
	if strings.TrimSpace(in.JointType) == "" {
		return apperrors.BadRequest("joint_type: cannot be blank.")
	}
	return nil
}

func (in PatientInput) toModel() *models.Patient {
	return &models.Patient{
		FullName:         strings.TrimSpace(in.FullName),
		PreferredName:    in.PreferredName,
		IDNumber:         in.IDNumber,
		Email:            in.Email,
		Phone:            in.Phone,
		Address:          in.Address,
		Age:              in.Age,
		Sex:              in.Sex,
		MedicalAid:       in.MedicalAid,
		MedicalAidNumber: in.MedicalAidNumber,
		JointType:        in.JointType,
	}
}

type PatientService struct {
	tx        *database.TxRunner
	patients  *repositories.PatientRepository
	files     *repositories.PatientFileRepository
	uploadDir string
}

func NewPatientService(
	tx *database.TxRunner,
	patients *repositories.PatientRepository,
	files *repositories.PatientFileRepository,
	uploadDir string,
) *PatientService {
	return &PatientService{tx: tx, patients: patients, files: files, uploadDir: uploadDir}
}

func (s *PatientService) Create(ctx context.Context, in PatientInput) (*models.Patient, error) {
	if err := in.Validate(); err != nil {
		return nil, apperrors.BadRequest("%v", err)
	}
	patient := in.toModel()
	if err := s.patients.Create(ctx, nil, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *PatientService) GetByID(ctx context.Context, id uint) (*models.Patient, error) {
	patient, err := s.patients.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperrors.NotFound("Patient not found")
	}
	return patient, nil
}

func (s *PatientService) GetAll(ctx context.Context) ([]models.Patient, error) {
	return s.patients.GetAll(ctx)
}

func (s *PatientService) ListFiles(ctx context.Context, patientID uint) ([]models.PatientFile, error) {
	if _, err := s.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.files.ListByPatient(ctx, patientID)
}

// UploadPath returns where an uploaded file should be stored. A random prefix
// keeps two uploads with the same client file name apart.
func (s *PatientService) UploadPath(filename string) string {
	base := filepath.Base(filepath.Clean("/" + filename))
	if base == "/" || base == "." {
		base = "upload"
	}
	return filepath.Join(s.uploadDir, fmt.Sprintf("%s_%s", uuid.New().String(), base))
}

// RecordUpload registers a stored file with no patient attached.
func (s *PatientService) RecordUpload(ctx context.Context, filename, path string) (*models.PatientFile, error) {
	file := &models.PatientFile{FilePath: path, Filename: filename}
	if err := s.files.Create(ctx, nil, file); err != nil {
		return nil, err
	}
	return file, nil
}

// AssignFile creates a patient from in and links the uploaded file to it.
func (s *PatientService) AssignFile(ctx context.Context, fileID uint, in PatientInput) (*models.Patient, *models.PatientFile, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, apperrors.BadRequest("%v", err)
	}
	var patient *models.Patient
	var file *models.PatientFile
	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		var err error
		file, err = s.files.GetByID(ctx, tx, fileID)
		if err != nil {
			return err
		}
		if file == nil {
			return apperrors.NotFound("File not found")
		}
		patient = in.toModel()
		if err := s.patients.Create(ctx, tx, patient); err != nil {
			return err
		}
		if err := s.files.AssignPatient(ctx, tx, file.ID, patient.ID); err != nil {
			return err
		}
		file.PatientID = &patient.ID
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return patient, file, nil
}

// CreateWithFile creates the patient and its file record together.
func (s *PatientService) CreateWithFile(ctx context.Context, in PatientInput, filename, path string) (*models.Patient, *models.PatientFile, error) {
	if err := in.ValidateWithFile(); err != nil {
		return nil, nil, err
	}
	patient := in.toModel()
	file := &models.PatientFile{FilePath: path, Filename: filename}
	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		if err := s.patients.Create(ctx, tx, patient); err != nil {
			return err
		}
		file.PatientID = &patient.ID
		return s.files.Create(ctx, tx, file)
	})
	if err != nil {
		return nil, nil, err
	}
	return patient, file, nil
}
