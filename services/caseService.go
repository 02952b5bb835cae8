package services

import (
	"SurgiFlow/apperrors"
	"SurgiFlow/database"
	"SurgiFlow/events"
	"SurgiFlow/logger"
	"SurgiFlow/models"
	"SurgiFlow/repositories"
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// CreateCaseInput is the body of a case creation request.
type CreateCaseInput struct {
	PatientID     uint        `json:"patient_id"`
	JointType     string      `json:"joint_type"`
	DateOfSurgery models.Date `json:"date_of_surgery"`
	CuttingTime   *string     `json:"cutting_time"`
	ClosingTime   *string     `json:"closing_time"`
	SurgeonName   string      `json:"surgeon_name"`
	ProcedureType string      `json:"procedure_type"`
	ImplantNotes  string      `json:"implant_notes"`
	CaseStatus    string      `json:"case_status"`
}

func (in CreateCaseInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.PatientID, validation.Required),
		validation.Field(&in.JointType, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.DateOfSurgery, validation.By(requiredDate)),
	)
}

// UpdateCaseInput is a partial update. Nil fields are left unchanged; an
// empty cutting_time or closing_time clears it.
type UpdateCaseInput struct {
	JointType     *string      `json:"joint_type"`
	DateOfSurgery *models.Date `json:"date_of_surgery"`
	CuttingTime   *string      `json:"cutting_time"`
	ClosingTime   *string      `json:"closing_time"`
	SurgeonName   *string      `json:"surgeon_name"`
	ProcedureType *string      `json:"procedure_type"`
	ImplantNotes  *string      `json:"implant_notes"`
	CaseStatus    *string      `json:"case_status"`
}

func (in UpdateCaseInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.JointType, validation.NilOrNotEmpty, validation.Length(1, 50)),
		validation.Field(&in.DateOfSurgery, validation.By(func(value interface{}) error {
			d, _ := value.(*models.Date)
			if d == nil {
				return nil
			}
			return requiredDate(*d)
		})),
	)
}

func requiredDate(value interface{}) error {
	d, _ := value.(models.Date)
	if d.IsZero() {
		return validation.ErrRequired
	}
	return nil
}

// CaseService owns case-episode status transitions and duration bookkeeping.
type CaseService struct {
	tx       *database.TxRunner
	cases    *repositories.CaseRepository
	patients *repositories.PatientRepository
	events   events.Publisher
	log      *logger.Logger
	now      func() time.Time
}

func NewCaseService(
	tx *database.TxRunner,
	cases *repositories.CaseRepository,
	patients *repositories.PatientRepository,
	publisher events.Publisher,
	log *logger.Logger,
	now func() time.Time,
) *CaseService {
	if now == nil {
		now = time.Now
	}
	return &CaseService{tx: tx, cases: cases, patients: patients, events: publisher, log: log, now: now}
}

func (s *CaseService) Create(ctx context.Context, in CreateCaseInput) (*models.CaseEpisode, error) {
	if err := in.Validate(); err != nil {
		return nil, apperrors.BadRequest("%v", err)
	}
	status, err := models.ParseCaseStatus(in.CaseStatus)
	if err != nil {
		return nil, apperrors.BadRequest("%v", err)
	}
	if status == "" {
		status = models.CaseStatusPlanned
	}
	cutting, err := normalizeClock("cutting_time", in.CuttingTime)
	if err != nil {
		return nil, err
	}
	closing, err := normalizeClock("closing_time", in.ClosingTime)
	if err != nil {
		return nil, err
	}
	duration, err := computeDuration(cutting, closing)
	if err != nil {
		return nil, err
	}

	c := &models.CaseEpisode{
		PatientID:       in.PatientID,
		JointType:       in.JointType,
		DateOfSurgery:   in.DateOfSurgery,
		CuttingTime:     cutting,
		ClosingTime:     closing,
		DurationMinutes: duration,
		CaseStatus:      status,
		SurgeonName:     in.SurgeonName,
		ProcedureType:   in.ProcedureType,
		ImplantNotes:    in.ImplantNotes,
	}

	err = s.tx.InTx(ctx, func(tx *gorm.DB) error {
		patient, err := s.patients.GetByID(ctx, tx, in.PatientID)
		if err != nil {
			return err
		}
		if patient == nil {
			return apperrors.NotFound("Patient not found")
		}
		return s.cases.Create(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}

	// A case created directly as COMPLETED enters COMPLETED here.
	s.notifyIfCompleted(ctx, "", c)
	return c, nil
}

func (s *CaseService) Get(ctx context.Context, id uint) (*models.CaseEpisode, error) {
	c, err := s.cases.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.NotFound("Case episode not found")
	}
	return c, nil
}

func (s *CaseService) ListForPatient(ctx context.Context, patientID uint) ([]models.CaseEpisode, error) {
	return s.cases.ListByPatient(ctx, patientID)
}

func (s *CaseService) Update(ctx context.Context, id uint, in UpdateCaseInput) (*models.CaseEpisode, error) {
	if err := in.Validate(); err != nil {
		return nil, apperrors.BadRequest("%v", err)
	}
	var newStatus models.CaseStatus
	if in.CaseStatus != nil {
		status, err := models.ParseCaseStatus(*in.CaseStatus)
		if err != nil {
			return nil, apperrors.BadRequest("%v", err)
		}
		newStatus = status
	}

	cutting, err := normalizeClock("cutting_time", in.CuttingTime)
	if err != nil {
		return nil, err
	}
	closing, err := normalizeClock("closing_time", in.ClosingTime)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(c *models.CaseEpisode) error {
		// Re-sending the stored value is not a change.
		cuttingChanged := in.CuttingTime != nil && !sameClock(c.CuttingTime, cutting)
		closingChanged := in.ClosingTime != nil && !sameClock(c.ClosingTime, closing)
		timesChanged := cuttingChanged || closingChanged
		statusChanged := newStatus != "" && newStatus != c.CaseStatus
		if c.CaseStatus == models.CaseStatusCancelled && (timesChanged || statusChanged) {
			return apperrors.Conflict("case is cancelled")
		}
		if statusChanged && !c.CaseStatus.CanTransitionTo(newStatus) {
			return apperrors.Conflict("cannot change case_status from %s to %s", c.CaseStatus, newStatus)
		}

		if in.JointType != nil {
			c.JointType = *in.JointType
		}
		if in.DateOfSurgery != nil {
			c.DateOfSurgery = *in.DateOfSurgery
		}
		if in.SurgeonName != nil {
			c.SurgeonName = *in.SurgeonName
		}
		if in.ProcedureType != nil {
			c.ProcedureType = *in.ProcedureType
		}
		if in.ImplantNotes != nil {
			c.ImplantNotes = *in.ImplantNotes
		}
		if newStatus != "" {
			c.CaseStatus = newStatus
		}

		if !timesChanged {
			return nil
		}
		if cuttingChanged {
			c.CuttingTime = cutting
		}
		if closingChanged {
			c.ClosingTime = closing
		}
		duration, err := computeDuration(c.CuttingTime, c.ClosingTime)
		if err != nil {
			return err
		}
		c.DurationMinutes = duration
		return nil
	})
}

func sameClock(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Start moves the case to IN_PROGRESS, stamping the cutting time if unset and
// clearing any stray closing time.
func (s *CaseService) Start(ctx context.Context, id uint) (*models.CaseEpisode, error) {
	return s.mutate(ctx, id, func(c *models.CaseEpisode) error {
		if c.CaseStatus.Terminal() {
			return apperrors.Conflict("cannot start a case that is %s", c.CaseStatus)
		}
		if c.CuttingTime == nil {
			c.CuttingTime = s.clockNow()
		}
		c.ClosingTime = nil
		c.DurationMinutes = nil
		c.CaseStatus = models.CaseStatusInProgress
		return nil
	})
}

// Stop stamps the closing time and completes the case. A case stopped in the
// same minute it was cut, including one never started, has no duration.
func (s *CaseService) Stop(ctx context.Context, id uint) (*models.CaseEpisode, error) {
	return s.mutate(ctx, id, func(c *models.CaseEpisode) error {
		if c.CaseStatus == models.CaseStatusCancelled {
			return apperrors.Conflict("cannot stop a case that is CANCELLED")
		}
		stamp := s.clockNow()
		if c.CuttingTime == nil {
			c.CuttingTime = stamp
		}
		minutes, err := minutesBetween(*c.CuttingTime, *stamp)
		if err != nil {
			return err
		}
		if minutes < 0 {
			return apperrors.BadRequest("closing_time must be after cutting_time")
		}
		c.ClosingTime = stamp
		c.DurationMinutes = nil
		if minutes > 0 {
			c.DurationMinutes = &minutes
		}
		c.CaseStatus = models.CaseStatusCompleted
		return nil
	})
}

// mutate loads the case, applies fn and saves it in one transaction. The
// completion notification goes out only after the commit.
func (s *CaseService) mutate(ctx context.Context, id uint, fn func(c *models.CaseEpisode) error) (*models.CaseEpisode, error) {
	var updated *models.CaseEpisode
	var previous models.CaseStatus

	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		c, err := s.cases.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return apperrors.NotFound("Case episode not found")
		}
		previous = c.CaseStatus
		if err := fn(c); err != nil {
			return err
		}
		if err := s.cases.Save(ctx, tx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyIfCompleted(ctx, previous, updated)
	return updated, nil
}

func (s *CaseService) notifyIfCompleted(ctx context.Context, previous models.CaseStatus, c *models.CaseEpisode) {
	if previous == models.CaseStatusCompleted || c.CaseStatus != models.CaseStatusCompleted {
		return
	}
	s.log.Info("case completed", "case_id", c.ID, "patient_id", c.PatientID)
	s.events.Publish(ctx, events.CaseCompleted{CaseID: c.ID, PatientID: c.PatientID})
}

func (s *CaseService) clockNow() *string {
	stamp := s.now().Format(clockLayout)
	return &stamp
}
