package services

import (
	"SurgiFlow/apperrors"
	"SurgiFlow/database"
	"SurgiFlow/logger"
	"SurgiFlow/models"
	"SurgiFlow/repositories"
	"SurgiFlow/templates"
	"context"
	"encoding/json"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Answer is one submitted answer. Value is a pointer so a missing value is
// told apart from zero.
type Answer struct {
	ID    templates.QuestionID `json:"id"`
	Value *int                 `json:"value"`
}

func (a Answer) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required),
		validation.Field(&a.Value, validation.NotNil),
	)
}

// SubmitInput is the body of a PROM submission.
type SubmitInput struct {
	Answers []Answer `json:"answers"`
}

func (in SubmitInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Answers, validation.NotNil),
	)
}

// SubmitResult is returned after a successful submission.
type SubmitResult struct {
	Message           string            `json:"message"`
	ScheduleID        uint              `json:"schedule_id"`
	PromName          string            `json:"prom_name"`
	Status            models.PromStatus `json:"status"`
	AnsweredQuestions int               `json:"answered_questions"`
	Score             Score             `json:"score"`
}

// PromForm is everything a client needs to render one scheduled PROM. A
// completed form also carries the stored answers and score.
type PromForm struct {
	ScheduleID  uint          `json:"schedule_id"`
	PromName    string        `json:"prom_name"`
	DueDate     models.Date   `json:"due_date"`
	PatientID   uint          `json:"patient_id"`
	CaseID      uint          `json:"case_id"`
	PatientName string        `json:"patient_name"`
	JointType   string        `json:"joint_type"`
	Questions   []interface{} `json:"questions"`

	Status    models.PromStatus     `json:"status"`
	Score     json.RawMessage       `json:"score,omitempty"`
	Responses []models.PromResponse `json:"responses"`
}

// PromService serves PROM templates, forms and submissions.
type PromService struct {
	tx        *database.TxRunner
	proms     *repositories.PromRepository
	cases     *repositories.CaseRepository
	patients  *repositories.PatientRepository
	templates templates.Loader
	locker    Locker
	log       *logger.Logger
	now       func() time.Time
}

func NewPromService(
	tx *database.TxRunner,
	proms *repositories.PromRepository,
	cases *repositories.CaseRepository,
	patients *repositories.PatientRepository,
	loader templates.Loader,
	locker Locker,
	log *logger.Logger,
	now func() time.Time,
) *PromService {
	if now == nil {
		now = time.Now
	}
	return &PromService{
		tx:        tx,
		proms:     proms,
		cases:     cases,
		patients:  patients,
		templates: loader,
		locker:    locker,
		log:       log,
		now:       now,
	}
}

// GetTemplate returns the raw template document.
func (s *PromService) GetTemplate(name string) (map[string]interface{}, error) {
	tmpl, err := s.templates.Load(name)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			return nil, apperrors.NotFound("Template not found")
		}
		return nil, apperrors.TemplateMissing(name, err)
	}
	return tmpl.Raw, nil
}

func (s *PromService) ListForPatient(ctx context.Context, patientID uint) ([]models.PromSchedule, error) {
	return s.proms.ListSchedulesForPatient(ctx, patientID)
}

func (s *PromService) GetSchedule(ctx context.Context, id uint) (*models.PromSchedule, error) {
	schedule, err := s.proms.GetSchedule(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, apperrors.NotFound("PROM schedule not found")
	}
	return schedule, nil
}

func (s *PromService) GetForm(ctx context.Context, scheduleID uint) (*PromForm, error) {
	schedule, err := s.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	c, err := s.cases.GetByID(ctx, nil, schedule.CaseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.NotFound("Case episode not found")
	}
	patient, err := s.patients.GetByID(ctx, nil, schedule.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperrors.NotFound("Patient not found")
	}
	tmpl, err := s.templates.Load(schedule.PromName)
	if err != nil {
		return nil, apperrors.TemplateMissing(schedule.PromName, err)
	}
	responses, err := s.proms.ListResponses(ctx, schedule.ID)
	if err != nil {
		return nil, err
	}

	return &PromForm{
		ScheduleID:  schedule.ID,
		PromName:    schedule.PromName,
		DueDate:     schedule.DueDate,
		PatientID:   patient.ID,
		CaseID:      c.ID,
		PatientName: patient.FullName,
		JointType:   c.JointType,
		Questions:   tmpl.RawQuestions(),
		Status:      schedule.Status,
		Score:       storedScore(schedule.Score),
		Responses:   responses,
	}, nil
}

// storedScore returns the persisted score, or nil when none is stored. A NULL
// column scans as the JSON literal null.
func storedScore(score datatypes.JSON) json.RawMessage {
	if len(score) == 0 || string(score) == "null" {
		return nil
	}
	return json.RawMessage(score)
}

// Submit validates and records the answers for one schedule, completes it
// and scores it. Nothing is written unless every answer is valid.
func (s *PromService) Submit(ctx context.Context, scheduleID uint, in SubmitInput) (*SubmitResult, error) {
	if err := in.Validate(); err != nil {
		return nil, apperrors.BadRequest("%v", err)
	}
	for i, a := range in.Answers {
		if err := a.Validate(); err != nil {
			return nil, apperrors.BadRequest("answers[%d]: %v", i, err)
		}
	}

	release, err := acquireLock(ctx, s.locker, fmt.Sprintf("prom_submit_lock:%d", scheduleID))
	if err != nil {
		return nil, err
	}
	defer release()

	var result *SubmitResult
	err = s.tx.InTx(ctx, func(tx *gorm.DB) error {
		schedule, err := s.proms.GetSchedule(ctx, tx, scheduleID)
		if err != nil {
			return err
		}
		if schedule == nil {
			return apperrors.NotFound("Schedule not found")
		}
		if schedule.Status == models.PromStatusCompleted {
			return apperrors.Conflict("PROM already completed")
		}

		tmpl, err := s.templates.Load(schedule.PromName)
		if err != nil {
			return apperrors.TemplateMissing(schedule.PromName, err)
		}
		if len(tmpl.Questions) == 0 {
			return apperrors.BadTemplate("Template has no questions")
		}

		existing, err := s.proms.CountResponses(ctx, tx, schedule.ID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return apperrors.Conflict("Responses already exist for this PROM")
		}

		responses, tally, err := checkAnswers(tmpl, schedule.ID, in.Answers)
		if err != nil {
			return err
		}
		if err := s.proms.CreateResponses(ctx, tx, responses); err != nil {
			return err
		}

		score := ScorePROM(schedule.PromName, tmpl, tally)
		scoreJSON, err := json.Marshal(score)
		if err != nil {
			return errors.Wrap(err, "failed to encode score")
		}
		completed := models.DateOf(s.now())
		schedule.Status = models.PromStatusCompleted
		schedule.CompletedDate = &completed
		schedule.Score = datatypes.JSON(scoreJSON)
		if err := s.proms.CompleteSchedule(ctx, tx, schedule); err != nil {
			return err
		}

		result = &SubmitResult{
			Message:           "PROM submitted successfully",
			ScheduleID:        schedule.ID,
			PromName:          schedule.PromName,
			Status:            schedule.Status,
			AnsweredQuestions: tally.Answered,
			Score:             score,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("PROM submitted", "schedule_id", scheduleID, "prom_name", result.PromName, "answered", result.AnsweredQuestions)
	return result, nil
}

// checkAnswers validates every answer against the template and builds the
// response rows. The first invalid answer rejects the whole submission.
func checkAnswers(tmpl *templates.Template, scheduleID uint, answers []Answer) ([]models.PromResponse, Tally, error) {
	var tally Tally
	responses := make([]models.PromResponse, 0, len(answers))
	for _, a := range answers {
		q, ok := tmpl.Question(a.ID)
		if !ok {
			return nil, Tally{}, apperrors.BadRequest("Invalid question ID: %s", a.ID)
		}
		value := *a.Value
		if q.HasRange() && (value < *q.RangeMin || value > *q.RangeMax) {
			return nil, Tally{}, apperrors.BadRequest("Answer for question %s out of range (%d-%d)", a.ID, *q.RangeMin, *q.RangeMax)
		}
		responses = append(responses, models.PromResponse{
			PromInstanceID: scheduleID,
			QuestionID:     string(a.ID),
			AnswerValue:    value,
		})
		tally.Total += value
		tally.Answered++
	}
	return responses, tally, nil
}
