package services

import (
	"SurgiFlow/apperrors"
	"SurgiFlow/database"
	"SurgiFlow/events"
	"SurgiFlow/logger"
	"SurgiFlow/models"
	"SurgiFlow/repositories"
	"SurgiFlow/templates"
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// DefaultPromName is used for joints without a dedicated template.
const DefaultPromName = "OxfordKneeScore"

// JointPromMap maps an upper-cased joint type to its PROM template.
var JointPromMap = map[string]string{
	"KNEE": "OxfordKneeScore",
	"HIP":  "OxfordHipScore",
}

// DefaultIntervalsDays are due-date offsets relative to the surgery date:
// two weeks pre-op, then 6 weeks, 3, 6, 12 and 24 months post-op.
var DefaultIntervalsDays = []int{-14, 42, 90, 180, 365, 730}

// Locker serializes work on one key across processes.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// acquireLock takes key on locker. A lock held by another request is reported
// as a Conflict so the client can retry.
func acquireLock(ctx context.Context, locker Locker, key string) (func(), error) {
	release, err := locker.Acquire(ctx, key)
	if err != nil {
		if errors.Is(err, database.ErrLockNotAcquired) {
			return nil, apperrors.Conflict("Another request is already processing this item, retry shortly")
		}
		return nil, err
	}
	return release, nil
}

// ScheduleResult summarizes one scheduling call.
type ScheduleResult struct {
	CaseID   uint    `json:"case_id"`
	PromName *string `json:"prom_name"`
	Created  int     `json:"created"`
	Existing int     `json:"existing"`
	Message  string  `json:"message"`
}

type PromScheduler struct {
	tx        *database.TxRunner
	cases     *repositories.CaseRepository
	proms     *repositories.PromRepository
	templates templates.Loader
	locker    Locker
	events    events.Publisher
	log       *logger.Logger
	intervals []int
}

func NewPromScheduler(
	tx *database.TxRunner,
	cases *repositories.CaseRepository,
	proms *repositories.PromRepository,
	loader templates.Loader,
	locker Locker,
	publisher events.Publisher,
	log *logger.Logger,
) *PromScheduler {
	return &PromScheduler{
		tx:        tx,
		cases:     cases,
		proms:     proms,
		templates: loader,
		locker:    locker,
		events:    publisher,
		log:       log,
		intervals: DefaultIntervalsDays,
	}
}

// PickPromName selects the template for a joint type, case-insensitively.
func PickPromName(jointType string) string {
	if name, ok := JointPromMap[strings.ToUpper(strings.TrimSpace(jointType))]; ok {
		return name
	}
	return DefaultPromName
}

// DueDates returns one due date per offset from the surgery date.
func DueDates(surgery models.Date, offsets []int) []models.Date {
	dates := make([]models.Date, 0, len(offsets))
	for _, days := range offsets {
		dates = append(dates, surgery.AddDays(days))
	}
	return dates
}

// ScheduleForCase creates the PROM schedule for a case. It does nothing once
// any schedule row exists for the case.
func (s *PromScheduler) ScheduleForCase(ctx context.Context, caseID uint) (*ScheduleResult, error) {
	release, err := acquireLock(ctx, s.locker, fmt.Sprintf("prom_schedule_lock:%d", caseID))
	if err != nil {
		return nil, err
	}
	defer release()

	var result *ScheduleResult
	var created []models.PromSchedule
	var patientID uint

	err = s.tx.InTx(ctx, func(tx *gorm.DB) error {
		c, err := s.cases.GetByID(ctx, tx, caseID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperrors.NotFound("Case not found")
		}
		patientID = c.PatientID

		existing, err := s.proms.CountSchedulesForCase(ctx, tx, caseID)
		if err != nil {
			return err
		}
		if existing > 0 {
			result = &ScheduleResult{
				CaseID:   caseID,
				Existing: int(existing),
				Message:  "Schedule already exists",
			}
			return nil
		}

		promName := PickPromName(c.JointType)
		if _, err := s.templates.Load(promName); err != nil {
			return apperrors.TemplateMissing(promName, err)
		}

		for _, due := range DueDates(c.DateOfSurgery, s.intervals) {
			created = append(created, models.PromSchedule{
				PatientID: c.PatientID,
				CaseID:    c.ID,
				PromName:  promName,
				DueDate:   due,
				Status:    models.PromStatusPending,
			})
		}
		if err := s.proms.CreateSchedules(ctx, tx, created); err != nil {
			return err
		}

		result = &ScheduleResult{
			CaseID:   caseID,
			PromName: &promName,
			Created:  len(created),
			Message:  "Schedule created",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Created > 0 {
		s.log.Info("PROM schedule created", "case_id", caseID, "prom_name", *result.PromName, "created", result.Created)
		ids := make([]uint, 0, len(created))
		for _, row := range created {
			ids = append(ids, row.ID)
		}
		s.events.Publish(ctx, events.SchedulesCreated{
			CaseID:      caseID,
			PatientID:   patientID,
			PromName:    *result.PromName,
			ScheduleIDs: ids,
		})
	}
	return result, nil
}

// HandleCaseCompleted is the bus subscriber for events.CaseCompleted.
// Scheduling is best effort: failures are logged here and never reach the
// case operation that published the event.
func (s *PromScheduler) HandleCaseCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(events.CaseCompleted)
	if !ok {
		return nil
	}
	result, err := s.ScheduleForCase(ctx, completed.CaseID)
	if err != nil {
		s.log.Warn("automatic PROM scheduling failed", "case_id", completed.CaseID, "error", err)
		return nil
	}
	s.log.Debug("automatic PROM scheduling", "case_id", completed.CaseID, "created", result.Created, "existing", result.Existing)
	return nil
}
