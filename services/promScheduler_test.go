package services

import (
	"SurgiFlow/apperrors"
	"SurgiFlow/database"
	"SurgiFlow/events"
	"SurgiFlow/logger"
	"SurgiFlow/models"
	"context"
	"testing"
	"testing/fstest"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickPromName(t *testing.T) {
	assert.Equal(t, "OxfordKneeScore", PickPromName("KNEE"))
	assert.Equal(t, "OxfordKneeScore", PickPromName("knee"))
	assert.Equal(t, "OxfordHipScore", PickPromName(" hip "))
	assert.Equal(t, "OxfordKneeScore", PickPromName("SHOULDER"))
	assert.Equal(t, "OxfordKneeScore", PickPromName(""))
}

func TestDueDates(t *testing.T) {
	var got []string
	for _, d := range DueDates(surgeryDay, DefaultIntervalsDays) {
		got = append(got, d.String())
	}
	assert.Equal(t, []string{
		"2024-01-01", "2024-02-26", "2024-04-14", "2024-07-13", "2025-01-14", "2026-01-14",
	}, got)
}

func TestScheduleForCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.plannedCase(t, "hip", surgeryDay)

	result, err := f.scheduler.ScheduleForCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Created)
	assert.Equal(t, 0, result.Existing)
	require.NotNil(t, result.PromName)
	assert.Equal(t, "OxfordHipScore", *result.PromName)

	rows, err := f.promRepo.ListSchedulesForCase(ctx, nil, c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	for _, row := range rows {
		assert.Equal(t, models.PromStatusPending, row.Status)
		assert.Equal(t, c.PatientID, row.PatientID)
		assert.Nil(t, row.CompletedDate)
	}
	assert.Equal(t, "2024-01-01", rows[0].DueDate.String())
	assert.Equal(t, "2026-01-14", rows[5].DueDate.String())

	created := f.published.named(events.SchedulesCreated{}.EventName())
	require.Len(t, created, 1)
	assert.Len(t, created[0].(events.SchedulesCreated).ScheduleIDs, 6)

	again, err := f.scheduler.ScheduleForCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 6, again.Existing)
	assert.Nil(t, again.PromName)

	count, err := f.promRepo.CountSchedulesForCase(ctx, nil, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 6, count)
	assert.Len(t, f.published.named(events.SchedulesCreated{}.EventName()), 1)
}

func TestScheduleForCaseNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.scheduler.ScheduleForCase(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestScheduleForCaseTemplateMissing(t *testing.T) {
	f := newFixtureWithTemplates(t, fstest.MapFS{})
	ctx := context.Background()
	c := f.plannedCase(t, "KNEE", surgeryDay)

	_, err := f.scheduler.ScheduleForCase(ctx, c.ID)
	assert.ErrorIs(t, err, apperrors.ErrTemplateMissing)

	count, err := f.promRepo.CountSchedulesForCase(ctx, nil, c.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, f.published.named(events.SchedulesCreated{}.EventName()))
}

// Completing a case through the bus schedules its PROMs exactly once.
func TestCompletionSchedulesThroughBus(t *testing.T) {
	f := newFixture(t)

	bus := events.NewBus(logger.Nop())
	tx := database.NewTxRunner(f.db)
	scheduler := NewPromScheduler(tx, f.caseRepo, f.promRepo, f.scheduler.templates, database.NopLocker{}, bus, logger.Nop())
	cases := NewCaseService(tx, f.caseRepo, f.patientRepo, bus, logger.Nop(), f.clock.Now)
	bus.Subscribe(events.CaseCompleted{}.EventName(), scheduler.HandleCaseCompleted)

	ctx := context.Background()
	c := f.plannedCase(t, "KNEE", surgeryDay)
	_, err := cases.Start(ctx, c.ID)
	require.NoError(t, err)
	_, err = cases.Stop(ctx, c.ID)
	require.NoError(t, err)
	_, err = cases.Stop(ctx, c.ID)
	require.NoError(t, err)

	rows, err := f.promRepo.ListSchedulesForCase(ctx, nil, c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "OxfordKneeScore", rows[0].PromName)
}

// A scheduling failure is logged by the handler and the case still completes.
func TestCompletionSurvivesSchedulingFailure(t *testing.T) {
	f := newFixtureWithTemplates(t, fstest.MapFS{})
	bus := events.NewBus(logger.Nop())
	tx := database.NewTxRunner(f.db)
	scheduler := NewPromScheduler(tx, f.caseRepo, f.promRepo, f.scheduler.templates, database.NopLocker{}, bus, logger.Nop())
	cases := NewCaseService(tx, f.caseRepo, f.patientRepo, bus, logger.Nop(), f.clock.Now)
	bus.Subscribe(events.CaseCompleted{}.EventName(), scheduler.HandleCaseCompleted)

	ctx := context.Background()
	c := f.plannedCase(t, "KNEE", surgeryDay)
	stopped, err := cases.Stop(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusCompleted, stopped.CaseStatus)

	count, err := f.promRepo.CountSchedulesForCase(ctx, nil, c.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

type busyLocker struct{}

func (busyLocker) Acquire(_ context.Context, key string) (func(), error) {
	return nil, errors.Wrap(database.ErrLockNotAcquired, key)
}

func TestLockContentionIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.scheduled(t, "KNEE")
	other := f.plannedCase(t, "KNEE", surgeryDay)

	tx := database.NewTxRunner(f.db)
	scheduler := NewPromScheduler(tx, f.caseRepo, f.promRepo, f.scheduler.templates, busyLocker{}, f.published, logger.Nop())
	proms := NewPromService(tx, f.promRepo, f.caseRepo, f.patientRepo, f.scheduler.templates, busyLocker{}, logger.Nop(), f.clock.Now)

	_, err := scheduler.ScheduleForCase(ctx, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	count, err := f.promRepo.CountSchedulesForCase(ctx, nil, other.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = proms.Submit(ctx, s.ID, SubmitInput{Answers: answers(12, 4)})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	stored, err := f.proms.GetSchedule(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PromStatusPending, stored.Status)
}

func TestLockFailureIsNotConflict(t *testing.T) {
	f := newFixture(t)
	c := f.plannedCase(t, "KNEE", surgeryDay)
	scheduler := NewPromScheduler(database.NewTxRunner(f.db), f.caseRepo, f.promRepo, f.scheduler.templates,
		lockerFunc(func(context.Context, string) (func(), error) { return nil, errors.New("redis: connection refused") }),
		f.published, logger.Nop())

	_, err := scheduler.ScheduleForCase(context.Background(), c.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}

type lockerFunc func(ctx context.Context, key string) (func(), error)

func (f lockerFunc) Acquire(ctx context.Context, key string) (func(), error) { return f(ctx, key) }
