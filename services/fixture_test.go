package services

import (
	"SurgiFlow/database"
	"SurgiFlow/events"
	"SurgiFlow/logger"
	"SurgiFlow/models"
	"SurgiFlow/repositories"
	"SurgiFlow/templates"
	"SurgiFlow/testutil"
	"context"
	"io/fs"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) named(name string) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	db        *gorm.DB
	clock     *testClock
	published *recordingPublisher

	patientRepo *repositories.PatientRepository
	caseRepo    *repositories.CaseRepository
	promRepo    *repositories.PromRepository

	cases     *CaseService
	scheduler *PromScheduler
	proms     *PromService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithTemplates(t, testutil.Templates())
}

func newFixtureWithTemplates(t *testing.T, fsys fs.FS) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	log := logger.Nop()
	clock := &testClock{now: time.Date(2024, 1, 15, 10, 15, 0, 0, time.UTC)}
	published := &recordingPublisher{}
	tx := database.NewTxRunner(db)
	loader := templates.NewStore(fsys)

	f := &fixture{
		db:          db,
		clock:       clock,
		published:   published,
		patientRepo: repositories.NewPatientRepository(db),
		caseRepo:    repositories.NewCaseRepository(db),
		promRepo:    repositories.NewPromRepository(db),
	}
	f.cases = NewCaseService(tx, f.caseRepo, f.patientRepo, published, log, clock.Now)
	f.scheduler = NewPromScheduler(tx, f.caseRepo, f.promRepo, loader, database.NopLocker{}, published, log)
	f.proms = NewPromService(tx, f.promRepo, f.caseRepo, f.patientRepo, loader, database.NopLocker{}, log, clock.Now)
	return f
}

func (f *fixture) patient(t *testing.T, email string) *models.Patient {
	t.Helper()
	p := &models.Patient{FullName: "Jane Doe", Email: email, JointType: "KNEE"}
	require.NoError(t, f.patientRepo.Create(context.Background(), nil, p))
	return p
}

func (f *fixture) plannedCase(t *testing.T, jointType string, surgery models.Date) *models.CaseEpisode {
	t.Helper()
	p := f.patient(t, "")
	c, err := f.cases.Create(context.Background(), CreateCaseInput{
		PatientID:     p.ID,
		JointType:     jointType,
		DateOfSurgery: surgery,
	})
	require.NoError(t, err)
	return c
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
