package services

import (
	"SurgiFlow/events"
	"SurgiFlow/logger"
	"SurgiFlow/models"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentInvitation struct {
	to    string
	name  string
	links []FormLink
}

type fakeMailer struct {
	sent []sentInvitation
	err  error
}

func (m *fakeMailer) SendPromInvitation(to, patientName string, links []FormLink) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentInvitation{to: to, name: patientName, links: links})
	return nil
}

type fakeLinker struct{}

func (fakeLinker) FormURL(scheduleID uint, _ time.Time) (string, error) {
	return fmt.Sprintf("https://forms.test/prom?schedule=%d", scheduleID), nil
}

func TestNotifierSendsInvitation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := &models.Patient{FullName: "Jane Doe", PreferredName: "Jane", Email: "jane@example.com"}
	require.NoError(t, f.patientRepo.Create(ctx, nil, p))
	c, err := f.cases.Create(ctx, CreateCaseInput{PatientID: p.ID, JointType: "KNEE", DateOfSurgery: surgeryDay})
	require.NoError(t, err)
	_, err = f.scheduler.ScheduleForCase(ctx, c.ID)
	require.NoError(t, err)
	created := f.published.named(events.SchedulesCreated{}.EventName())
	require.Len(t, created, 1)

	mailer := &fakeMailer{}
	notifier := NewPromNotifier(f.patientRepo, f.promRepo, mailer, fakeLinker{}, logger.Nop())
	require.NoError(t, notifier.HandleSchedulesCreated(ctx, created[0]))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "jane@example.com", mailer.sent[0].to)
	assert.Equal(t, "Jane", mailer.sent[0].name)
	require.Len(t, mailer.sent[0].links, 6)
	assert.Equal(t, "2024-01-01", mailer.sent[0].links[0].DueDate.String())
	assert.Contains(t, mailer.sent[0].links[0].URL, "https://forms.test/prom?schedule=")
}

func TestNotifierSkipsAndSwallowsErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.plannedCase(t, "KNEE", surgeryDay)
	_, err := f.scheduler.ScheduleForCase(ctx, c.ID)
	require.NoError(t, err)
	event := f.published.named(events.SchedulesCreated{}.EventName())[0]

	mailer := &fakeMailer{}
	notifier := NewPromNotifier(f.patientRepo, f.promRepo, mailer, fakeLinker{}, logger.Nop())
	require.NoError(t, notifier.HandleSchedulesCreated(ctx, event))
	assert.Empty(t, mailer.sent, "patient has no email")

	p := &models.Patient{FullName: "John", Email: "john@example.com"}
	require.NoError(t, f.patientRepo.Create(ctx, nil, p))
	failing := &fakeMailer{err: fmt.Errorf("smtp down")}
	notifier = NewPromNotifier(f.patientRepo, f.promRepo, failing, fakeLinker{}, logger.Nop())
	assert.NoError(t, notifier.HandleSchedulesCreated(ctx, events.SchedulesCreated{CaseID: c.ID, PatientID: p.ID}))
}
