package services

import (
	"SurgiFlow/events"
	"SurgiFlow/logger"
	"SurgiFlow/models"
	"SurgiFlow/repositories"
	"context"
	"time"
)

// FormLink is one scheduled PROM as presented in an invitation.
type FormLink struct {
	PromName string
	DueDate  models.Date
	URL      string
}

// Mailer delivers PROM invitations.
type Mailer interface {
	SendPromInvitation(to, patientName string, links []FormLink) error
}

// FormLinker issues patient-facing form URLs for a schedule.
type FormLinker interface {
	FormURL(scheduleID uint, dueDate time.Time) (string, error)
}

// PromNotifier emails the patient once a PROM schedule has been created.
type PromNotifier struct {
	patients *repositories.PatientRepository
	proms    *repositories.PromRepository
	mailer   Mailer
	links    FormLinker
	log      *logger.Logger
}

func NewPromNotifier(
	patients *repositories.PatientRepository,
	proms *repositories.PromRepository,
	mailer Mailer,
	links FormLinker,
	log *logger.Logger,
) *PromNotifier {
	return &PromNotifier{patients: patients, proms: proms, mailer: mailer, links: links, log: log}
}

// HandleSchedulesCreated is the bus subscriber for events.SchedulesCreated.
func (n *PromNotifier) HandleSchedulesCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(events.SchedulesCreated)
	if !ok {
		return nil
	}
	if err := n.notify(ctx, created); err != nil {
		n.log.Warn("PROM invitation not sent", "case_id", created.CaseID, "error", err)
	}
	return nil
}

func (n *PromNotifier) notify(ctx context.Context, created events.SchedulesCreated) error {
	patient, err := n.patients.GetByID(ctx, nil, created.PatientID)
	if err != nil {
		return err
	}
	if patient == nil || patient.Email == "" {
		n.log.Debug("no email on file, skipping PROM invitation", "patient_id", created.PatientID)
		return nil
	}

	schedules, err := n.proms.ListSchedulesForCase(ctx, nil, created.CaseID)
	if err != nil {
		return err
	}
	links := make([]FormLink, 0, len(schedules))
	for _, s := range schedules {
		url, err := n.links.FormURL(s.ID, s.DueDate.Time)
		if err != nil {
			return err
		}
		links = append(links, FormLink{PromName: s.PromName, DueDate: s.DueDate, URL: url})
	}

	name := patient.PreferredName
	if name == "" {
		name = patient.FullName
	}
	if err := n.mailer.SendPromInvitation(patient.Email, name, links); err != nil {
		return err
	}
	n.log.Info("PROM invitation sent", "patient_id", patient.ID, "case_id", created.CaseID, "forms", len(links))
	return nil
}
