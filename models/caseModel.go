package models

import (
	"fmt"
	"strings"
	"time"
)

// CaseStatus is the lifecycle state of a case episode.
type CaseStatus string

const (
	CaseStatusPlanned    CaseStatus = "PLANNED"
	CaseStatusInProgress CaseStatus = "IN_PROGRESS"
	CaseStatusCompleted  CaseStatus = "COMPLETED"
	CaseStatusCancelled  CaseStatus = "CANCELLED"
)

// ParseCaseStatus normalizes s to upper case and checks it is a known status.
// An empty string yields the empty status, which callers treat as "unset".
func ParseCaseStatus(s string) (CaseStatus, error) {
	norm := CaseStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch norm {
	case "", CaseStatusPlanned, CaseStatusInProgress, CaseStatusCompleted, CaseStatusCancelled:
		return norm, nil
	}
	return "", fmt.Errorf("invalid case_status %q, must be one of PLANNED, IN_PROGRESS, COMPLETED, CANCELLED", s)
}

// Terminal reports whether no start action is allowed from s.
func (s CaseStatus) Terminal() bool {
	switch s {
	case CaseStatusCompleted, CaseStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a status change from s to next is allowed.
// Statuses only move forward; staying in the same status is always allowed.
func (s CaseStatus) CanTransitionTo(next CaseStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case CaseStatusPlanned:
		return next == CaseStatusInProgress || next == CaseStatusCompleted || next == CaseStatusCancelled
	case CaseStatusInProgress:
		return next == CaseStatusCompleted || next == CaseStatusCancelled
	case CaseStatusCompleted, CaseStatusCancelled:
		return false
	}
	return false
}

// CaseEpisode model. Cutting and closing times are wall-clock "HH:MM" strings.
type CaseEpisode struct {
	ID              uint       `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	PatientID       uint       `gorm:"column:patient_id;not null;index" json:"patient_id"`
	JointType       string     `gorm:"column:joint_type;not null" json:"joint_type"`
	DateOfSurgery   Date       `gorm:"column:date_of_surgery;not null;index" json:"date_of_surgery"`
	CuttingTime     *string    `gorm:"column:cutting_time" json:"cutting_time"`
	ClosingTime     *string    `gorm:"column:closing_time" json:"closing_time"`
	DurationMinutes *int       `gorm:"column:duration_minutes" json:"duration_minutes"`
	CaseStatus      CaseStatus `gorm:"column:case_status;not null;check:case_status IN ('PLANNED', 'IN_PROGRESS', 'COMPLETED', 'CANCELLED')" json:"case_status"`
	SurgeonName     string     `gorm:"column:surgeon_name" json:"surgeon_name"`
	ProcedureType   string     `gorm:"column:procedure_type" json:"procedure_type"`
	ImplantNotes    string     `gorm:"column:implant_notes" json:"implant_notes"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	Patient         Patient    `gorm:"foreignKey:PatientID;references:ID" json:"-"`
}

func (CaseEpisode) TableName() string {
	return "case_episodes"
}
