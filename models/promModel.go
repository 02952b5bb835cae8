package models

import (
	"gorm.io/datatypes"
)

// PromStatus is the state of one scheduled PROM instance.
type PromStatus string

const (
	PromStatusPending   PromStatus = "pending"
	PromStatusCompleted PromStatus = "completed"
)

// PromSchedule model: one due instance of a named PROM for a case.
type PromSchedule struct {
	ID            uint           `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	PatientID     uint           `gorm:"column:patient_id;not null;index" json:"patient_id"`
	CaseID        uint           `gorm:"column:case_id;not null;index" json:"case_id"`
	PromName      string         `gorm:"column:prom_name;not null" json:"prom_name"`
	DueDate       Date           `gorm:"column:due_date;not null;index" json:"due_date"`
	Status        PromStatus     `gorm:"column:status;not null;check:status IN ('pending', 'completed')" json:"status"`
	CompletedDate *Date          `gorm:"column:completed_date" json:"completed_date"`
	Score         datatypes.JSON `gorm:"column:score" json:"score,omitempty"`
	Patient       Patient        `gorm:"foreignKey:PatientID;references:ID" json:"-"`
	Case          CaseEpisode    `gorm:"foreignKey:CaseID;references:ID" json:"-"`
	Responses     []PromResponse `gorm:"foreignKey:PromInstanceID;references:ID" json:"-"`
}

func (PromSchedule) TableName() string {
	return "prom_schedules"
}

// PromResponse model: one answered question of a PROM instance.
type PromResponse struct {
	ID             uint   `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	PromInstanceID uint   `gorm:"column:prom_instance_id;not null;index" json:"prom_instance_id"`
	QuestionID     string `gorm:"column:question_id;not null" json:"question_id"`
	AnswerValue    int    `gorm:"column:answer_value;not null" json:"answer_value"`
}

func (PromResponse) TableName() string {
	return "prom_responses"
}
