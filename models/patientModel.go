package models

import (
	"time"
)

// Patient model
type Patient struct {
	ID               uint          `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	FullName         string        `gorm:"column:full_name;not null;index" json:"full_name"`
	PreferredName    string        `gorm:"column:preferred_name" json:"preferred_name"`
	IDNumber         string        `gorm:"column:id_number;index" json:"id_number"`
	Email            string        `gorm:"column:email" json:"email"`
	Phone            string        `gorm:"column:phone" json:"phone"`
	Address          string        `gorm:"column:address" json:"address"`
	Age              *int          `gorm:"column:age" json:"age"`
	Sex              string        `gorm:"column:sex" json:"sex"`
	MedicalAid       string        `gorm:"column:medical_aid" json:"medical_aid"`
	MedicalAidNumber string        `gorm:"column:medical_aid_number" json:"medical_aid_number"`
	JointType        string        `gorm:"column:joint_type" json:"joint_type"`
	CreatedAt        time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Files            []PatientFile `gorm:"foreignKey:PatientID;references:ID" json:"-"`
	Cases            []CaseEpisode `gorm:"foreignKey:PatientID;references:ID" json:"-"`
}

func (Patient) TableName() string {
	return "patients"
}

// PatientFile model. PatientID is empty for raw uploads not yet assigned.
type PatientFile struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	PatientID *uint     `gorm:"column:patient_id;index" json:"patient_id"`
	FilePath  string    `gorm:"column:file_path;not null" json:"file_path"`
	Filename  string    `gorm:"column:filename;not null" json:"filename"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PatientFile) TableName() string {
	return "patient_files"
}
