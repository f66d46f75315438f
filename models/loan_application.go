package models

import (
	"time"
)

const LoanApplicationStatusSubmitted = "submitted"

type LoanApplication struct {
	ID             uint      `json:"loan_application_id" gorm:"primaryKey;autoIncrement"`
	ApplicantID    uint      `json:"applicant_id" gorm:"column:applicant_id;not null;index"`
	LoanAmount     float64   `json:"loan_amount" gorm:"column:loan_amount;not null"`
	LoanPurpose    string    `json:"loan_purpose" gorm:"column:loan_purpose;type:varchar(64)"`
	LoanTermMonths int       `json:"loan_term_months" gorm:"column:loan_term_months;not null"`
	Status         string    `json:"status" gorm:"column:status;type:varchar(20);not null;default:'submitted'"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`

	// Relations
	Applicant Applicant `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
}

func (LoanApplication) TableName() string { return "loan_applications" }
