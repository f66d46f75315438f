package models

import (
	"time"
)

// Applicant is one durable profile created per successfully processed
// batch row. The application number is unique system-wide, not just
// within the originating upload.
type Applicant struct {
	ID                uint      `json:"applicant_id" gorm:"primaryKey;autoIncrement"`
	ApplicationNumber string    `json:"application_number" gorm:"column:application_number;type:varchar(32);not null;uniqueIndex"`
	CreatedBy         int       `json:"created_by" gorm:"column:created_by;not null;index"`
	FirstName         string    `json:"first_name" gorm:"column:first_name;type:varchar(100)"`
	LastName          string    `json:"last_name" gorm:"column:last_name;type:varchar(100)"`
	Email             string    `json:"email" gorm:"column:email;type:varchar(255)"`
	Phone             string    `json:"phone" gorm:"column:phone;type:varchar(32)"`
	Address           string    `json:"address" gorm:"column:address;type:varchar(255)"`
	City              string    `json:"city" gorm:"column:city;type:varchar(100)"`
	State             string    `json:"state" gorm:"column:state;type:varchar(32)"`
	ZipCode           string    `json:"zip_code" gorm:"column:zip_code;type:varchar(16)"`
	Country           string    `json:"country" gorm:"column:country;type:varchar(64)"`
	EmploymentStatus  string    `json:"employment_status" gorm:"column:employment_status;type:varchar(32)"`
	AnnualIncome      float64   `json:"annual_income" gorm:"column:annual_income"`
	CreditScore       int       `json:"credit_score" gorm:"column:credit_score"`
	DateOfBirth       *string   `json:"date_of_birth,omitempty" gorm:"column:date_of_birth;type:varchar(16)"`
	CreatedAt         time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Applicant) TableName() string { return "applicants" }
