package models

import (
	"time"
)

const (
	BatchUploadStatusProcessing = "processing"
	BatchUploadStatusCompleted  = "completed"
	BatchUploadStatusFailed     = "failed"
)

// BatchUploadJob tracks one bulk applicant upload from creation to its
// terminal state. Counters only ever increase; error_message is set only
// when the whole job aborts, not for individual row failures.
type BatchUploadJob struct {
	ID               uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID           int        `json:"user_id" gorm:"column:user_id;not null;index"`
	Filename         string     `json:"filename" gorm:"column:filename;type:varchar(255);not null"`
	StoredPath       string     `json:"-" gorm:"column:stored_path;type:varchar(512)"`
	Status           string     `json:"status" gorm:"column:status;type:varchar(20);not null;default:'processing'"`
	TotalRecords     int        `json:"total_records" gorm:"column:total_records;not null;default:0"`
	ProcessedRecords int        `json:"processed_records" gorm:"column:processed_records;not null;default:0"`
	FailedRecords    int        `json:"failed_records" gorm:"column:failed_records;not null;default:0"`
	ErrorMessage     *string    `json:"error_message,omitempty" gorm:"column:error_message;type:text"`
	CreatedAt        time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" gorm:"column:completed_at"`
}

func (BatchUploadJob) TableName() string { return "batch_upload_jobs" }
