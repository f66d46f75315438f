package models

import (
	"time"
)

// MLModelVersion is one registered version of the external risk model.
// At most one row may be both active and production at any time; the batch
// pipeline refuses to start when none is.
type MLModelVersion struct {
	ID           uint      `json:"model_version_id" gorm:"primaryKey;autoIncrement"`
	Version      string    `json:"version" gorm:"column:version;type:varchar(64);not null;uniqueIndex"`
	Description  string    `json:"description" gorm:"column:description;type:varchar(255)"`
	IsActive     bool      `json:"is_active" gorm:"column:is_active;not null;default:false"`
	IsProduction bool      `json:"is_production" gorm:"column:is_production;not null;default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (MLModelVersion) TableName() string { return "ml_model_versions" }
