package models

import (
	"time"
)

const (
	PredictionStatusCompleted = "completed"

	RiskCategoryLow    = "low"
	RiskCategoryMedium = "medium"
	RiskCategoryHigh   = "high"

	RecommendationApprove = "approve"
	RecommendationReview  = "review"
	RecommendationReject  = "reject"
)

// Prediction is the stored outcome of one scoring call. Created once per
// successfully scored row and never mutated afterwards. InputSnapshot keeps
// the original row, the feature vector the model saw, and the fallback flag
// so later exports can reconstruct exactly what was scored.
type Prediction struct {
	ID                uint      `json:"prediction_id" gorm:"primaryKey;autoIncrement"`
	LoanApplicationID uint      `json:"loan_application_id" gorm:"column:loan_application_id;not null;index"`
	ModelVersionID    uint      `json:"model_version_id" gorm:"column:model_version_id;not null"`
	RiskScore         float64   `json:"risk_score" gorm:"column:risk_score;not null"`
	RiskCategory      string    `json:"risk_category" gorm:"column:risk_category;type:varchar(16);not null"`
	ConfidenceScore   float64   `json:"confidence_score" gorm:"column:confidence_score"`
	Recommendation    string    `json:"recommendation" gorm:"column:recommendation;type:varchar(16);not null"`
	Status            string    `json:"status" gorm:"column:status;type:varchar(20);not null;default:'completed'"`
	Explanation       string    `json:"explanation" gorm:"column:explanation;type:json"`
	InputSnapshot     string    `json:"-" gorm:"column:input_snapshot;type:json"`
	CreatedAt         time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`

	// Relations
	Features []PredictionFeature `gorm:"foreignKey:PredictionID" json:"features,omitempty"`
}

// PredictionFeature denormalizes one entry of the prediction's explanation
// blob so feature contributions can be queried directly.
type PredictionFeature struct {
	ID              uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	PredictionID    uint    `json:"prediction_id" gorm:"column:prediction_id;not null;index"`
	FeatureName     string  `json:"feature_name" gorm:"column:feature_name;type:varchar(64);not null"`
	FeatureValue    float64 `json:"feature_value" gorm:"column:feature_value"`
	Importance      float64 `json:"importance" gorm:"column:importance"`
	ImpactDirection string  `json:"impact_direction" gorm:"column:impact_direction;type:varchar(16)"`
	DisplayLabel    string  `json:"display_label" gorm:"column:display_label;type:varchar(128)"`
}

func (Prediction) TableName() string { return "predictions" }

func (PredictionFeature) TableName() string { return "prediction_features" }
