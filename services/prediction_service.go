package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"loan-origination-api/config"
	"loan-origination-api/models"

	"gorm.io/gorm"
)

// PredictionService stores one scoring result: a Prediction row plus one
// PredictionFeature row per explanation entry.
type PredictionService struct {
	db *gorm.DB
}

func NewPredictionService(db *gorm.DB) *PredictionService {
	if db == nil {
		db = config.DB
	}
	return &PredictionService{db: db}
}

type inputSnapshot struct {
	Row          RawRow             `json:"row"`
	Request      ScoringRequest     `json:"request"`
	FeaturesUsed map[string]float64 `json:"features_used,omitempty"`
	Fallback     bool               `json:"fallback"`
}

// Store persists the prediction for one scored row. The snapshot keeps the
// original row, the feature vector sent, the features the model reported
// using, and the fallback flag for later audit and export.
func (s *PredictionService) Store(ctx context.Context, candidate *ScoringCandidate, modelVersionID uint, raw RawRow, outcome *ScoringOutcome) (*models.Prediction, error) {
	explanation, err := json.Marshal(outcome.Result.FeatureImportance)
	if err != nil {
		return nil, fmt.Errorf("encode explanation: %w", err)
	}

	snapshot, err := json.Marshal(inputSnapshot{
		Row:          raw,
		Request:      outcome.Request,
		FeaturesUsed: outcome.Result.FeaturesUsed,
		Fallback:     outcome.Result.Fallback,
	})
	if err != nil {
		return nil, fmt.Errorf("encode input snapshot: %w", err)
	}

	prediction := &models.Prediction{
		LoanApplicationID: candidate.LoanApplicationID,
		ModelVersionID:    modelVersionID,
		RiskScore:         outcome.Result.RiskScore,
		RiskCategory:      outcome.Result.RiskCategory,
		ConfidenceScore:   outcome.Result.ConfidenceScore,
		Recommendation:    RecommendationForRiskCategory(outcome.Result.RiskCategory),
		Status:            models.PredictionStatusCompleted,
		Explanation:       string(explanation),
		InputSnapshot:     string(snapshot),
	}
	if err := s.db.WithContext(ctx).Create(prediction).Error; err != nil {
		return nil, fmt.Errorf("insert prediction for application %d: %w", candidate.LoanApplicationID, err)
	}

	for _, fi := range outcome.Result.FeatureImportance {
		feature := &models.PredictionFeature{
			PredictionID:    prediction.ID,
			FeatureName:     fi.Feature,
			FeatureValue:    fi.Value,
			Importance:      fi.Importance,
			ImpactDirection: fi.Impact,
			DisplayLabel:    fi.DisplayName,
		}
		if err := s.db.WithContext(ctx).Create(feature).Error; err != nil {
			return nil, fmt.Errorf("insert prediction feature %s: %w", fi.Feature, err)
		}
	}

	return prediction, nil
}

// GetForApplication returns the prediction (with features) stored for a loan
// application, or nil when the row was never scored.
func (s *PredictionService) GetForApplication(ctx context.Context, loanApplicationID uint) (*models.Prediction, error) {
	var prediction models.Prediction
	err := s.db.WithContext(ctx).
		Preload("Features").
		Where("loan_application_id = ?", loanApplicationID).
		First(&prediction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prediction, nil
}
