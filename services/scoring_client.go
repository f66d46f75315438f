package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"loan-origination-api/models"
)

const (
	defaultScoringBaseURL = "http://localhost:5001"
	scoringTimeout        = 30 * time.Second
)

// ScoringRequest is the normalized feature vector the risk service expects,
// derived from the applicant and loan fields of one row.
type ScoringRequest struct {
	Age                 int     `json:"age"`
	Income              float64 `json:"income"`
	EmploymentStatus    string  `json:"employment_status"`
	EmploymentLength    int     `json:"employment_length"`
	LoanAmount          float64 `json:"loan_amount"`
	LoanPurpose         string  `json:"loan_purpose"`
	LoanTerm            int     `json:"loan_term"`
	CreditScore         int     `json:"credit_score"`
	CreditHistoryLength int     `json:"credit_history_length"`
}

// FeatureImportance is one entry of the risk service's explanation.
type FeatureImportance struct {
	Feature     string  `json:"feature"`
	Importance  float64 `json:"importance"`
	Impact      string  `json:"impact"`
	Value       float64 `json:"value"`
	DisplayName string  `json:"display_name"`
}

// ScoringResult is the risk service's response payload.
type ScoringResult struct {
	RiskScore         float64             `json:"risk_score"`
	RiskCategory      string              `json:"risk_category"`
	ConfidenceScore   float64             `json:"confidence_score"`
	FeatureImportance []FeatureImportance `json:"feature_importance"`
	ModelVersion      string              `json:"model_version"`
	FeaturesUsed      map[string]float64  `json:"features_used"`
	// Fallback is set when the service answered with a degraded estimate.
	// It is recorded with the prediction, never treated as an error.
	Fallback bool `json:"fallback"`
}

// ScoringOutcome couples the request sent to the risk service with the
// result it returned, so the persister can snapshot both.
type ScoringOutcome struct {
	Request ScoringRequest
	Result  ScoringResult
}

type scoringEnvelope struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	Data    *ScoringResult `json:"data"`
}

// ScoringClient calls the external risk-scoring service. Any transport,
// timeout, or decoding failure is an ordinary error for the calling row;
// the client has no job-level state.
type ScoringClient struct {
	baseURL string
	client  *http.Client
}

func NewScoringClient(baseURL string, client *http.Client) *ScoringClient {
	if baseURL == "" {
		baseURL = os.Getenv("SCORING_SERVICE_URL")
	}
	if baseURL == "" {
		baseURL = defaultScoringBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: scoringTimeout}
	}
	return &ScoringClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Score submits one normalized record and maps the response. The
// recommendation is derived from the returned risk category.
func (c *ScoringClient) Score(ctx context.Context, rec ApplicantRecord) (*ScoringOutcome, error) {
	req := buildScoringRequest(rec)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode scoring request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call scoring service: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read scoring response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoring service returned status %d: %s", resp.StatusCode, truncateBody(payload))
	}

	var envelope scoringEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode scoring response: %w", err)
	}
	if !envelope.Success || envelope.Data == nil {
		return nil, fmt.Errorf("scoring service rejected request: %s", envelope.Error)
	}

	result := *envelope.Data
	switch result.RiskCategory {
	case models.RiskCategoryLow, models.RiskCategoryMedium, models.RiskCategoryHigh:
	default:
		return nil, fmt.Errorf("scoring service returned unknown risk category %q", result.RiskCategory)
	}

	return &ScoringOutcome{Request: req, Result: result}, nil
}

// RecommendationForRiskCategory maps the model's risk category to the
// derived action recorded with the prediction.
func RecommendationForRiskCategory(category string) string {
	switch category {
	case models.RiskCategoryLow:
		return models.RecommendationApprove
	case models.RiskCategoryHigh:
		return models.RecommendationReject
	default:
		return models.RecommendationReview
	}
}

// buildScoringRequest flattens a normalized record into the service's
// feature shape. Employment length and credit history length are not batch
// columns; the service's documented defaults apply.
func buildScoringRequest(rec ApplicantRecord) ScoringRequest {
	return ScoringRequest{
		Age:                 ageFromDateOfBirth(rec.DateOfBirth),
		Income:              rec.AnnualIncome,
		EmploymentStatus:    rec.EmploymentStatus,
		EmploymentLength:    5,
		LoanAmount:          rec.LoanAmount,
		LoanPurpose:         rec.LoanPurpose,
		LoanTerm:            rec.LoanTermMonths,
		CreditScore:         rec.CreditScore,
		CreditHistoryLength: 5,
	}
}

func ageFromDateOfBirth(dob string) int {
	const defaultAge = 35
	if dob == "" {
		return defaultAge
	}
	born, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return defaultAge
	}
	age := time.Now().Year() - born.Year()
	if now := time.Now(); now.YearDay() < born.YearDay() {
		age--
	}
	if age < 18 || age > 100 {
		return defaultAge
	}
	return age
}

func truncateBody(b []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(b))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
