package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"loan-origination-api/config"
	"loan-origination-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "loan-test.db")
	db, err := gorm.Open(gormlite.Open("file:"+path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := config.AutoMigrateModels(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		FirstName: "Batch",
		LastName:  "Owner",
		Email:     "owner@example.com",
		Password:  "not-a-real-hash",
		RoleID:    1,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func seedProductionModel(t *testing.T, db *gorm.DB) *models.MLModelVersion {
	t.Helper()

	mv := &models.MLModelVersion{
		Version:      "v2.1.3",
		IsActive:     true,
		IsProduction: true,
	}
	if err := db.Create(mv).Error; err != nil {
		t.Fatalf("failed to seed model version: %v", err)
	}
	return mv
}

func createTestJob(t *testing.T, db *gorm.DB, userID int, storedPath string) *models.BatchUploadJob {
	t.Helper()

	job, err := NewBatchJobService(db).Create(context.Background(), userID, filepath.Base(storedPath), storedPath)
	if err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	return job
}

// writeUploadCSV writes a CSV with the standard batch header and the given
// rows into its own temp dir, since the pipeline deletes it on completion.
func writeUploadCSV(t *testing.T, rows ...string) string {
	t.Helper()

	header := "first_name,last_name,email,phone,annual_income,credit_score,address,city,state,zip_code,country,employment_status,date_of_birth,loan_amount,loan_purpose,loan_term_months"
	content := header + "\n" + strings.Join(rows, "\n")
	if len(rows) > 0 {
		content += "\n"
	}

	path := filepath.Join(t.TempDir(), "upload.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	return path
}

// newScoringStub runs an httptest server that mimics the risk service and
// returns a client pointed at it.
func newScoringStub(t *testing.T, handler http.HandlerFunc) *ScoringClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewScoringClient(server.URL, server.Client())
}

func scoringStubResponse(riskCategory string, riskScore float64, fallback bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := ScoringResult{
			RiskScore:       riskScore,
			RiskCategory:    riskCategory,
			ConfidenceScore: 0.9,
			FeatureImportance: []FeatureImportance{
				{Feature: "InterestRate", Importance: 0.235, Impact: "positive", Value: 0.1, DisplayName: "Interest Rate"},
				{Feature: "AnnualIncome", Importance: 0.156, Impact: "negative", Value: 50000, DisplayName: "Annual Income"},
			},
			ModelVersion: "v2.1.3",
			FeaturesUsed: map[string]float64{"InterestRate": 0.1, "AnnualIncome": 50000},
			Fallback:     fallback,
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"data":`)
		_ = json.NewEncoder(w).Encode(result)
		fmt.Fprint(w, `}`)
	}
}
