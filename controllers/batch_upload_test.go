package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"loan-origination-api/config"
	"loan-origination-api/models"
	"loan-origination-api/services"
)

func newControllerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "controller-test.db")
	db, err := gorm.Open(gormlite.Open("file:"+path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := config.AutoMigrateModels(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	prev := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = prev })
	return db
}

func newUploadRouter(userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/batch-uploads", func(c *gin.Context) {
		c.Set("userID", userID)
	}, UploadBatchFile)
	return r
}

func multipartCSV(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestUploadBatchFileRejectsNonCSV(t *testing.T) {
	newControllerTestDB(t)
	router := newUploadRouter(1)

	body, contentType := multipartCSV(t, "applicants.xlsx", []byte("not a csv"))
	req := httptest.NewRequest(http.MethodPost, "/batch-uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", w.Code)
	}
}

func TestUploadBatchFileRejectsOversizedFile(t *testing.T) {
	newControllerTestDB(t)
	t.Setenv("UPLOAD_PATH", t.TempDir())
	router := newUploadRouter(1)

	oversized := bytes.Repeat([]byte("a"), 10*1024*1024+1)
	body, contentType := multipartCSV(t, "applicants.csv", oversized)
	req := httptest.NewRequest(http.MethodPost, "/batch-uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", w.Code)
	}
}

func TestUploadBatchFileAcceptsAndProcesses(t *testing.T) {
	db := newControllerTestDB(t)
	t.Setenv("UPLOAD_PATH", t.TempDir())

	owner := &models.User{FirstName: "Batch", LastName: "Owner", Email: "owner@example.com", Password: "x", RoleID: 1}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	mv := &models.MLModelVersion{Version: "v2.1.3", IsActive: true, IsProduction: true}
	if err := db.Create(mv).Error; err != nil {
		t.Fatalf("seed model version: %v", err)
	}

	scoring := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"risk_score":0.2,"risk_category":"low","confidence_score":0.9,"feature_importance":[],"model_version":"v2.1.3"}}`))
	}))
	t.Cleanup(scoring.Close)
	t.Setenv("SCORING_SERVICE_URL", scoring.URL)

	router := newUploadRouter(owner.UserID)

	csv := "first_name,last_name,email,annual_income,credit_score,loan_amount,loan_purpose,loan_term_months\n" +
		"Ada,Lovelace,ada@example.com,91000,712,12000,education,24\n" +
		"Grace,Hopper,grace@example.com,64000,690,30000,home_improvement,48\n"
	body, contentType := multipartCSV(t, "applicants.csv", []byte(csv))
	req := httptest.NewRequest(http.MethodPost, "/batch-uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status: got %d, want 202: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ID       uint   `json:"id"`
		Filename string `json:"filename"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == 0 || resp.Filename != "applicants.csv" || resp.Status != models.BatchUploadStatusProcessing {
		t.Fatalf("unexpected response: %+v", resp)
	}

	services.DefaultPipelineRunner.Wait(resp.ID)

	var job models.BatchUploadJob
	if err := db.First(&job, resp.ID).Error; err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if job.Status != models.BatchUploadStatusCompleted {
		t.Fatalf("job status after pipeline: got %q", job.Status)
	}
	if job.TotalRecords != 2 || job.ProcessedRecords != 2 || job.FailedRecords != 0 {
		t.Fatalf("counters: total=%d processed=%d failed=%d",
			job.TotalRecords, job.ProcessedRecords, job.FailedRecords)
	}

	var predictions int64
	db.Model(&models.Prediction{}).Count(&predictions)
	if predictions != 2 {
		t.Fatalf("predictions: got %d, want 2", predictions)
	}
}
