package controllers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"loan-origination-api/config"
	"loan-origination-api/services"
	"loan-origination-api/utils"

	"github.com/gin-gonic/gin"
)

const maxBatchUploadBytes = 10 * 1024 * 1024 // 10 MiB

var allowedBatchUploadMimeTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true, // browsers commonly label .csv this way
	"application/octet-stream": true,
	"text/plain":               true,
}

// UploadBatchFile accepts a CSV of applicant records, creates the job, and
// starts the scoring pipeline in the background. The response is returned
// before any row is processed.
func UploadBatchFile(c *gin.Context) {
	userID := c.GetInt("userID")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An upload file is required"})
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type, a .csv file is required"})
		return
	}
	if ct := header.Header.Get("Content-Type"); ct != "" {
		base := strings.TrimSpace(strings.Split(ct, ";")[0])
		if !allowedBatchUploadMimeTypes[strings.ToLower(base)] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported content type, a CSV file is required"})
			return
		}
	}
	if header.Size > maxBatchUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 10MB upload limit"})
		return
	}

	uploadDir := os.Getenv("UPLOAD_PATH")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	uploadDir = filepath.Join(uploadDir, "batch_uploads")
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare upload directory"})
		return
	}

	storedName := utils.GenerateUniqueFilename(uploadDir, header.Filename)
	storedPath := filepath.Join(uploadDir, storedName)
	if err := c.SaveUploadedFile(header, storedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
		return
	}

	jobs := services.NewBatchJobService(nil)
	job, err := jobs.Create(c.Request.Context(), userID, header.Filename, storedPath)
	if err != nil {
		_ = os.Remove(storedPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create batch job"})
		return
	}

	pipeline := services.NewBatchPipelineService(config.DB, nil)
	services.DefaultPipelineRunner.Launch(pipeline, job)

	c.JSON(http.StatusAccepted, gin.H{
		"id":         job.ID,
		"filename":   job.Filename,
		"status":     job.Status,
		"created_at": job.CreatedAt,
	})
}

// GetBatchUpload returns one job's full status document, scoped to its owner.
func GetBatchUpload(c *gin.Context) {
	userID := c.GetInt("userID")

	jobID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || jobID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job id"})
		return
	}

	job, err := services.NewBatchJobService(nil).GetForUser(c.Request.Context(), uint(jobID), userID)
	if err != nil {
		if errors.Is(err, services.ErrBatchJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Batch job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load batch job"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListBatchUploads returns the owner's jobs, newest first, paginated.
func ListBatchUploads(c *gin.Context) {
	userID := c.GetInt("userID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	jobs, total, err := services.NewBatchJobService(nil).ListForUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list batch jobs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":   jobs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
