package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"loan-origination-api/config"
	"loan-origination-api/models"
	"loan-origination-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetApplicants returns applicants created by the requesting user, newest first.
func GetApplicants(c *gin.Context) {
	userID := c.GetInt("userID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := config.DB.Model(&models.Applicant{}).
		Where("created_by = ?", userID).
		Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list applicants"})
		return
	}

	var applicants []models.Applicant
	if err := config.DB.
		Where("created_by = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&applicants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list applicants"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applicants": applicants,
		"total":      total,
		"limit":      limit,
		"offset":     offset,
	})
}

// GetApplicant returns one applicant with its loan application and, when the
// row was scored, the stored prediction.
func GetApplicant(c *gin.Context) {
	userID := c.GetInt("userID")

	applicantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || applicantID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid applicant id"})
		return
	}

	var applicant models.Applicant
	if err := config.DB.
		Where("id = ? AND created_by = ?", applicantID, userID).
		First(&applicant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Applicant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load applicant"})
		return
	}

	var application models.LoanApplication
	response := gin.H{"applicant": applicant}
	err = config.DB.Where("applicant_id = ?", applicant.ID).First(&application).Error
	if err == nil {
		response["loan_application"] = application

		prediction, perr := services.NewPredictionService(nil).GetForApplication(c.Request.Context(), application.ID)
		if perr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load prediction"})
			return
		}
		if prediction != nil {
			response["prediction"] = prediction
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load loan application"})
		return
	}

	c.JSON(http.StatusOK, response)
}
