package controllers

import (
	"net/http"

	"loan-origination-api/config"
	"loan-origination-api/models"

	"github.com/gin-gonic/gin"
)

type categoryCount struct {
	Label string `json:"label" gorm:"column:label"`
	Count int64  `json:"count" gorm:"column:count"`
}

// GetRiskSummary aggregates stored predictions for the requesting user's
// applicants: counts by risk category and by recommendation.
func GetRiskSummary(c *gin.Context) {
	userID := c.GetInt("userID")

	var byCategory []categoryCount
	err := config.DB.Model(&models.Prediction{}).
		Select("predictions.risk_category AS label, COUNT(*) AS count").
		Joins("JOIN loan_applications ON loan_applications.id = predictions.loan_application_id").
		Joins("JOIN applicants ON applicants.id = loan_applications.applicant_id").
		Where("applicants.created_by = ?", userID).
		Group("predictions.risk_category").
		Scan(&byCategory).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build risk summary"})
		return
	}

	var byRecommendation []categoryCount
	err = config.DB.Model(&models.Prediction{}).
		Select("predictions.recommendation AS label, COUNT(*) AS count").
		Joins("JOIN loan_applications ON loan_applications.id = predictions.loan_application_id").
		Joins("JOIN applicants ON applicants.id = loan_applications.applicant_id").
		Where("applicants.created_by = ?", userID).
		Group("predictions.recommendation").
		Scan(&byRecommendation).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build risk summary"})
		return
	}

	var totalApplicants int64
	if err := config.DB.Model(&models.Applicant{}).
		Where("created_by = ?", userID).
		Count(&totalApplicants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build risk summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_applicants":  totalApplicants,
		"by_risk_category":  byCategory,
		"by_recommendation": byRecommendation,
	})
}
