package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"loan-origination-api/services"

	"github.com/gin-gonic/gin"
)

// ListModelVersions returns every registered risk-model version (admin only).
func ListModelVersions(c *gin.Context) {
	versions, err := services.NewModelRegistryService(nil).List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list model versions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"model_versions": versions})
}

// PromoteModelVersion marks one version active + production, demoting any
// previous production version (admin only).
func PromoteModelVersion(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid model version id"})
		return
	}

	promoted, err := services.NewModelRegistryService(nil).Promote(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrModelVersionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Model version not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to promote model version"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"model_version": promoted, "message": "Model version promoted"})
}
