package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"loan-origination-api/models"
)

func TestChangePasswordRejectsWeakPassword(t *testing.T) {
	db := newControllerTestDB(t)

	hashed, err := HashPassword("oldpassword")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{FirstName: "Batch", LastName: "Owner", Email: "owner@example.com", Password: hashed, RoleID: 1}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.PUT("/change-password", func(c *gin.Context) {
		c.Set("userID", user.UserID)
	}, ChangePassword)

	body := `{"current_password":"oldpassword","new_password":"short"}`
	req := httptest.NewRequest(http.MethodPut, "/change-password", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400: %s", w.Code, w.Body.String())
	}

	var reloaded models.User
	if err := db.First(&reloaded, user.UserID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Password != hashed {
		t.Fatal("password changed despite rejected request")
	}
}
