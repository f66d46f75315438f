package config

import (
	"gorm.io/gorm"

	"loan-origination-api/models"
)

// AutoMigrateModels creates or updates the schema for every table the API
// owns. Production deployments manage the schema externally; this is used
// by fresh installs (DB_AUTO_MIGRATE=true) and by tests.
func AutoMigrateModels(db *gorm.DB) error {
	if db == nil {
		db = DB
	}
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.MLModelVersion{},
		&models.BatchUploadJob{},
		&models.Applicant{},
		&models.LoanApplication{},
		&models.Prediction{},
		&models.PredictionFeature{},
	)
}
