package services

import (
	"context"
	"errors"
	"fmt"

	"loan-origination-api/config"
	"loan-origination-api/models"

	"gorm.io/gorm"
)

var ErrModelVersionNotFound = errors.New("model version not found")

// ModelRegistryService answers which risk-model version is currently both
// active and production. The batch pipeline queries it exactly once per job,
// before any row is read.
type ModelRegistryService struct {
	db *gorm.DB
}

func NewModelRegistryService(db *gorm.DB) *ModelRegistryService {
	if db == nil {
		db = config.DB
	}
	return &ModelRegistryService{db: db}
}

// CurrentProductionVersion returns the active production model version, or
// (nil, nil) when none is registered.
func (s *ModelRegistryService) CurrentProductionVersion(ctx context.Context) (*models.MLModelVersion, error) {
	var mv models.MLModelVersion
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND is_production = ?", true, true).
		Order("created_at DESC").
		First(&mv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mv, nil
}

func (s *ModelRegistryService) List(ctx context.Context) ([]models.MLModelVersion, error) {
	var versions []models.MLModelVersion
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

// Promote marks the given version active + production and demotes whichever
// version held production before, keeping at most one production row.
func (s *ModelRegistryService) Promote(ctx context.Context, id uint) (*models.MLModelVersion, error) {
	var promoted models.MLModelVersion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&promoted).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrModelVersionNotFound
			}
			return err
		}

		if err := tx.Model(&models.MLModelVersion{}).
			Where("is_production = ? AND id <> ?", true, id).
			Update("is_production", false).Error; err != nil {
			return fmt.Errorf("demote current production version: %w", err)
		}

		if err := tx.Model(&promoted).
			Updates(map[string]interface{}{"is_active": true, "is_production": true}).Error; err != nil {
			return err
		}
		promoted.IsActive = true
		promoted.IsProduction = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &promoted, nil
}
