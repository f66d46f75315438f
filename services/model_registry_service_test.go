package services

import (
	"context"
	"testing"

	"loan-origination-api/models"
)

func TestCurrentProductionVersionReturnsNilWhenNoneRegistered(t *testing.T) {
	db := newTestDB(t)

	mv, err := NewModelRegistryService(db).CurrentProductionVersion(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mv != nil {
		t.Fatalf("expected nil, got %+v", mv)
	}
}

func TestCurrentProductionVersionIgnoresInactiveVersions(t *testing.T) {
	db := newTestDB(t)
	if err := db.Create(&models.MLModelVersion{Version: "v1.0.0", IsActive: true, IsProduction: false}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Create(&models.MLModelVersion{Version: "v1.1.0", IsActive: false, IsProduction: true}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	mv, err := NewModelRegistryService(db).CurrentProductionVersion(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mv != nil {
		t.Fatalf("neither version is active AND production, got %+v", mv)
	}
}

func TestPromoteDemotesPreviousProductionVersion(t *testing.T) {
	db := newTestDB(t)
	registry := NewModelRegistryService(db)

	old := seedProductionModel(t, db)
	candidate := &models.MLModelVersion{Version: "v3.0.0"}
	if err := db.Create(candidate).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	promoted, err := registry.Promote(context.Background(), candidate.ID)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if !promoted.IsActive || !promoted.IsProduction {
		t.Fatalf("promoted version flags: %+v", promoted)
	}

	var count int64
	if err := db.Model(&models.MLModelVersion{}).Where("is_production = ?", true).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one production version, got %d", count)
	}

	current, err := registry.CurrentProductionVersion(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current == nil || current.ID != candidate.ID {
		t.Fatalf("current production version: got %+v want id %d", current, candidate.ID)
	}

	var demoted models.MLModelVersion
	if err := db.Where("id = ?", old.ID).First(&demoted).Error; err != nil {
		t.Fatalf("reload old: %v", err)
	}
	if demoted.IsProduction {
		t.Fatal("previous production version was not demoted")
	}
}

func TestPromoteUnknownVersion(t *testing.T) {
	db := newTestDB(t)

	if _, err := NewModelRegistryService(db).Promote(context.Background(), 999); err != ErrModelVersionNotFound {
		t.Fatalf("expected ErrModelVersionNotFound, got %v", err)
	}
}
