package services

import (
	"context"
	"errors"
	"os"
	"testing"

	"loan-origination-api/models"
)

func TestJobLifecycleCounters(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	jobs := NewBatchJobService(db)

	job := createTestJob(t, db, owner.UserID, writeUploadCSV(t))
	if job.Status != models.BatchUploadStatusProcessing {
		t.Fatalf("initial status: got %q", job.Status)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := jobs.RecordRowSuccess(ctx, job.ID); err != nil {
			t.Fatalf("record success: %v", err)
		}
	}
	if err := jobs.RecordRowFailure(ctx, job.ID); err != nil {
		t.Fatalf("record failure: %v", err)
	}

	if err := jobs.Complete(ctx, job, 4); err != nil {
		t.Fatalf("complete: %v", err)
	}

	final, err := jobs.GetForUser(ctx, job.ID, owner.UserID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if final.Status != models.BatchUploadStatusCompleted {
		t.Fatalf("status: got %q", final.Status)
	}
	if final.TotalRecords != final.ProcessedRecords+final.FailedRecords {
		t.Fatalf("counter invariant violated: total=%d processed=%d failed=%d",
			final.TotalRecords, final.ProcessedRecords, final.FailedRecords)
	}
	if final.CompletedAt == nil {
		t.Fatal("completed_at not set")
	}
}

func TestTerminalTransitionsRemoveSourceFile(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	jobs := NewBatchJobService(db)
	ctx := context.Background()

	completed := createTestJob(t, db, owner.UserID, writeUploadCSV(t, "Ada,Lovelace"))
	if err := jobs.Complete(ctx, completed, 1); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := os.Stat(completed.StoredPath); !os.IsNotExist(err) {
		t.Fatalf("source file still exists after completion: %v", err)
	}

	failed := createTestJob(t, db, owner.UserID, writeUploadCSV(t, "Ada,Lovelace"))
	if err := jobs.Fail(ctx, failed, ErrNoProductionModel); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if _, err := os.Stat(failed.StoredPath); !os.IsNotExist(err) {
		t.Fatalf("source file still exists after failure: %v", err)
	}

	final, err := jobs.GetForUser(ctx, failed.ID, owner.UserID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if final.ErrorMessage == nil || *final.ErrorMessage == "" {
		t.Fatal("error_message not recorded on failed job")
	}
}

func TestFinishRequiresProcessingState(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	jobs := NewBatchJobService(db)
	ctx := context.Background()

	job := createTestJob(t, db, owner.UserID, writeUploadCSV(t))
	if err := jobs.Complete(ctx, job, 0); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// A second terminal transition finds no processing row to update.
	if err := jobs.Fail(ctx, job, errors.New("late failure")); !errors.Is(err, ErrBatchJobNotFound) {
		t.Fatalf("expected ErrBatchJobNotFound, got %v", err)
	}
}

func TestFailedTerminalWriteKeepsSourceFile(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	jobs := NewBatchJobService(db)
	ctx := context.Background()

	job := createTestJob(t, db, owner.UserID, writeUploadCSV(t, "Ada,Lovelace"))
	if err := db.Delete(&models.BatchUploadJob{}, job.ID).Error; err != nil {
		t.Fatalf("delete job row: %v", err)
	}

	if err := jobs.Complete(ctx, job, 1); !errors.Is(err, ErrBatchJobNotFound) {
		t.Fatalf("expected ErrBatchJobNotFound, got %v", err)
	}
	if _, err := os.Stat(job.StoredPath); err != nil {
		t.Fatalf("upload removed without a terminal status: %v", err)
	}
}

func TestListForUserScopesAndOrders(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	other := &models.User{FirstName: "Other", LastName: "User", Email: "other@example.com", Password: "x", RoleID: 1}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("seed other user: %v", err)
	}

	jobs := NewBatchJobService(db)
	ctx := context.Background()

	first := createTestJob(t, db, owner.UserID, writeUploadCSV(t))
	second := createTestJob(t, db, owner.UserID, writeUploadCSV(t))
	createTestJob(t, db, other.UserID, writeUploadCSV(t))

	list, total, err := jobs.ListForUser(ctx, owner.UserID, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("expected 2 owner jobs, got total=%d len=%d", total, len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("jobs not newest-first: %d then %d", list[0].ID, list[1].ID)
	}

	if _, err := jobs.GetForUser(ctx, first.ID, other.UserID); !errors.Is(err, ErrBatchJobNotFound) {
		t.Fatalf("expected owner scoping to hide job, got %v", err)
	}
}
