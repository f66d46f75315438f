package services

import (
	"context"
	"errors"
	"fmt"

	"loan-origination-api/config"
	"loan-origination-api/models"

	"gorm.io/gorm"
)

// ScoringCandidate carries the denormalized applicant + application data a
// materialized row needs for scoring and result persistence.
type ScoringCandidate struct {
	LoanApplicationID uint
	ApplicantID       uint
	ApplicationNumber string
	Record            ApplicantRecord
}

// ApplicantIntakeService persists the Applicant and LoanApplication pair for
// one normalized batch row.
type ApplicantIntakeService struct {
	db *gorm.DB
}

func NewApplicantIntakeService(db *gorm.DB) *ApplicantIntakeService {
	if db == nil {
		db = config.DB
	}
	return &ApplicantIntakeService{db: db}
}

// ApplicationNumber builds the unique applicant identifier for one row:
// fixed prefix, calendar year, the low-order digits of the job's creation
// time, and the zero-padded row sequence. Sequence numbers keep it unique
// within a job; the unique index on applicants enforces the rest.
func ApplicationNumber(job *models.BatchUploadJob, seq int) string {
	return fmt.Sprintf("LN-%d-%04d-%04d", job.CreatedAt.Year(), job.CreatedAt.Unix()%10000, seq)
}

// Materialize inserts the Applicant, then the LoanApplication referencing it.
// The two writes are deliberately not wrapped in a transaction: if scoring
// later fails for this row, the pair stays behind and the row is only
// counted as failed.
func (s *ApplicantIntakeService) Materialize(ctx context.Context, rec ApplicantRecord, job *models.BatchUploadJob, seq int) (*ScoringCandidate, error) {
	if job == nil {
		return nil, errors.New("job is nil")
	}

	var dob *string
	if rec.DateOfBirth != "" {
		d := rec.DateOfBirth
		dob = &d
	}

	applicant := &models.Applicant{
		ApplicationNumber: ApplicationNumber(job, seq),
		CreatedBy:         job.UserID,
		FirstName:         rec.FirstName,
		LastName:          rec.LastName,
		Email:             rec.Email,
		Phone:             rec.Phone,
		Address:           rec.Address,
		City:              rec.City,
		State:             rec.State,
		ZipCode:           rec.ZipCode,
		Country:           rec.Country,
		EmploymentStatus:  rec.EmploymentStatus,
		AnnualIncome:      rec.AnnualIncome,
		CreditScore:       rec.CreditScore,
		DateOfBirth:       dob,
	}
	if err := s.db.WithContext(ctx).Create(applicant).Error; err != nil {
		return nil, fmt.Errorf("insert applicant %s: %w", applicant.ApplicationNumber, err)
	}

	application := &models.LoanApplication{
		ApplicantID:    applicant.ID,
		LoanAmount:     rec.LoanAmount,
		LoanPurpose:    rec.LoanPurpose,
		LoanTermMonths: rec.LoanTermMonths,
		Status:         models.LoanApplicationStatusSubmitted,
	}
	if err := s.db.WithContext(ctx).Create(application).Error; err != nil {
		return nil, fmt.Errorf("insert loan application for applicant %d: %w", applicant.ID, err)
	}

	return &ScoringCandidate{
		LoanApplicationID: application.ID,
		ApplicantID:       applicant.ID,
		ApplicationNumber: applicant.ApplicationNumber,
		Record:            rec,
	}, nil
}
