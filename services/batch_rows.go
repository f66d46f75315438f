package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"loan-origination-api/utils"
)

// RawRow is one loosely-typed record from an uploaded CSV, keyed by
// normalized header name.
type RawRow map[string]string

// ApplicantRecord is the fully-typed form of one batch row. Every field is
// either taken from the input or resolved from rowDefaults; normalization
// itself can never fail a row.
type ApplicantRecord struct {
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Address          string
	City             string
	State            string
	ZipCode          string
	Country          string
	EmploymentStatus string
	DateOfBirth      string
	AnnualIncome     float64
	CreditScore      int
	LoanAmount       float64
	LoanPurpose      string
	LoanTermMonths   int
}

// rowDefaults enumerates the fallback value for every optional column in one
// place. A missing value and an unparseable value resolve identically.
// Emails that are missing or malformed get a per-row synthesized address in
// NormalizeRow so they stay unique within a job.
var rowDefaults = ApplicantRecord{
	FirstName:        "Unknown",
	LastName:         "Applicant",
	Phone:            "000-000-0000",
	Address:          "Address not provided",
	City:             "Unknown",
	State:            "NA",
	ZipCode:          "00000",
	Country:          "USA",
	EmploymentStatus: "employed",
	AnnualIncome:     50000,
	CreditScore:      650,
	LoanAmount:       25000,
	LoanPurpose:      "other",
	LoanTermMonths:   36,
}

// NormalizeRow converts one raw record into a typed, defaulted record.
func NormalizeRow(raw RawRow, jobID uint, seq int) ApplicantRecord {
	email := utils.SanitizeInput(raw["email"])
	if !utils.ValidateEmail(email) {
		email = fmt.Sprintf("applicant+%d-%d@import.local", jobID, seq)
	}

	rec := ApplicantRecord{
		FirstName:        stringOrDefault(raw, "first_name", rowDefaults.FirstName),
		LastName:         stringOrDefault(raw, "last_name", rowDefaults.LastName),
		Email:            email,
		Phone:            stringOrDefault(raw, "phone", rowDefaults.Phone),
		Address:          stringOrDefault(raw, "address", rowDefaults.Address),
		City:             stringOrDefault(raw, "city", rowDefaults.City),
		State:            stringOrDefault(raw, "state", rowDefaults.State),
		ZipCode:          stringOrDefault(raw, "zip_code", rowDefaults.ZipCode),
		Country:          stringOrDefault(raw, "country", rowDefaults.Country),
		EmploymentStatus: stringOrDefault(raw, "employment_status", rowDefaults.EmploymentStatus),
		DateOfBirth:      stringOrDefault(raw, "date_of_birth", ""),
		AnnualIncome:     floatOrDefault(raw, "annual_income", rowDefaults.AnnualIncome),
		CreditScore:      intOrDefault(raw, "credit_score", rowDefaults.CreditScore),
		LoanAmount:       floatOrDefault(raw, "loan_amount", rowDefaults.LoanAmount),
		LoanPurpose:      stringOrDefault(raw, "loan_purpose", rowDefaults.LoanPurpose),
		LoanTermMonths:   intOrDefault(raw, "loan_term_months", rowDefaults.LoanTermMonths),
	}
	return rec
}

func stringOrDefault(raw RawRow, key, fallback string) string {
	if v := utils.SanitizeInput(raw[key]); v != "" {
		return v
	}
	return fallback
}

func floatOrDefault(raw RawRow, key string, fallback float64) float64 {
	v := strings.TrimSpace(raw[key])
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func intOrDefault(raw RawRow, key string, fallback int) int {
	v := strings.TrimSpace(raw[key])
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// BatchRowSource streams raw rows from an uploaded CSV file. The file is
// read exactly once, in order.
type BatchRowSource struct {
	file   *os.File
	reader *csv.Reader
	header []string
}

// OpenBatchRowSource opens the stored upload and consumes its header row.
func OpenBatchRowSource(path string) (*BatchRowSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	headerRow, err := r.Read()
	if err != nil {
		_ = f.Close()
		if err == io.EOF {
			return nil, fmt.Errorf("upload %s is empty", path)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	header := make([]string, len(headerRow))
	for i, h := range headerRow {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
	}

	return &BatchRowSource{file: f, reader: r, header: header}, nil
}

// Next returns the next raw row, or io.EOF when the stream is exhausted.
// Rows shorter than the header are padded with empty values.
func (s *BatchRowSource) Next() (RawRow, error) {
	record, err := s.reader.Read()
	if err != nil {
		return nil, err
	}

	row := make(RawRow, len(s.header))
	for i, name := range s.header {
		if name == "" {
			continue
		}
		if i < len(record) {
			row[name] = record[i]
		} else {
			row[name] = ""
		}
	}
	return row, nil
}

func (s *BatchRowSource) Close() error {
	return s.file.Close()
}
