// Command batch-score runs the batch ingestion and scoring pipeline against
// a local CSV without going through the upload endpoint. Intended for
// operators re-running a file or exercising a new model version.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"loan-origination-api/config"
	"loan-origination-api/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitDB()

	var (
		filePath string
		userID   int
	)

	flag.StringVar(&filePath, "file", "", "path to the CSV file to ingest (required)")
	flag.IntVar(&userID, "user-id", 0, "owning user id for the created records (required)")
	flag.Parse()

	if filePath == "" || userID <= 0 {
		flag.Usage()
		os.Exit(1)
	}
	// The job tracker deletes the stored file once the job reaches a
	// terminal state, so work on a copy and leave the operator's file alone.
	storedPath, err := copyToTemp(filePath)
	if err != nil {
		log.Fatalf("cannot stage %s: %v", filePath, err)
	}

	jobs := services.NewBatchJobService(nil)
	job, err := jobs.Create(context.Background(), userID, filepath.Base(filePath), storedPath)
	if err != nil {
		log.Fatalf("failed to create batch job: %v", err)
	}

	pipeline := services.NewBatchPipelineService(nil, nil)
	if err := pipeline.Run(context.Background(), job); err != nil {
		if errors.Is(err, services.ErrNoProductionModel) {
			log.Fatal("no active production model version registered; promote one first")
		}
		log.Fatalf("batch job %d aborted: %v", job.ID, err)
	}

	final, err := jobs.GetForUser(context.Background(), job.ID, userID)
	if err != nil {
		log.Fatalf("failed to reload batch job %d: %v", job.ID, err)
	}

	fmt.Printf("Job %d finished with status %s\n", final.ID, final.Status)
	fmt.Printf("Records: total=%d processed=%d failed=%d\n",
		final.TotalRecords,
		final.ProcessedRecords,
		final.FailedRecords,
	)

	if final.FailedRecords > 0 {
		os.Exit(2)
	}
}

func copyToTemp(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "batch-score-*.csv")
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}
