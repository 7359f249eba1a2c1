package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"bankledger/internal/parser"
)

// ParseLines runs the extraction half of the pipeline: statement header
// plus transaction records, with line reflow applied per block.
func ParseLines(lines []string) Batch {
	return Batch{
		Statement: parser.ExtractStatement(lines),
		Records:   parser.ExtractTransactions(lines),
	}
}

// IngestFile reads an extracted-text statement file and ingests it.
func (e *Engine) IngestFile(ctx context.Context, path string, progress ProgressFunc) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read statement: %w", err)
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	return e.Ingest(ctx, ParseLines(lines), progress)
}

// Trip is a contiguous run of days whose transactions resolve to one
// foreign country.
type Trip struct {
	CountryCode string
	From        string // YYYY-MM-DD
	To          string // YYYY-MM-DD
}

// TripDetector infers travel periods from an account's located transactions.
type TripDetector interface {
	DetectTrips(ctx context.Context, accountID int64) ([]Trip, error)
}
