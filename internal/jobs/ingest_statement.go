package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"bankledger/internal/database"
	"bankledger/internal/geo"
	"bankledger/internal/ingest"
	"bankledger/internal/logger"
	"bankledger/internal/models"
)

// IngestStatementPayload is the JSON payload for ingest_statement jobs
type IngestStatementPayload struct {
	FilePath string `json:"file_path"`
}

// IngestStatementHandler creates a job handler that ingests an
// extracted-text statement file into the ledger.
func IngestStatementHandler(resolver *geo.Resolver) JobHandler {
	return func(ctx context.Context, job *models.Job, db *database.DB) error {
		var payload IngestStatementPayload
		if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}

		engine := ingest.NewEngine(ingest.NewStore(db), resolver)

		progress := func(done, total int) error {
			return db.UpdateJobProgress(job.ID, 100*done/total)
		}

		res, err := engine.IngestFile(ctx, payload.FilePath, progress)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", payload.FilePath, err)
		}

		logger.Ctx(ctx).Info("statement_ingested",
			"job_id", job.ID,
			"file", payload.FilePath,
			"imported", res.Imported,
			"duplicates", res.Duplicates)

		resultJSON, _ := json.Marshal(map[string]any{
			"batch_id":   res.BatchID,
			"total":      res.Total,
			"imported":   res.Imported,
			"duplicates": res.Duplicates,
		})
		return db.CompleteJob(job.ID, string(resultJSON))
	}
}
