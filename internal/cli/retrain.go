package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/runnerr0/mailtriage/internal/remote"
	"github.com/runnerr0/mailtriage/internal/storage"
)

// trainer submits training records; *remote.Client satisfies it.
type trainer interface {
	SubmitTrainingRecords(ctx context.Context, records []remote.TrainingRecord) (*remote.TrainingStatus, error)
}

// Execute implements the go-flags Commander interface for RetrainCommand.
func (c *RetrainCommand) Execute(args []string) error {
	ctx := context.Background()
	e, err := openEnv(ctx, c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	_, client := e.newOrchestrator()
	return c.executeWithStore(ctx, client, e.store)
}

// executeWithStore submits the history of a provided store (for testing).
func (c *RetrainCommand) executeWithStore(ctx context.Context, t trainer, store *storage.HistoryStore) error {
	entries, err := store.List(ctx, storage.OrderStored)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}
	if len(entries) == 0 {
		return errors.New("history is empty; classify some emails before retraining")
	}

	records := make([]remote.TrainingRecord, len(entries))
	for i, e := range entries {
		records[i] = remote.TrainingRecord{
			Content:        e.Content,
			Classification: e.Classification.RemoteLabel(),
			Confidence:     e.ConfidenceScore,
		}
	}

	status, err := t.SubmitTrainingRecords(ctx, records)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]interface{}{
			"submitted": len(records),
			"status":    status.Status,
		})
	}

	fmt.Printf("Submitted %s records for retraining: %s\n", formatNumber(int64(len(records))), status.Status)
	return nil
}
