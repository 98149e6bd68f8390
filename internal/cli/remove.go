package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/runnerr0/mailtriage/internal/storage"
)

// Execute implements the go-flags Commander interface for RemoveCommand.
func (c *RemoveCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for remove command")
	}

	ctx := context.Background()
	e, err := openEnv(ctx, c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	return c.executeWithStore(ctx, e.store)
}

// executeWithStore removes an entry from a provided store (for testing).
// Removing an unknown id succeeds and reports that nothing changed.
func (c *RemoveCommand) executeWithStore(ctx context.Context, store *storage.HistoryStore) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for remove command")
	}

	_, err := store.Get(ctx, c.ID)
	found := err == nil
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		// An unreadable history reads as empty, so the id is absent.
		fmt.Fprintf(os.Stderr, "Warning: history could not be read: %v\n", err)
	}

	if found {
		if err := store.Remove(ctx, c.ID); err != nil {
			return fmt.Errorf("remove failed: %w", err)
		}
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]interface{}{
			"id":      c.ID,
			"removed": found,
		})
	}

	if found {
		fmt.Printf("Removed entry %s\n", c.ID)
	} else {
		fmt.Printf("No entry with id %s; nothing removed\n", c.ID)
	}
	return nil
}
