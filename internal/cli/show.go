package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/runnerr0/mailtriage/internal/storage"
)

// Execute implements the go-flags Commander interface for ShowCommand.
func (c *ShowCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for show command")
	}

	ctx := context.Background()
	e, err := openEnv(ctx, c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	return c.executeWithStore(ctx, e.store)
}

// executeWithStore prints one entry from a provided store (for testing).
func (c *ShowCommand) executeWithStore(ctx context.Context, store *storage.HistoryStore) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for show command")
	}

	entry, err := store.Get(ctx, c.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("entry not found: %s", c.ID)
	}
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(entry)
	}

	fmt.Println(entry.ID)
	fmt.Printf("Created:  %s\n", entry.CreatedAt().Local().Format("2006-01-02 15:04:05"))
	if entry.FileName != nil {
		fmt.Printf("File:     %s\n", *entry.FileName)
	}
	printResult(entry)
	fmt.Println()
	fmt.Println("--- Content ---")
	if entry.Content == "" {
		fmt.Println("No content stored")
	} else {
		fmt.Println(entry.Content)
	}
	return nil
}
