package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/runnerr0/mailtriage/internal/model"
	"github.com/runnerr0/mailtriage/internal/storage"
)

// Execute implements the go-flags Commander interface for HistoryCommand.
func (c *HistoryCommand) Execute(args []string) error {
	if c.Search == "" && len(args) > 0 {
		c.Search = strings.Join(args, " ")
	}

	ctx := context.Background()
	e, err := openEnv(ctx, c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	return c.executeWithStore(ctx, e.store)
}

// executeWithStore lists history from a provided store (for testing).
func (c *HistoryCommand) executeWithStore(ctx context.Context, store *storage.HistoryStore) error {
	order, err := storage.ParseOrder(c.Order)
	if err != nil {
		return err
	}
	label, err := parseLabelFilter(c.Label)
	if err != nil {
		return err
	}
	if c.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	entries, err := store.List(ctx, order)
	if err != nil {
		// List already degraded to an empty history.
		fmt.Fprintf(os.Stderr, "Warning: history could not be read: %v\n", err)
	}

	results := filterEntries(entries, label, c.Search)
	if c.Limit > 0 && len(results) > c.Limit {
		results = results[:c.Limit]
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(results)
	}
	c.printHuman(results)
	return nil
}

// parseLabelFilter accepts either language's label name; empty means any.
func parseLabelFilter(s string) (model.Label, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "productive", "produtivo":
		return model.Productive, nil
	case "unproductive", "improdutivo":
		return model.Unproductive, nil
	default:
		return "", fmt.Errorf("invalid --label %q (use productive or unproductive)", s)
	}
}

func filterEntries(entries []storage.Entry, label model.Label, search string) []storage.Entry {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]storage.Entry, 0, len(entries))
	for _, e := range entries {
		if label != "" && e.Classification != label {
			continue
		}
		if needle != "" && !matchesSearch(e, needle) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchesSearch(e storage.Entry, needle string) bool {
	if strings.Contains(strings.ToLower(e.Content), needle) {
		return true
	}
	return e.FileName != nil && strings.Contains(strings.ToLower(*e.FileName), needle)
}

func (c *HistoryCommand) printHuman(results []storage.Entry) {
	if len(results) == 0 {
		fmt.Println("No classifications found")
		return
	}

	entryWord := "entries"
	if len(results) == 1 {
		entryWord = "entry"
	}
	fmt.Printf("Found %d %s\n\n", len(results), entryWord)

	for i, e := range results {
		fmt.Printf("%d. %s [%s %s]\n", i+1, e.ID, e.Classification, formatPercent(e.ConfidenceScore))

		meta := e.CreatedAt().Local().Format("2006-01-02 15:04")
		if e.FileName != nil {
			meta += " · " + *e.FileName
		}
		fmt.Printf("   %s\n", meta)

		if e.Content != "" {
			fmt.Printf("   %s\n", snippet(e.Content, 72))
		}

		if i < len(results)-1 {
			fmt.Println()
		}
	}
}
