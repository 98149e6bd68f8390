package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/runnerr0/mailtriage/internal/model"
	"github.com/runnerr0/mailtriage/internal/orchestrator"
	"github.com/runnerr0/mailtriage/internal/remote"
	"github.com/runnerr0/mailtriage/internal/storage"
)

// Execute implements the go-flags Commander interface for ClassifyCommand.
func (c *ClassifyCommand) Execute(args []string) error {
	if c.Text == "" && c.Prompt == "" && c.File == "" && len(args) > 0 {
		c.Text = strings.Join(args, " ")
	}
	if err := c.validate(); err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx, c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	orch, _ := e.newOrchestrator()
	return c.executeWithStore(ctx, orch, e.store)
}

func (c *ClassifyCommand) validate() error {
	if c.File != "" && (c.Text != "" || c.Prompt != "") {
		return fmt.Errorf("--file cannot be combined with --text or --prompt")
	}
	if c.File == "" && c.Text == "" && c.Prompt == "" {
		return fmt.Errorf("one of --text, --file or --prompt is required for classify command")
	}
	return nil
}

// executeWithStore classifies, records the result and prints it (used by tests).
func (c *ClassifyCommand) executeWithStore(ctx context.Context, orch *orchestrator.Orchestrator, store *storage.HistoryStore) error {
	if err := c.validate(); err != nil {
		return err
	}

	var (
		res      *model.Result
		content  string
		fileName *string
	)

	start := time.Now()
	if c.File != "" {
		data, err := os.ReadFile(c.File)
		if err != nil {
			return fmt.Errorf("reading email file: %w", err)
		}
		name := filepath.Base(c.File)
		fr, err := orch.InvokeFile(ctx, remote.File{
			Name:        name,
			ContentType: fileContentType(c.File),
			Data:        data,
		})
		if err != nil {
			return err
		}
		res, content, fileName = fr.Result, fr.Content, &name
	} else {
		in := orchestrator.Input{Content: c.Text, Prompt: c.Prompt}
		r, err := orch.Invoke(ctx, in)
		if err != nil {
			return err
		}
		res, content = r, orchestrator.ResolveContent(in)
	}
	res.ProcessingTime = time.Since(start).Milliseconds()

	entry, err := store.Create(ctx, storage.NewEntry{Result: *res, Content: content, FileName: fileName})
	saved := err == nil
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: classification not saved to history: %v\n", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(entry)
	}

	if saved {
		fmt.Printf("Classified %s\n", entry.ID)
	} else {
		fmt.Println("Classified (not saved)")
	}
	printResult(entry)
	return nil
}

// printResult prints the classification part of an entry.
func printResult(e *storage.Entry) {
	fmt.Printf("  Classification: %s (%s)\n", e.Classification, formatPercent(e.ConfidenceScore))
	if len(e.KeywordsExtracted) > 0 {
		fmt.Printf("  Keywords:       %s\n", strings.Join(e.KeywordsExtracted, ", "))
	}
	fmt.Printf("  Reasoning:      %s\n", e.Reasoning)
	fmt.Printf("  Time:           %d ms\n", e.ProcessingTime)
	if e.SuggestedResponse != "" {
		fmt.Println()
		fmt.Println("--- Suggested response ---")
		fmt.Println(e.SuggestedResponse)
	}
}
