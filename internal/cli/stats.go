package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/mailtriage/internal/remote"
	"github.com/runnerr0/mailtriage/internal/storage"
)

// statsJSON is the JSON output structure for the stats command.
type statsJSON struct {
	Version           string  `json:"version"`
	Storage           string  `json:"storage"`
	StorageSizeBytes  int64   `json:"storage_size_bytes,omitempty"`
	APIBase           string  `json:"api_base"`
	Total             int     `json:"total"`
	Productive        int     `json:"productive"`
	Unproductive      int     `json:"unproductive"`
	ProductivePercent float64 `json:"productive_percent"`
	AvgConfidence     float64 `json:"avg_confidence"`
	AvgProcessingTime float64 `json:"avg_processing_time_ms"`
	Oldest            string  `json:"oldest,omitempty"`
	Newest            string  `json:"newest,omitempty"`
}

// sizer is implemented by backends that can report their on-disk size.
type sizer interface {
	SizeBytes() int64
}

// Execute implements the go-flags Commander interface for StatsCommand.
func (c *StatsCommand) Execute(args []string) error {
	ctx := context.Background()
	e, err := openEnv(ctx, c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	var size int64
	if s, ok := e.backend.(sizer); ok {
		size = s.SizeBytes()
	}
	return c.executeWithStore(ctx, e.store, e.location, size, remote.ResolveBaseURL(e.cfg.API.BaseURL))
}

// executeWithStore prints statistics for a provided store (for testing).
func (c *StatsCommand) executeWithStore(ctx context.Context, store *storage.HistoryStore, location string, size int64, apiBase string) error {
	st, err := store.Stats(ctx)
	if err != nil {
		// Stats already degraded to an empty history.
		fmt.Fprintf(os.Stderr, "Warning: history could not be read: %v\n", err)
	}

	out := statsJSON{
		Version:           c.version,
		Storage:           location,
		StorageSizeBytes:  size,
		APIBase:           apiBase,
		Total:             st.Total,
		Productive:        st.Productive,
		Unproductive:      st.Unproductive,
		ProductivePercent: st.ProductivePercent,
		AvgConfidence:     st.AvgConfidence,
		AvgProcessingTime: st.AvgProcessingTime,
	}
	if st.Total > 0 {
		out.Oldest = st.Oldest.UTC().Format(time.RFC3339)
		out.Newest = st.Newest.UTC().Format(time.RFC3339)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(out)
	}
	c.printHuman(st, out)
	return nil
}

func (c *StatsCommand) printHuman(st storage.Stats, out statsJSON) {
	fmt.Println("Triage Status")
	fmt.Println("=============")
	fmt.Printf("Version:       %s\n", out.Version)
	if out.StorageSizeBytes > 0 {
		fmt.Printf("Storage:       %s (%s)\n", out.Storage, formatBytes(out.StorageSizeBytes))
	} else {
		fmt.Printf("Storage:       %s\n", out.Storage)
	}
	fmt.Printf("Service:       %s\n", out.APIBase)
	fmt.Println()

	fmt.Printf("Classified:    %s\n", formatNumber(int64(st.Total)))
	if st.Total == 0 {
		return
	}
	fmt.Printf("Productive:    %s (%.1f%%)\n", formatNumber(int64(st.Productive)), st.ProductivePercent)
	fmt.Printf("Unproductive:  %s (%.1f%%)\n", formatNumber(int64(st.Unproductive)), 100-st.ProductivePercent)
	fmt.Printf("Confidence:    %s avg\n", formatPercent(st.AvgConfidence))
	fmt.Printf("Time:          %.0f ms avg\n", st.AvgProcessingTime)
	fmt.Printf("Oldest:        %s\n", st.Oldest.Local().Format("2006-01-02"))
	fmt.Printf("Newest:        %s\n", st.Newest.Local().Format("2006-01-02"))
}
