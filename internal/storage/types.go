package storage

import (
	"fmt"
	"time"

	"github.com/runnerr0/mailtriage/internal/model"
)

// Entry is one persisted classification.
type Entry struct {
	ID                string      `json:"id"`
	CreatedDate       string      `json:"created_date"`
	Content           string      `json:"content"`
	Classification    model.Label `json:"classification"`
	ConfidenceScore   float64     `json:"confidence_score"`
	SuggestedResponse string      `json:"suggested_response"`
	ProcessingTime    int64       `json:"processing_time"`
	FileName          *string     `json:"file_name"`
	KeywordsExtracted []string    `json:"keywords_extracted"`
	Reasoning         string      `json:"reasoning"`
}

// CreatedAt parses CreatedDate. Unparsable values map to the Unix epoch so
// they sort before every valid timestamp.
func (e Entry) CreatedAt() time.Time {
	t, err := parseTimestamp(e.CreatedDate)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return t
}

// NewEntry is the data accepted by HistoryStore.Create. FileName is nil for
// text submitted directly.
type NewEntry struct {
	model.Result
	Content  string
	FileName *string
}

// Order selects the List ordering.
type Order string

const (
	OrderStored      Order = ""              // most recent insertion first
	OrderNewestFirst Order = "-created_date" // descending created_date
	OrderOldestFirst Order = "created_date"  // ascending created_date
)

// ParseOrder validates a user-supplied order string.
func ParseOrder(s string) (Order, error) {
	switch o := Order(s); o {
	case OrderStored, OrderNewestFirst, OrderOldestFirst:
		return o, nil
	default:
		return "", fmt.Errorf("invalid order %q (use -created_date or created_date)", s)
	}
}

// Stats aggregates the history.
type Stats struct {
	Total             int
	Productive        int
	Unproductive      int
	ProductivePercent float64
	AvgConfidence     float64
	AvgProcessingTime float64
	Oldest            time.Time
	Newest            time.Time
}

// parseTimestamp tries the layouts the store has written over time.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}
