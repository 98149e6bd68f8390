package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/runnerr0/mailtriage/internal/logging"
	"github.com/runnerr0/mailtriage/internal/model"
)

const (
	// DefaultKey is the storage key holding the current history format.
	DefaultKey = "email-classifications-v2"

	createdDateLayout = "2006-01-02T15:04:05.000Z07:00"
)

// DefaultLegacyKeys lists keys written by earlier releases. Their data is
// incompatible and is discarded when a store opens.
var DefaultLegacyKeys = []string{"email-classifications"}

// Options configures a HistoryStore.
type Options struct {
	Key        string
	LegacyKeys []string
}

// HistoryStore keeps the classification history as one JSON array under a
// single backend key, most recent first.
type HistoryStore struct {
	backend Backend
	key     string
	log     zerolog.Logger
	now     func() time.Time

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// NewHistoryStore wraps backend and purges any legacy keys. Purge failures
// are logged and do not prevent the store from opening.
func NewHistoryStore(ctx context.Context, backend Backend, opts Options, log zerolog.Logger) *HistoryStore {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.LegacyKeys == nil {
		opts.LegacyKeys = DefaultLegacyKeys
	}

	s := &HistoryStore{
		backend: backend,
		key:     opts.Key,
		log:     logging.Component(log, "storage"),
		now:     time.Now,
	}

	for _, k := range opts.LegacyKeys {
		if k == "" || k == s.key {
			continue
		}
		if err := backend.Delete(ctx, k); err != nil {
			s.log.Error().Err(err).Str("key", k).Msg("purge legacy history failed")
			continue
		}
		s.log.Debug().Str("key", k).Msg("legacy history purged")
	}
	return s
}

// List returns the history in the requested order. On a read or decode
// failure it returns an empty slice together with a *StorageError, so
// callers can tell "no history" from "unreadable history".
func (s *HistoryStore) List(ctx context.Context, order Order) ([]Entry, error) {
	entries, err := s.load(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("read history failed")
		return []Entry{}, err
	}

	switch order {
	case OrderNewestFirst:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].CreatedAt().After(entries[j].CreatedAt())
		})
	case OrderOldestFirst:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].CreatedAt().Before(entries[j].CreatedAt())
		})
	}
	return entries, nil
}

// Get returns the entry with the given id, or ErrNotFound.
func (s *HistoryStore) Get(ctx context.Context, id string) (*Entry, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create builds an entry from data, prepends it to the history and persists
// the whole sequence. The built entry is returned even when persisting fails,
// alongside the *StorageError.
func (s *HistoryStore) Create(ctx context.Context, data NewEntry) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.buildEntry(data)

	entries, err := s.load(ctx)
	if err != nil {
		var se *StorageError
		if !errors.As(err, &se) || se.Op != "decode" {
			// The backend could not be read; writing now would clobber
			// history we never saw.
			s.log.Error().Err(err).Str("id", entry.ID).Msg("history entry not saved")
			return &entry, err
		}
		s.log.Error().Err(err).Msg("history corrupted, starting a new one")
		entries = nil
	}

	entries = append([]Entry{entry}, entries...)
	if err := s.save(ctx, entries); err != nil {
		s.log.Error().Err(err).Str("id", entry.ID).Msg("history entry not saved")
		return &entry, err
	}
	return &entry, nil
}

// Remove deletes the entry with the given id. A missing id is not an error.
func (s *HistoryStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("remove failed")
		return err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	if err := s.save(ctx, kept); err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("remove failed")
		return err
	}
	return nil
}

// Clear empties the history.
func (s *HistoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(ctx, []Entry{}); err != nil {
		s.log.Error().Err(err).Msg("clear failed")
		return err
	}
	return nil
}

// Stats aggregates the stored history. Like List, an unreadable history
// yields zero stats together with the *StorageError.
func (s *HistoryStore) Stats(ctx context.Context) (Stats, error) {
	entries, err := s.load(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("read history failed")
		return Stats{}, err
	}

	var st Stats
	var confSum float64
	var timeSum int64
	for _, e := range entries {
		st.Total++
		if e.Classification == model.Productive {
			st.Productive++
		} else {
			st.Unproductive++
		}
		confSum += e.ConfidenceScore
		timeSum += e.ProcessingTime

		at := e.CreatedAt()
		if st.Oldest.IsZero() || at.Before(st.Oldest) {
			st.Oldest = at
		}
		if at.After(st.Newest) {
			st.Newest = at
		}
	}
	if st.Total > 0 {
		st.ProductivePercent = float64(st.Productive) / float64(st.Total) * 100
		st.AvgConfidence = confSum / float64(st.Total)
		st.AvgProcessingTime = float64(timeSum) / float64(st.Total)
	}
	return st, nil
}

// Close closes the backend.
func (s *HistoryStore) Close() error {
	return s.backend.Close()
}

func (s *HistoryStore) buildEntry(data NewEntry) Entry {
	label := data.Classification
	if label == "" {
		label = model.Unproductive
	}
	kw := data.KeywordsExtracted
	if kw == nil {
		kw = []string{}
	}
	processing := data.ProcessingTime
	if processing < 0 {
		processing = 0
	}

	now := s.now().UTC()
	return Entry{
		ID:                newID(now),
		CreatedDate:       now.Format(createdDateLayout),
		Content:           data.Content,
		Classification:    label,
		ConfidenceScore:   model.ClampConfidence(data.ConfidenceScore),
		SuggestedResponse: data.SuggestedResponse,
		ProcessingTime:    processing,
		FileName:          data.FileName,
		KeywordsExtracted: kw,
		Reasoning:         data.Reasoning,
	}
}

// newID returns "ec-<unix ms>-<random>"; the random part keeps ids unique
// within one millisecond.
func newID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ec-%d-%s", now.UnixMilli(), suffix)
}

func (s *HistoryStore) load(ctx context.Context) ([]Entry, error) {
	raw, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, ErrKeyNotFound) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Key: s.key, Err: err}
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return []Entry{}, nil
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &StorageError{Op: "decode", Key: s.key, Err: err}
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (s *HistoryStore) save(ctx context.Context, entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return &StorageError{Op: "encode", Key: s.key, Err: err}
	}
	if err := s.backend.Put(ctx, s.key, raw); err != nil {
		return &StorageError{Op: "write", Key: s.key, Err: err}
	}
	return nil
}
