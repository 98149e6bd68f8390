package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/mailtriage/internal/model"
	"github.com/runnerr0/mailtriage/internal/orchestrator"
	"github.com/runnerr0/mailtriage/internal/remote"
	"github.com/runnerr0/mailtriage/internal/storage"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// testStore returns an in-memory history store.
func testStore(t *testing.T) *storage.HistoryStore {
	t.Helper()
	store := storage.NewHistoryStore(context.Background(), storage.NewMemoryBackend(), storage.Options{}, zerolog.Nop())
	t.Cleanup(func() { store.Close() })
	return store
}

// seedStore creates one entry per content string, oldest first.
func seedStore(t *testing.T, store *storage.HistoryStore, label model.Label, contents ...string) []*storage.Entry {
	t.Helper()
	out := make([]*storage.Entry, 0, len(contents))
	for _, c := range contents {
		e, err := store.Create(context.Background(), storage.NewEntry{
			Result: model.Result{
				Classification:  label,
				ConfidenceScore: 0.75,
				Reasoning:       "seed",
				ProcessingTime:  10,
			},
			Content: c,
		})
		require.NoError(t, err)
		out = append(out, e)
	}
	return out
}

// fakeService stands in for the remote classifier.
type fakeService struct {
	resp      *remote.Classification
	err       error
	textCalls int
	fileCalls int
	lastFile  remote.File
}

func (f *fakeService) ClassifyText(_ context.Context, _ string) (*remote.Classification, error) {
	f.textCalls++
	return f.resp, f.err
}

func (f *fakeService) UploadFile(_ context.Context, file remote.File) (*remote.Classification, error) {
	f.fileCalls++
	f.lastFile = file
	return f.resp, f.err
}

// downService always fails, forcing the local fallback.
func downService() *fakeService {
	return &fakeService{err: errors.New("connection refused")}
}

func testOrchestrator(svc orchestrator.Classifier) *orchestrator.Orchestrator {
	return orchestrator.New(svc, zerolog.Nop())
}

// fakeTrainer records submitted records.
type fakeTrainer struct {
	records []remote.TrainingRecord
	status  *remote.TrainingStatus
	err     error
}

func (f *fakeTrainer) SubmitTrainingRecords(_ context.Context, records []remote.TrainingRecord) (*remote.TrainingStatus, error) {
	f.records = records
	if f.err != nil {
		return nil, f.err
	}
	if f.status == nil {
		return &remote.TrainingStatus{Status: "ok"}, nil
	}
	return f.status, nil
}

// corruptStore returns a store whose persisted history is not valid JSON.
func corruptStore(t *testing.T) *storage.HistoryStore {
	t.Helper()
	backend := storage.NewMemoryBackend()
	require.NoError(t, backend.Put(context.Background(), storage.DefaultKey, []byte(`{not json`)))
	store := storage.NewHistoryStore(context.Background(), backend, storage.Options{}, zerolog.Nop())
	t.Cleanup(func() { store.Close() })
	return store
}
