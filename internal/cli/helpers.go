package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/runnerr0/mailtriage/internal/config"
	"github.com/runnerr0/mailtriage/internal/logging"
	"github.com/runnerr0/mailtriage/internal/orchestrator"
	"github.com/runnerr0/mailtriage/internal/remote"
	"github.com/runnerr0/mailtriage/internal/storage"
)

// env is what a command needs at run time, built from config by openEnv.
type env struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    *storage.HistoryStore
	backend  storage.Backend
	location string // human-readable description of where history lives
}

// loadConfig resolves the config path, loads .env from the working
// directory, then the YAML file with environment overrides.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	path := config.DefaultConfigPath
	var (
		cfg *config.Config
		err error
	)
	if globals != nil && globals.Config != "" {
		if path, err = config.ExpandPath(globals.Config); err != nil {
			return nil, err
		}
		cfg, err = config.LoadOrCreateAt(path)
	} else {
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if globals != nil && globals.Verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// openEnv loads config, builds the logger and opens the history store.
func openEnv(ctx context.Context, globals *GlobalFlags) (*env, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return nil, err
	}

	backend, location, err := openBackend(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}

	store := storage.NewHistoryStore(ctx, backend, storage.Options{
		Key:        cfg.Storage.Key,
		LegacyKeys: cfg.Storage.LegacyKeys,
	}, log)

	return &env{cfg: cfg, log: log, store: store, backend: backend, location: location}, nil
}

// openBackend opens the configured storage backend.
func openBackend(sc config.StorageConfig) (storage.Backend, string, error) {
	switch sc.Backend {
	case config.BackendRedis:
		return storage.OpenRedisBackend(sc.RedisAddr, sc.RedisDB), fmt.Sprintf("redis://%s/%d", sc.RedisAddr, sc.RedisDB), nil
	case config.BackendMemory:
		return storage.NewMemoryBackend(), "memory", nil
	default:
		path, err := sc.SQLitePath()
		if err != nil {
			return nil, "", err
		}
		b, err := storage.OpenSQLiteBackend(path)
		if err != nil {
			return nil, "", err
		}
		return b, path, nil
	}
}

// newOrchestrator wires the remote client and the fallback orchestrator.
func (e *env) newOrchestrator() (*orchestrator.Orchestrator, *remote.Client) {
	client := newRemoteClient(e.cfg.API, e.log)
	return orchestrator.New(client, e.log), client
}

func newRemoteClient(api config.APIConfig, log zerolog.Logger) *remote.Client {
	return remote.NewClient(remote.Config{
		BaseURL: api.BaseURL,
		Timeout: api.Timeout(),
		Breaker: remote.BreakerConfig{
			ConsecutiveFailures: api.Breaker.ConsecutiveFailures,
			OpenTimeout:         secondsDuration(api.Breaker.OpenTimeoutSeconds),
		},
	}, log)
}

func secondsDuration(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func (e *env) Close() error {
	return e.store.Close()
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fileContentType guesses the upload content type from the extension.
func fileContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return "text/plain"
	case ".eml":
		return "message/rfc822"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// snippet collapses whitespace and truncates s to n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// formatPercent renders a [0,1] score as a whole percentage.
func formatPercent(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
