// Package remote is the HTTP client for the remote email classification
// service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/runnerr0/mailtriage/internal/logging"
)

// DefaultBaseURL is used when no base URL is configured: the service's
// development address.
const DefaultBaseURL = "http://127.0.0.1:8000/api"

const defaultTimeout = 30 * time.Second

// quoteEscaper escapes a multipart filename the way mime/multipart does.
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// BreakerConfig controls the circuit breaker around classification calls.
type BreakerConfig struct {
	ConsecutiveFailures uint32        // failures in a row before opening
	OpenTimeout         time.Duration // time spent open before a trial request
	Interval            time.Duration // closed-state counter reset interval
}

// Config holds client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Breaker BreakerConfig
}

// Client talks to the classification service. Every call is a single
// attempt; callers decide what to do on failure.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// ResolveBaseURL returns the explicit base URL without its trailing slash,
// or DefaultBaseURL when none is set.
func ResolveBaseURL(explicit string) string {
	explicit = strings.TrimSpace(explicit)
	if explicit == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(explicit, "/")
}

// NewClient creates a Client.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	log = logging.Component(log, "remote")

	failures := cfg.Breaker.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}
	openTimeout := cfg.Breaker.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "classifier-api",
		MaxRequests: 1,
		Interval:    cfg.Breaker.Interval,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
		IsSuccessful: isBreakerSuccess,
	}

	return &Client{
		baseURL: ResolveBaseURL(cfg.BaseURL),
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
		log:     log,
	}
}

// isBreakerSuccess keeps client errors (4xx) from tripping the breaker: the
// service is up, it just rejected the input.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Status >= 400 && re.Status < 500
	}
	return false
}

// BaseURL returns the resolved service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ClassifyText posts text to /process.
func (c *Client) ClassifyText(ctx context.Context, text string) (*Classification, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.classify(ctx, "/process", "application/json", body)
}

// UploadFile posts f as the multipart field "file" to /upload.
func (c *Client) UploadFile(ctx context.Context, f File) (*Classification, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, fmt.Errorf("write multipart part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	return c.classify(ctx, "/upload", mw.FormDataContentType(), buf.Bytes())
}

func (c *Client) classify(ctx context.Context, path, contentType string, body []byte) (*Classification, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		status, respBody, err := c.post(ctx, path, contentType, body)
		if err != nil {
			return nil, &RemoteError{Err: err}
		}
		if status < 200 || status >= 300 {
			return nil, &RemoteError{Status: status, Body: string(respBody)}
		}

		var result Classification
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		if result.Classification == nil {
			return nil, fmt.Errorf("%w: missing classification", ErrInvalidResponse)
		}
		return &result, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*Classification), nil
}

// SubmitTrainingRecords posts records to /retrain. A rejected submission
// yields a *TrainingError with the service's detail message, or the raw
// body when the error body is not structured.
func (c *Client) SubmitTrainingRecords(ctx context.Context, records []TrainingRecord) (*TrainingStatus, error) {
	if records == nil {
		records = []TrainingRecord{}
	}
	body, err := json.Marshal(trainingRequest{Records: records})
	if err != nil {
		return nil, fmt.Errorf("encode training request: %w", err)
	}

	status, respBody, err := c.post(ctx, "/retrain", "application/json", body)
	if err != nil {
		return nil, &TrainingError{Detail: err.Error(), Err: err}
	}
	if status < 200 || status >= 300 {
		return nil, &TrainingError{Status: status, Detail: trainingDetail(status, respBody)}
	}

	var ts TrainingStatus
	if err := json.Unmarshal(respBody, &ts); err != nil || ts.Status == "" {
		return &TrainingStatus{Status: "ok"}, nil
	}
	return &ts, nil
}

// trainingDetail extracts "detail" from an error body. String details are
// returned verbatim, structured ones re-encoded; otherwise the raw text.
func trainingDetail(status int, body []byte) string {
	var parsed struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Detail) > 0 && string(parsed.Detail) != "null" {
		var s string
		if err := json.Unmarshal(parsed.Detail, &s); err == nil {
			return s
		}
		return string(parsed.Detail)
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(status)
}

func (c *Client) post(ctx context.Context, path, contentType string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
