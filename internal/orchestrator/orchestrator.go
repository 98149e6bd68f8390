// Package orchestrator produces a classification for an email: it asks the
// remote service first and substitutes the local heuristic on any failure.
package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/runnerr0/mailtriage/internal/heuristic"
	"github.com/runnerr0/mailtriage/internal/keywords"
	"github.com/runnerr0/mailtriage/internal/logging"
	"github.com/runnerr0/mailtriage/internal/model"
	"github.com/runnerr0/mailtriage/internal/remote"
)

// RemoteReasoning marks results produced by the remote service.
const RemoteReasoning = "Classificação fornecida pelo serviço remoto."

// PromptMarker precedes the email content in legacy instruction prompts.
const PromptMarker = "Email para análise:"

var (
	// ErrEmptyInput is returned when no content can be resolved from the input.
	ErrEmptyInput = errors.New("nenhum conteúdo fornecido para classificação")

	// ErrFileNeedsRemote is returned when a non-text file could not be
	// classified remotely; there is no local text extraction for it.
	ErrFileNeedsRemote = errors.New("file format requires the classification service")
)

// Classifier is the remote classification service.
type Classifier interface {
	ClassifyText(ctx context.Context, text string) (*remote.Classification, error)
	UploadFile(ctx context.Context, f remote.File) (*remote.Classification, error)
}

// Input is either raw content or a legacy prompt embedding the content.
type Input struct {
	Content string
	Prompt  string
}

// Orchestrator runs the remote-then-local classification sequence.
type Orchestrator struct {
	remote Classifier
	log    zerolog.Logger
}

// New creates an Orchestrator.
func New(remote Classifier, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		remote: remote,
		log:    logging.Component(log, "orchestrator"),
	}
}

// Invoke classifies the resolved content. The only error it returns is
// ErrEmptyInput; remote failures fall back to the local heuristic.
func (o *Orchestrator) Invoke(ctx context.Context, in Input) (*model.Result, error) {
	content := ResolveContent(in)
	if content == "" {
		return nil, ErrEmptyInput
	}

	resp, err := o.remote.ClassifyText(ctx, content)
	if err == nil && resp != nil && resp.Classification != nil {
		return normalize(resp, content), nil
	}
	if err == nil {
		err = remote.ErrInvalidResponse
	}

	o.log.Warn().Err(err).Msg("remote classification failed, using local heuristic")
	res := heuristic.Classify(content)
	return &res, nil
}

// FileResult is the outcome of InvokeFile. Content is the decoded text, or
// empty when the file was only processed remotely.
type FileResult struct {
	Result  *model.Result
	Content string
}

// InvokeFile classifies an uploaded file. Anything readable as text (.txt,
// .eml, no extension...) is decoded locally and follows Invoke, so it keeps
// the heuristic fallback. PDFs and other binary data are uploaded; if that
// fails the call returns ErrFileNeedsRemote.
func (o *Orchestrator) InvokeFile(ctx context.Context, f remote.File) (*FileResult, error) {
	if isTextFile(f) {
		content := string(f.Data)
		res, err := o.Invoke(ctx, Input{Content: content})
		if err != nil {
			return nil, err
		}
		return &FileResult{Result: res, Content: strings.TrimSpace(content)}, nil
	}

	if len(f.Data) == 0 {
		return nil, ErrEmptyInput
	}

	resp, err := o.remote.UploadFile(ctx, f)
	if err == nil && resp != nil && resp.Classification != nil {
		return &FileResult{Result: normalize(resp, "")}, nil
	}
	if err == nil {
		err = remote.ErrInvalidResponse
	}
	o.log.Warn().Err(err).Str("file", f.Name).Msg("remote upload failed")
	return nil, fmt.Errorf("%w: %s: %v", ErrFileNeedsRemote, f.Name, err)
}

// ResolveContent returns the trimmed content, falling back to the text that
// follows PromptMarker in the prompt.
func ResolveContent(in Input) string {
	if content := strings.TrimSpace(in.Content); content != "" {
		return content
	}
	return extractFromPrompt(in.Prompt)
}

// extractFromPrompt returns the text after PromptMarker with one pair of
// surrounding quotes removed. A prompt without the marker is used whole.
func extractFromPrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	idx := strings.Index(prompt, PromptMarker)
	if idx == -1 {
		return prompt
	}

	content := strings.TrimSpace(prompt[idx+len(PromptMarker):])
	if strings.HasPrefix(content, `"`) {
		content = content[1:]
		if closing := strings.LastIndex(content, `"`); closing >= 0 {
			content = content[:closing]
		}
	}
	return strings.TrimSpace(content)
}

// normalize maps a remote response onto model.Result. Keywords are always
// computed locally; remote keyword data is ignored.
func normalize(resp *remote.Classification, content string) *model.Result {
	return &model.Result{
		Classification:    model.ParseLabel(resp.Classification.Label),
		ConfidenceScore:   model.ClampConfidence(resp.Classification.ConfidenceValue()),
		SuggestedResponse: resp.ReplyBody(),
		KeywordsExtracted: keywords.Extract(content),
		Reasoning:         RemoteReasoning,
	}
}

// isTextFile reports whether f can be classified from its bytes alone.
func isTextFile(f remote.File) bool {
	if isPDF(f) {
		return false
	}
	return utf8.Valid(f.Data)
}

func isPDF(f remote.File) bool {
	return strings.EqualFold(filepath.Ext(f.Name), ".pdf") ||
		strings.HasPrefix(strings.ToLower(f.ContentType), "application/pdf") ||
		bytes.HasPrefix(f.Data, []byte("%PDF-"))
}
