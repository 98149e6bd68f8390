package remote

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Classification is the response body of /process and /upload.
type Classification struct {
	Classification *LabelScore    `json:"classification"`
	Reply          *Reply         `json:"reply"`
	Meta           map[string]any `json:"meta"`
}

// LabelScore holds the label and the raw confidence value, which some
// deployments send as a string.
type LabelScore struct {
	Label      string          `json:"label"`
	Confidence json.RawMessage `json:"confidence"`
}

// Reply is the suggested answer to the email.
type Reply struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ConfidenceValue coerces the confidence to a float, 0 when absent or invalid.
func (ls *LabelScore) ConfidenceValue() float64 {
	if ls == nil || len(ls.Confidence) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(ls.Confidence, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(ls.Confidence, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}

// ReplyBody returns the suggested reply body, empty when absent.
func (c *Classification) ReplyBody() string {
	if c == nil || c.Reply == nil {
		return ""
	}
	return c.Reply.Body
}

// TrainingRecord is one labelled example submitted to /retrain.
type TrainingRecord struct {
	Content        string  `json:"conteudo"`
	Classification string  `json:"classificacao"`
	Confidence     float64 `json:"confianca"`
}

type trainingRequest struct {
	Records []TrainingRecord `json:"registros"`
}

// TrainingStatus is the /retrain success body.
type TrainingStatus struct {
	Status string `json:"status"`
}

// File is an uploaded email file.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}
