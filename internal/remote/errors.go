package remote

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse is returned when the service answers with a success
// status but the body is not a classification.
var ErrInvalidResponse = errors.New("invalid response from classification service")

// RemoteError is a transport failure (Status 0) or a non-success HTTP status.
type RemoteError struct {
	Status int
	Body   string
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("classification service unreachable: %v", e.Err)
	}
	return fmt.Sprintf("classification service returned %d: %s", e.Status, e.Body)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// TrainingError carries the detail reported by the service when a training
// submission is rejected. It is meant to be shown to the user as is.
type TrainingError struct {
	Status int
	Detail string
	Err    error
}

func (e *TrainingError) Error() string {
	return "training submission failed: " + e.Detail
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}
