// Package provider abstracts the fine-tuning and inference capabilities so
// the pipeline and its tests never depend on a live service.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Job statuses. A job runs to completion or failure independently of this
// process; Follow can re-attach at any time.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Event is one entry of a training job's chronological event log.
type Event struct {
	At      time.Time
	Status  string
	Message string
}

// Job is the terminal state of a training job. FittedModel is set only on
// success.
type Job struct {
	ID          string
	Status      string
	FittedModel string
}

// Terminal reports whether a status ends the event stream.
func Terminal(status string) bool {
	switch status {
	case StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// FineTuner submits and follows training jobs. Submit is never auto-retried;
// training is a cost-bearing operation and re-submission is the operator's
// call.
type FineTuner interface {
	// Submit uploads the training corpus and starts a job, returning its ID.
	Submit(ctx context.Context, trainingFile, baseModel string) (string, error)
	// Follow streams a job's events through fn until the job reaches a
	// terminal status, then returns the final job state. It works for jobs
	// submitted by a previous process.
	Follow(ctx context.Context, jobID string, fn func(Event)) (Job, error)
}

// CompletionRequest configures one inference call.
type CompletionRequest struct {
	Model         string
	Prompt        string
	MaxTokens     int
	Deterministic bool // temperature 0
	Stop          []string
}

// Completer generates text from a fitted model. The returned text is already
// truncated at the first stop sequence.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// StatusError is a non-2xx response from the provider, carrying enough
// detail to decide between retry and abort.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider status %d: %s", e.Code, e.Body)
}

// Transient reports whether an error is worth retrying: rate limits, service
// errors, and transport failures. A malformed request (other 4xx) fails the
// same way every time and is not.
func Transient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}
