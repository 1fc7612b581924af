package provider

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Stub is a deterministic in-memory provider for tests. Job IDs are
// sequential, events are scripted, and completions echo a fixed function of
// the prompt.
type Stub struct {
	mu   sync.Mutex
	seq  int
	jobs map[string]*stubJob

	// CompleteFn overrides the default echo completion when set.
	CompleteFn func(req CompletionRequest) (string, error)
}

type stubJob struct {
	events []Event
	final  Job
}

func NewStub() *Stub {
	return &Stub{jobs: make(map[string]*stubJob)}
}

func (s *Stub) Submit(_ context.Context, trainingFile, baseModel string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := fmt.Sprintf("ftjob-stub-%04d", s.seq)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.jobs[id] = &stubJob{
		events: []Event{
			{At: base, Status: StatusRunning, Message: "created job " + id + " from " + trainingFile},
			{At: base.Add(time.Minute), Status: StatusRunning, Message: "training " + baseModel},
			{At: base.Add(2 * time.Minute), Status: StatusSucceeded, Message: "job succeeded"},
		},
		final: Job{ID: id, Status: StatusSucceeded, FittedModel: "ft:stub:" + baseModel + ":" + id},
	}
	return id, nil
}

func (s *Stub) Follow(_ context.Context, jobID string, fn func(Event)) (Job, error) {
	s.mu.Lock()
	job, ok := s.jobs[jobID]
	s.mu.Unlock()
	if !ok {
		return Job{}, fmt.Errorf("unknown job %s", jobID)
	}
	for _, e := range job.events {
		if fn != nil {
			fn(e)
		}
	}
	return job.final, nil
}

func (s *Stub) Complete(_ context.Context, req CompletionRequest) (string, error) {
	if s.CompleteFn != nil {
		return s.CompleteFn(req)
	}
	return " title: stub", nil
}

var (
	_ FineTuner = (*Stub)(nil)
	_ Completer = (*Stub)(nil)
)
