// Package openai implements the provider capabilities against the OpenAI
// files, fine-tuning and completions endpoints.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirjasto-labs/metacorpus/internal/provider"
)

// Submit uploads the training JSONL and starts a fine-tuning job. No retry
// here: a duplicate submission bills twice.
func (c *Client) Submit(ctx context.Context, trainingFile, baseModel string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("finetune.submit.start", "req_id", rid, "file", trainingFile, "base_model", baseModel)

	fileID, err := c.uploadFile(ctx, trainingFile)
	if err != nil {
		c.logger.Error("finetune.upload.failed", "req_id", rid, "error", err)
		return "", err
	}
	c.logger.Info("finetune.upload.ok", "req_id", rid, "file_id", fileID)

	body := map[string]any{
		"training_file": fileID,
		"model":         baseModel,
	}
	raw, err := c.post(ctx, c.cfg.BaseURL+"/fine_tuning/jobs", body)
	if err != nil {
		c.logger.Error("finetune.submit.failed", "req_id", rid, "error", err)
		return "", err
	}

	var job struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &job); err != nil {
		return "", fmt.Errorf("decode job response: %w", err)
	}
	if job.ID == "" {
		return "", fmt.Errorf("no job id in response: %s", string(raw))
	}
	c.logger.Info("finetune.submit.ok",
		"req_id", rid,
		"job_id", job.ID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return job.ID, nil
}

// Follow polls a job until it reaches a terminal status, emitting each new
// event through fn in chronological order. It re-attaches cleanly to jobs
// submitted by an earlier process. Events are deduplicated by id across
// polls, so logs longer than one API page are delivered in full.
func (c *Client) Follow(ctx context.Context, jobID string, fn func(provider.Event)) (provider.Job, error) {
	seen := make(map[string]struct{})
	for {
		events, err := c.listEvents(ctx, jobID)
		if err != nil {
			return provider.Job{}, err
		}
		for _, e := range events {
			key := e.id
			if key == "" {
				key = fmt.Sprintf("%d|%s", e.ev.At.Unix(), e.ev.Message)
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			if fn != nil {
				fn(e.ev)
			}
		}

		job, err := c.getJob(ctx, jobID)
		if err != nil {
			return provider.Job{}, err
		}
		if provider.Terminal(job.Status) {
			c.logger.Info("finetune.follow.done", "job_id", jobID, "status", job.Status, "fitted_model", job.FittedModel)
			return job, nil
		}

		select {
		case <-ctx.Done():
			return provider.Job{}, ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

// Complete generates text for one prompt. Temperature is pinned to zero when
// deterministic decoding is requested; the stop sequences truncate the
// returned text server-side.
func (c *Client) Complete(ctx context.Context, req provider.CompletionRequest) (string, error) {
	body := map[string]any{
		"model":      req.Model,
		"prompt":     req.Prompt,
		"max_tokens": req.MaxTokens,
	}
	if req.Deterministic {
		body["temperature"] = 0
	}
	if len(req.Stop) > 0 {
		body["stop"] = req.Stop
	}

	raw, err := c.post(ctx, c.cfg.BaseURL+"/completions", body)
	if err != nil {
		return "", err
	}

	var cc struct {
		Choices []struct {
			Text string `json:"text"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}
	return cc.Choices[0].Text, nil
}

func (c *Client) uploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open training file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("purpose", "fine-tune"); err != nil {
		return "", err
	}
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("copy training file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/files", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	raw, err := c.do(req)
	if err != nil {
		return "", err
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode file response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("no file id in response: %s", string(raw))
	}
	return out.ID, nil
}

func (c *Client) getJob(ctx context.Context, jobID string) (provider.Job, error) {
	raw, err := c.get(ctx, c.cfg.BaseURL+"/fine_tuning/jobs/"+jobID)
	if err != nil {
		return provider.Job{}, err
	}
	var out struct {
		ID             string `json:"id"`
		Status         string `json:"status"`
		FineTunedModel string `json:"fine_tuned_model"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return provider.Job{}, fmt.Errorf("decode job: %w", err)
	}
	return provider.Job{ID: out.ID, Status: out.Status, FittedModel: out.FineTunedModel}, nil
}

type jobEvent struct {
	id string
	ev provider.Event
}

// listEvents returns the job's full event log oldest-first. The API lists
// newest first, 100 per page, so every page is walked via the after cursor
// before the whole log is reversed.
func (c *Client) listEvents(ctx context.Context, jobID string) ([]jobEvent, error) {
	base := c.cfg.BaseURL + "/fine_tuning/jobs/" + jobID + "/events?limit=100"
	url := base

	var all []jobEvent
	for {
		raw, err := c.get(ctx, url)
		if err != nil {
			return nil, err
		}
		var out struct {
			Data []struct {
				ID        string `json:"id"`
				CreatedAt int64  `json:"created_at"`
				Level     string `json:"level"`
				Message   string `json:"message"`
			} `json:"data"`
			HasMore bool `json:"has_more"`
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode events: %w", err)
		}
		for _, e := range out.Data {
			all = append(all, jobEvent{
				id: e.ID,
				ev: provider.Event{
					At:      time.Unix(e.CreatedAt, 0).UTC(),
					Status:  e.Level,
					Message: e.Message,
				},
			})
		}
		if !out.HasMore || len(out.Data) == 0 {
			break
		}
		url = base + "&after=" + all[len(all)-1].id
	}

	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Warn("openai response body close error", "error", err)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &provider.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(buf.String())}
	}
	return buf.Bytes(), nil
}
