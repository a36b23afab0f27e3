// Package speech drives asynchronous batch transcription jobs: it submits
// a content URL, polls the job resource at a fixed interval under a
// monotonic deadline, and extracts the finished transcript from the job's
// result manifest.
package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/OptimalGrowthPartner/Chiro-backend/errors"
	"github.com/OptimalGrowthPartner/Chiro-backend/httpclient"
	"github.com/OptimalGrowthPartner/Chiro-backend/httpclient/rest"
	"github.com/OptimalGrowthPartner/Chiro-backend/logger"
	"github.com/OptimalGrowthPartner/Chiro-backend/observability"
)

const subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

// Client is the transcription job driver.
type Client struct {
	rest *rest.Client
	cfg  Config
	log  *logger.Logger

	// now is the clock; replaced in tests to pin the deadline boundary.
	now func() time.Time
}

// New creates a transcription client from the given config.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rc, err := rest.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.APIKeyAuthHeader(cfg.APIKey, subscriptionKeyHeader),
	})
	if err != nil {
		return nil, fmt.Errorf("speech: create rest client: %w", err)
	}

	return &Client{
		rest: rc,
		cfg:  cfg,
		log:  log.WithComponent("speech"),
		now:  time.Now,
	}, nil
}

// Submit sends a transcription request for the given content URL and
// returns a reference to the accepted job. Any response other than the
// backend's documented accepted statuses is a submission error.
func (c *Client) Submit(ctx context.Context, contentURL string) (*JobRef, error) {
	body := submitRequest{
		ContentURLs: []string{contentURL},
		Locale:      c.cfg.Locale,
		DisplayName: c.cfg.DisplayName,
	}

	resp, err := rest.Post[jobResource](ctx, c.rest, "/transcriptions", body)
	if err != nil {
		detail := "request failed"
		if resp != nil {
			detail = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, apperrors.Submission(detail, err)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return nil, apperrors.Submission(fmt.Sprintf("status %d", resp.StatusCode), nil).
			WithDetail("status", resp.StatusCode)
	}

	location := resp.Headers["Location"]
	if location == "" {
		location = resp.Data.Self
	}
	if location == "" {
		return nil, apperrors.Submission("accepted response carried no job location", nil)
	}

	ref := &JobRef{
		ID:          jobIDFromLocation(location),
		Location:    location,
		SubmittedAt: c.now(),
	}

	c.log.Info("transcription job submitted", logger.Fields(
		logger.FieldJobID, ref.ID,
		"locale", c.cfg.Locale,
	))
	return ref, nil
}

// AwaitCompletion polls the job until it reaches a terminal state or the
// configured deadline elapses. It returns the terminal job for Succeeded
// and Failed; the caller decides how a Failed job propagates. A deadline
// expiry returns a TimeoutError and a job in the local TimedOut state.
// Transiently unreadable poll responses are no-op ticks that still burn
// deadline budget. The loop never busy-waits and stops as soon as ctx is
// cancelled.
func (c *Client) AwaitCompletion(ctx context.Context, ref *JobRef) (*Job, error) {
	deadline := ref.SubmittedAt.Add(c.cfg.PollDeadline)
	job := &Job{Ref: *ref, Status: StatusRunning}

	for {
		if !c.now().Before(deadline) {
			job.Status = StatusTimedOut
			return job, apperrors.Timeout("transcription.poll").
				WithDetail(logger.FieldJobID, ref.ID)
		}

		res, err := rest.Get[jobResource](ctx, c.rest, ref.Location)
		switch {
		case ctx.Err() != nil:
			return job, ctx.Err()
		case err != nil:
			// Transient: malformed body or a non-200 that is not the job's
			// terminal failure. Keep polling; the deadline still applies.
			c.log.Warn("poll tick unreadable, continuing", logger.ErrorFields("poll", err))
		default:
			job.Status = res.Data.Status
			switch res.Data.Status {
			case StatusSucceeded:
				job.ManifestURL = res.Data.Links.Files
				c.log.Info("transcription job succeeded", logger.Fields(logger.FieldJobID, ref.ID))
				return job, nil
			case StatusFailed:
				job.ErrorDetail = res.Data.errorDetail()
				c.log.Warn("transcription job failed", logger.Fields(
					logger.FieldJobID, ref.ID,
					"detail", job.ErrorDetail,
				))
				return job, nil
			}
		}

		remaining := deadline.Sub(c.now())
		if remaining <= 0 {
			job.Status = StatusTimedOut
			return job, apperrors.Timeout("transcription.poll").
				WithDetail(logger.FieldJobID, ref.ID)
		}

		wait := c.cfg.PollInterval
		if wait > remaining {
			wait = remaining
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return job, ctx.Err()
		case <-timer.C:
		}
	}
}

// CheckHealth reports transcription backend reachability by listing one
// job. Any readable response means the backend is up.
func (c *Client) CheckHealth(ctx context.Context) observability.Health {
	if _, err := rest.Get[json.RawMessage](ctx, c.rest, "/transcriptions?top=1"); err != nil {
		return observability.Health{
			Name:    "speech",
			Status:  observability.HealthStatusDown,
			Message: err.Error(),
		}
	}
	return observability.Health{Name: "speech", Status: observability.HealthStatusUp}
}

// jobIDFromLocation extracts the trailing path segment of the job URL.
func jobIDFromLocation(location string) string {
	trimmed := strings.TrimRight(location, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
