package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/voxprep/backend/internal/models"
	"github.com/voxprep/backend/internal/notify"
	"github.com/voxprep/backend/internal/providers/voice"
	"github.com/voxprep/backend/internal/services"
	"github.com/voxprep/backend/internal/transcript"
	"github.com/voxprep/backend/internal/utils"
)

type Status string

const (
	StatusInactive   Status = "INACTIVE"
	StatusConnecting Status = "CONNECTING"
	StatusActive     Status = "ACTIVE"
	StatusFinished   Status = "FINISHED"
	StatusError      Status = "ERROR"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second

	// SessionTypeGenerate is a question-authoring session: it produces no
	// transcript worth scoring, so no feedback is generated on finish.
	SessionTypeGenerate = "generate"

	homeDestination = "/"
)

// FeedbackCreator is the slice of the feedback pipeline the controller needs.
type FeedbackCreator interface {
	Create(ctx context.Context, p services.CreateFeedbackParams) services.CreateFeedbackResult
}

type Config struct {
	Provider  voice.Provider
	Feedback  FeedbackCreator
	Publisher notify.Publisher
	Logger    *logrus.Logger

	MaxRetries int
	RetryDelay time.Duration
	// Sleep is the inter-attempt delay; injectable so tests run without
	// wall-clock waits.
	Sleep func(time.Duration)
}

type StartParams struct {
	SessionID   string
	UserID      string
	UserName    string
	InterviewID string
	FeedbackID  string
	Type        string // "interview" | "generate"
	Questions   []string
}

// Outcome is where the caller should land once the session is over.
type Outcome struct {
	Destination string `json:"destination"`
	FeedbackID  string `json:"feedbackId,omitempty"`
}

// Controller owns one call session end-to-end: launch with bounded retry,
// lifecycle/transcript events, and the feedback hand-off on termination.
// FINISHED is absorbing; events arriving after it are no-ops.
type Controller struct {
	provider   voice.Provider
	feedback   FeedbackCreator
	publisher  notify.Publisher
	log        *logrus.Entry
	maxRetries int
	retryDelay time.Duration
	sleep      func(time.Duration)

	params StartParams

	mu         sync.Mutex
	status     Status
	lastError  string
	retryCount int
	speaking   bool
	sub        *voice.Subscription
	outcome    Outcome

	transcript *transcript.Transcript
	done       chan struct{}
}

func New(cfg Config, params StartParams) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = notify.NopPublisher{}
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}

	return &Controller{
		provider:   cfg.Provider,
		feedback:   cfg.Feedback,
		publisher:  cfg.Publisher,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		sleep:      cfg.Sleep,
		params:     params,
		status:     StatusInactive,
		transcript: transcript.New(),
		done:       make(chan struct{}),
		log: cfg.Logger.WithFields(logrus.Fields{
			"session_id": params.SessionID,
			"user_id":    params.UserID,
		}),
	}
}

// Start runs the pre-flight check and the retrying launcher. It returns once
// the launch has succeeded or every attempt is exhausted; call establishment
// itself is signalled later by the provider's call-start event. Start is not
// re-entrant; the Manager prevents a second concurrent call.
func (c *Controller) Start(ctx context.Context) error {
	const op = "Controller.Start"

	if !c.provider.Configured() {
		c.mu.Lock()
		c.status = StatusError
		c.lastError = "voice feature not configured"
		c.mu.Unlock()
		c.publishStatus(ctx)
		return utils.E(utils.CodeUnavailable, op, "voice feature not configured", nil)
	}

	c.mu.Lock()
	c.status = StatusConnecting
	c.lastError = ""
	c.sub = c.provider.Subscribe(c.params.SessionID)
	sub := c.sub
	c.mu.Unlock()
	c.publishStatus(ctx)

	go c.eventLoop(sub)

	return c.launch(ctx)
}

// launch attempts the call up to maxRetries+1 times with a fixed delay. The
// loop stops only on success or exhaustion; there is no cancellation.
func (c *Controller) launch(ctx context.Context) error {
	const op = "Controller.launch"
	attempts := c.maxRetries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		c.log.WithField("attempt", fmt.Sprintf("%d/%d", attempt, attempts)).Info("starting call")

		err := c.provider.Start(ctx, voice.CallParams{
			SessionID: c.params.SessionID,
			UserID:    c.params.UserID,
			UserName:  c.params.UserName,
			Type:      c.params.Type,
			Questions: c.params.Questions,
		})
		if err == nil {
			c.mu.Lock()
			c.retryCount = 0
			c.mu.Unlock()
			return nil
		}

		lastErr = err
		c.log.WithError(err).WithField("attempt", attempt).Error("call attempt failed")

		c.mu.Lock()
		c.retryCount = attempt
		c.mu.Unlock()

		if attempt < attempts {
			c.sleep(c.retryDelay)
		}
	}

	// Exhaustion reverts to INACTIVE, not ERROR: the session can be retried,
	// unlike a misconfigured provider.
	msg := fmt.Sprintf("failed after %d attempts: %v", attempts, lastErr)
	c.mu.Lock()
	if c.status != StatusFinished {
		c.status = StatusInactive
	}
	c.lastError = msg
	c.mu.Unlock()
	c.publishStatus(ctx)

	return utils.E(utils.CodeUnavailable, op, msg, lastErr)
}

// Stop is the manual termination path: terminal state first, provider
// teardown best-effort afterwards.
func (c *Controller) Stop(ctx context.Context) {
	c.log.Info("ending call manually")
	c.finish(ctx, true)
}

func (c *Controller) eventLoop(sub *voice.Subscription) {
	for ev := range sub.C {
		c.handleEvent(ev)
	}
}

func (c *Controller) handleEvent(ev voice.Event) {
	ctx := context.Background()

	switch ev.Type {
	case voice.EventCallStart:
		c.mu.Lock()
		if c.status == StatusFinished {
			c.mu.Unlock()
			return
		}
		c.status = StatusActive
		c.lastError = ""
		c.retryCount = 0
		c.mu.Unlock()
		c.log.Info("call started")
		c.publishStatus(ctx)

	case voice.EventCallEnd:
		c.log.Info("call ended normally")
		c.finish(ctx, false)

	case voice.EventSpeechStart:
		c.mu.Lock()
		c.speaking = true
		c.mu.Unlock()

	case voice.EventSpeechEnd:
		c.mu.Lock()
		c.speaking = false
		c.mu.Unlock()

	case voice.EventTranscript:
		// partial/interim transcripts are discarded
		if !ev.Final {
			return
		}
		c.mu.Lock()
		finished := c.status == StatusFinished
		c.mu.Unlock()
		if finished {
			return
		}
		c.transcript.Append(ev.Role, ev.Text)
		c.publisher.Publish(ctx, c.params.SessionID, map[string]any{
			"type":    "transcript",
			"role":    ev.Role,
			"content": ev.Text,
		})

	case voice.EventError:
		c.filterProviderError(ev.Message)
	}
}

// finish transitions to FINISHED exactly once and runs the terminal hand-off.
func (c *Controller) finish(ctx context.Context, teardown bool) {
	c.mu.Lock()
	if c.status == StatusFinished {
		c.mu.Unlock()
		return
	}
	c.status = StatusFinished
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()
	c.publishStatus(ctx)

	if teardown {
		if err := c.provider.Stop(ctx, c.params.SessionID); err != nil {
			c.log.WithError(err).Error("error stopping call")
		}
	}

	if sub != nil {
		sub.Close()
	}

	c.complete(ctx)
}

// complete resolves the session outcome. The hand-off is terminal: feedback
// generation is attempted at most once and never retried here.
func (c *Controller) complete(ctx context.Context) {
	outcome := Outcome{Destination: homeDestination}

	if c.params.Type != SessionTypeGenerate {
		if entries := c.transcript.Entries(); len(entries) > 0 {
			res := c.feedback.Create(ctx, services.CreateFeedbackParams{
				InterviewID: c.params.InterviewID,
				UserID:      c.params.UserID,
				Transcript:  entries,
				FeedbackID:  c.params.FeedbackID,
			})
			if res.Success {
				outcome = Outcome{
					Destination: "/interview/" + c.params.InterviewID + "/feedback",
					FeedbackID:  res.FeedbackID,
				}
			} else {
				c.log.Warn("feedback was not saved, redirecting home")
			}
		} else {
			c.log.Info("no transcript recorded, redirecting home")
		}
	}

	c.mu.Lock()
	c.outcome = outcome
	c.mu.Unlock()

	c.publisher.Publish(ctx, c.params.SessionID, map[string]any{
		"type":        "outcome",
		"destination": outcome.Destination,
		"feedback_id": outcome.FeedbackID,
	})
	close(c.done)
}

func (c *Controller) publishStatus(ctx context.Context) {
	c.mu.Lock()
	payload := map[string]any{
		"type":   "status",
		"status": c.status,
	}
	if c.lastError != "" {
		payload["error"] = c.lastError
	}
	c.mu.Unlock()
	c.publisher.Publish(ctx, c.params.SessionID, payload)
}

func (c *Controller) SessionID() string { return c.params.SessionID }
func (c *Controller) OwnerID() string   { return c.params.UserID }

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

func (c *Controller) IsSpeaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speaking
}

func (c *Controller) RetryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retryCount
}

func (c *Controller) TranscriptLen() int {
	return c.transcript.Len()
}

func (c *Controller) Transcript() []models.TranscriptEntry {
	return c.transcript.Entries()
}

func (c *Controller) Finished() bool {
	return c.Status() == StatusFinished
}

// abandoned reports whether the session never got off the ground: either the
// pre-flight check failed or every launch attempt was exhausted. A fresh
// INACTIVE controller whose launch has not run yet is not abandoned.
func (c *Controller) abandoned() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == StatusError || (c.status == StatusInactive && c.lastError != "")
}

// Done is closed after the terminal hand-off has resolved.
func (c *Controller) Done() <-chan struct{} { return c.done }

func (c *Controller) Outcome() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}
