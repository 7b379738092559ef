package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// StatusFallbackMessage answers a responder that replied with a non-success
	// status or with a schedule that failed validation.
	StatusFallbackMessage = "I'm running in demo mode right now, so I can't change your schedule for you. " +
		"You can still add, move and delete events directly on the calendar."

	// TransportFallbackMessage answers a responder that could not be reached.
	TransportFallbackMessage = "Sorry, I couldn't reach the scheduling assistant. " +
		"Please check your connection and try again."

	DefaultFallbackDelay = time.Second
)

type State int

const (
	StateIdle State = iota
	StateSending
	StateApplied
	StateFallbackApplied
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateApplied:
		return "applied"
	case StateFallbackApplied:
		return "fallback_applied"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const KeyEnter = "Enter"

// Key is a keypress in the chat input. Enter commits, Shift+Enter inserts a
// newline.
type Key struct {
	Name  string `json:"key"`
	Shift bool   `json:"shift,omitempty"`
}

// Exchange is the settled result of one submission: the assistant message
// and the outcome of that same submission.
type Exchange struct {
	Message Message `json:"message"`
	Outcome State   `json:"outcome"`
}

// Channel owns the message log and the single-flight submission state.
type Channel interface {
	Submit(ctx context.Context, text string) (*Exchange, error)
	HandleKey(ctx context.Context, key Key) (*Exchange, error)
	SetInput(text string)
	Input() string
	Messages() []Message
	InFlight() bool
	State() State
	LastOutcome() State
	SetPanelVisible(visible bool)
	TogglePanel() bool
	PanelVisible() bool
}

type ChannelOption func(*channel)

func WithFallbackDelay(delay time.Duration) ChannelOption {
	return func(c *channel) {
		c.fallbackDelay = delay
	}
}

func WithClock(now func() time.Time) ChannelOption {
	return func(c *channel) {
		c.now = now
	}
}

func WithSleep(sleep func(time.Duration)) ChannelOption {
	return func(c *channel) {
		c.sleep = sleep
	}
}

func WithPanelVisible(visible bool) ChannelOption {
	return func(c *channel) {
		c.panelVisible = visible
	}
}

type channel struct {
	tracer    trace.Tracer
	metrics   *ChatMetrics
	store     Store
	responder Responder

	fallbackDelay time.Duration
	now           func() time.Time
	sleep         func(time.Duration)

	mu           sync.Mutex
	messages     []Message
	input        string
	state        State
	lastOutcome  State
	panelVisible bool
}

func NewChannel(store Store, responder Responder, opts ...ChannelOption) Channel {
	c := &channel{
		tracer:        otel.GetTracerProvider().Tracer("schedule-planner/core"),
		metrics:       NewChatMetrics(),
		store:         store,
		responder:     responder,
		fallbackDelay: DefaultFallbackDelay,
		now:           time.Now,
		sleep:         time.Sleep,
		state:         StateIdle,
		lastOutcome:   StateIdle,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Submit sends text to the responder and returns the assistant message it
// appended together with the outcome. Only ErrEmptyMessage and ErrSubmissionInFlight are returned as
// errors; responder failures end in a fallback message instead.
//
// Once sent, the call is never cancelled: the caller's cancellation does not
// reach the responder and the reply is always applied.
func (c *channel) Submit(ctx context.Context, text string) (*Exchange, error) {
	snapshot, err := c.begin(text)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	ctx, span := c.tracer.Start(ctx, "channel.Submit", trace.WithAttributes(attribute.Int("schedule.events", len(snapshot))))
	defer span.End()

	logger := log.Ctx(ctx).With().Str("component", "chat").Logger()

	reply, err := c.responder.Chat(context.WithoutCancel(ctx), ChatRequest{Message: text, CurrentSchedule: snapshot})

	var (
		content = TransportFallbackMessage
		outcome = StateFallbackApplied
		reason  string
		updates []Event
	)

	var statusErr *ResponderStatusError

	switch {
	case errors.As(err, &statusErr):
		reason = "status"
		content = StatusFallbackMessage

		logger.Warn().Int("status", statusErr.StatusCode).Msg("responder failed, answering with fallback")
		c.sleep(c.fallbackDelay)
	case err != nil:
		reason = "transport"

		logger.Warn().Err(err).Msg("responder unreachable, answering with fallback")
	default:
		verr := c.validateReply(reply)
		if verr != nil {
			reason = "invalid_schedule"
			content = StatusFallbackMessage

			logger.Warn().Err(verr).Msg("responder schedule rejected")

			break
		}

		reason = "reply"
		content = reply.Response
		outcome = StateApplied
		updates = reply.ScheduleUpdates
	}

	span.SetAttributes(attribute.String("chat.outcome", outcome.String()), attribute.String("chat.reason", reason))

	exchange := c.finish(ctx, content, outcome, updates)
	c.metrics.Observe(ctx, outcome, reason, start)

	logger.Info().Str("outcome", outcome.String()).Str("reason", reason).Msg("submission settled")

	return &exchange, nil
}

func (c *channel) validateReply(reply *ChatReply) error {
	if reply == nil {
		return ErrMalformedReply
	}

	if reply.ScheduleUpdates == nil {
		return nil
	}

	return ValidateSchedule(reply.ScheduleUpdates)
}

// begin moves Idle to Sending, appends the user message and clears the input.
func (c *channel) begin(text string) ([]Event, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateSending {
		return nil, ErrSubmissionInFlight
	}

	c.messages = append(c.messages, Message{
		Id:        newMessageId(),
		Role:      RoleUser,
		Content:   text,
		Timestamp: c.now(),
	})
	c.input = ""
	c.state = StateSending

	return c.store.Snapshot(), nil
}

// finish appends the assistant message, applies updates when non-nil and
// returns to Idle.
func (c *channel) finish(ctx context.Context, content string, outcome State, updates []Event) Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()

	message := Message{
		Id:        newMessageId(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: c.now(),
	}
	c.messages = append(c.messages, message)

	if updates != nil {
		c.store.ReplaceAll(ctx, updates)
	}

	c.lastOutcome = outcome
	c.state = StateIdle

	return Exchange{Message: message, Outcome: outcome}
}

func (c *channel) HandleKey(ctx context.Context, key Key) (*Exchange, error) {
	if key.Name != KeyEnter {
		return nil, nil //nolint:nilnil
	}

	if key.Shift {
		c.mu.Lock()
		c.input += "\n"
		c.mu.Unlock()

		return nil, nil //nolint:nilnil
	}

	return c.Submit(ctx, c.Input())
}

func (c *channel) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.input = text
}

func (c *channel) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.input
}

func (c *channel) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)

	return out
}

func (c *channel) InFlight() bool {
	return c.State() == StateSending
}

func (c *channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *channel) LastOutcome() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastOutcome
}

func (c *channel) SetPanelVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.panelVisible = visible
}

func (c *channel) TogglePanel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.panelVisible = !c.panelVisible

	return c.panelVisible
}

func (c *channel) PanelVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.panelVisible
}
