package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const ChatPath = "/api/ai/chat"

// Responder interprets chat text and may propose a replacement schedule.
type Responder interface {
	Chat(ctx context.Context, request ChatRequest) (*ChatReply, error)
}

type httpResponder struct {
	tracer   trace.Tracer
	client   *http.Client
	endpoint string
}

func NewHttpResponder(baseURL string, client *http.Client) Responder {
	if client == nil {
		client = http.DefaultClient
	}

	return &httpResponder{
		tracer:   otel.GetTracerProvider().Tracer("schedule-planner/core"),
		client:   client,
		endpoint: strings.TrimSuffix(baseURL, "/") + ChatPath,
	}
}

// Chat performs exactly one POST. Non-2xx replies come back as
// *ResponderStatusError; transport failures wrap ErrResponderUnreachable and
// undecodable 2xx bodies wrap ErrMalformedReply.
func (r *httpResponder) Chat(ctx context.Context, request ChatRequest) (*ChatReply, error) {
	ctx, span := r.tracer.Start(ctx, "responder.Chat", trace.WithAttributes(
		attribute.Int("schedule.events", len(request.CurrentSchedule)),
	))
	defer span.End()

	if request.CurrentSchedule == nil {
		request.CurrentSchedule = []Event{}
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %w", ErrResponderUnreachable, err)
	}

	defer func() { _ = res.Body.Close() }()

	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		log.Ctx(ctx).Warn().Str("component", "responder").Int("status", res.StatusCode).Msg("responder returned a non-success status")

		return nil, &ResponderStatusError{StatusCode: res.StatusCode}
	}

	var reply ChatReply

	err = json.NewDecoder(res.Body).Decode(&reply)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}

	return &reply, nil
}
