package core

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router    *gin.Engine
	store     Store
	adapter   CalendarAdapter
	channel   Channel
	responder *MockResponder
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)

	store := NewStore(DefaultSeedEvents(), SequenceIdGenerator("ev-"))
	adapter := NewCalendarAdapter(store, nil)
	responder := new(MockResponder)
	channel := NewChannel(store, responder, WithFallbackDelay(0))

	router := gin.New()
	RegisterRoutes(router, NewHandlers(adapter, channel))

	return &testServer{router: router, store: store, adapter: adapter, channel: channel, responder: responder}
}

func (s *testServer) do(method string, path string, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	return w
}

func TestHandlers_Events(t *testing.T) {
	t.Parallel()

	s := newTestServer()

	w := s.do(http.MethodGet, "/api/events", "")
	require.Equal(t, http.StatusOK, w.Code)

	var events []Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	assert.Len(t, events, 2)

	w = s.do(http.MethodPost, "/api/events",
		`{"title":"Dropped","start":"2025-06-18T09:00:00Z","end":"2025-06-18T10:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, EventId("ev-1"), created.Id)
	assert.Equal(t, 3, s.store.Len())

	w = s.do(http.MethodPatch, "/api/events/ev-1",
		`{"start":"2025-06-18T11:00:00Z","end":"2025-06-18T12:30:00Z","title":"Moved"}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	got, _ := s.store.Get("ev-1")
	assert.Equal(t, "Moved", got.Title)
	assert.Equal(t, time.Date(2025, time.June, 18, 12, 30, 0, 0, time.UTC), got.End.UTC())

	before := s.store.Snapshot()
	w = s.do(http.MethodPatch, "/api/events/missing", `{"title":"Nope"}`)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, before, s.store.Snapshot())

	w = s.do(http.MethodDelete, "/api/events/ev-1", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodDelete, "/api/events/ev-1", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 2, s.store.Len())

	w = s.do(http.MethodPost, "/api/events", "invalid")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlers_ExportEvents(t *testing.T) {
	t.Parallel()

	s := newTestServer()

	w := s.do(http.MethodGet, "/api/events.ics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar"))
	assert.Contains(t, w.Body.String(), "SUMMARY:Workout")
}

func TestHandlers_Selections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		body           string
		unknown        bool
		expectedStatus int
		expectedEvents int
	}{
		{name: "resolve with title", method: http.MethodPost, body: `{"title":"Dentist"}`, expectedStatus: http.StatusCreated, expectedEvents: 3},
		{name: "resolve with blank title", method: http.MethodPost, body: `{"title":"  "}`, expectedStatus: http.StatusNoContent, expectedEvents: 2},
		{name: "resolve unknown", method: http.MethodPost, body: `{"title":"Dentist"}`, unknown: true, expectedStatus: http.StatusNotFound, expectedEvents: 2},
		{name: "resolve invalid json", method: http.MethodPost, body: `nope`, expectedStatus: http.StatusBadRequest, expectedEvents: 2},
		{name: "discard", method: http.MethodDelete, expectedStatus: http.StatusNoContent, expectedEvents: 2},
		{name: "discard unknown", method: http.MethodDelete, unknown: true, expectedStatus: http.StatusNotFound, expectedEvents: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestServer()

			w := s.do(http.MethodPost, "/api/selections", `{"start":"2025-06-16T10:00:00Z","end":"2025-06-16T11:00:00Z"}`)
			require.Equal(t, http.StatusCreated, w.Code)

			var proposal Proposal
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &proposal))
			require.NotEmpty(t, proposal.Id)

			id := proposal.Id
			if tt.unknown {
				id = "unknown"
			}

			w = s.do(tt.method, "/api/selections/"+id, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedEvents, s.store.Len())
		})
	}
}

func TestHandlers_PostMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		body            string
		reply           *ChatReply
		replyErr        error
		expectedStatus  int
		expectedOutcome State
		expectedEvents  int
	}{
		{
			name:            "applied",
			body:            `{"message":"clear my day"}`,
			reply:           &ChatReply{Response: "Done", ScheduleUpdates: []Event{}},
			expectedStatus:  http.StatusOK,
			expectedOutcome: StateApplied,
			expectedEvents:  0,
		},
		{
			name:            "fallback",
			body:            `{"message":"clear my day"}`,
			replyErr:        &ResponderStatusError{StatusCode: http.StatusBadGateway},
			expectedStatus:  http.StatusOK,
			expectedOutcome: StateFallbackApplied,
			expectedEvents:  2,
		},
		{
			name:           "empty message",
			body:           `{"message":"  "}`,
			expectedStatus: http.StatusBadRequest,
			expectedEvents: 2,
		},
		{
			name:           "invalid json",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
			expectedEvents: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestServer()
			if tt.reply != nil || tt.replyErr != nil {
				s.responder.On("Chat", mock.Anything, mock.Anything).Return(tt.reply, tt.replyErr)
			}

			w := s.do(http.MethodPost, "/api/chat/messages", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedEvents, s.store.Len())

			if tt.expectedStatus == http.StatusOK {
				var res struct {
					Message Message `json:"message"`
					Outcome string  `json:"outcome"`
				}

				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
				assert.Equal(t, RoleAssistant, res.Message.Role)
				assert.Equal(t, tt.expectedOutcome.String(), res.Outcome)
			}

			s.responder.AssertExpectations(t)
		})
	}
}

func TestHandlers_PostMessagesInFlight(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)

	responder := &blockingResponder{
		started: make(chan struct{}),
		release: make(chan struct{}),
		reply:   &ChatReply{Response: "ok"},
	}
	channel := NewChannel(NewStore(DefaultSeedEvents(), nil), responder)

	router := gin.New()
	RegisterRoutes(router, NewHandlers(NewCalendarAdapter(NewStore(nil, nil), nil), channel))

	go func() {
		_, _ = channel.Submit(context.Background(), "first")
	}()

	<-responder.started

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/chat/messages", strings.NewReader(`{"message":"second"}`)))
	assert.Equal(t, http.StatusConflict, w.Code)

	close(responder.release)
}

func TestHandlers_ChatInputAndKeys(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	s.responder.On("Chat", mock.Anything, mock.MatchedBy(func(r ChatRequest) bool {
		return r.Message == "hello\nthere"
	})).Return(&ChatReply{Response: "hi"}, nil).Once()

	require.Equal(t, http.StatusNoContent, s.do(http.MethodPut, "/api/chat/input", `{"text":"hello"}`).Code)
	require.Equal(t, http.StatusNoContent, s.do(http.MethodPost, "/api/chat/keys", `{"key":"Enter","shift":true}`).Code)
	require.Equal(t, http.StatusNoContent, s.do(http.MethodPut, "/api/chat/input", `{"text":"hello\nthere"}`).Code)

	w := s.do(http.MethodPost, "/api/chat/keys", `{"key":"Enter"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"content":"hi"`)

	w = s.do(http.MethodGet, "/api/chat/messages", "")
	require.Equal(t, http.StatusOK, w.Code)

	var view struct {
		Messages []Message `json:"messages"`
		Input    string    `json:"input"`
		State    string    `json:"state"`
		InFlight bool      `json:"inFlight"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Len(t, view.Messages, 2)
	assert.Empty(t, view.Input)
	assert.Equal(t, "idle", view.State)
	assert.False(t, view.InFlight)

	w = s.do(http.MethodPost, "/api/chat/keys", `{"key":"Enter"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.responder.AssertExpectations(t)
}

func TestHandlers_PutPanel(t *testing.T) {
	t.Parallel()

	s := newTestServer()

	w := s.do(http.MethodPut, "/api/chat/panel", `{"visible":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"visible":true}`, w.Body.String())
	assert.True(t, s.channel.PanelVisible())

	w = s.do(http.MethodPut, "/api/chat/panel", `{}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"visible":false}`, w.Body.String())
	assert.False(t, s.channel.PanelVisible())
}
