package core

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Handlers interface {
	GetEvents(gctx *gin.Context)
	ExportEvents(gctx *gin.Context)
	PostEvents(gctx *gin.Context)
	PatchEvent(gctx *gin.Context)
	DeleteEvent(gctx *gin.Context)
	PostSelections(gctx *gin.Context)
	ResolveSelection(gctx *gin.Context)
	DeleteSelection(gctx *gin.Context)
	GetMessages(gctx *gin.Context)
	PostMessages(gctx *gin.Context)
	PutInput(gctx *gin.Context)
	PostKeys(gctx *gin.Context)
	PutPanel(gctx *gin.Context)
}

type SelectionRequest struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"allDay"`
}

type ResolveRequest struct {
	Title string `json:"title"`
}

type SubmitRequest struct {
	Message string `json:"message"`
}

type InputRequest struct {
	Text string `json:"text"`
}

type PanelRequest struct {
	Visible *bool `json:"visible"`
}

type ConversationView struct {
	Messages     []Message `json:"messages"`
	Input        string    `json:"input"`
	State        State     `json:"state"`
	LastOutcome  State     `json:"lastOutcome"`
	InFlight     bool      `json:"inFlight"`
	PanelVisible bool      `json:"panelVisible"`
}

type handlers struct {
	adapter CalendarAdapter
	channel Channel
	now     func() time.Time
}

func NewHandlers(adapter CalendarAdapter, channel Channel) Handlers {
	return &handlers{adapter: adapter, channel: channel, now: time.Now}
}

// RegisterRoutes mounts the widget and chat endpoints on router.
func RegisterRoutes(router gin.IRouter, h Handlers) {
	api := router.Group("/api")

	api.GET("/events", h.GetEvents)
	api.GET("/events.ics", h.ExportEvents)
	api.POST("/events", h.PostEvents)
	api.PATCH("/events/:id", h.PatchEvent)
	api.DELETE("/events/:id", h.DeleteEvent)

	api.POST("/selections", h.PostSelections)
	api.POST("/selections/:id", h.ResolveSelection)
	api.DELETE("/selections/:id", h.DeleteSelection)

	api.GET("/chat/messages", h.GetMessages)
	api.POST("/chat/messages", h.PostMessages)
	api.PUT("/chat/input", h.PutInput)
	api.POST("/chat/keys", h.PostKeys)
	api.PUT("/chat/panel", h.PutPanel)
}

func (h *handlers) GetEvents(gctx *gin.Context) {
	gctx.JSON(http.StatusOK, h.adapter.RenderInput(gctx.Request.Context()))
}

func (h *handlers) ExportEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var buf bytes.Buffer

	err := ExportICS(&buf, h.adapter.RenderInput(ctx), h.now())
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("calendar export failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("calendar export failed", err))

		return
	}

	gctx.Header("Content-Disposition", `attachment; filename="schedule.ics"`)
	gctx.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// PostEvents takes an event the widget created by itself (drag-create).
func (h *handlers) PostEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var event Event

	err := gctx.ShouldBindJSON(&event)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	gctx.JSON(http.StatusCreated, h.adapter.Receive(ctx, event))
}

// PatchEvent applies a move or resize. Unknown ids are ignored, as the store
// does, and still answer 204.
func (h *handlers) PatchEvent(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var changes EventChanges

	err := gctx.ShouldBindJSON(&changes)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	id := EventId(gctx.Param("id"))
	if !h.adapter.Change(ctx, id, changes) {
		log.Ctx(ctx).Info().Str("event_id", string(id)).Msg("change for unknown event ignored")
	}

	gctx.Status(http.StatusNoContent)
}

func (h *handlers) DeleteEvent(gctx *gin.Context) {
	h.adapter.Remove(gctx.Request.Context(), EventId(gctx.Param("id")))
	gctx.Status(http.StatusNoContent)
}

func (h *handlers) PostSelections(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req SelectionRequest

	err := gctx.ShouldBindJSON(&req)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	gctx.JSON(http.StatusCreated, h.adapter.Select(ctx, req.Start, req.End, req.AllDay))
}

// ResolveSelection answers 201 with the new event, or 204 when the title was
// blank and the selection was dropped.
func (h *handlers) ResolveSelection(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req ResolveRequest

	err := gctx.ShouldBindJSON(&req)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	event, err := h.adapter.ResolveProposal(ctx, gctx.Param("id"), req.Title)
	if err != nil {
		h.abortProposal(gctx, err)
		return
	}

	if event == nil {
		gctx.Status(http.StatusNoContent)
		return
	}

	gctx.JSON(http.StatusCreated, event)
}

func (h *handlers) DeleteSelection(gctx *gin.Context) {
	err := h.adapter.DiscardProposal(gctx.Request.Context(), gctx.Param("id"))
	if err != nil {
		h.abortProposal(gctx, err)
		return
	}

	gctx.Status(http.StatusNoContent)
}

func (h *handlers) abortProposal(gctx *gin.Context, err error) {
	if errors.Is(err, ErrProposalNotFound) {
		log.Ctx(gctx.Request.Context()).Info().Msg("proposal not found")
		gctx.AbortWithStatusJSON(http.StatusNotFound, NewError("proposal not found", err))

		return
	}

	log.Ctx(gctx.Request.Context()).Error().Err(err).Msg("proposal handling failed")
	gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("proposal handling failed", err))
}

func (h *handlers) GetMessages(gctx *gin.Context) {
	gctx.JSON(http.StatusOK, ConversationView{
		Messages:     h.channel.Messages(),
		Input:        h.channel.Input(),
		State:        h.channel.State(),
		LastOutcome:  h.channel.LastOutcome(),
		InFlight:     h.channel.InFlight(),
		PanelVisible: h.channel.PanelVisible(),
	})
}

func (h *handlers) PostMessages(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req SubmitRequest

	err := gctx.ShouldBindJSON(&req)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	exchange, err := h.channel.Submit(ctx, req.Message)
	if err != nil {
		h.abortSubmit(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, exchange)
}

func (h *handlers) PutInput(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req InputRequest

	err := gctx.ShouldBindJSON(&req)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	h.channel.SetInput(req.Text)
	gctx.Status(http.StatusNoContent)
}

// PostKeys answers 200 when the key committed a submission, 204 otherwise.
func (h *handlers) PostKeys(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var key Key

	err := gctx.ShouldBindJSON(&key)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	exchange, err := h.channel.HandleKey(ctx, key)
	if err != nil {
		h.abortSubmit(gctx, err)
		return
	}

	if exchange == nil {
		gctx.Status(http.StatusNoContent)
		return
	}

	gctx.JSON(http.StatusOK, exchange)
}

func (h *handlers) abortSubmit(gctx *gin.Context, err error) {
	ctx := gctx.Request.Context()

	switch {
	case errors.Is(err, ErrEmptyMessage):
		log.Ctx(ctx).Info().Msg("empty chat message rejected")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("message is required", err))
	case errors.Is(err, ErrSubmissionInFlight):
		log.Ctx(ctx).Info().Msg("chat submission rejected, another one is in flight")
		gctx.AbortWithStatusJSON(http.StatusConflict, NewError("submission already in flight", err))
	default:
		log.Ctx(ctx).Error().Err(err).Msg("chat submission failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("chat submission failed", err))
	}
}

func (h *handlers) PutPanel(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req PanelRequest

	err := gctx.ShouldBindJSON(&req)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	var visible bool

	if req.Visible == nil {
		visible = h.channel.TogglePanel()
	} else {
		h.channel.SetPanelVisible(*req.Visible)
		visible = *req.Visible
	}

	gctx.JSON(http.StatusOK, gin.H{"visible": visible})
}
