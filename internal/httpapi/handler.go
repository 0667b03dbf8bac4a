// Package httpapi exposes the dialogue machine and supporting services
// over HTTP.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"advisor/pkg/advisor"
	"advisor/pkg/dialogue"
	"advisor/pkg/geo"
	"advisor/pkg/logx"
	"advisor/pkg/metrics"
	"advisor/pkg/pdfx"
	"advisor/pkg/session"
)

// Handler wires the dialogue machine and supporting services into echo
// routes.
type Handler struct {
	machine   *dialogue.Machine
	store     *session.Store
	advisory  dialogue.AdvisoryService
	geo       *geo.Client
	extractor *pdfx.Extractor
	rec       *metrics.Recorder
	usage     *metrics.QueryService
	log       *logx.Logger
}

func NewHandler(
	machine *dialogue.Machine,
	store *session.Store,
	advisory dialogue.AdvisoryService,
	geoClient *geo.Client,
	extractor *pdfx.Extractor,
	rec *metrics.Recorder,
	usage *metrics.QueryService,
	log *logx.Logger,
) *Handler {
	return &Handler{
		machine:   machine,
		store:     store,
		advisory:  advisory,
		geo:       geoClient,
		extractor: extractor,
		rec:       rec,
		usage:     usage,
		log:       log.WithComponent("httpapi"),
	}
}

// RegisterRoutes attaches all routes to the server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/chat", h.Chat)
	e.POST("/api/button_click", h.ButtonClick)
	e.POST("/api/select_idea", h.SelectIdea)
	e.POST("/api/upload-pdf", h.UploadPDF)
	e.POST("/api/business/qa", h.BusinessQA)
	e.POST("/api/location/geocode", h.Geocode)
	e.POST("/api/location/reverse", h.Reverse)
	e.POST("/api/location/nearby", h.Nearby)
	e.GET("/api/sessions/:id/usage", h.SessionUsage)
	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// ChatRequest is the free-text turn payload.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Language  string `json:"language,omitempty"`
}

// Chat handles one free-text turn.
// POST /api/chat
func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	resp, err := h.machine.HandleMessage(c.Request().Context(), req.SessionID, req.Message, req.Language)
	if err != nil {
		return h.turnError(c, err)
	}
	h.observeTurn("message", req.SessionID, resp)
	return c.JSON(http.StatusOK, resp)
}

// ButtonRequest is the button click payload.
type ButtonRequest struct {
	SessionID string `json:"session_id"`
	Button    string `json:"button"`
	Language  string `json:"language,omitempty"`
}

// ButtonClick handles one button turn.
// POST /api/button_click
func (h *Handler) ButtonClick(c echo.Context) error {
	var req ButtonRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	resp, err := h.machine.HandleButton(c.Request().Context(), req.SessionID, req.Button, req.Language)
	if err != nil {
		return h.turnError(c, err)
	}
	h.observeTurn("button", req.SessionID, resp)
	return c.JSON(http.StatusOK, resp)
}

// SelectIdeaRequest picks a generated idea by zero-based index.
type SelectIdeaRequest struct {
	SessionID string `json:"session_id"`
	Index     *int   `json:"index"`
	Language  string `json:"language,omitempty"`
}

// SelectIdea handles an idea selection.
// POST /api/select_idea
func (h *Handler) SelectIdea(c echo.Context) error {
	var req SelectIdeaRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if req.Index == nil {
		return c.JSON(http.StatusBadRequest, errorBody("index is required"))
	}

	resp, err := h.machine.SelectIdea(c.Request().Context(), req.SessionID, *req.Index, req.Language)
	if err != nil {
		return h.turnError(c, err)
	}
	h.observeTurn("selection", req.SessionID, resp)
	return c.JSON(http.StatusOK, resp)
}

// UploadPDF accepts a multipart PDF, extracts its text, and stores the
// excerpt on the session.
// POST /api/upload-pdf
func (h *Handler) UploadPDF(c echo.Context) error {
	sessionID := c.FormValue("session_id")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, errorBody("session_id is required"))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("file is required"))
	}
	if fileHeader.Size > pdfx.MaxUploadBytes {
		h.observeUpload(false)
		return c.JSON(http.StatusBadRequest, errorBody("file exceeds 10MB limit"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.observeUpload(false)
		return c.JSON(http.StatusInternalServerError, errorBody("could not read upload"))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, pdfx.MaxUploadBytes+1))
	if err != nil {
		h.observeUpload(false)
		return c.JSON(http.StatusInternalServerError, errorBody("could not read upload"))
	}
	if !pdfx.IsPDF(data) {
		h.observeUpload(false)
		return c.JSON(http.StatusBadRequest, errorBody("only PDF files are accepted"))
	}

	text, err := h.extractor.ExtractText(data)
	if err != nil {
		h.observeUpload(false)
		h.log.Warn("pdf extraction failed for session %s: %v", sessionID, err)
		return c.JSON(http.StatusUnprocessableEntity, errorBody("could not extract text from the document"))
	}

	resp, err := h.machine.RecordUpload(sessionID, fileHeader.Filename, text, c.FormValue("language"))
	if err != nil {
		return h.turnError(c, err)
	}
	h.observeUpload(true)
	return c.JSON(http.StatusOK, resp)
}

// QARequest asks a one-off business question grounded in the session
// profile, outside the stepped flow.
type QARequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	Language  string `json:"language,omitempty"`
}

// BusinessQA answers a direct question.
// POST /api/business/qa
func (h *Handler) BusinessQA(c echo.Context) error {
	var req QARequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, errorBody("session_id is required"))
	}
	if req.Question == "" {
		return c.JSON(http.StatusBadRequest, errorBody("question is required"))
	}

	sess := h.store.GetOrCreate(req.SessionID)
	lang := sess.Language
	if req.Language != "" {
		lang = req.Language
	}
	ideaTitle := ""
	if sess.Context.SelectedIdea != nil {
		ideaTitle = sess.Context.SelectedIdea.Title
	}

	ctx := advisor.WithSessionID(c.Request().Context(), req.SessionID)
	answer, err := h.advisory.Answer(ctx, req.Question, sess.Context.Profile(lang), ideaTitle, sess.Context.UploadedPDF)
	if err != nil {
		h.log.Error("qa failed for session %s: %v", req.SessionID, err)
		return c.JSON(http.StatusBadGateway, errorBody("advisory backend unavailable"))
	}
	return c.JSON(http.StatusOK, map[string]string{"answer": answer})
}

// GeocodeRequest resolves a place name.
type GeocodeRequest struct {
	Query string `json:"query"`
}

// Geocode resolves a place name to coordinates.
// POST /api/location/geocode
func (h *Handler) Geocode(c echo.Context) error {
	var req GeocodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if req.Query == "" {
		return c.JSON(http.StatusBadRequest, errorBody("query is required"))
	}

	place, err := h.geo.Geocode(c.Request().Context(), req.Query)
	h.observeGeo("geocode", err == nil)
	if err != nil {
		return c.JSON(http.StatusBadGateway, errorBody("geocoding failed"))
	}
	return c.JSON(http.StatusOK, place)
}

// CoordinatesRequest carries a lat/lon pair.
type CoordinatesRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Reverse resolves coordinates to a place name.
// POST /api/location/reverse
func (h *Handler) Reverse(c echo.Context) error {
	var req CoordinatesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	place, err := h.geo.Reverse(c.Request().Context(), req.Lat, req.Lon)
	h.observeGeo("reverse", err == nil)
	if err != nil {
		return c.JSON(http.StatusBadGateway, errorBody("reverse geocoding failed"))
	}
	return c.JSON(http.StatusOK, place)
}

// NearbyRequest surveys competitors around a point.
type NearbyRequest struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Category string  `json:"category,omitempty"`
	RadiusM  int     `json:"radius_m,omitempty"`
}

// Nearby surveys competition around a point.
// POST /api/location/nearby
func (h *Handler) Nearby(c echo.Context) error {
	var req NearbyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	survey, err := h.geo.Nearby(c.Request().Context(), req.Lat, req.Lon, req.Category, req.RadiusM)
	h.observeGeo("nearby", err == nil)
	if err != nil {
		return c.JSON(http.StatusBadGateway, errorBody("nearby lookup failed"))
	}
	return c.JSON(http.StatusOK, survey)
}

// SessionUsage reports aggregated token spend for a session.
// GET /api/sessions/:id/usage
func (h *Handler) SessionUsage(c echo.Context) error {
	if h.usage == nil {
		return c.JSON(http.StatusServiceUnavailable, errorBody("usage queries are not configured"))
	}

	usage, err := h.usage.GetSessionUsage(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.log.Error("usage query failed: %v", err)
		return c.JSON(http.StatusBadGateway, errorBody("usage query failed"))
	}
	return c.JSON(http.StatusOK, usage)
}

// Health reports liveness and the live session count.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.store.Len(),
	})
}

func (h *Handler) turnError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, dialogue.ErrMissingSessionID),
		errors.Is(err, dialogue.ErrMissingMessage),
		errors.Is(err, dialogue.ErrMissingButton),
		errors.Is(err, dialogue.ErrInvalidSelection):
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, errorBody("request timed out"))
	default:
		h.log.Error("turn failed: %v", err)
		return c.JSON(http.StatusInternalServerError, errorBody("internal error"))
	}
}

func (h *Handler) observeTurn(kind, sessionID string, resp dialogue.Response) {
	if h.rec == nil {
		return
	}
	h.rec.ObserveTurn(kind, string(resp.Type), h.store.GetOrCreate(sessionID).Language)
}

func (h *Handler) observeUpload(success bool) {
	if h.rec != nil {
		h.rec.ObserveUpload(success)
	}
}

func (h *Handler) observeGeo(op string, success bool) {
	if h.rec != nil {
		h.rec.ObserveGeoLookup(op, success)
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
