package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisor/pkg/advisor"
	copytext "advisor/pkg/copy"
	"advisor/pkg/dialogue"
	"advisor/pkg/geo"
	"advisor/pkg/logx"
	"advisor/pkg/pdfx"
	"advisor/pkg/session"
	"advisor/pkg/tokens"
)

type fakeAdvisory struct{}

func (fakeAdvisory) GenerateIdeas(context.Context, advisor.Profile) ([]advisor.Idea, error) {
	return []advisor.Idea{{Title: "Tiffin Service"}}, nil
}
func (fakeAdvisory) GeneratePlan(context.Context, advisor.Idea, advisor.Profile) (advisor.Plan, error) {
	return advisor.Plan{BusinessName: "Tiffin Service", Full: "plan"}, nil
}
func (fakeAdvisory) GeneratePlanSection(context.Context, int, advisor.Idea, advisor.Profile) (string, error) {
	return "section", nil
}
func (fakeAdvisory) GenerateResourceTopic(context.Context, int, advisor.Idea, advisor.Profile) (string, error) {
	return "topic", nil
}
func (fakeAdvisory) FindFundingSchemes(context.Context, advisor.Idea, advisor.Profile) (string, error) {
	return "schemes", nil
}
func (fakeAdvisory) AnalyzeLocation(context.Context, string, string) (string, error) {
	return "analysis", nil
}
func (fakeAdvisory) AnalyzeLocationForBusiness(context.Context, advisor.Idea, advisor.Profile) (string, error) {
	return "analysis", nil
}
func (fakeAdvisory) Answer(context.Context, string, advisor.Profile, string, string) (string, error) {
	return "answer", nil
}

func newTestHandler(t *testing.T, geoURL string) (*Handler, *echo.Echo, *session.Store) {
	t.Helper()
	log := logx.NewLogger("test")
	table, err := copytext.Load()
	require.NoError(t, err)
	store := session.NewStore(time.Hour, time.Hour, copytext.DefaultLanguage, log)
	t.Cleanup(store.Stop)

	adv := fakeAdvisory{}
	machine := dialogue.NewMachine(store, adv, table, log)
	counter, err := tokens.NewCounter()
	require.NoError(t, err)
	extractor := pdfx.NewExtractor(counter, 100, log)
	geoClient := geo.NewClient(geoURL, geoURL, nil, log)

	h := NewHandler(machine, store, adv, geoClient, extractor, nil, nil, log)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e, store
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChatReturnsEnvelope(t *testing.T) {
	_, e, _ := newTestHandler(t, "")

	rec := postJSON(e, "/api/chat", `{"session_id":"s1","message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dialogue.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Reply)
	assert.Len(t, resp.Buttons, 3)
}

func TestChatMissingSessionIDIsBadRequest(t *testing.T) {
	_, e, _ := newTestHandler(t, "")

	rec := postJSON(e, "/api/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatMissingMessageIsBadRequest(t *testing.T) {
	_, e, _ := newTestHandler(t, "")

	rec := postJSON(e, "/api/chat", `{"session_id":"s1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestButtonClickFlows(t *testing.T) {
	_, e, store := newTestHandler(t, "")

	rec := postJSON(e, "/api/button_click", `{"session_id":"s1","button":"generate_business"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.StepCollectingName, store.GetOrCreate("s1").Step)
}

func TestSelectIdeaValidation(t *testing.T) {
	_, e, store := newTestHandler(t, "")

	rec := postJSON(e, "/api/select_idea", `{"session_id":"s1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(e, "/api/select_idea", `{"session_id":"s1","index":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	store.Update("s1", func(s *session.Session) {
		s.Context.GeneratedIdeas = []advisor.Idea{{Title: "Tiffin Service"}}
	})
	rec = postJSON(e, "/api/select_idea", `{"session_id":"s1","index":0}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadRejectsNonPDF(t *testing.T) {
	_, e, _ := newTestHandler(t, "")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("session_id", "s1"))
	fw, err := w.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	fw.Write([]byte("just some text"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload-pdf", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRequiresSessionID(t *testing.T) {
	_, e, _ := newTestHandler(t, "")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload-pdf", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBusinessQA(t *testing.T) {
	_, e, _ := newTestHandler(t, "")

	rec := postJSON(e, "/api/business/qa", `{"session_id":"s1","question":"How do I register?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "answer")

	rec = postJSON(e, "/api/business/qa", `{"session_id":"s1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeocodeEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"display_name":"Nashik, India","lat":"19.9975","lon":"73.7898"}]`))
	}))
	defer srv.Close()

	_, e, _ := newTestHandler(t, srv.URL)

	rec := postJSON(e, "/api/location/geocode", `{"query":"Nashik"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nashik")

	rec = postJSON(e, "/api/location/geocode", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsageUnavailableWithoutPrometheus(t *testing.T) {
	_, e, _ := newTestHandler(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/s1/usage", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	_, e, _ := newTestHandler(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
