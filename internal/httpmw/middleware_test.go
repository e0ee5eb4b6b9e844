package httpmw

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(logs *bytes.Buffer, saveErr func() error) chi.Router {
	r := chi.NewRouter()
	r.Use(Stack(log.New(logs, "", 0), saveErr)...)
	return r
}

func lastEntry(t *testing.T, logs *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var logs bytes.Buffer
	r := newRouter(&logs, nil)
	var seen string
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetReqID(r.Context())
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-Id"))
}

func TestRecover_APIReturnsJSON(t *testing.T) {
	var logs bytes.Buffer
	r := newRouter(&logs, nil)
	r.Get("/api/tasks", func(http.ResponseWriter, *http.Request) { panic("boom") })
	r.Get("/", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.Contains(t, logs.String(), `"msg":"panic_recovered"`)
	assert.Contains(t, logs.String(), `"route":"/api/tasks"`)

	// the access log still sees the 500
	assert.Equal(t, float64(http.StatusInternalServerError), lastEntry(t, &logs)["status"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestAccessLog(t *testing.T) {
	var logs bytes.Buffer
	r := newRouter(&logs, nil)
	r.Post("/api/tasks/{id}/toggle", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/abc/toggle", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entry := lastEntry(t, &logs)
	assert.Equal(t, "http_request", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/api/tasks/abc/toggle", entry["path"])
	assert.Equal(t, "/api/tasks/{id}/toggle", entry["route"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, float64(5), entry["bytes"])
	assert.Equal(t, "10.0.0.1", entry["remote_ip"])
	assert.NotEmpty(t, entry["request_id"])
	assert.NotContains(t, entry, "save_error")
}

func TestAccessLog_DefaultsStatusAndFlagsSaveFailure(t *testing.T) {
	var logs bytes.Buffer
	r := newRouter(&logs, func() error { return errors.New("disk full") })
	r.Get("/healthz", func(http.ResponseWriter, *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entry := lastEntry(t, &logs)
	assert.Equal(t, float64(http.StatusOK), entry["status"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "disk full", entry["save_error"])
}
