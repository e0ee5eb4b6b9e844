package serverapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saharsh3008/task/internal/clock"
	"github.com/saharsh3008/task/internal/config"
	"github.com/saharsh3008/task/internal/model"
	"github.com/saharsh3008/task/internal/reminder"
	"github.com/saharsh3008/task/internal/storage"
	"github.com/saharsh3008/task/internal/task"
)

type stubHealth struct{ err error }

func (s stubHealth) LastError() error { return s.err }

type testApp struct {
	handler http.Handler
	store   *task.Store
	history *reminder.History
	logs    *bytes.Buffer
}

func newTestApp(t *testing.T, health HealthReporter) *testApp {
	t.Helper()
	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)
	c := clock.NewFake(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	a := storage.NewAdapter(storage.NewMemoryBackend(), storage.AdapterOptions{Logger: logger})
	store := task.NewStore(a, task.WithClock(c), task.WithLogger(logger))
	hist := reminder.NewHistory(c, 10)

	h, err := NewHandler(Options{
		Config:    config.Default(),
		Tasks:     task.NewHandler(store),
		Health:    health,
		Reminders: hist,
		Version:   "test",
		Logger:    logger,
	})
	require.NoError(t, err)
	return &testApp{handler: h, store: store, history: hist, logs: &logs}
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestNewHandler_RequiresDependencies(t *testing.T) {
	_, err := NewHandler(Options{})
	assert.Error(t, err)

	_, err = NewHandler(Options{Config: config.Default()})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t, nil)

	rec := get(app.handler, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "test", body["version"])
	assert.Contains(t, app.logs.String(), `"msg":"http_request"`)
}

func TestReadyz(t *testing.T) {
	ok := newTestApp(t, stubHealth{})
	assert.Equal(t, http.StatusOK, get(ok.handler, "/readyz").Code)

	failing := newTestApp(t, stubHealth{err: errors.New("disk full")})
	rec := get(failing.handler, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "disk full")
}

func TestAccessLogCarriesRouteAndSaveState(t *testing.T) {
	app := newTestApp(t, stubHealth{err: errors.New("disk full")})
	tk := app.store.AddTask(task.NewTask{Title: "hello"})

	require.Equal(t, http.StatusOK, get(app.handler, "/api/tasks/"+tk.ID).Code)

	var entry map[string]any
	for _, line := range strings.Split(strings.TrimSpace(app.logs.String()), "\n") {
		if strings.Contains(line, `"msg":"http_request"`) {
			require.NoError(t, json.Unmarshal([]byte(line), &entry))
		}
	}
	require.NotNil(t, entry)
	route, _ := entry["route"].(string)
	assert.True(t, strings.HasPrefix(route, "/api/tasks/{id}"), route)
	assert.Equal(t, "/api/tasks/"+tk.ID, entry["path"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "disk full", entry["save_error"])
}

func TestAPIIsMounted(t *testing.T) {
	app := newTestApp(t, nil)
	app.store.AddTask(task.NewTask{Title: "hello"})

	rec := get(app.handler, "/api/tasks")
	require.Equal(t, http.StatusOK, rec.Code)
	var ts []model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ts))
	require.Len(t, ts, 1)
	assert.Equal(t, "hello", ts[0].Title)

	rec = get(app.handler, "/api/config")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"backend": "file"`)
	assert.NotContains(t, rec.Body.String(), "postgres_url")
}

func TestReminderHistoryEndpoint(t *testing.T) {
	app := newTestApp(t, nil)
	require.NoError(t, app.history.Notify(context.Background(), model.Task{ID: "t1", Title: "stretch"}))

	rec := get(app.handler, "/api/reminders")
	require.Equal(t, http.StatusOK, rec.Code)
	var ds []reminder.Delivery
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ds))
	require.Len(t, ds, 1)
	assert.Equal(t, "t1", ds[0].TaskID)

	assert.Equal(t, http.StatusBadRequest, get(app.handler, "/api/reminders?since=yesterday").Code)
}

func TestAgendaPage(t *testing.T) {
	app := newTestApp(t, nil)
	today := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	overdue := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	app.store.AddTask(task.NewTask{Title: "<dentist>", DueDate: &today, Priority: model.PriorityHigh})
	app.store.AddTask(task.NewTask{Title: "taxes", DueDate: &overdue})
	app.store.AddTask(task.NewTask{Title: "someday"})

	rec := get(app.handler, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, body, "Monday, March 2 2026")
	assert.Contains(t, body, "&lt;dentist&gt;")
	assert.Contains(t, body, "Overdue")
	assert.Contains(t, body, "taxes")
	assert.NotContains(t, body, "someday")
}

func TestStaticAssets(t *testing.T) {
	app := newTestApp(t, nil)

	rec := get(app.handler, "/static/css/agenda.css")
	assert.Equal(t, http.StatusOK, rec.Code)
}
