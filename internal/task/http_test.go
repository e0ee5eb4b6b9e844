package task

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saharsh3008/task/internal/model"
)

func newTestServer(t *testing.T) (*testEnv, http.Handler) {
	t.Helper()
	env := newTestEnv(t)
	r := chi.NewRouter()
	r.Route("/api", NewHandler(env.store).Routes)
	return env, r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHTTP_TaskLifecycle(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/tasks", map[string]any{
		"title":          "water plants",
		"priority":       "high",
		"dueDate":        "2026-03-02 18:00",
		"recurrenceDays": []int{3, 1, 1},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[model.Task](t, rec)
	assert.Equal(t, "water plants", created.Title)
	assert.Equal(t, model.PriorityHigh, created.Priority)
	assert.Equal(t, model.Weekdays{time.Monday, time.Wednesday}, created.RecurrenceDays)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC), created.DueDate.UTC())

	rec = doJSON(t, h, http.MethodGet, "/api/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPatch, "/api/tasks/"+created.ID, map[string]any{
		"description": "ferns too",
		"dueDate":     "",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decodeBody[model.Task](t, rec)
	assert.Equal(t, "ferns too", patched.Description)
	assert.Nil(t, patched.DueDate)

	rec = doJSON(t, h, http.MethodPost, "/api/tasks/"+created.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[model.Task](t, rec).Completed)

	rec = doJSON(t, h, http.MethodDelete, "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTP_CreateTaskValidation(t *testing.T) {
	_, h := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"missing title", `{"priority":"low"}`},
		{"bad priority", `{"title":"x","priority":"urgent"}`},
		{"bad date", `{"title":"x","dueDate":"someday"}`},
		{"bad weekday", `{"title":"x","recurrenceDays":[9]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHTTP_NotFound(t *testing.T) {
	_, h := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, doJSON(t, h, http.MethodPatch, "/api/tasks/nope", map[string]any{"title": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, h, http.MethodPost, "/api/tasks/nope/toggle", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, h, http.MethodPost, "/api/tasks/nope/subtasks", map[string]any{"title": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, h, http.MethodPatch, "/api/lists/nope", map[string]any{"name": "x"}).Code)
}

func TestHTTP_ListTasksFilters(t *testing.T) {
	env, h := newTestServer(t)
	work := env.store.AddList("Work", "")
	env.store.AddTask(NewTask{Title: "today", DueDate: ptr(testStart.Add(time.Hour))})
	env.store.AddTask(NewTask{Title: "work", ListID: work.ID, Priority: model.PriorityHigh})

	rec := doJSON(t, h, http.MethodGet, "/api/tasks?view=today", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"today"}, titles(decodeBody[[]model.Task](t, rec)))

	rec = doJSON(t, h, http.MethodGet, "/api/tasks?list="+work.ID, nil)
	assert.Equal(t, []string{"work"}, titles(decodeBody[[]model.Task](t, rec)))

	rec = doJSON(t, h, http.MethodGet, "/api/search?q=priority:high", nil)
	assert.Equal(t, []string{"work"}, titles(decodeBody[[]model.Task](t, rec)))
}

func TestHTTP_Subtasks(t *testing.T) {
	env, h := newTestServer(t)
	tk := env.store.AddTask(NewTask{Title: "trip"})

	rec := doJSON(t, h, http.MethodPost, "/api/tasks/"+tk.ID+"/subtasks", map[string]any{"title": "pack"})
	require.Equal(t, http.StatusCreated, rec.Code)
	st := decodeBody[model.Subtask](t, rec)

	rec = doJSON(t, h, http.MethodPost, "/api/tasks/"+tk.ID+"/subtasks/"+st.ID+"/toggle", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	got, _ := env.store.GetTask(tk.ID)
	assert.True(t, got.Subtasks[0].Completed)

	rec = doJSON(t, h, http.MethodPost, "/api/tasks/"+tk.ID+"/subtasks/nope/toggle", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/tasks/"+tk.ID+"/subtasks/"+st.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	got, _ = env.store.GetTask(tk.ID)
	assert.Empty(t, got.Subtasks)
}

func TestHTTP_SubtaskIDsAreAssignedOnWrite(t *testing.T) {
	env, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/tasks", map[string]any{"title": "x"})
	require.Equal(t, http.StatusCreated, rec.Code)
	tk := decodeBody[model.Task](t, rec)

	rec = doJSON(t, h, http.MethodPatch, "/api/tasks/"+tk.ID, map[string]any{
		"subtasks": []map[string]any{{"title": "a"}, {"title": "b"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decodeBody[model.Task](t, rec)
	require.Len(t, patched.Subtasks, 2)
	assert.NotEmpty(t, patched.Subtasks[0].ID)
	assert.NotEmpty(t, patched.Subtasks[1].ID)
	assert.NotEqual(t, patched.Subtasks[0].ID, patched.Subtasks[1].ID)
	assert.False(t, env.store.ToggleSubtask(tk.ID, ""))

	rec = doJSON(t, h, http.MethodPost, "/api/tasks", map[string]any{
		"title":    "y",
		"subtasks": []map[string]any{{"id": "s", "title": "a"}, {"id": "s", "title": "b"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[model.Task](t, rec)
	require.Len(t, created.Subtasks, 2)
	assert.NotEqual(t, created.Subtasks[0].ID, created.Subtasks[1].ID)
}

func TestHTTP_Lists(t *testing.T) {
	env, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/lists", map[string]any{"name": "Work"})
	require.Equal(t, http.StatusCreated, rec.Code)
	l := decodeBody[model.TaskList](t, rec)
	assert.Equal(t, model.NewListColor, l.Color)

	tk := env.store.AddTask(NewTask{Title: "x", ListID: l.ID})

	rec = doJSON(t, h, http.MethodPatch, "/api/lists/"+l.ID, map[string]any{"name": "Office"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Office", decodeBody[model.TaskList](t, rec).Name)

	rec = doJSON(t, h, http.MethodDelete, "/api/lists/"+model.DefaultListID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/lists/"+l.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	got, _ := env.store.GetTask(tk.ID)
	assert.Equal(t, model.DefaultListID, got.ListID)

	rec = doJSON(t, h, http.MethodGet, "/api/lists", nil)
	assert.Len(t, decodeBody[[]model.TaskList](t, rec), 1)

	rec = doJSON(t, h, http.MethodPost, "/api/lists", map[string]any{"name": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTP_Calendar(t *testing.T) {
	env, h := newTestServer(t)
	env.store.AddTask(NewTask{Title: "weekly", DueDate: ptr(testStart), RecurrenceDays: model.Weekdays{time.Monday}})

	rec := doJSON(t, h, http.MethodGet, "/api/calendar?from=2026-03-01&to=2026-03-09", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]int{"2026-03-02": 1, "2026-03-09": 1}, decodeBody[map[string]int](t, rec))

	rec = doJSON(t, h, http.MethodGet, "/api/calendar?from=2026-03-09&to=2026-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/calendar/2026-03-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"weekly"}, titles(decodeBody[[]model.Task](t, rec)))

	rec = doJSON(t, h, http.MethodGet, "/api/calendar/tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTP_TaskCalendarExport(t *testing.T) {
	env, h := newTestServer(t)
	dated := env.store.AddTask(NewTask{Title: "dentist", DueDate: ptr(testStart)})
	undated := env.store.AddTask(NewTask{Title: "someday"})

	rec := doJSON(t, h, http.MethodGet, "/api/tasks/"+dated.ID+"/calendar.ics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "SUMMARY:dentist")

	rec = doJSON(t, h, http.MethodGet, "/api/tasks/"+undated.ID+"/calendar.ics", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_DueReminders(t *testing.T) {
	env := newTestEnv(t)
	env.store.AddTask(NewTask{Title: "ping", Reminder: ptr(testStart)})

	h := NewHandler(env.store)
	assert.Equal(t, []string{"ping"}, titles(h.DueReminders(testStart, time.Minute)))
}
