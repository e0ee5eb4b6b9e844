package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saharsh3008/task/internal/clock"
	"github.com/saharsh3008/task/internal/model"
)

// Handler exposes a Store over JSON. Every store call runs under one mutex.
type Handler struct {
	mu    sync.Mutex
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Do runs fn with exclusive access to the store.
func (h *Handler) Do(fn func(*Store)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.store)
}

// DueReminders is Store.DueReminders under the handler lock, so background
// pollers can share the store with HTTP traffic.
func (h *Handler) DueReminders(now time.Time, window time.Duration) []model.Task {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store.DueReminders(now, window)
}

// Routes mounts the API under r. Paths are relative to the mount point.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.listTasks)
		r.Post("/", h.createTask)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getTask)
			r.Patch("/", h.patchTask)
			r.Delete("/", h.deleteTask)
			r.Post("/toggle", h.toggleTask)
			r.Get("/calendar.ics", h.taskCalendar)
			r.Post("/subtasks", h.addSubtask)
			r.Post("/subtasks/{sid}/toggle", h.toggleSubtask)
			r.Delete("/subtasks/{sid}", h.deleteSubtask)
		})
	})
	r.Route("/lists", func(r chi.Router) {
		r.Get("/", h.listLists)
		r.Post("/", h.createList)
		r.Patch("/{id}", h.patchList)
		r.Delete("/{id}", h.deleteList)
	})
	r.Get("/search", h.search)
	r.Get("/calendar", h.activity)
	r.Get("/calendar/{date}", h.activeOn)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	// Optional: dec.DisallowUnknownFields()
	return dec.Decode(out)
}

// taskInput is the wire shape for create and patch. Dates are strings so
// they can be parsed in the store's location; an empty string on patch
// clears the field.
type taskInput struct {
	Title          *string          `json:"title"`
	Description    *string          `json:"description"`
	Priority       *string          `json:"priority"`
	Completed      *bool            `json:"completed"`
	ListID         *string          `json:"listId"`
	DueDate        *string          `json:"dueDate"`
	Reminder       *string          `json:"reminder"`
	RecurrenceDays *[]time.Weekday  `json:"recurrenceDays"`
	Subtasks       *[]model.Subtask `json:"subtasks"`
}

func (in taskInput) toPatch(loc *time.Location) (Patch, error) {
	var p Patch
	p.Title = in.Title
	p.Description = in.Description
	p.Completed = in.Completed
	p.ListID = in.ListID
	p.Subtasks = in.Subtasks

	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return p, errors.New("title must not be empty")
	}
	if in.Priority != nil {
		pr, err := ParsePriority(*in.Priority)
		if err != nil {
			return p, err
		}
		p.Priority = &pr
	}
	if in.DueDate != nil {
		if strings.TrimSpace(*in.DueDate) == "" {
			p.ClearDueDate = true
		} else {
			d, err := ParseDate(*in.DueDate, loc)
			if err != nil {
				return p, fmt.Errorf("dueDate: %w", err)
			}
			p.DueDate = &d
		}
	}
	if in.Reminder != nil {
		if strings.TrimSpace(*in.Reminder) == "" {
			p.ClearReminder = true
		} else {
			d, err := ParseDate(*in.Reminder, loc)
			if err != nil {
				return p, fmt.Errorf("reminder: %w", err)
			}
			p.Reminder = &d
		}
	}
	if in.RecurrenceDays != nil {
		days, err := NormalizeWeekdays(*in.RecurrenceDays)
		if err != nil {
			return p, err
		}
		p.RecurrenceDays = &days
	}
	return p, nil
}

func (in taskInput) toNewTask(loc *time.Location) (NewTask, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return NewTask{}, errors.New("title is required")
	}
	p, err := in.toPatch(loc)
	if err != nil {
		return NewTask{}, err
	}
	nt := NewTask{
		Title:    *in.Title,
		DueDate:  p.DueDate,
		Reminder: p.Reminder,
	}
	if p.Description != nil {
		nt.Description = *p.Description
	}
	if p.Priority != nil {
		nt.Priority = *p.Priority
	}
	if p.ListID != nil {
		nt.ListID = *p.ListID
	}
	if p.RecurrenceDays != nil {
		nt.RecurrenceDays = *p.RecurrenceDays
	}
	if p.Subtasks != nil {
		nt.Subtasks = *p.Subtasks
	}
	return nt, nil
}

// GET /api/tasks?list=&view=&q=&sort=
func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		ListID: strings.TrimSpace(q.Get("list")),
		View:   ParseView(q.Get("view")),
		Search: q.Get("q"),
		Sort:   ParseSort(q.Get("sort")),
	}
	var out []model.Task
	h.Do(func(s *Store) { out = s.GetTasks(f) })
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var in taskInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	nt, err := in.toNewTask(h.store.Now().Location())
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, h.store.AddTask(nt))
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	var (
		t  model.Task
		ok bool
	)
	h.Do(func(s *Store) { t, ok = s.GetTask(chi.URLParam(r, "id")) })
	if !ok {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) patchTask(w http.ResponseWriter, r *http.Request) {
	var in taskInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := in.toPatch(h.store.Now().Location())
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	t, ok := h.store.UpdateTask(chi.URLParam(r, "id"), p)
	if !ok {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	h.Do(func(s *Store) { s.DeleteTask(chi.URLParam(r, "id")) })
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggleTask(w http.ResponseWriter, r *http.Request) {
	var (
		t  model.Task
		ok bool
	)
	h.Do(func(s *Store) { t, ok = s.ToggleTask(chi.URLParam(r, "id")) })
	if !ok {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) taskCalendar(w http.ResponseWriter, r *http.Request) {
	var (
		t   model.Task
		ok  bool
		now time.Time
	)
	h.Do(func(s *Store) {
		t, ok = s.GetTask(chi.URLParam(r, "id"))
		now = s.Now()
	})
	if !ok {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}
	ics, err := BuildTaskCalendarICS(t, now)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "task-"+t.ID+".ics"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ics))
}

func (h *Handler) addSubtask(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title string `json:"title"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		writeErr(w, http.StatusBadRequest, "title is required")
		return
	}
	var (
		st model.Subtask
		ok bool
	)
	h.Do(func(s *Store) { st, ok = s.AddSubtask(chi.URLParam(r, "id"), in.Title) })
	if !ok {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (h *Handler) toggleSubtask(w http.ResponseWriter, r *http.Request) {
	var ok bool
	h.Do(func(s *Store) { ok = s.ToggleSubtask(chi.URLParam(r, "id"), chi.URLParam(r, "sid")) })
	if !ok {
		writeErr(w, http.StatusNotFound, "subtask not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteSubtask(w http.ResponseWriter, r *http.Request) {
	h.Do(func(s *Store) { s.DeleteSubtask(chi.URLParam(r, "id"), chi.URLParam(r, "sid")) })
	w.WriteHeader(http.StatusNoContent)
}

type listInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *Handler) listLists(w http.ResponseWriter, r *http.Request) {
	var out []model.TaskList
	h.Do(func(s *Store) { out = s.GetLists() })
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createList(w http.ResponseWriter, r *http.Request) {
	var in listInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeErr(w, http.StatusBadRequest, "name is required")
		return
	}
	var l model.TaskList
	h.Do(func(s *Store) { l = s.AddList(in.Name, in.Color) })
	writeJSON(w, http.StatusCreated, l)
}

func (h *Handler) patchList(w http.ResponseWriter, r *http.Request) {
	var in listInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	var (
		l  model.TaskList
		ok bool
	)
	h.Do(func(s *Store) { l, ok = s.RenameList(chi.URLParam(r, "id"), in.Name, in.Color) })
	if !ok {
		writeErr(w, http.StatusNotFound, "list not found")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *Handler) deleteList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == model.DefaultListID {
		writeErr(w, http.StatusBadRequest, "the default list cannot be deleted")
		return
	}
	h.Do(func(s *Store) { s.DeleteList(id) })
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	var out []model.Task
	h.Do(func(s *Store) { out = s.Search(r.URL.Query().Get("q")) })
	writeJSON(w, http.StatusOK, out)
}

// GET /api/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD
// Missing bounds default to the current month.
func (h *Handler) activity(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.store.Now()
	loc := now.Location()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 1, -1)

	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		d, err := ParseDate(v, loc)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "from: "+err.Error())
			return
		}
		from = d
	}
	if v := q.Get("to"); v != "" {
		d, err := ParseDate(v, loc)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "to: "+err.Error())
			return
		}
		to = d
	}
	if to.Before(from) {
		writeErr(w, http.StatusBadRequest, "to must not be before from")
		return
	}
	writeJSON(w, http.StatusOK, h.store.ActivityBetween(from, to))
}

func (h *Handler) activeOn(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	day, err := ParseDate(chi.URLParam(r, "date"), h.store.Now().Location())
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.store.ActiveOn(clock.StartOfDay(day)))
}
