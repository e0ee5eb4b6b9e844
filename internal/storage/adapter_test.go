package storage

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saharsh3008/task/internal/model"
)

type failingBackend struct {
	getErr error
	putErr error
}

func (f failingBackend) Get(context.Context, string) ([]byte, error) { return nil, f.getErr }
func (f failingBackend) Put(context.Context, string, []byte) error  { return f.putErr }
func (f failingBackend) Close() error                                { return nil }

func newTestAdapter(b Backend) (*Adapter, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewAdapter(b, AdapterOptions{
		Logger:    log.New(&buf, "", 0),
		KeyPrefix: "taskdeck-",
	}), &buf
}

func TestAdapter_LoadEmptyBackend(t *testing.T) {
	a, logs := newTestAdapter(NewMemoryBackend())

	tasks, lists := a.Load()
	assert.Empty(t, tasks)
	assert.NotNil(t, tasks)
	assert.Empty(t, lists)
	assert.Empty(t, logs.String())
}

func TestAdapter_RoundTrip(t *testing.T) {
	a, _ := newTestAdapter(NewMemoryBackend())

	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 1)
	tasks := []model.Task{
		{
			ID:             "t1",
			Title:          "pick up eggs",
			Description:    "from the store",
			Priority:       model.PriorityHigh,
			DueDate:        &due,
			RecurrenceDays: model.Weekdays{time.Monday, time.Thursday},
			Subtasks:       []model.Subtask{{ID: "s1", Title: "dozen", Completed: true}},
			ListID:         model.DefaultListID,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:          "t2",
			Title:       "pay rent",
			Completed:   true,
			CompletedAt: &now,
			Priority:    model.PriorityLow,
			ListID:      "l1",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	lists := []model.TaskList{
		model.NewDefaultList("", ""),
		{ID: "l1", Name: "Home", Color: "#64748b"},
	}

	a.Save(tasks, lists)
	require.NoError(t, a.LastError())

	gotTasks, gotLists := a.Load()
	assert.Equal(t, tasks, gotTasks)
	assert.Equal(t, lists, gotLists)
}

func TestAdapter_LoadCorruptDataFailsOpen(t *testing.T) {
	b := NewMemoryBackend()
	require.NoError(t, b.Put(context.Background(), "taskdeck-tasks", []byte(`[{"id":"ok"}]`)))
	require.NoError(t, b.Put(context.Background(), "taskdeck-lists", []byte(`{not json`)))
	a, logs := newTestAdapter(b)

	tasks, lists := a.Load()
	assert.Empty(t, tasks)
	assert.Empty(t, lists)
	assert.Contains(t, logs.String(), "failed to load store")
}

func TestAdapter_LoadBackendErrorFailsOpen(t *testing.T) {
	a, logs := newTestAdapter(failingBackend{getErr: errors.New("disk on fire")})

	tasks, lists := a.Load()
	assert.Empty(t, tasks)
	assert.Empty(t, lists)
	assert.Contains(t, logs.String(), "disk on fire")
}

func TestAdapter_SaveFailureIsSwallowed(t *testing.T) {
	a, logs := newTestAdapter(failingBackend{putErr: errors.New("read-only")})

	assert.NotPanics(t, func() {
		a.Save([]model.Task{{ID: "t1"}}, nil)
	})
	assert.ErrorContains(t, a.LastError(), "read-only")
	assert.Contains(t, logs.String(), "failed to save store")
}

func TestAdapter_SaveRecoversLastError(t *testing.T) {
	b := &flakyBackend{MemoryBackend: NewMemoryBackend(), fail: true}
	a, _ := newTestAdapter(b)

	a.Save(nil, nil)
	assert.Error(t, a.LastError())

	b.fail = false
	a.Save(nil, nil)
	assert.NoError(t, a.LastError())
}

type flakyBackend struct {
	*MemoryBackend
	fail bool
}

func (f *flakyBackend) Put(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("flaky")
	}
	return f.MemoryBackend.Put(ctx, key, value)
}

func TestAdapter_Keys(t *testing.T) {
	a, _ := newTestAdapter(NewMemoryBackend())
	assert.Equal(t, "taskdeck-tasks", a.TasksKey())
	assert.Equal(t, "taskdeck-lists", a.ListsKey())
}
