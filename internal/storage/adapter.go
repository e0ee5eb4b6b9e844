package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/saharsh3008/task/internal/model"
)

const (
	tasksKey = "tasks"
	listsKey = "lists"
)

type AdapterOptions struct {
	Logger    *log.Logger
	KeyPrefix string
	Timeout   time.Duration
}

// Adapter round-trips the task and list collections through a Backend.
// Failures never reach the caller: Load degrades to empty collections and
// Save logs and records the error.
type Adapter struct {
	backend Backend
	logger  *log.Logger
	prefix  string
	timeout time.Duration

	mu      sync.Mutex
	lastErr error
}

func NewAdapter(backend Backend, opts AdapterOptions) *Adapter {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return &Adapter{
		backend: backend,
		logger:  opts.Logger,
		prefix:  opts.KeyPrefix,
		timeout: opts.Timeout,
	}
}

func (a *Adapter) TasksKey() string { return a.prefix + tasksKey }
func (a *Adapter) ListsKey() string { return a.prefix + listsKey }

func (a *Adapter) Backend() Backend { return a.backend }

// Load reads both collections. Missing keys are empty; anything unreadable
// discards both collections.
func (a *Adapter) Load() ([]model.Task, []model.TaskList) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	var (
		tasks []model.Task
		lists []model.TaskList
	)
	if err := a.read(ctx, a.TasksKey(), &tasks); err != nil {
		a.logger.Printf("[storage] failed to load store: %v", err)
		return []model.Task{}, []model.TaskList{}
	}
	if err := a.read(ctx, a.ListsKey(), &lists); err != nil {
		a.logger.Printf("[storage] failed to load store: %v", err)
		return []model.Task{}, []model.TaskList{}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	if lists == nil {
		lists = []model.TaskList{}
	}
	return tasks, lists
}

func (a *Adapter) read(ctx context.Context, key string, out any) error {
	b, err := a.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Save writes both collections. A failure leaves in-memory state ahead of
// durable state; it is logged and exposed through LastError.
func (a *Adapter) Save(tasks []model.Task, lists []model.TaskList) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	err := a.write(ctx, a.TasksKey(), tasks)
	if err == nil {
		err = a.write(ctx, a.ListsKey(), lists)
	}
	if err != nil {
		a.logger.Printf("[storage] failed to save store: %v", err)
	}

	a.mu.Lock()
	a.lastErr = err
	a.mu.Unlock()
}

func (a *Adapter) write(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := a.backend.Put(ctx, key, b); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// LastError returns the error of the most recent Save, or nil.
func (a *Adapter) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}
