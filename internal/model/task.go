package model

import (
	"slices"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities for sorting; unknown values rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Weekdays is a set of weekday indices (0=Sunday..6=Saturday).
// Empty means the task does not recur.
type Weekdays []time.Weekday

func (w Weekdays) Has(d time.Weekday) bool {
	return slices.Contains(w, d)
}

type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Completed      bool       `json:"completed"`
	Priority       Priority   `json:"priority"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	Reminder       *time.Time `json:"reminder,omitempty"`
	RecurrenceDays Weekdays   `json:"recurrenceDays,omitempty"`
	Subtasks       []Subtask  `json:"subtasks,omitempty"`
	ListID         string     `json:"listId"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// IsRecurring returns true if the task repeats on at least one weekday.
func (t *Task) IsRecurring() bool {
	return len(t.RecurrenceDays) > 0
}

func (t *Task) SubtaskIndex(id string) int {
	return slices.IndexFunc(t.Subtasks, func(s Subtask) bool { return s.ID == id })
}

// Clone returns a deep copy; the result shares no memory with t.
func (t Task) Clone() Task {
	out := t
	out.DueDate = cloneTime(t.DueDate)
	out.CompletedAt = cloneTime(t.CompletedAt)
	out.Reminder = cloneTime(t.Reminder)
	if t.RecurrenceDays != nil {
		out.RecurrenceDays = slices.Clone(t.RecurrenceDays)
	}
	if t.Subtasks != nil {
		out.Subtasks = slices.Clone(t.Subtasks)
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
