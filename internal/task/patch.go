package task

import (
	"slices"
	"time"

	"github.com/saharsh3008/task/internal/model"
)

// NewTask carries the caller-supplied fields of a task being created.
// Id, completion and timestamps are always assigned by the store.
type NewTask struct {
	Title          string
	Description    string
	Priority       model.Priority
	DueDate        *time.Time
	Reminder       *time.Time
	RecurrenceDays model.Weekdays
	Subtasks       []model.Subtask
	ListID         string
}

// Patch represents a partial update.
// nil pointer => "no change"
// Clear* => set the optional field to absent
type Patch struct {
	Title       *string
	Description *string
	Priority    *model.Priority
	Completed   *bool
	ListID      *string

	DueDate      *time.Time
	ClearDueDate bool

	Reminder      *time.Time
	ClearReminder bool

	// An empty slice stops the task from recurring.
	RecurrenceDays *model.Weekdays

	Subtasks *[]model.Subtask
}

// IsEmpty reports whether applying p would change nothing but UpdatedAt.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Completed == nil && p.ListID == nil &&
		p.DueDate == nil && !p.ClearDueDate &&
		p.Reminder == nil && !p.ClearReminder &&
		p.RecurrenceDays == nil && p.Subtasks == nil
}

func applyPatch(t *model.Task, p Patch, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil && p.Priority.Valid() {
		t.Priority = *p.Priority
	}

	switch {
	case p.ClearDueDate:
		t.DueDate = nil
	case p.DueDate != nil:
		d := *p.DueDate
		t.DueDate = &d
	}

	switch {
	case p.ClearReminder:
		t.Reminder = nil
	case p.Reminder != nil:
		r := *p.Reminder
		t.Reminder = &r
	}

	if p.RecurrenceDays != nil {
		if len(*p.RecurrenceDays) == 0 {
			t.RecurrenceDays = nil
		} else {
			t.RecurrenceDays = slices.Clone(*p.RecurrenceDays)
		}
	}

	if p.Subtasks != nil {
		if len(*p.Subtasks) == 0 {
			t.Subtasks = nil
		} else {
			t.Subtasks = slices.Clone(*p.Subtasks)
		}
	}

	// completedAt tracks the most recent false -> true transition
	if p.Completed != nil && *p.Completed != t.Completed {
		t.Completed = *p.Completed
		if t.Completed {
			at := now
			t.CompletedAt = &at
		} else {
			t.CompletedAt = nil
		}
	}
}
