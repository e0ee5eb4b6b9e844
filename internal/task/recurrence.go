package task

import (
	"time"

	"github.com/saharsh3008/task/internal/clock"
	"github.com/saharsh3008/task/internal/model"
)

// MaxRecurrenceScanDays bounds the forward search for the next occurrence.
const MaxRecurrenceScanDays = 365

// MaxActivityRangeDays bounds ActivityBetween.
const MaxActivityRangeDays = 366

const dateLayout = "2006-01-02"

// NextOccurrence finds the first day after due whose weekday is in days,
// keeping due's time of day. It gives up after MaxRecurrenceScanDays.
func NextOccurrence(due time.Time, days model.Weekdays) (time.Time, bool) {
	if len(days) == 0 {
		return time.Time{}, false
	}
	for i := 1; i <= MaxRecurrenceScanDays; i++ {
		d := due.AddDate(0, 0, i)
		if days.Has(d.Weekday()) {
			return d, true
		}
	}
	return time.Time{}, false
}

// spawnNextOccurrence materializes the next occurrence of cur through the
// normal add path. Subtasks are carried over unchecked with new ids.
func (s *Store) spawnNextOccurrence(cur model.Task) (model.Task, bool) {
	if cur.DueDate == nil {
		return model.Task{}, false
	}
	next, ok := NextOccurrence(*cur.DueDate, cur.RecurrenceDays)
	if !ok {
		return model.Task{}, false
	}

	in := NewTask{
		Title:          cur.Title,
		Description:    cur.Description,
		Priority:       cur.Priority,
		ListID:         cur.ListID,
		RecurrenceDays: cur.RecurrenceDays,
		DueDate:        &next,
	}
	if cur.Reminder != nil {
		r := next.Add(cur.Reminder.Sub(*cur.DueDate))
		in.Reminder = &r
	}
	for _, st := range cur.Subtasks {
		in.Subtasks = append(in.Subtasks, model.Subtask{Title: st.Title})
	}
	return s.AddTask(in), true
}

// ActiveOn reports whether t has activity on the calendar day of day
// (in day's location): a pending recurrence on that weekday, a due date,
// or a completion. No rows are created.
func ActiveOn(t *model.Task, day time.Time) bool {
	loc := day.Location()
	if !t.Completed && t.RecurrenceDays.Has(day.Weekday()) {
		return true
	}
	if t.DueDate != nil && clock.SameDay(*t.DueDate, day, loc) {
		return true
	}
	if t.CompletedAt != nil && clock.SameDay(*t.CompletedAt, day, loc) {
		return true
	}
	return false
}

// ActiveOn returns copies of every task with activity on day, in display
// order.
func (s *Store) ActiveOn(day time.Time) []model.Task {
	out := []model.Task{}
	for i := range s.tasks {
		if ActiveOn(&s.tasks[i], day) {
			out = append(out, s.tasks[i].Clone())
		}
	}
	sortTasks(out, SortDefault)
	return out
}

// ActivityBetween counts active tasks per day over the inclusive range
// [from, to], keyed YYYY-MM-DD. Days without activity are omitted and the
// range is truncated to MaxActivityRangeDays.
func (s *Store) ActivityBetween(from, to time.Time) map[string]int {
	out := map[string]int{}
	day := clock.StartOfDay(from)
	last := clock.StartOfDay(to)
	for i := 0; i < MaxActivityRangeDays && !day.After(last); i++ {
		n := 0
		for j := range s.tasks {
			if ActiveOn(&s.tasks[j], day) {
				n++
			}
		}
		if n > 0 {
			out[day.Format(dateLayout)] = n
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}
