package task

import (
	"time"

	"github.com/saharsh3008/task/internal/model"
)

// DueReminders returns pending tasks whose reminder fell in (now-window, now].
// Callers polling more often than window will see a reminder more than once;
// polling less often can skip it.
func (s *Store) DueReminders(now time.Time, window time.Duration) []model.Task {
	from := now.Add(-window)
	out := []model.Task{}
	for i := range s.tasks {
		t := &s.tasks[i]
		if t.Completed || t.Reminder == nil {
			continue
		}
		if t.Reminder.After(from) && !t.Reminder.After(now) {
			out = append(out, t.Clone())
		}
	}
	return out
}
