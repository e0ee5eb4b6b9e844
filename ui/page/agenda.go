package page

import (
	"fmt"
	"strings"
	"time"

	"github.com/saharsh3008/task/internal/model"
	"github.com/saharsh3008/task/internal/reminder"
)

// Agenda is everything the agenda page renders for one day.
type Agenda struct {
	Now       time.Time
	Today     []model.Task
	Overdue   []model.Task
	Colors    map[string]string
	Reminders []reminder.Delivery
}

// Clock formats t as a time of day in the agenda's location.
func (a Agenda) Clock(t time.Time) string {
	return t.In(a.Now.Location()).Format("15:04")
}

// Meta summarizes due date, recurrence and subtask progress.
func (a Agenda) Meta(t model.Task) string {
	var meta []string
	if t.DueDate != nil {
		meta = append(meta, t.DueDate.In(a.Now.Location()).Format("Jan 2 15:04"))
	}
	if t.IsRecurring() {
		meta = append(meta, "repeats")
	}
	if n := len(t.Subtasks); n > 0 {
		done := 0
		for _, st := range t.Subtasks {
			if st.Completed {
				done++
			}
		}
		meta = append(meta, fmt.Sprintf("%d/%d", done, n))
	}
	return strings.Join(meta, " · ")
}

func (a Agenda) listColor(t model.Task) string {
	return "--list-color: " + a.Colors[t.ListID]
}

func taskState(t model.Task) string {
	if t.Completed {
		return "done"
	}
	return "pending"
}
