package serverapp

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/saharsh3008/task/internal/clock"
	"github.com/saharsh3008/task/internal/reminder"
	"github.com/saharsh3008/task/internal/task"
	"github.com/saharsh3008/task/ui/page"
)

func agendaHandler(tasks *task.Handler, history *reminder.History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data page.Agenda
		tasks.Do(func(s *task.Store) {
			data = loadAgenda(s)
		})
		if history != nil {
			data.Reminders = history.Since(clock.StartOfDay(data.Now))
		}
		templ.Handler(page.AgendaPage(data)).ServeHTTP(w, r)
	}
}

// loadAgenda collects today's active tasks and every pending task that is
// past due.
func loadAgenda(s *task.Store) page.Agenda {
	now := s.Now()
	today := clock.StartOfDay(now)

	data := page.Agenda{
		Now:    now,
		Today:  s.ActiveOn(today),
		Colors: map[string]string{},
	}
	for _, l := range s.GetLists() {
		data.Colors[l.ID] = l.Color
	}
	for _, t := range s.GetTasks(task.Filter{Search: "is:pending", Sort: task.SortDue}) {
		if t.DueDate != nil && t.DueDate.Before(today) {
			data.Overdue = append(data.Overdue, t)
		}
	}
	return data
}
