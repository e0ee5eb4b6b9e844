package task

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/saharsh3008/task/internal/clock"
	"github.com/saharsh3008/task/internal/model"
)

type View string

const (
	ViewAll      View = ""
	ViewToday    View = "today"
	ViewUpcoming View = "upcoming"
)

// ParseView maps user input to a View; unknown values mean all tasks.
func ParseView(s string) View {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case ViewToday:
		return ViewToday
	case ViewUpcoming:
		return ViewUpcoming
	default:
		return ViewAll
	}
}

type Sort string

const (
	SortDefault  Sort = ""
	SortPriority Sort = "priority"
	SortDue      Sort = "due"
)

func ParseSort(s string) Sort {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortPriority:
		return SortPriority
	case SortDue:
		return SortDue
	default:
		return SortDefault
	}
}

type Filter struct {
	ListID string
	View   View
	Search string
	Sort   Sort
}

// GetTasks returns copies of the tasks matching f in display order.
func (s *Store) GetTasks(f Filter) []model.Task {
	now := s.clock.Now()
	today := clock.StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	q := ParseSearch(f.Search)

	out := make([]model.Task, 0, len(s.tasks))
	for i := range s.tasks {
		t := &s.tasks[i]

		if f.ListID != "" && t.ListID != f.ListID {
			continue
		}

		switch f.View {
		case ViewToday:
			if t.DueDate == nil || t.DueDate.Before(today) || !t.DueDate.Before(tomorrow) {
				continue
			}
		case ViewUpcoming:
			if t.DueDate == nil || t.DueDate.Before(today) {
				continue
			}
		}

		if !q.Match(t) {
			continue
		}
		out = append(out, t.Clone())
	}

	sortTasks(out, f.Sort)
	return out
}

// Search is GetTasks restricted to a search string.
func (s *Store) Search(query string) []model.Task {
	return s.GetTasks(Filter{Search: query})
}

// sortTasks applies the default order (pending first, then priority, then
// newest) and, when requested, a stable secondary sort on top of it.
func sortTasks(ts []model.Task, by Sort) {
	slices.SortStableFunc(ts, func(a, b model.Task) int {
		if a.Completed != b.Completed {
			if a.Completed {
				return 1
			}
			return -1
		}
		if c := cmp.Compare(b.Priority.Rank(), a.Priority.Rank()); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	switch by {
	case SortPriority:
		slices.SortStableFunc(ts, func(a, b model.Task) int {
			return cmp.Compare(b.Priority.Rank(), a.Priority.Rank())
		})
	case SortDue:
		slices.SortStableFunc(ts, func(a, b model.Task) int {
			return compareDue(a.DueDate, b.DueDate)
		})
	}
}

// compareDue orders by due date with missing dates last.
func compareDue(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}
