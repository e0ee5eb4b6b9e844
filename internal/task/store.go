package task

import (
	"log"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saharsh3008/task/internal/clock"
	"github.com/saharsh3008/task/internal/model"
)

// Persister durably round-trips the two collections. Implementations must
// not fail the caller; see storage.Adapter.
type Persister interface {
	Load() ([]model.Task, []model.TaskList)
	Save(tasks []model.Task, lists []model.TaskList)
}

// Store owns the canonical task and list collections.
//
// A Store is not safe for concurrent use. Callers that share one across
// goroutines (the HTTP handler does) must serialize access.
type Store struct {
	persister Persister
	clock     clock.Clock
	logger    *log.Logger
	newID     func() string

	defaultList  model.TaskList
	newListColor string

	tasks []model.Task
	lists []model.TaskList
}

type Option func(*Store)

func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithDefaultList sets the name and color used when the built-in list has
// to be created.
func WithDefaultList(name, color string) Option {
	return func(s *Store) { s.defaultList = model.NewDefaultList(name, color) }
}

func WithNewListColor(color string) Option {
	return func(s *Store) {
		if color != "" {
			s.newListColor = color
		}
	}
}

// NewStore loads persisted state and guarantees the default list exists.
func NewStore(p Persister, opts ...Option) *Store {
	s := &Store{
		persister:    p,
		clock:        clock.Real{},
		logger:       log.Default(),
		newID:        uuid.NewString,
		defaultList:  model.NewDefaultList("", ""),
		newListColor: model.NewListColor,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.tasks, s.lists = p.Load()
	if s.tasks == nil {
		s.tasks = []model.Task{}
	}
	if s.lists == nil {
		s.lists = []model.TaskList{}
	}

	changed := false
	if s.listIndex(model.DefaultListID) < 0 {
		s.lists = append(s.lists, s.defaultList)
		changed = true
	}
	for i := range s.tasks {
		if s.listIndex(s.tasks[i].ListID) < 0 {
			s.logger.Printf("[task] task %s points at missing list %q, moving to %s",
				s.tasks[i].ID, s.tasks[i].ListID, model.DefaultListID)
			s.tasks[i].ListID = model.DefaultListID
			changed = true
		}
	}
	if changed {
		s.save()
	}
	return s
}

func (s *Store) save() {
	s.persister.Save(s.tasks, s.lists)
}

func (s *Store) taskIndex(id string) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
}

func (s *Store) listIndex(id string) int {
	return slices.IndexFunc(s.lists, func(l model.TaskList) bool { return l.ID == id })
}

// resolveListID maps empty or unknown list ids to the default list so a
// task can never reference a list that does not exist.
func (s *Store) resolveListID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || s.listIndex(id) < 0 {
		return model.DefaultListID
	}
	return id
}

// withSubtaskIDs copies subs, giving a fresh id to every subtask whose id is
// empty or already taken earlier in the slice. Subtask ids stay unique
// within a task whatever the caller sends.
func (s *Store) withSubtaskIDs(subs []model.Subtask) []model.Subtask {
	out := make([]model.Subtask, 0, len(subs))
	seen := make(map[string]bool, len(subs))
	for _, st := range subs {
		if st.ID == "" || seen[st.ID] {
			st.ID = s.newID()
		}
		seen[st.ID] = true
		out = append(out, st)
	}
	return out
}

// Now reports the store's current time, in the location views are computed
// in.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}

// GetTask returns a copy of the task with id.
func (s *Store) GetTask(id string) (model.Task, bool) {
	i := s.taskIndex(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// AddTask creates a task from in. The task always starts incomplete.
func (s *Store) AddTask(in NewTask) model.Task {
	now := s.clock.Now()

	priority := in.Priority
	if !priority.Valid() {
		priority = model.PriorityMedium
	}

	t := model.Task{
		ID:          s.newID(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Completed:   false,
		Priority:    priority,
		ListID:      s.resolveListID(in.ListID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.DueDate != nil {
		d := *in.DueDate
		t.DueDate = &d
	}
	if in.Reminder != nil {
		r := *in.Reminder
		t.Reminder = &r
	}
	if len(in.RecurrenceDays) > 0 {
		t.RecurrenceDays = slices.Clone(in.RecurrenceDays)
	}
	if len(in.Subtasks) > 0 {
		t.Subtasks = s.withSubtaskIDs(in.Subtasks)
	}

	s.tasks = append(s.tasks, t)
	s.save()
	return t.Clone()
}

// UpdateTask merges p into the task with id and stamps UpdatedAt.
func (s *Store) UpdateTask(id string, p Patch) (model.Task, bool) {
	i := s.taskIndex(id)
	if i < 0 {
		return model.Task{}, false
	}

	if p.Subtasks != nil {
		subs := s.withSubtaskIDs(*p.Subtasks)
		p.Subtasks = &subs
	}

	now := s.clock.Now()
	t := s.tasks[i].Clone()
	applyPatch(&t, p, now)
	if p.ListID != nil {
		t.ListID = s.resolveListID(*p.ListID)
	}
	t.UpdatedAt = now

	s.tasks[i] = t
	s.save()
	return t.Clone(), true
}

// DeleteTask removes the task with id; deleting an absent id is a no-op.
func (s *Store) DeleteTask(id string) bool {
	before := len(s.tasks)
	s.tasks = slices.DeleteFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
	s.save()
	return len(s.tasks) != before
}

// ToggleTask flips completion. Completing a recurring task with a due date
// first spawns its next occurrence from the pre-toggle state.
func (s *Store) ToggleTask(id string) (model.Task, bool) {
	cur, ok := s.GetTask(id)
	if !ok {
		return model.Task{}, false
	}

	if cur.Completed {
		done := false
		return s.UpdateTask(id, Patch{Completed: &done})
	}

	if cur.IsRecurring() && cur.DueDate != nil {
		if next, ok := s.spawnNextOccurrence(cur); ok {
			s.logger.Printf("[task] recurring task %s spawned %s due %s",
				cur.ID, next.ID, next.DueDate.Format("2006-01-02"))
		}
	}
	done := true
	return s.UpdateTask(id, Patch{Completed: &done})
}
