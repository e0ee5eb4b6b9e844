package task

import (
	"slices"
	"strings"

	"github.com/saharsh3008/task/internal/model"
)

// AddSubtask appends an unchecked subtask to the task with taskID.
func (s *Store) AddSubtask(taskID, title string) (model.Subtask, bool) {
	t, ok := s.GetTask(taskID)
	if !ok {
		return model.Subtask{}, false
	}
	st := model.Subtask{
		ID:    s.newID(),
		Title: strings.TrimSpace(title),
	}
	subs := append(t.Subtasks, st)
	if _, ok := s.UpdateTask(taskID, Patch{Subtasks: &subs}); !ok {
		return model.Subtask{}, false
	}
	return st, true
}

func (s *Store) ToggleSubtask(taskID, subtaskID string) bool {
	t, ok := s.GetTask(taskID)
	if !ok {
		return false
	}
	i := t.SubtaskIndex(subtaskID)
	if i < 0 {
		return false
	}
	t.Subtasks[i].Completed = !t.Subtasks[i].Completed
	_, ok = s.UpdateTask(taskID, Patch{Subtasks: &t.Subtasks})
	return ok
}

func (s *Store) DeleteSubtask(taskID, subtaskID string) bool {
	t, ok := s.GetTask(taskID)
	if !ok {
		return false
	}
	i := t.SubtaskIndex(subtaskID)
	if i < 0 {
		return false
	}
	subs := slices.Delete(t.Subtasks, i, i+1)
	_, ok = s.UpdateTask(taskID, Patch{Subtasks: &subs})
	return ok
}
