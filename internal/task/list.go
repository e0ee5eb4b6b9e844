package task

import (
	"slices"
	"strings"

	"github.com/saharsh3008/task/internal/model"
)

// GetLists returns a copy of all lists in creation order.
func (s *Store) GetLists() []model.TaskList {
	return slices.Clone(s.lists)
}

func (s *Store) GetList(id string) (model.TaskList, bool) {
	i := s.listIndex(id)
	if i < 0 {
		return model.TaskList{}, false
	}
	return s.lists[i], true
}

// AddList creates a user list. An empty color falls back to the configured
// new-list color.
func (s *Store) AddList(name, color string) model.TaskList {
	if strings.TrimSpace(color) == "" {
		color = s.newListColor
	}
	l := model.TaskList{
		ID:    s.newID(),
		Name:  strings.TrimSpace(name),
		Color: color,
	}
	s.lists = append(s.lists, l)
	s.save()
	return l
}

// RenameList updates name and/or color; empty arguments are left unchanged.
func (s *Store) RenameList(id, name, color string) (model.TaskList, bool) {
	i := s.listIndex(id)
	if i < 0 {
		return model.TaskList{}, false
	}
	if n := strings.TrimSpace(name); n != "" {
		s.lists[i].Name = n
	}
	if c := strings.TrimSpace(color); c != "" {
		s.lists[i].Color = c
	}
	s.save()
	return s.lists[i], true
}

// DeleteList removes a user list and moves its tasks to the default list.
// The default list cannot be deleted.
func (s *Store) DeleteList(id string) bool {
	if id == model.DefaultListID {
		return false
	}
	i := s.listIndex(id)
	if i < 0 {
		return false
	}

	s.lists = slices.Delete(s.lists, i, i+1)
	now := s.clock.Now()
	for j := range s.tasks {
		if s.tasks[j].ListID == id {
			s.tasks[j].ListID = model.DefaultListID
			s.tasks[j].UpdatedAt = now
		}
	}
	s.save()
	return true
}
