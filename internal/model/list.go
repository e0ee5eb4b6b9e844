package model

const (
	DefaultListID    = "default"
	DefaultListName  = "Inbox"
	DefaultListColor = "#3b82f6"
	NewListColor     = "#64748b"
)

type TaskList struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	IsSystem bool   `json:"isSystem,omitempty"`
}

// NewDefaultList builds the built-in system list every store carries.
func NewDefaultList(name, color string) TaskList {
	if name == "" {
		name = DefaultListName
	}
	if color == "" {
		color = DefaultListColor
	}
	return TaskList{
		ID:       DefaultListID,
		Name:     name,
		Color:    color,
		IsSystem: true,
	}
}
