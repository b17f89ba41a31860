package tui

import (
	"charm.land/bubbles/v2/key"
	"github.com/thenoetrevino/tasks/internal/config"
)

// KeyMap holds the normal mode bindings built from the configured mappings
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Toggle       key.Binding
	Add          key.Binding
	Edit         key.Binding
	Delete       key.Binding
	ShowDeleted  key.Binding
	EvictDeleted key.Binding
	ToggleSync   key.Binding
	Help         key.Binding
	Quit         key.Binding
}

// NewKeyMap binds the configured keys. Arrow keys, enter and ctrl+c always
// work alongside them.
func NewKeyMap(km config.KeyMappings) KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys(km.PrevTask, "up"),
			key.WithHelp(km.PrevTask+"/up", "previous task"),
		),
		Down: key.NewBinding(
			key.WithKeys(km.NextTask, "down"),
			key.WithHelp(km.NextTask+"/down", "next task"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(km.ToggleTask, "enter"),
			key.WithHelp(km.ToggleTask+"/enter", "toggle done"),
		),
		Add:          key.NewBinding(key.WithKeys(km.AddTask), key.WithHelp(km.AddTask, "add task")),
		Edit:         key.NewBinding(key.WithKeys(km.EditTask), key.WithHelp(km.EditTask, "edit title")),
		Delete:       key.NewBinding(key.WithKeys(km.DeleteTask), key.WithHelp(km.DeleteTask, "delete task")),
		ShowDeleted:  key.NewBinding(key.WithKeys(km.ShowDeleted), key.WithHelp(km.ShowDeleted, "show or hide deleted tasks")),
		EvictDeleted: key.NewBinding(key.WithKeys(km.EvictDeleted), key.WithHelp(km.EvictDeleted, "remove deleted tasks for good")),
		ToggleSync:   key.NewBinding(key.WithKeys(km.ToggleSync), key.WithHelp(km.ToggleSync, "start or stop sync")),
		Help:         key.NewBinding(key.WithKeys(km.ShowHelp), key.WithHelp(km.ShowHelp, "show this help")),
		Quit: key.NewBinding(
			key.WithKeys(km.Quit, "ctrl+c"),
			key.WithHelp(km.Quit, "quit"),
		),
	}
}

// Bindings lists the bindings in the order the help page shows them
func (k KeyMap) Bindings() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Toggle, k.Add, k.Edit, k.Delete,
		k.ShowDeleted, k.EvictDeleted, k.ToggleSync, k.Help, k.Quit,
	}
}
