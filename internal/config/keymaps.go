package config

// KeyMappings defines all configurable key bindings
type KeyMappings struct {
	// Navigation
	PrevTask string `yaml:"prev_task"`
	NextTask string `yaml:"next_task"`

	// Tasks
	ToggleTask   string `yaml:"toggle_task"`
	AddTask      string `yaml:"add_task"`
	EditTask     string `yaml:"edit_task"`
	DeleteTask   string `yaml:"delete_task"`
	ShowDeleted  string `yaml:"show_deleted"`
	EvictDeleted string `yaml:"evict_deleted"`

	// Other
	ToggleSync string `yaml:"toggle_sync"`
	ShowHelp   string `yaml:"show_help"`
	Quit       string `yaml:"quit"`
}

// DefaultKeyMappings returns the default key mappings
func DefaultKeyMappings() KeyMappings {
	return KeyMappings{
		PrevTask: "k",
		NextTask: "j",

		ToggleTask:   "space",
		AddTask:      "c",
		EditTask:     "e",
		DeleteTask:   "d",
		ShowDeleted:  "a",
		EvictDeleted: "X",

		ToggleSync: "s",
		ShowHelp:   "?",
		Quit:       "q",
	}
}

// applyDefaults fills in missing key mappings with defaults
func (k *KeyMappings) applyDefaults() {
	defaults := DefaultKeyMappings()

	for _, pair := range []struct {
		value    *string
		fallback string
	}{
		{&k.PrevTask, defaults.PrevTask},
		{&k.NextTask, defaults.NextTask},
		{&k.ToggleTask, defaults.ToggleTask},
		{&k.AddTask, defaults.AddTask},
		{&k.EditTask, defaults.EditTask},
		{&k.DeleteTask, defaults.DeleteTask},
		{&k.ShowDeleted, defaults.ShowDeleted},
		{&k.EvictDeleted, defaults.EvictDeleted},
		{&k.ToggleSync, defaults.ToggleSync},
		{&k.ShowHelp, defaults.ShowHelp},
		{&k.Quit, defaults.Quit},
	} {
		if *pair.value == "" {
			*pair.value = pair.fallback
		}
	}
}
