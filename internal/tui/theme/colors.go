package theme

import "github.com/thenoetrevino/tasks/internal/config"

// Colors holds the current theme colors, initialized by Init
var (
	Accent      string
	Subtle      string
	Normal      string
	Done        string
	Deleted     string
	SelectedFg  string
	SelectedBg  string
	InfoFg      string
	WarningFg   string
	ErrorFg     string
	StatusBarFg string
	StatusBarBg string
)

func init() {
	Init(config.DefaultColorScheme())
}

// Init initializes the theme colors from the given color scheme
func Init(colors config.ColorScheme) {
	Accent = colors.Accent
	Subtle = colors.Subtle
	Normal = colors.Normal
	Done = colors.Done
	Deleted = colors.Deleted
	SelectedFg = colors.SelectedFg
	SelectedBg = colors.SelectedBg
	InfoFg = colors.InfoFg
	WarningFg = colors.WarningFg
	ErrorFg = colors.ErrorFg
	StatusBarFg = colors.StatusBarFg
	StatusBarBg = colors.StatusBarBg
}
