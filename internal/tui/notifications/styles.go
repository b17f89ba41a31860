package notifications

import "github.com/thenoetrevino/tasks/internal/tui/theme"

type style struct {
	icon       string
	foreground string
}

func (s Severity) style() style {
	switch s {
	case Warning:
		return style{icon: "⚠", foreground: theme.WarningFg}
	case Error:
		return style{icon: "✕", foreground: theme.ErrorFg}
	default:
		return style{icon: "•", foreground: theme.InfoFg}
	}
}
