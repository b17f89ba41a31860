package config

// ColorScheme defines the configurable colors for the CLI and TUI
type ColorScheme struct {
	// Preset name ("default" or "monochrome")
	Preset string `yaml:"preset"`

	Accent  string `yaml:"accent"` // Selections, titles, highlights
	Normal  string `yaml:"normal"`
	Subtle  string `yaml:"subtle"` // Muted text and help
	Done    string `yaml:"done"`
	Deleted string `yaml:"deleted"`

	SelectedFg string `yaml:"selected_fg"`
	SelectedBg string `yaml:"selected_bg"`

	// Notification foregrounds
	InfoFg    string `yaml:"info_fg"`
	WarningFg string `yaml:"warning_fg"`
	ErrorFg   string `yaml:"error_fg"`

	StatusBarFg string `yaml:"status_bar_fg"`
	StatusBarBg string `yaml:"status_bar_bg"`
}

// DefaultColorScheme returns the default color scheme (purple theme)
func DefaultColorScheme() ColorScheme {
	return ColorScheme{
		Preset:      "default",
		Accent:      "#874BFD",
		Normal:      "#D0D0D0",
		Subtle:      "#585858",
		Done:        "#5FD75F",
		Deleted:     "#FF5F5F",
		SelectedFg:  "#FFFFFF",
		SelectedBg:  "#3A3A3A",
		InfoFg:      "#00AFFF",
		WarningFg:   "#FFD700",
		ErrorFg:     "#FF0000",
		StatusBarFg: "#D0D0D0",
		StatusBarBg: "#303030",
	}
}

// MonochromeColorScheme returns a black and white color scheme
func MonochromeColorScheme() ColorScheme {
	return ColorScheme{
		Preset:      "monochrome",
		Accent:      "#FFFFFF",
		Normal:      "#D0D0D0",
		Subtle:      "#808080",
		Done:        "#FFFFFF",
		Deleted:     "#808080",
		SelectedFg:  "#000000",
		SelectedBg:  "#D0D0D0",
		InfoFg:      "#FFFFFF",
		WarningFg:   "#FFFFFF",
		ErrorFg:     "#FFFFFF",
		StatusBarFg: "#000000",
		StatusBarBg: "#D0D0D0",
	}
}

// GetPreset returns a preset color scheme by name
func GetPreset(name string) ColorScheme {
	if name == "monochrome" {
		return MonochromeColorScheme()
	}
	return DefaultColorScheme()
}

func (c *ColorScheme) fields() []*string {
	return []*string{
		&c.Accent, &c.Normal, &c.Subtle, &c.Done, &c.Deleted,
		&c.SelectedFg, &c.SelectedBg,
		&c.InfoFg, &c.WarningFg, &c.ErrorFg,
		&c.StatusBarFg, &c.StatusBarBg,
	}
}

// ApplyDefaults fills in missing color values using the preset as base
func (c *ColorScheme) ApplyDefaults() {
	preset := GetPreset(c.Preset)
	if c.Preset == "" {
		c.Preset = preset.Preset
	}

	base := preset.fields()
	for i, field := range c.fields() {
		if *field == "" {
			*field = *base[i]
		}
	}
}

// MergeFrom overwrites colors with every non-empty value from other
func (c *ColorScheme) MergeFrom(other ColorScheme) {
	if other.Preset != "" {
		c.Preset = other.Preset
	}

	src := other.fields()
	for i, field := range c.fields() {
		if *src[i] != "" {
			*field = *src[i]
		}
	}
}
