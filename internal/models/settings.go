package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Themes.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Preview layouts.
const (
	LayoutSplit   = "split"
	LayoutEditor  = "editor"
	LayoutPreview = "preview"
)

// Export format names understood by the exporters.
const (
	FormatPDF  = "pdf"
	FormatHTML = "html"
	FormatDOCX = "docx"
	FormatXLSX = "xlsx"
)

// Settings is the singleton editor preferences record.
type Settings struct {
	Theme               string        `json:"theme"`
	FontFamily          string        `json:"font_family"`
	FontSize            int           `json:"font_size"`
	AutosaveInterval    time.Duration `json:"autosave_interval"`
	PreviewLayout       string        `json:"preview_layout"`
	DefaultExportFormat string        `json:"default_export_format"`
}

// Validate checks that every field holds an allowed value.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Theme, validation.Required, validation.In(ThemeLight, ThemeDark, ThemeSystem)),
		validation.Field(&s.FontFamily, validation.Required),
		validation.Field(&s.FontSize, validation.Required, validation.Min(8), validation.Max(72)),
		validation.Field(&s.AutosaveInterval, validation.Required, validation.Min(500*time.Millisecond), validation.Max(5*time.Minute)),
		validation.Field(&s.PreviewLayout, validation.Required, validation.In(LayoutSplit, LayoutEditor, LayoutPreview)),
		validation.Field(&s.DefaultExportFormat, validation.Required, validation.In(FormatPDF, FormatHTML, FormatDOCX, FormatXLSX)),
	)
}

// SettingsPatch is a partial update over the closed set of settings fields.
// Nil fields are left untouched.
type SettingsPatch struct {
	Theme               *string        `json:"theme,omitempty"`
	FontFamily          *string        `json:"font_family,omitempty"`
	FontSize            *int           `json:"font_size,omitempty"`
	AutosaveInterval    *time.Duration `json:"autosave_interval,omitempty"`
	PreviewLayout       *string        `json:"preview_layout,omitempty"`
	DefaultExportFormat *string        `json:"default_export_format,omitempty"`
}

// Apply returns a copy of s with the patch's non-nil fields applied.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.FontFamily != nil {
		s.FontFamily = *p.FontFamily
	}
	if p.FontSize != nil {
		s.FontSize = *p.FontSize
	}
	if p.AutosaveInterval != nil {
		s.AutosaveInterval = *p.AutosaveInterval
	}
	if p.PreviewLayout != nil {
		s.PreviewLayout = *p.PreviewLayout
	}
	if p.DefaultExportFormat != nil {
		s.DefaultExportFormat = *p.DefaultExportFormat
	}
	return s
}

// DefaultSettings returns the first-run preferences.
func DefaultSettings() Settings {
	return Settings{
		Theme:               ThemeSystem,
		FontFamily:          "monospace",
		FontSize:            14,
		AutosaveInterval:    3 * time.Second,
		PreviewLayout:       LayoutSplit,
		DefaultExportFormat: FormatPDF,
	}
}
