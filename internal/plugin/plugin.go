// Package plugin defines the contract between the assignment host and its
// feedback plugins.
package plugin

import (
	"context"
	"errors"
	"mime/multipart"

	"golang.org/x/text/language"

	"github.com/noah-isme/solutionsheet-api/internal/models"
)

// SubtypeFeedback is the plugin subtype used when persisting feedback plugin config.
const SubtypeFeedback = "assignfeedback"

// ErrSaveFailed is returned by SaveSettings whenever the settings could not be stored.
var ErrSaveFailed = errors.New("plugin settings could not be saved")

// FeedbackPlugin is implemented by every feedback plugin the host can load.
type FeedbackPlugin interface {
	// Name returns the short plugin name used in routes and config rows.
	Name() string
	// DisplayName returns the localised plugin name.
	DisplayName(tag language.Tag) string
	// SettingsFields describes the settings form. assignment is nil while the
	// assignment is being created.
	SettingsFields(ctx context.Context, assignment *models.Assignment, tag language.Tag) ([]Field, error)
	// SaveSettings persists submitted settings; failures wrap ErrSaveFailed.
	SaveSettings(ctx context.Context, assignment models.Assignment, form SettingsForm) error
	// RenderView builds what the caller may see of the plugin for an assignment.
	RenderView(ctx context.Context, req ViewRequest) (View, error)
	// FileAreas maps every file area the plugin stores files in to a description.
	FileAreas() map[string]string
	// ConfigFileAreas lists the file areas that belong to the plugin configuration.
	ConfigFileAreas() []string
	// HasUserSummary reports whether the plugin shows up in the grading table.
	HasUserSummary() bool
}

// FieldType identifies how a settings field is rendered.
type FieldType string

const (
	FieldFileManager FieldType = "filemanager"
	FieldRadio       FieldType = "radio"
	FieldDuration    FieldType = "duration"
	FieldDateTime    FieldType = "date_time"
	FieldCheckbox    FieldType = "checkbox"
)

// Option is one choice of a radio or select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Condition disables a field while another field matches.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value,omitempty"`
}

// Field describes one element of a plugin settings form.
type Field struct {
	Name       string      `json:"name"`
	Type       FieldType   `json:"type"`
	Label      string      `json:"label"`
	Options    []Option    `json:"options,omitempty"`
	Default    interface{} `json:"default,omitempty"`
	Optional   bool        `json:"optional,omitempty"`
	DisabledIf []Condition `json:"disabled_if,omitempty"`
}

// Actor identifies the user performing an operation.
type Actor struct {
	ID   uint
	Role string
}

// SettingsForm carries the submitted settings form.
type SettingsForm struct {
	Values map[string]string
	Files  map[string][]*multipart.FileHeader
	Actor  Actor
}

// Value returns the raw form value for key.
func (f SettingsForm) Value(key string) (string, bool) {
	if f.Values == nil {
		return "", false
	}
	value, ok := f.Values[key]
	return value, ok
}

// ViewRequest describes who is looking at a plugin on which assignment.
type ViewRequest struct {
	Assignment   models.Assignment
	Capabilities CapabilitySet
	Language     language.Tag
	Actor        Actor
}

// View is the rendered output of a plugin for one viewer.
type View struct {
	Plugin   string      `json:"plugin"`
	Rendered bool        `json:"rendered"`
	HTML     string      `json:"html"`
	Data     interface{} `json:"data,omitempty"`
}
