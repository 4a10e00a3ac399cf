package dto

import (
	"time"

	"github.com/noah-isme/solutionsheet-api/internal/models"
	"github.com/noah-isme/solutionsheet-api/internal/plugin"
)

// SolutionSheetSettingsRequest is the validated solution sheet settings form.
type SolutionSheetSettingsRequest struct {
	Enabled          bool    `json:"enabled"`
	ShowType         int     `json:"show_type" validate:"min=0,max=2"`
	ShowOffsetNumber float64 `json:"show_offset_number" validate:"gte=0"`
	ShowOffsetUnit   int64   `json:"show_offset_unit" validate:"oneof=1 60 3600 86400 604800"`
	HideAfter        string  `json:"hide_after" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ClearFiles       bool    `json:"clear_files"`
}

// SolutionSheetConfigResponse describes the stored solution sheet settings.
type SolutionSheetConfigResponse struct {
	Enabled           bool       `json:"enabled"`
	ShowType          int        `json:"show_type"`
	ShowTypeName      string     `json:"show_type_name"`
	ShowOffsetSeconds int64      `json:"show_offset_seconds"`
	HideAfter         *time.Time `json:"hide_after"`
}

// SolutionFileResponse is a file stored in the solution sheet area.
type SolutionFileResponse struct {
	ID        uint      `json:"id"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSolutionFileResponse converts a model into a DTO.
func NewSolutionFileResponse(model models.SolutionFile) SolutionFileResponse {
	return SolutionFileResponse{
		ID:        model.ID,
		FileName:  model.FileName,
		URL:       model.URL,
		MimeType:  model.MimeType,
		SizeBytes: model.SizeBytes,
		Checksum:  model.Checksum,
		CreatedAt: model.CreatedAt,
	}
}

// SolutionSheetAction is the confirmable show/hide action offered to releasers.
type SolutionSheetAction struct {
	Show    bool   `json:"show"`
	URL     string `json:"url"`
	Label   string `json:"label"`
	Confirm string `json:"confirm"`
}

// SolutionSheetView is the structured view of the solution sheet for one user.
type SolutionSheetView struct {
	AssignmentID     uint                   `json:"assignment_id"`
	FileCount        int                    `json:"file_count"`
	Files            []SolutionFileResponse `json:"files,omitempty"`
	CanView          bool                   `json:"can_view"`
	GreyedOut        bool                   `json:"greyed_out"`
	StudentsCanView  bool                   `json:"students_can_view"`
	HiddenAgain      bool                   `json:"hidden_again"`
	AvailabilityTime int64                  `json:"availability_time"`
	AvailableFrom    *time.Time             `json:"available_from,omitempty"`
	Notice           string                 `json:"notice,omitempty"`
	Message          string                 `json:"message,omitempty"`
	Action           *SolutionSheetAction   `json:"action,omitempty"`
}

// SolutionSheetVisibilityRequest is the body of the manual show/hide override.
type SolutionSheetVisibilityRequest struct {
	Show    *bool `json:"show" form:"show" validate:"required"`
	Confirm bool  `json:"confirm" form:"confirm"`
}

// SolutionSheetVisibilityResponse reports the state after an override.
type SolutionSheetVisibilityResponse struct {
	AssignmentID    uint                        `json:"assignment_id"`
	Show            bool                        `json:"show"`
	Config          SolutionSheetConfigResponse `json:"config"`
	StudentsCanView bool                        `json:"students_can_view"`
}

// SettingsFieldsResponse lists the settings form of a plugin.
type SettingsFieldsResponse struct {
	Plugin       string         `json:"plugin"`
	AssignmentID *uint          `json:"assignment_id,omitempty"`
	Fields       []plugin.Field `json:"fields"`
}

// PluginResponse describes a registered feedback plugin.
type PluginResponse struct {
	Name            string            `json:"name"`
	DisplayName     string            `json:"display_name"`
	FileAreas       map[string]string `json:"file_areas"`
	ConfigFileAreas []string          `json:"config_file_areas"`
	HasUserSummary  bool              `json:"has_user_summary"`
}
