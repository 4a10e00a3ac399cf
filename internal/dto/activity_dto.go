package dto

import (
	"time"

	"github.com/noah-isme/solutionsheet-api/internal/models"
)

// ActivityLogListRequest filters the activity trail of an assignment.
type ActivityLogListRequest struct {
	Action   string `query:"action"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ActivityLogResponse is one audit entry.
type ActivityLogResponse struct {
	ID           uint                   `json:"id"`
	AssignmentID uint                   `json:"assignment_id"`
	ActorID      uint                   `json:"actor_id"`
	ActorRole    string                 `json:"actor_role"`
	Action       string                 `json:"action"`
	Plugin       string                 `json:"plugin"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// ActivityLogListResponse wraps a page of audit entries.
type ActivityLogListResponse struct {
	Items      []ActivityLogResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
}

// NewActivityLogResponse converts a model into a DTO.
func NewActivityLogResponse(model models.ActivityLog) ActivityLogResponse {
	var metadata map[string]interface{}
	if len(model.Metadata) > 0 {
		metadata = make(map[string]interface{}, len(model.Metadata))
		for key, value := range model.Metadata {
			metadata[key] = value
		}
	}

	return ActivityLogResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		ActorID:      model.ActorID,
		ActorRole:    model.ActorRole,
		Action:       model.Action,
		Plugin:       model.Plugin,
		Metadata:     metadata,
		CreatedAt:    model.CreatedAt,
	}
}
