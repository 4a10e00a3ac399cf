package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/solutionsheet-api/internal/dto"
	"github.com/noah-isme/solutionsheet-api/internal/models"
	"github.com/noah-isme/solutionsheet-api/internal/plugin"
	"github.com/noah-isme/solutionsheet-api/internal/repository"
)

// Activity actions recorded for the solution sheet plugin.
const (
	ActivitySettingsSaved = "settings_saved"
	ActivityShown         = "shown"
	ActivityHidden        = "hidden"
)

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	AssignmentID uint
	Actor        plugin.Actor
	Action       string
	Plugin       string
	Metadata     map[string]interface{}
}

// ActivityRecorder defines behaviour for recording activity logs.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) (dto.ActivityLogResponse, error)
}

// ActivityService exposes methods to query and persist activity logs.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, assignmentID uint, pluginName string, req dto.ActivityLogListRequest) (dto.ActivityLogListResponse, error)
}

type activityService struct {
	repo      repository.ActivityLogRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, validator *validator.Validate, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:      repo,
		validator: validator,
		logger:    logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) (dto.ActivityLogResponse, error) {
	if strings.TrimSpace(entry.Action) == "" {
		return dto.ActivityLogResponse{}, fmt.Errorf("action is required")
	}
	if strings.TrimSpace(entry.Plugin) == "" {
		return dto.ActivityLogResponse{}, fmt.Errorf("plugin is required")
	}
	if entry.AssignmentID == 0 {
		return dto.ActivityLogResponse{}, fmt.Errorf("assignment is required")
	}

	model := models.ActivityLog{
		AssignmentID: entry.AssignmentID,
		ActorID:      entry.Actor.ID,
		ActorRole:    normalizeRole(entry.Actor.Role),
		Action:       strings.ToLower(strings.TrimSpace(entry.Action)),
		Plugin:       strings.ToLower(strings.TrimSpace(entry.Plugin)),
		Metadata:     sanitizeMetadata(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Uint("assignment_id", entry.AssignmentID).Msg("failed to persist activity log")
		return dto.ActivityLogResponse{}, err
	}

	return dto.NewActivityLogResponse(model), nil
}

func (s *activityService) List(ctx context.Context, assignmentID uint, pluginName string, req dto.ActivityLogListRequest) (dto.ActivityLogListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ActivityLogListResponse{}, err
	}

	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = 20
	}
	page := maxInt(req.Page, 1)

	entries, total, err := s.repo.List(ctx, repository.ActivityLogFilter{
		AssignmentID: assignmentID,
		Plugin:       pluginName,
		Action:       strings.ToLower(strings.TrimSpace(req.Action)),
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		return dto.ActivityLogListResponse{}, err
	}

	responses := make([]dto.ActivityLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityLogResponse(entry))
	}

	return dto.ActivityLogListResponse{
		Items:      responses,
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "token") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func normalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	if r == "" {
		return "system"
	}
	return r
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
