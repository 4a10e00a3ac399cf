package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"

	"github.com/noah-isme/solutionsheet-api/internal/dto"
	"github.com/noah-isme/solutionsheet-api/internal/i18n"
	"github.com/noah-isme/solutionsheet-api/internal/models"
	"github.com/noah-isme/solutionsheet-api/internal/observability"
	"github.com/noah-isme/solutionsheet-api/internal/plugin"
	"github.com/noah-isme/solutionsheet-api/internal/render"
	"github.com/noah-isme/solutionsheet-api/internal/repository"
	"github.com/noah-isme/solutionsheet-api/internal/solutionsheet"
)

const (
	// SolutionSheetPluginName is the registry name of the solution sheet plugin.
	SolutionSheetPluginName = "solutionsheet"
	// SolutionSheetFileArea is the file area holding the solution sheets.
	SolutionSheetFileArea = "solutionsheet"

	configShowAtType = "showattype"
	configShowAtTime = "showattime"
	configHideAfter  = "hideafter"
	configEnabled    = "enabled"

	formPrefix          = "assignfeedback_solutionsheet_"
	FieldEnabled        = formPrefix + "enabled"
	FieldUpload         = formPrefix + "upload"
	FieldShowAtType     = formPrefix + "showattype"
	FieldShowAtTime     = formPrefix + "showattime"
	FieldShowAtNumber   = FieldShowAtTime + "[number]"
	FieldShowAtTimeUnit = FieldShowAtTime + "[timeunit]"
	FieldHideAfter      = formPrefix + "hideafter"
	FieldClearFiles     = formPrefix + "clear_files"

	defaultVisibilityURL = "/api/v2/tutorial/assignments/%d/solutionsheet/visibility"
)

var (
	// ErrConfirmationRequired is returned when a show/hide override is not confirmed.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrReleaseForbidden is returned when the caller may not release solutions.
	ErrReleaseForbidden = errors.New("release capability required")
	// ErrInvalidSettings marks settings form values that cannot be parsed.
	ErrInvalidSettings = errors.New("invalid settings")
)

// SolutionSheetService is the solution sheet feedback plugin plus the manual
// show/hide override.
type SolutionSheetService interface {
	plugin.FeedbackPlugin
	SetVisibility(ctx context.Context, assignment models.Assignment, req dto.SolutionSheetVisibilityRequest, caps plugin.CapabilitySet, actor plugin.Actor) (dto.SolutionSheetVisibilityResponse, error)
	ConfirmationPrompt(tag language.Tag, show bool) string
}

// SolutionSheetDependencies groups the collaborators of the solution sheet service.
type SolutionSheetDependencies struct {
	Configs   repository.PluginConfigRepository
	Files     repository.SolutionFileRepository
	Uploads   UploadService
	Activity  ActivityRecorder
	Publisher ReleasePublisher
	Cache     *redis.Client
	Catalog   *i18n.Bundle
	Renderer  *render.Renderer
	Validator *validator.Validate
}

// SolutionSheetOptions tunes site-wide behaviour of the plugin.
type SolutionSheetOptions struct {
	// AllowImmediateForNew offers "Yes, immediately" while creating assignments.
	AllowImmediateForNew bool
	ConfigCacheTTL       time.Duration
	// Location is used to print availability dates.
	Location *time.Location
	// VisibilityURL is a format string taking the assignment id.
	VisibilityURL string
	Clock         func() time.Time
}

type solutionSheetService struct {
	configs       repository.PluginConfigRepository
	files         repository.SolutionFileRepository
	uploads       UploadService
	activity      ActivityRecorder
	publisher     ReleasePublisher
	cache         *pluginConfigCache
	catalog       *i18n.Bundle
	renderer      *render.Renderer
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
	location      *time.Location
	visibilityURL string
	allowNewNow   bool
}

// NewSolutionSheetService builds the solution sheet plugin.
func NewSolutionSheetService(deps SolutionSheetDependencies, opts SolutionSheetOptions, logger zerolog.Logger) SolutionSheetService {
	component := logger.With().Str("component", "solution_sheet_service").Logger()

	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	location := opts.Location
	if location == nil {
		location = time.UTC
	}
	visibilityURL := opts.VisibilityURL
	if visibilityURL == "" {
		visibilityURL = defaultVisibilityURL
	}

	return &solutionSheetService{
		configs:       deps.Configs,
		files:         deps.Files,
		uploads:       deps.Uploads,
		activity:      deps.Activity,
		publisher:     deps.Publisher,
		cache:         newPluginConfigCache(deps.Cache, opts.ConfigCacheTTL, component),
		catalog:       deps.Catalog,
		renderer:      deps.Renderer,
		validator:     deps.Validator,
		logger:        component,
		tracer:        observability.Tracer("service/solutionsheet"),
		now:           now,
		location:      location,
		visibilityURL: visibilityURL,
		allowNewNow:   opts.AllowImmediateForNew,
	}
}

// storedSettings is the decoded form of the plugin config rows.
type storedSettings struct {
	Enabled bool
	Config  solutionsheet.Config
}

func parseStoredSettings(values map[string]string) storedSettings {
	return storedSettings{
		Enabled: parseConfigInt(values[configEnabled]) != 0,
		Config: solutionsheet.Config{
			ShowType:          solutionsheet.ShowType(parseConfigInt(values[configShowAtType])),
			ShowOffsetSeconds: parseConfigInt(values[configShowAtTime]),
			HideAfter:         parseConfigInt(values[configHideAfter]),
		},
	}
}

func (s storedSettings) values() map[string]string {
	enabled := "0"
	if s.Enabled {
		enabled = "1"
	}
	return map[string]string{
		configEnabled:    enabled,
		configShowAtType: strconv.Itoa(int(s.Config.ShowType)),
		configShowAtTime: strconv.FormatInt(s.Config.ShowOffsetSeconds, 10),
		configHideAfter:  strconv.FormatInt(s.Config.HideAfter, 10),
	}
}

// parseConfigInt reads a stored config value; anything unparseable is 0.
func parseConfigInt(value string) int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func (s *solutionSheetService) Name() string {
	return SolutionSheetPluginName
}

func (s *solutionSheetService) DisplayName(tag language.Tag) string {
	return s.catalog.Text(tag, "pluginname")
}

func (s *solutionSheetService) FileAreas() map[string]string {
	return map[string]string{SolutionSheetFileArea: s.DisplayName(language.MustParse(i18n.BaseLocale))}
}

func (s *solutionSheetService) ConfigFileAreas() []string {
	return []string{SolutionSheetFileArea}
}

func (s *solutionSheetService) HasUserSummary() bool {
	return false
}

func (s *solutionSheetService) loadSettings(ctx context.Context, assignmentID uint) (storedSettings, error) {
	if values, ok := s.cache.get(ctx, SolutionSheetPluginName, assignmentID); ok {
		return parseStoredSettings(values), nil
	}

	values, err := s.configs.Get(ctx, assignmentID, plugin.SubtypeFeedback, SolutionSheetPluginName)
	if err != nil {
		return storedSettings{}, err
	}
	s.cache.fill(ctx, SolutionSheetPluginName, assignmentID, values)

	return parseStoredSettings(values), nil
}

func (s *solutionSheetService) storeSettings(ctx context.Context, assignmentID uint, settings storedSettings) error {
	values := settings.values()
	if err := s.configs.Set(ctx, assignmentID, plugin.SubtypeFeedback, SolutionSheetPluginName, values); err != nil {
		return err
	}
	s.cache.store(ctx, SolutionSheetPluginName, assignmentID, values)
	return nil
}

func (s *solutionSheetService) SettingsFields(ctx context.Context, assignment *models.Assignment, tag language.Tag) ([]plugin.Field, error) {
	current := storedSettings{Enabled: true}
	var fileNames []string
	if assignment != nil {
		loaded, err := s.loadSettings(ctx, assignment.ID)
		if err != nil {
			return nil, err
		}
		current = loaded

		files, err := s.files.ListByArea(ctx, assignment.ID, SolutionSheetFileArea)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			fileNames = append(fileNames, file.FileName)
		}
	}

	text := func(key string) string { return s.catalog.Text(tag, key) }
	notEnabled := plugin.Condition{Field: FieldEnabled, Operator: "notchecked"}

	showOptions := []plugin.Option{{Value: "0", Label: text("no")}}
	// Releasing immediately is offered on new assignments only when the site allows it.
	if assignment != nil || s.allowNewNow {
		showOptions = append(showOptions, plugin.Option{Value: "1", Label: text("yesimmediate")})
	}
	showOptions = append(showOptions, plugin.Option{Value: "2", Label: text("yesfromprefix")})

	unitOptions := make([]plugin.Option, 0, len(solutionsheet.TimeUnits))
	for _, unit := range solutionsheet.TimeUnits {
		unitOptions = append(unitOptions, plugin.Option{Value: strconv.FormatInt(int64(unit), 10), Label: text(unit.Key())})
	}
	number, unit := solutionsheet.SplitDuration(current.Config.ShowOffsetSeconds)

	var hideAfter interface{}
	if current.Config.HideAfter > 0 {
		hideAfter = time.Unix(current.Config.HideAfter, 0).In(s.location).Format(time.RFC3339)
	}

	return []plugin.Field{
		{
			Name:    FieldEnabled,
			Type:    plugin.FieldCheckbox,
			Label:   text("enabled"),
			Default: current.Enabled,
		},
		{
			Name:       FieldUpload,
			Type:       plugin.FieldFileManager,
			Label:      text("uploadsolutionsheets"),
			Default:    fileNames,
			DisabledIf: []plugin.Condition{notEnabled},
		},
		{
			Name:       FieldShowAtType,
			Type:       plugin.FieldRadio,
			Label:      text("showsolutions"),
			Options:    showOptions,
			Default:    strconv.Itoa(int(current.Config.ShowType)),
			DisabledIf: []plugin.Condition{notEnabled},
		},
		{
			Name:    FieldShowAtTime,
			Type:    plugin.FieldDuration,
			Label:   text("yesfromsuffix"),
			Options: unitOptions,
			Default: map[string]int64{"number": number, "timeunit": int64(unit)},
			DisabledIf: []plugin.Condition{
				notEnabled,
				{Field: FieldShowAtType, Operator: "neq", Value: "2"},
			},
		},
		{
			Name:     FieldHideAfter,
			Type:     plugin.FieldDateTime,
			Label:    text("hidesolutionsafter"),
			Default:  hideAfter,
			Optional: true,
		},
	}, nil
}

// parseSettingsForm maps the raw form onto the settings request. Absent
// fields take the form defaults.
func parseSettingsForm(form plugin.SettingsForm) (dto.SolutionSheetSettingsRequest, error) {
	req := dto.SolutionSheetSettingsRequest{
		Enabled:        true,
		ShowOffsetUnit: int64(solutionsheet.UnitMinute),
	}

	if value, ok := form.Value(FieldEnabled); ok {
		enabled, err := parseFormBool(value)
		if err != nil {
			return req, fmt.Errorf("invalid %s: %w", FieldEnabled, err)
		}
		req.Enabled = enabled
	}

	if value, ok := form.Value(FieldShowAtType); ok && strings.TrimSpace(value) != "" {
		showType, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return req, fmt.Errorf("invalid %s: %w", FieldShowAtType, err)
		}
		req.ShowType = showType
	}

	if value, ok := form.Value(FieldShowAtNumber); ok && strings.TrimSpace(value) != "" {
		number, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return req, fmt.Errorf("invalid %s: %w", FieldShowAtNumber, err)
		}
		req.ShowOffsetNumber = number
	}

	if value, ok := form.Value(FieldShowAtTimeUnit); ok && strings.TrimSpace(value) != "" {
		unit, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return req, fmt.Errorf("invalid %s: %w", FieldShowAtTimeUnit, err)
		}
		req.ShowOffsetUnit = unit
	}

	if value, ok := form.Value(FieldHideAfter); ok {
		value = strings.TrimSpace(value)
		if value != "0" {
			req.HideAfter = value
		}
	}

	if value, ok := form.Value(FieldClearFiles); ok {
		clearFiles, err := parseFormBool(value)
		if err != nil {
			return req, fmt.Errorf("invalid %s: %w", FieldClearFiles, err)
		}
		req.ClearFiles = clearFiles
	}

	return req, nil
}

func parseFormBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "off", "no":
		return false, nil
	case "1", "true", "on", "yes":
		return true, nil
	default:
		return false, fmt.Errorf("%q is not a boolean", value)
	}
}

func (s *solutionSheetService) SaveSettings(ctx context.Context, assignment models.Assignment, form plugin.SettingsForm) (err error) {
	ctx, span := s.tracer.Start(ctx, "solutionsheet.save_settings", trace.WithAttributes(
		attribute.Int("assignment.id", int(assignment.ID)),
	))
	defer span.End()

	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, "save failed")
			err = fmt.Errorf("%w: %w", plugin.ErrSaveFailed, err)
		}
		observability.SettingsSaves().WithLabelValues(result).Inc()
	}()

	req, err := parseSettingsForm(form)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	offset, err := solutionsheet.JoinDuration(req.ShowOffsetNumber, solutionsheet.TimeUnit(req.ShowOffsetUnit))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	var hideAfter int64
	if req.HideAfter != "" {
		parsed, err := time.Parse(time.RFC3339, req.HideAfter)
		if err != nil {
			return fmt.Errorf("%w: hide after: %w", ErrInvalidSettings, err)
		}
		hideAfter = parsed.Unix()
	}

	uploaded, err := s.storeUploads(ctx, form.Files[FieldUpload])
	if err != nil {
		return err
	}
	if len(uploaded) > 0 || req.ClearFiles {
		if err := s.files.ReplaceArea(ctx, assignment.ID, SolutionSheetFileArea, uploaded); err != nil {
			return err
		}
	}

	settings := storedSettings{
		Enabled: req.Enabled,
		Config: solutionsheet.Config{
			ShowType:          solutionsheet.ShowType(req.ShowType),
			ShowOffsetSeconds: offset,
			HideAfter:         hideAfter,
		},
	}
	if err := s.storeSettings(ctx, assignment.ID, settings); err != nil {
		return err
	}

	s.recordActivity(ctx, ActivityEntry{
		AssignmentID: assignment.ID,
		Actor:        form.Actor,
		Action:       ActivitySettingsSaved,
		Plugin:       SolutionSheetPluginName,
		Metadata: map[string]interface{}{
			"enabled":             settings.Enabled,
			"show_type":           settings.Config.ShowType.String(),
			"show_offset_seconds": settings.Config.ShowOffsetSeconds,
			"hide_after":          settings.Config.HideAfter,
			"files_uploaded":      len(uploaded),
			"files_cleared":       req.ClearFiles && len(uploaded) == 0,
		},
	})

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Str("show_type", settings.Config.ShowType.String()).
		Int("files", len(uploaded)).
		Msg("solution sheet settings saved")

	return nil
}

func (s *solutionSheetService) storeUploads(ctx context.Context, headers []*multipart.FileHeader) ([]models.SolutionFile, error) {
	if len(headers) == 0 {
		return nil, nil
	}
	if s.uploads == nil {
		return nil, errors.New("file uploads are not configured")
	}

	stored := make([]models.SolutionFile, 0, len(headers))
	for _, header := range headers {
		file, err := s.uploads.Store(ctx, header)
		if err != nil {
			return nil, err
		}
		stored = append(stored, file)
	}
	return stored, nil
}

func (s *solutionSheetService) RenderView(ctx context.Context, req plugin.ViewRequest) (plugin.View, error) {
	ctx, span := s.tracer.Start(ctx, "solutionsheet.render_view", trace.WithAttributes(
		attribute.Int("assignment.id", int(req.Assignment.ID)),
	))
	defer span.End()

	empty := plugin.View{Plugin: SolutionSheetPluginName}

	settings, err := s.loadSettings(ctx, req.Assignment.ID)
	if err != nil {
		span.RecordError(err)
		return empty, err
	}
	if !settings.Enabled {
		observability.SolutionViews().WithLabelValues("disabled").Inc()
		return empty, nil
	}

	count, err := s.files.CountByArea(ctx, req.Assignment.ID, SolutionSheetFileArea)
	if err != nil {
		span.RecordError(err)
		return empty, err
	}
	if count == 0 {
		observability.SolutionViews().WithLabelValues("no_files").Inc()
		return empty, nil
	}

	tag := req.Language
	text := func(key string, args ...interface{}) string { return s.catalog.Text(tag, key, args...) }

	state := solutionsheet.Resolve(settings.Config, req.Assignment.DueUnix(), s.now().Unix())
	canView := solutionsheet.CanUploaderView(
		req.Capabilities.Has(plugin.CapViewSolutionAnytime),
		req.Capabilities.Has(plugin.CapViewSolution),
		state.StudentsCanView,
	)
	canRelease := req.Capabilities.Has(plugin.CapReleaseSolution)

	view := dto.SolutionSheetView{
		AssignmentID:     req.Assignment.ID,
		FileCount:        int(count),
		CanView:          canView,
		StudentsCanView:  state.StudentsCanView,
		HiddenAgain:      state.HiddenAgain,
		AvailabilityTime: state.AvailabilityTime,
	}
	page := render.SolutionSheet{Heading: text("solutions")}

	if canView {
		files, err := s.files.ListByArea(ctx, req.Assignment.ID, SolutionSheetFileArea)
		if err != nil {
			span.RecordError(err)
			return empty, err
		}
		view.GreyedOut = !state.StudentsCanView
		view.Files = make([]dto.SolutionFileResponse, 0, len(files))
		page.ShowFiles = true
		page.GreyedOut = view.GreyedOut
		for _, file := range files {
			view.Files = append(view.Files, dto.NewSolutionFileResponse(file))
			page.Files = append(page.Files, render.File{Name: file.FileName, URL: file.URL})
		}
	}

	if state.StudentsCanView {
		if canRelease {
			view.Action = s.visibilityAction(tag, req.Assignment.ID, false)
			page.HideAction = toRenderAction(view.Action)
		}
	} else {
		if canView && !state.HiddenAgain {
			view.Notice = text("solutionsnotforstudents")
			page.Notice = view.Notice
			if canRelease {
				view.Action = s.visibilityAction(tag, req.Assignment.ID, true)
				page.ShowAction = toRenderAction(view.Action)
			}
		}

		switch {
		case state.HiddenAgain:
			view.Message = text("solutionsnolonger")
		case state.AvailabilityTime == solutionsheet.NeverAvailable:
			view.Message = text("solutionsnotyet")
		default:
			from := time.Unix(state.AvailabilityTime, 0).In(s.location)
			view.AvailableFrom = &from
			view.Message = text("solutionsfrom", s.catalog.FormatTime(tag, from))
		}
		page.Message = view.Message
	}

	html, err := s.renderer.SolutionSheet(page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		return empty, err
	}

	observability.SolutionViews().WithLabelValues(viewOutcome(state)).Inc()

	return plugin.View{
		Plugin:   SolutionSheetPluginName,
		Rendered: true,
		HTML:     html,
		Data:     view,
	}, nil
}

func viewOutcome(state solutionsheet.State) string {
	switch {
	case state.StudentsCanView:
		return "visible"
	case state.HiddenAgain:
		return "hidden_again"
	case state.AvailabilityTime == solutionsheet.NeverAvailable:
		return "never"
	default:
		return "pending"
	}
}

func (s *solutionSheetService) visibilityAction(tag language.Tag, assignmentID uint, show bool) *dto.SolutionSheetAction {
	label := "dohidesolutions"
	if show {
		label = "doshowsolutions"
	}
	return &dto.SolutionSheetAction{
		Show:    show,
		URL:     fmt.Sprintf(s.visibilityURL, assignmentID),
		Label:   s.catalog.Text(tag, label),
		Confirm: s.ConfirmationPrompt(tag, show),
	}
}

func toRenderAction(action *dto.SolutionSheetAction) *render.Action {
	if action == nil {
		return nil
	}
	return &render.Action{Show: action.Show, URL: action.URL, Label: action.Label, Confirm: action.Confirm}
}

func (s *solutionSheetService) ConfirmationPrompt(tag language.Tag, show bool) string {
	if show {
		return s.catalog.Text(tag, "confirmshowsolutions")
	}
	return s.catalog.Text(tag, "confirmhidesolutions")
}

func (s *solutionSheetService) SetVisibility(ctx context.Context, assignment models.Assignment, req dto.SolutionSheetVisibilityRequest, caps plugin.CapabilitySet, actor plugin.Actor) (dto.SolutionSheetVisibilityResponse, error) {
	ctx, span := s.tracer.Start(ctx, "solutionsheet.set_visibility", trace.WithAttributes(
		attribute.Int("assignment.id", int(assignment.ID)),
	))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return dto.SolutionSheetVisibilityResponse{}, err
	}
	if !caps.Has(plugin.CapReleaseSolution) {
		return dto.SolutionSheetVisibilityResponse{}, ErrReleaseForbidden
	}
	if !req.Confirm {
		return dto.SolutionSheetVisibilityResponse{}, ErrConfirmationRequired
	}

	show := *req.Show
	span.SetAttributes(attribute.Bool("solutionsheet.show", show))

	settings, err := s.loadSettings(ctx, assignment.ID)
	if err != nil {
		span.RecordError(err)
		return dto.SolutionSheetVisibilityResponse{}, err
	}

	action := ActivityHidden
	if show {
		action = ActivityShown
		settings.Enabled = true
		settings.Config.ShowType = solutionsheet.ShowImmediately
		settings.Config.HideAfter = 0
	} else {
		settings.Config.ShowType = solutionsheet.ShowNever
	}

	if err := s.storeSettings(ctx, assignment.ID, settings); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return dto.SolutionSheetVisibilityResponse{}, err
	}

	observability.VisibilityChanges().WithLabelValues(action).Inc()

	s.recordActivity(ctx, ActivityEntry{
		AssignmentID: assignment.ID,
		Actor:        actor,
		Action:       action,
		Plugin:       SolutionSheetPluginName,
		Metadata:     map[string]interface{}{"show": show},
	})

	if s.publisher != nil {
		event := ReleaseEvent{
			AssignmentID: assignment.ID,
			Plugin:       SolutionSheetPluginName,
			Action:       action,
			Show:         show,
			ActorID:      actor.ID,
			SentAt:       s.now().UTC(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn().Err(err).Uint("assignment_id", assignment.ID).Msg("release event not delivered")
		}
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Bool("show", show).Uint("actor_id", actor.ID).Msg("solution visibility changed")

	state := solutionsheet.Resolve(settings.Config, assignment.DueUnix(), s.now().Unix())
	return dto.SolutionSheetVisibilityResponse{
		AssignmentID:    assignment.ID,
		Show:            show,
		Config:          s.configResponse(settings),
		StudentsCanView: state.StudentsCanView,
	}, nil
}

func (s *solutionSheetService) configResponse(settings storedSettings) dto.SolutionSheetConfigResponse {
	response := dto.SolutionSheetConfigResponse{
		Enabled:           settings.Enabled,
		ShowType:          int(settings.Config.ShowType),
		ShowTypeName:      settings.Config.ShowType.String(),
		ShowOffsetSeconds: settings.Config.ShowOffsetSeconds,
	}
	if settings.Config.HideAfter > 0 {
		hideAfter := time.Unix(settings.Config.HideAfter, 0).In(s.location)
		response.HideAfter = &hideAfter
	}
	return response
}

func (s *solutionSheetService) recordActivity(ctx context.Context, entry ActivityEntry) {
	if s.activity == nil {
		return
	}
	if _, err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Uint("assignment_id", entry.AssignmentID).Str("action", entry.Action).Msg("activity not recorded")
	}
}
