package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/noah-isme/solutionsheet-api/internal/dto"
	"github.com/noah-isme/solutionsheet-api/internal/i18n"
	"github.com/noah-isme/solutionsheet-api/internal/middleware"
	"github.com/noah-isme/solutionsheet-api/internal/models"
	"github.com/noah-isme/solutionsheet-api/internal/plugin"
	"github.com/noah-isme/solutionsheet-api/internal/service"
	"github.com/noah-isme/solutionsheet-api/internal/utils"
)

// SolutionSheetOptions configures the feedback plugin routes.
type SolutionSheetOptions struct {
	DefaultLocale string
	// VisibilityLimiter throttles the show/hide override; nil disables it.
	VisibilityLimiter fiber.Handler
}

// SolutionSheetHandler exposes feedback plugins and the solution sheet override.
type SolutionSheetHandler struct {
	assignments   service.AssignmentService
	registry      *plugin.Registry
	solutions     service.SolutionSheetService
	activity      service.ActivityService
	catalog       *i18n.Bundle
	validator     *validator.Validate
	logger        zerolog.Logger
	defaultLocale string
	limiter       fiber.Handler
}

// NewSolutionSheetHandler constructs the handler.
func NewSolutionSheetHandler(
	assignments service.AssignmentService,
	registry *plugin.Registry,
	solutions service.SolutionSheetService,
	activity service.ActivityService,
	catalog *i18n.Bundle,
	validate *validator.Validate,
	opts SolutionSheetOptions,
	logger zerolog.Logger,
) *SolutionSheetHandler {
	limiter := opts.VisibilityLimiter
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}

	return &SolutionSheetHandler{
		assignments:   assignments,
		registry:      registry,
		solutions:     solutions,
		activity:      activity,
		catalog:       catalog,
		validator:     validate,
		logger:        logger.With().Str("component", "solution_sheet_handler").Logger(),
		defaultLocale: opts.DefaultLocale,
		limiter:       limiter,
	}
}

// Register attaches the plugin endpoints to the /api/v2 router.
func (h *SolutionSheetHandler) Register(router fiber.Router) {
	teacherOnly := middleware.RequireRole("admin", "teacher")

	router.Get("/plugins", h.listPlugins)
	router.Get("/:plugin/settings", teacherOnly, h.newAssignmentSettings)

	assignment := router.Group("/tutorial/assignments/:id")
	assignment.Post("/solutionsheet/visibility", h.limiter, h.setVisibility)
	assignment.Get("/:plugin", h.view)
	assignment.Get("/:plugin/settings", teacherOnly, h.settings)
	assignment.Put("/:plugin/settings", teacherOnly, h.saveSettings)
	assignment.Get("/:plugin/activity", middleware.RequireCapability(plugin.CapReleaseSolution), h.listActivity)
}

func (h *SolutionSheetHandler) language(c *fiber.Ctx) language.Tag {
	tag := h.catalog.Match(c.Query("lang"), userLanguageFromContext(c), c.Get(fiber.HeaderAcceptLanguage), h.defaultLocale)
	c.Set(fiber.HeaderContentLanguage, tag.String())
	return tag
}

func (h *SolutionSheetHandler) plugin(c *fiber.Ctx) (plugin.FeedbackPlugin, error) {
	p, err := h.registry.Get(c.Params("plugin"))
	if err != nil {
		return nil, utils.SendError(c, fiber.StatusNotFound, "plugin not found")
	}
	return p, nil
}

func (h *SolutionSheetHandler) assignment(c *fiber.Ctx) (models.Assignment, error) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return models.Assignment{}, utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.assignments.Find(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			return models.Assignment{}, utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		}
		return models.Assignment{}, h.internalError(c, err)
	}
	return assignment, nil
}

// resolve loads the plugin and assignment named in the path. When ok is
// false the response has been sent and err must be returned as is.
func (h *SolutionSheetHandler) resolve(c *fiber.Ctx) (plugin.FeedbackPlugin, models.Assignment, bool, error) {
	p, err := h.plugin(c)
	if p == nil {
		return nil, models.Assignment{}, false, err
	}
	assignment, err := h.assignment(c)
	if assignment.ID == 0 {
		return nil, models.Assignment{}, false, err
	}
	return p, assignment, true, nil
}

func (h *SolutionSheetHandler) listPlugins(c *fiber.Ctx) error {
	tag := h.language(c)

	plugins := h.registry.List()
	response := make([]dto.PluginResponse, 0, len(plugins))
	for _, p := range plugins {
		response = append(response, dto.PluginResponse{
			Name:            p.Name(),
			DisplayName:     p.DisplayName(tag),
			FileAreas:       p.FileAreas(),
			ConfigFileAreas: p.ConfigFileAreas(),
			HasUserSummary:  p.HasUserSummary(),
		})
	}

	return utils.SendSuccess(c, "plugins retrieved", response)
}

func (h *SolutionSheetHandler) newAssignmentSettings(c *fiber.Ctx) error {
	p, err := h.plugin(c)
	if p == nil {
		return err
	}

	fields, err := p.SettingsFields(c.UserContext(), nil, h.language(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "settings form retrieved", dto.SettingsFieldsResponse{
		Plugin: p.Name(),
		Fields: fields,
	})
}

func (h *SolutionSheetHandler) settings(c *fiber.Ctx) error {
	p, assignment, ok, err := h.resolve(c)
	if !ok {
		return err
	}

	return h.sendSettings(c, p, assignment, "settings form retrieved")
}

func (h *SolutionSheetHandler) sendSettings(c *fiber.Ctx, p plugin.FeedbackPlugin, assignment models.Assignment, message string) error {
	fields, err := p.SettingsFields(c.UserContext(), &assignment, h.language(c))
	if err != nil {
		return h.internalError(c, err)
	}

	id := assignment.ID
	return utils.SendSuccess(c, message, dto.SettingsFieldsResponse{
		Plugin:       p.Name(),
		AssignmentID: &id,
		Fields:       fields,
	})
}

func (h *SolutionSheetHandler) saveSettings(c *fiber.Ctx) error {
	p, assignment, ok, err := h.resolve(c)
	if !ok {
		return err
	}

	form, err := settingsFormFromRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid settings payload")
	}
	form.Actor = actorFromContext(c)

	if err := p.SaveSettings(c.UserContext(), assignment, form); err != nil {
		return h.saveError(c, err)
	}

	return h.sendSettings(c, p, assignment, "settings saved")
}

// settingsFormFromRequest accepts multipart forms (with file uploads) and
// flat JSON objects.
func settingsFormFromRequest(c *fiber.Ctx) (plugin.SettingsForm, error) {
	form := plugin.SettingsForm{Values: map[string]string{}}

	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		multipartForm, err := c.MultipartForm()
		if err != nil {
			return form, err
		}
		for key, values := range multipartForm.Value {
			if len(values) > 0 {
				form.Values[key] = values[0]
			}
		}
		form.Files = multipartForm.File
		return form, nil
	}

	if len(c.Body()) == 0 {
		return form, nil
	}

	var raw map[string]interface{}
	if err := c.BodyParser(&raw); err != nil {
		return form, err
	}
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
		case string:
			form.Values[key] = v
		case bool:
			form.Values[key] = strconv.FormatBool(v)
		case float64:
			form.Values[key] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return form, errors.New("settings values must be scalars")
		}
	}
	return form, nil
}

func (h *SolutionSheetHandler) saveError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "invalid settings", validationDetails(err))
	case errors.Is(err, service.ErrInvalidSettings):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid settings")
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, service.ErrUploadTooLarge.Error())
	case errors.Is(err, service.ErrUploadTypeNotAllowed):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, service.ErrUploadTypeNotAllowed.Error())
	case errors.Is(err, service.ErrUploadScanFailed):
		return utils.SendError(c, fiber.StatusBadRequest, service.ErrUploadScanFailed.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("plugin settings not saved")
		return utils.SendError(c, fiber.StatusInternalServerError, plugin.ErrSaveFailed.Error())
	}
}

func (h *SolutionSheetHandler) view(c *fiber.Ctx) error {
	p, assignment, ok, err := h.resolve(c)
	if !ok {
		return err
	}

	view, err := p.RenderView(c.UserContext(), plugin.ViewRequest{
		Assignment:   assignment,
		Capabilities: capabilitiesFromContext(c),
		Language:     h.language(c),
		Actor:        actorFromContext(c),
	})
	if err != nil {
		return h.internalError(c, err)
	}

	if strings.EqualFold(c.Query("format"), "html") {
		if !view.Rendered {
			return c.SendStatus(fiber.StatusNoContent)
		}
		c.Type("html", "utf-8")
		return c.SendString(view.HTML)
	}

	return utils.SendSuccess(c, "feedback view rendered", view)
}

func (h *SolutionSheetHandler) setVisibility(c *fiber.Ctx) error {
	assignment, err := h.assignment(c)
	if assignment.ID == 0 {
		return err
	}

	var req dto.SolutionSheetVisibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	tag := h.language(c)
	resp, err := h.solutions.SetVisibility(c.UserContext(), assignment, req, capabilitiesFromContext(c), actorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", validationDetails(err))
		case errors.Is(err, service.ErrReleaseForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		case errors.Is(err, service.ErrConfirmationRequired):
			return utils.Fail(c, fiber.StatusConflict, "confirmation required", fiber.Map{
				"confirm": h.solutions.ConfirmationPrompt(tag, req.Show != nil && *req.Show),
			})
		default:
			return h.internalError(c, err)
		}
	}

	message := "solutions hidden"
	if resp.Show {
		message = "solutions shown"
	}
	return utils.SendSuccess(c, message, resp)
}

func (h *SolutionSheetHandler) listActivity(c *fiber.Ctx) error {
	p, assignment, ok, err := h.resolve(c)
	if !ok {
		return err
	}

	var req dto.ActivityLogListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.activity.List(c.UserContext(), assignment.ID, p.Name(), req)
	if err != nil {
		if isValidationError(err) {
			return utils.Fail(c, fiber.StatusBadRequest, "invalid query parameters", validationDetails(err))
		}
		return h.internalError(c, err)
	}

	return utils.OK(c, result.Items, "activity retrieved", fiber.Map{"pagination": result.Pagination})
}

func (h *SolutionSheetHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
