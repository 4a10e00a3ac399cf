package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/solutionsheet-api/internal/config"
	"github.com/noah-isme/solutionsheet-api/internal/database"
	"github.com/noah-isme/solutionsheet-api/internal/handler"
	"github.com/noah-isme/solutionsheet-api/internal/i18n"
	"github.com/noah-isme/solutionsheet-api/internal/plugin"
	"github.com/noah-isme/solutionsheet-api/internal/render"
	"github.com/noah-isme/solutionsheet-api/internal/repository"
	"github.com/noah-isme/solutionsheet-api/internal/router"
	"github.com/noah-isme/solutionsheet-api/internal/service"
)

type testStorage struct{}

func (testStorage) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	return "https://cdn.example.com/" + name, nil
}

var testPDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

// setupApp wires the full router on an in-memory database. The X-Test-Role
// header picks the caller's role (teacher by default).
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)
	storage := testStorage{}

	catalog, err := i18n.Load()
	require.NoError(t, err)
	renderer, err := render.NewRenderer()
	require.NoError(t, err)

	assignmentService := service.NewAssignmentService(repository.NewAssignmentRepository(db), validate, storage, logger)
	activityService := service.NewActivityService(repository.NewActivityLogRepository(db), validate, logger)
	solutionService := service.NewSolutionSheetService(service.SolutionSheetDependencies{
		Configs:   repository.NewPluginConfigRepository(db),
		Files:     repository.NewSolutionFileRepository(db),
		Uploads:   service.NewUploadService(storage, 5, logger),
		Activity:  activityService,
		Publisher: service.NewReleasePublisher(nil, nil, "", logger),
		Catalog:   catalog,
		Renderer:  renderer,
		Validator: validate,
	}, service.SolutionSheetOptions{}, logger)

	registry := plugin.NewRegistry()
	require.NoError(t, registry.Register(solutionService))

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", AppEnv: "test"}, router.Dependencies{
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, validate, logger),
		SolutionSheetHandler: handler.NewSolutionSheetHandler(
			assignmentService, registry, solutionService, activityService, catalog, validate,
			handler.SolutionSheetOptions{DefaultLocale: i18n.BaseLocale}, logger,
		),
		JWTMiddleware: func(c *fiber.Ctx) error {
			role := c.Get("X-Test-Role")
			if role == "" {
				role = "teacher"
			}
			c.Locals("user_id", uint(1))
			c.Locals("user_role", role)
			return c.Next()
		},
	})

	return app
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request, role string) *http.Response {
	t.Helper()
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func doJSON(t *testing.T, app *fiber.App, method, path, role string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return doRequest(t, app, req, role)
}

func doMultipart(t *testing.T, app *fiber.App, method, path, role string, fields map[string]string, files map[string][]byte) *http.Response {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for name, content := range files {
		part, err := writer.CreateFormFile(service.FieldUpload, name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return doRequest(t, app, req, role)
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func createAssignment(t *testing.T, app *fiber.App, fields map[string]string) uint {
	t.Helper()
	resp := doMultipart(t, app, http.MethodPost, "/api/v2/tutorial/assignments", "teacher", fields, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotZero(t, created.ID)
	return created.ID
}
