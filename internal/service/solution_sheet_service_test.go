package service

import (
	"context"
	"errors"
	"math"
	"mime/multipart"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/noah-isme/solutionsheet-api/internal/dto"
	"github.com/noah-isme/solutionsheet-api/internal/i18n"
	"github.com/noah-isme/solutionsheet-api/internal/models"
	"github.com/noah-isme/solutionsheet-api/internal/plugin"
	"github.com/noah-isme/solutionsheet-api/internal/render"
	"github.com/noah-isme/solutionsheet-api/internal/solutionsheet"
)

var (
	testNow      = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	teacherCaps  = plugin.RoleCapabilities("teacher")
	studentCaps  = plugin.RoleCapabilities("student")
	teacherActor = plugin.Actor{ID: 7, Role: "teacher"}
)

type publisherStub struct {
	events []ReleaseEvent
	err    error
}

func (p *publisherStub) Publish(ctx context.Context, event ReleaseEvent) error {
	p.events = append(p.events, event)
	return p.err
}

type solutionSheetFixture struct {
	svc       SolutionSheetService
	configs   *memoryConfigRepo
	files     *memoryFileRepo
	activity  *memoryActivityRepo
	storage   *storageStub
	publisher *publisherStub
}

func newSolutionSheetFixture(t *testing.T, redisClient *redis.Client, opts SolutionSheetOptions) *solutionSheetFixture {
	t.Helper()

	catalog, err := i18n.Load()
	require.NoError(t, err)
	renderer, err := render.NewRenderer()
	require.NoError(t, err)

	validate := validator.New(validator.WithRequiredStructEnabled())
	fixture := &solutionSheetFixture{
		configs:   newMemoryConfigRepo(),
		files:     newMemoryFileRepo(),
		activity:  &memoryActivityRepo{},
		storage:   &storageStub{},
		publisher: &publisherStub{},
	}

	if opts.Clock == nil {
		opts.Clock = func() time.Time { return testNow }
	}

	fixture.svc = NewSolutionSheetService(SolutionSheetDependencies{
		Configs:   fixture.configs,
		Files:     fixture.files,
		Uploads:   NewUploadService(fixture.storage, 5, testLogger()),
		Activity:  NewActivityService(fixture.activity, validate, testLogger()),
		Publisher: fixture.publisher,
		Cache:     redisClient,
		Catalog:   catalog,
		Renderer:  renderer,
		Validator: validate,
	}, opts, testLogger())

	return fixture
}

func (f *solutionSheetFixture) configure(t *testing.T, assignmentID uint, cfg solutionsheet.Config) {
	t.Helper()
	settings := storedSettings{Enabled: true, Config: cfg}
	require.NoError(t, f.configs.Set(context.Background(), assignmentID, plugin.SubtypeFeedback, SolutionSheetPluginName, settings.values()))
	require.NoError(t, f.files.ReplaceArea(context.Background(), assignmentID, SolutionSheetFileArea, []models.SolutionFile{
		{FileName: "sheet-1.pdf", URL: "https://cdn.example.com/sheet-1.pdf", MimeType: "application/pdf"},
	}))
}

func assignmentDue(id uint, due time.Time) models.Assignment {
	return models.Assignment{ID: id, Title: "Sorting", DueDate: &due}
}

func renderFor(t *testing.T, f *solutionSheetFixture, assignment models.Assignment, caps plugin.CapabilitySet) (plugin.View, dto.SolutionSheetView) {
	t.Helper()
	view, err := f.svc.RenderView(context.Background(), plugin.ViewRequest{
		Assignment:   assignment,
		Capabilities: caps,
		Language:     language.AmericanEnglish,
	})
	require.NoError(t, err)
	if !view.Rendered {
		return view, dto.SolutionSheetView{}
	}
	data, ok := view.Data.(dto.SolutionSheetView)
	require.True(t, ok)
	return view, data
}

func TestSolutionSheetSaveSettingsStoresConfigAndFiles(t *testing.T) {
	f := newSolutionSheetFixture(t, nil, SolutionSheetOptions{})
	assignment := assignmentDue(1, testNow.Add(-5*24*time.Hour))

	err := f.svc.SaveSettings(context.Background(), assignment, plugin.SettingsForm{
		Values: map[string]string{
			FieldEnabled:        "1",
			FieldShowAtType:     "2",
			FieldShowAtNumber:   "2",
			FieldShowAtTimeUnit: "86400",
			FieldHideAfter:      "2026-02-01T00:00:00Z",
		},
		Files: map[string][]*multipart.FileHeader{
			FieldUpload: {buildFileHeader(t, "Sheet 1.pdf", pdfContent)},
		},
		Actor: teacherActor,
	})
	require.NoError(t, err)

	stored := f.configs.values[1]
	require.Equal(t, "1", stored[configEnabled])
	require.Equal(t, "2", stored[configShowAtType])
	require.Equal(t, "172800", stored[configShowAtTime])
	require.Equal(t, "1769904000", stored[configHideAfter])

	files, err := f.files.ListByArea(context.Background(), 1, SolutionSheetFileArea)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "sheet-1.pdf", files[0].FileName)

	require.Len(t, f.activity.entries, 1)
	require.Equal(t, ActivitySettingsSaved, f.activity.entries[0].Action)
	require.Equal(t, uint(7), f.activity.entries[0].ActorID)
}

func TestSolutionSheetSaveSettingsKeepsFilesWithoutUpload(t *testing.T) {
	f := newSolutionSheetFixture(t, nil, SolutionSheetOptions{})
	f.configure(t, 1, solutionsheet.Config{ShowType: solutionsheet.ShowNever})

	require.NoError(t, f.svc.SaveSettings(context.Background(), assignmentDue(1, testNow), plugin.SettingsForm{
		Values: map[string]string{FieldShowAtType: "1"},
	}))
	count, err := f.files.CountByArea(context.Background(), 1, SolutionSheetFileArea)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.Equal(t, "0", f.configs.values[1][configHideAfter])

	require.NoError(t, f.svc.SaveSettings(context.Background(), assignmentDue(1, testNow), plugin.SettingsForm{
		Values: map[string]string{FieldShowAtType: "1", FieldClearFiles: "true"},
	}))
	count, err = f.files.CountByArea(context.Background(), 1, SolutionSheetFileArea)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestSolutionSheetSaveSettingsFailures(t *testing.T) {
	f := newSolutionSheetFixture(t, nil, SolutionSheetOptions{})
	assignment := assignmentDue(1, testNow)

	err := f.svc.SaveSettings(context.Background(), assignment, plugin.SettingsForm{
		Values: map[string]string{FieldShowAtType: "5"},
	})
	require.ErrorIs(t, err, plugin.ErrSaveFailed)
	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))

	err = f.svc.SaveSettings(context.Background(), assignment, plugin.SettingsForm{
		Values: map[string]string{FieldShowAtType: "2", FieldShowAtTimeUnit: "42"},
	})
	require.ErrorIs(t, err, plugin.ErrSaveFailed)

	err = f.svc.SaveSettings(context.Background(), assignment, plugin.SettingsForm{
		Values: map[string]string{FieldShowAtType: "1"},
		Files: map[string][]*multipart.FileHeader{
			FieldUpload: {buildFileHeader(t, "page.html", []byte("<html><body>hi</body></html>"))},
		},
	})
	require.ErrorIs(t, err, plugin.ErrSaveFailed)
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)
	require.Empty(t, f.configs.values)
}

func TestSolutionSheetSaveSettingsRejectsUnrepresentableOffset(t *testing.T) {
	f := newSolutionSheetFixture(t, nil, SolutionSheetOptions{})
	assignment := assignmentDue(1, testNow.Add(-time.Hour))

	for _, number := range []string{"Inf", "+Inf", "1e30", "2e13"} {
		err := f.svc.SaveSettings(context.Background(), assignment, plugin.SettingsForm{
			Values: map[string]string{
				FieldEnabled:        "1",
				FieldShowAtType:     "2",
				FieldShowAtNumber:   number,
				FieldShowAtTimeUnit: "604800",
			},
			Actor: teacherActor,
		})
		require.ErrorIs(t, err, plugin.ErrSaveFailed, number)
		require.ErrorIs(t, err, ErrInvalidSettings, number)
	}
	require.Empty(t, f.configs.values)

	f.configure(t, 2, solutionsheet.Config{ShowType: solutionsheet.ShowAfterDueDate, ShowOffsetSeconds: math.MinInt64})
	_, data := renderFor(t, f, assignmentDue(2, testNow.Add(-time.Hour)), teacherCaps)
	require.Equal(t, solutionsheet.NeverAvailable, data.AvailabilityTime)
	require.Nil(t, data.AvailableFrom)
	require.Equal(t, "Solutions are not available yet.", data.Message)
}

func TestSolutionSheetSettingsFields(t *testing.T) {
	f := newSolutionSheetFixture(t, nil, SolutionSheetOptions{})

	fields, err := f.svc.SettingsFields(context.Background(), nil, language.AmericanEnglish)
	require.NoError(t, err)
	require.Len(t, fields, 5)
	showType := fields[2]
	require.Equal(t, FieldShowAtType, showType.Name)
	require.Len(t, showType.Options, 2)
	require.Equal(t, "0", showType.Options[0].Value)
	require.Equal(t, "2", showType.Options[1].Value)

	f.configure(t, 3, solutionsheet.Config{ShowType: solutionsheet.ShowAfterDueDate, ShowOffsetSeconds: 3 * 86400})
	fields, err = f.svc.SettingsFields(context.Background(), &models.Assignment{ID: 3}, language.AmericanEnglish)
	require.NoError(t, err)
	require.Len(t, fields[2].Options, 3)
	require.Equal(t, "2", fields[2].Default)
	require.Equal(t, map[string]int64{"number": 3, "timeunit": 86400}, fields[3].Default)
	require.Equal(t, []string{"sheet-1.pdf"}, fields[1].Default)
	require.Nil(t, fields[4].Default)
	require.Equal(t, "Hide solutions after", fields[4].Label)
}

func TestSolutionSheetSettingsFieldsAllowImmediateForNew(t *testing.T) {
	f := newSolutionSheetFixture(t, nil, SolutionSheetOptions{AllowImmediateForNew: true})

	fields, err := f.svc.SettingsFields(context.Background(), nil, language.Indonesian)
	require.NoError(t, err)
	require.Len(t, fields[2].Options, 3)
	require.Equal(t, "1", fields[2].Options[1].Value)
}

func TestSolutionSheetRenderViewVisibleAfterDueDateOffset(t *testing.T) {
	f := newSolutionSheetFixture(t, nil, SolutionSheetOptions{})
	due := testNow.Add(-3 * 24 * time.Hour)
	f.configure(t, 1, solutionsheet.Config{ShowType: solutionsheet.ShowAfterDueDate, ShowOffsetSeconds: 86400})

	view, data := renderFor(t, f, assignmentDue(1, due), studentCaps)
	require.True(t, view.Rendered)
	require.True(t, data.StudentsCanView)
	require.True(t, data.CanView)
	require.False(t, data.GreyedOut)
	require.Len(t, data.Files, 1)
	require.Nil(t, data.Action)
	require.Empty(t, data.Message)
	require.Contains(t, view.HTML, "sheet-1.pdf")
	require.NotContains(t, view.HTML, "greyedout")

	_, data = renderFor(t, f, assignmentDue(1, due), teacherCaps)
	require.NotNil(t, data.Action)
	require.False(t, data.Action.Show)
	require.Equal(t, "/api/v2/tutorial/assignments/1/solutionsheet/visibility", data.Action.URL)
}

func TestSolutionSheetRenderViewNotReleased(t *testing.T) {
	f := newSolutionSheetFixture(t, nil, SolutionSheetOptions{})
	f.configure(t, 1, solutionsheet.Config{ShowType: solutionsheet.ShowNever})
	assignment := assignmentDue(1, testNow.Add(-time.Hour))

	view, data := renderFor(t, f, assignment, teacherCaps)
	require.True(t, view.Rendered)
	require.True(t, data.GreyedOut)
	require.Len(t, data.Files, 1)
	require.Equal(t, "Solutions are not yet available to students.", data.Notice)
	require.NotNil(t, data.Action)
	require.True(t, data.Action.Show)
	require.Equal(t, "Solutions are not available yet.", data.Message)
	require.Contains(t, view.HTML, "greyedout")

	view, data = renderFor(t, f, assignment, studentCaps)
	require.True(t, view.Rendered)
	require.False(t, data.CanView)
	require.Empty(t, data.Files)
	require.Empty(t, data.Notice)
	require.Nil(t, data.Action)
	require.Equal(t, "Solutions are not available yet.", data.Message)
	require.NotContains(t, view.HTML, "sheet-1.pdf")
}

func TestSolutionSheetRenderViewPendingShowsDate(t *testing.T) {
	f := newSolutionSheetFixture(t, nil, SolutionSheetOptions{})
	f.configure(t, 1, solutionsheet.Config{ShowType: solutionsheet.ShowAfterDueDate, ShowOffsetSeconds: 3600})
	due := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)

	_, data := renderFor(t, f, assignmentDue(1, due), studentCaps)
	require.False(t, data.StudentsCanView)
	require.NotNil(t, data.AvailableFrom)
	require.Equal(t, due.Add(time.Hour).Unix(), data.AvailabilityTime)
	require.Equal(t, "Solutions will be available from Monday, 12 January 2026, 10:00 AM.", data.Message)
}

func TestSolutionSheetRenderViewHiddenAgain(t *testing.T) {
	f := newSolutionSheetFixture(t, nil, SolutionSheetOptions{})
	f.configure(t, 1, solutionsheet.Config{
		ShowType:  solutionsheet.ShowImmediately,
		HideAfter: testNow.Add(-time.Hour).Unix(),
	})

	_, data := renderFor(t, f, assignmentDue(1, testNow), teacherCaps)
	require.True(t, data.HiddenAgain)
	require.True(t, data.GreyedOut)
	require.Len(t, data.Files, 1)
	require.Empty(t, data.Notice)
	require.Nil(t, data.Action)
	require.Equal(t, "Solutions are no longer available.", data.Message)
}

func TestSolutionSheetRenderViewSkipsDisabledOrEmpty(t *testing.T) {
	f := newSolutionSheetFixture(t, nil, SolutionSheetOptions{})

	view, _ := renderFor(t, f, assignmentDue(1, testNow), teacherCaps)
	require.False(t, view.Rendered)

	settings := storedSettings{Enabled: true, Config: solutionsheet.Config{ShowType: solutionsheet.ShowImmediately}}
	require.NoError(t, f.configs.Set(context.Background(), 2, plugin.SubtypeFeedback, SolutionSheetPluginName, settings.values()))
	view, _ = renderFor(t, f, assignmentDue(2, testNow), teacherCaps)
	require.False(t, view.Rendered)
}

func TestSolutionSheetRenderViewCountsBeforeListing(t *testing.T) {
	f := newSolutionSheetFixture(t, nil, SolutionSheetOptions{})
	f.configure(t, 1, solutionsheet.Config{ShowType: solutionsheet.ShowNever})
	assignment := assignmentDue(1, testNow.Add(-time.Hour))
	f.files.lists = 0

	view, data := renderFor(t, f, assignment, studentCaps)
	require.True(t, view.Rendered)
	require.Equal(t, 1, data.FileCount)
	require.Empty(t, data.Files)
	require.Equal(t, 1, f.files.counts)
	require.Zero(t, f.files.lists)

	_, data = renderFor(t, f, assignment, teacherCaps)
	require.Len(t, data.Files, 1)
	require.Equal(t, 1, f.files.lists)

	view, _ = renderFor(t, f, assignmentDue(2, testNow), teacherCaps)
	require.False(t, view.Rendered)
	require.Equal(t, 1, f.files.lists)
}

func TestSolutionSheetSetVisibility(t *testing.T) {
	f := newSolutionSheetFixture(t, nil, SolutionSheetOptions{})
	f.configure(t, 1, solutionsheet.Config{ShowType: solutionsheet.ShowNever, HideAfter: testNow.Add(-time.Hour).Unix()})
	assignment := assignmentDue(1, testNow.Add(-time.Hour))
	show := true

	_, err := f.svc.SetVisibility(context.Background(), assignment, dto.SolutionSheetVisibilityRequest{Show: &show}, teacherCaps, teacherActor)
	require.ErrorIs(t, err, ErrConfirmationRequired)

	_, err = f.svc.SetVisibility(context.Background(), assignment, dto.SolutionSheetVisibilityRequest{Show: &show, Confirm: true}, studentCaps, plugin.Actor{ID: 9, Role: "student"})
	require.ErrorIs(t, err, ErrReleaseForbidden)

	_, err = f.svc.SetVisibility(context.Background(), assignment, dto.SolutionSheetVisibilityRequest{Confirm: true}, teacherCaps, teacherActor)
	require.Error(t, err)

	resp, err := f.svc.SetVisibility(context.Background(), assignment, dto.SolutionSheetVisibilityRequest{Show: &show, Confirm: true}, teacherCaps, teacherActor)
	require.NoError(t, err)
	require.True(t, resp.StudentsCanView)
	require.Equal(t, int(solutionsheet.ShowImmediately), resp.Config.ShowType)
	require.Nil(t, resp.Config.HideAfter)
	require.Len(t, f.publisher.events, 1)
	require.Equal(t, ActivityShown, f.publisher.events[0].Action)

	hide := false
	resp, err = f.svc.SetVisibility(context.Background(), assignment, dto.SolutionSheetVisibilityRequest{Show: &hide, Confirm: true}, teacherCaps, teacherActor)
	require.NoError(t, err)
	require.False(t, resp.StudentsCanView)
	require.Equal(t, "0", f.configs.values[1][configShowAtType])
	require.Len(t, f.activity.entries, 2)
	require.Equal(t, ActivityHidden, f.activity.entries[1].Action)
}

func TestSolutionSheetSetVisibilityToleratesPublishFailure(t *testing.T) {
	f := newSolutionSheetFixture(t, nil, SolutionSheetOptions{})
	f.publisher.err = errors.New("broker down")
	show := true

	_, err := f.svc.SetVisibility(context.Background(), assignmentDue(4, testNow), dto.SolutionSheetVisibilityRequest{Show: &show, Confirm: true}, teacherCaps, teacherActor)
	require.NoError(t, err)
	require.Equal(t, "1", f.configs.values[4][configEnabled])
}

func TestSolutionSheetConfigCache(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	f := newSolutionSheetFixture(t, client, SolutionSheetOptions{ConfigCacheTTL: time.Minute})
	f.configure(t, 1, solutionsheet.Config{ShowType: solutionsheet.ShowNever})
	assignment := assignmentDue(1, testNow.Add(-time.Hour))

	_, data := renderFor(t, f, assignment, studentCaps)
	require.False(t, data.StudentsCanView)
	_, _ = renderFor(t, f, assignment, studentCaps)
	require.Equal(t, 1, f.configs.reads)
	require.True(t, server.Exists(pluginConfigCacheKey(SolutionSheetPluginName, 1)))

	show := true
	_, err = f.svc.SetVisibility(context.Background(), assignment, dto.SolutionSheetVisibilityRequest{Show: &show, Confirm: true}, teacherCaps, teacherActor)
	require.NoError(t, err)
	cached, err := server.Get(pluginConfigCacheKey(SolutionSheetPluginName, 1))
	require.NoError(t, err)
	require.Contains(t, cached, `"showattype":"1"`)

	reads := f.configs.reads
	_, data = renderFor(t, f, assignment, studentCaps)
	require.True(t, data.StudentsCanView)
	require.Equal(t, reads, f.configs.reads)
}

func TestSolutionSheetHideWinsOverConcurrentCacheFill(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	f := newSolutionSheetFixture(t, client, SolutionSheetOptions{ConfigCacheTTL: time.Minute})
	f.configure(t, 1, solutionsheet.Config{ShowType: solutionsheet.ShowImmediately})
	assignment := assignmentDue(1, testNow.Add(-time.Hour))

	// The hide lands after the view has read the old config but before it
	// fills the cache.
	hide := false
	f.configs.afterGet = func() {
		_, err := f.svc.SetVisibility(context.Background(), assignment, dto.SolutionSheetVisibilityRequest{Show: &hide, Confirm: true}, teacherCaps, teacherActor)
		require.NoError(t, err)
	}

	_, data := renderFor(t, f, assignment, studentCaps)
	require.True(t, data.StudentsCanView)
	require.Equal(t, "0", f.configs.values[1][configShowAtType])

	_, data = renderFor(t, f, assignment, studentCaps)
	require.False(t, data.StudentsCanView)
	require.False(t, data.CanView)
	require.Empty(t, data.Files)
}

func TestSolutionSheetPluginMetadata(t *testing.T) {
	f := newSolutionSheetFixture(t, nil, SolutionSheetOptions{})

	require.Equal(t, SolutionSheetPluginName, f.svc.Name())
	require.Equal(t, "Solution sheet", f.svc.DisplayName(language.AmericanEnglish))
	require.Equal(t, []string{SolutionSheetFileArea}, f.svc.ConfigFileAreas())
	require.Contains(t, f.svc.FileAreas(), SolutionSheetFileArea)
	require.False(t, f.svc.HasUserSummary())
	require.Contains(t, f.svc.ConfirmationPrompt(language.AmericanEnglish, true), "available to students now")
}
