package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/solutionsheet-api/internal/models"
	"github.com/noah-isme/solutionsheet-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type memoryAssignmentRepo struct {
	assignments map[uint]models.Assignment
	nextID      uint
}

func newMemoryAssignmentRepo() *memoryAssignmentRepo {
	return &memoryAssignmentRepo{
		assignments: make(map[uint]models.Assignment),
		nextID:      1,
	}
}

func (m *memoryAssignmentRepo) List(ctx context.Context) ([]models.Assignment, error) {
	results, _, err := m.ListWithFilter(ctx, repository.AssignmentFilter{})
	return results, err
}

func (m *memoryAssignmentRepo) ListWithFilter(ctx context.Context, filter repository.AssignmentFilter) ([]models.Assignment, int64, error) {
	filtered := make([]models.Assignment, 0, len(m.assignments))
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, assignment := range m.assignments {
		if search != "" {
			title := strings.ToLower(assignment.Title)
			desc := strings.ToLower(assignment.Description)
			if !strings.Contains(title, search) && !strings.Contains(desc, search) {
				continue
			}
		}
		filtered = append(filtered, assignment)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].DueUnix() < filtered[j].DueUnix() ||
			(filtered[i].DueUnix() == filtered[j].DueUnix() && filtered[i].ID < filtered[j].ID)
	})

	total := int64(len(filtered))
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start >= len(filtered) {
			return []models.Assignment{}, total, nil
		}
		end := start + filter.PageSize
		if end > len(filtered) {
			end = len(filtered)
		}
		filtered = filtered[start:end]
	}

	return filtered, total, nil
}

func (m *memoryAssignmentRepo) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, ok := m.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (m *memoryAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	assignment.ID = m.nextID
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = time.Now()
	m.assignments[m.nextID] = *assignment
	m.nextID++
	return nil
}

func (m *memoryAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	if _, ok := m.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.UpdatedAt = time.Now()
	m.assignments[assignment.ID] = *assignment
	return nil
}

func (m *memoryAssignmentRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.assignments, id)
	return nil
}

type memoryConfigRepo struct {
	values map[uint]map[string]string
	reads  int
	// afterGet runs once, after the next Get has copied its result.
	afterGet func()
}

func newMemoryConfigRepo() *memoryConfigRepo {
	return &memoryConfigRepo{values: make(map[uint]map[string]string)}
}

func (m *memoryConfigRepo) Get(ctx context.Context, assignmentID uint, subtype, plugin string) (map[string]string, error) {
	m.reads++
	result := make(map[string]string)
	for key, value := range m.values[assignmentID] {
		result[key] = value
	}
	if hook := m.afterGet; hook != nil {
		m.afterGet = nil
		hook()
	}
	return result, nil
}

func (m *memoryConfigRepo) Set(ctx context.Context, assignmentID uint, subtype, plugin string, values map[string]string) error {
	current, ok := m.values[assignmentID]
	if !ok {
		current = make(map[string]string)
		m.values[assignmentID] = current
	}
	for key, value := range values {
		current[key] = value
	}
	return nil
}

func (m *memoryConfigRepo) DeleteByAssignment(ctx context.Context, assignmentID uint) error {
	delete(m.values, assignmentID)
	return nil
}

type memoryFileRepo struct {
	files  map[uint][]models.SolutionFile
	lists  int
	counts int
}

func newMemoryFileRepo() *memoryFileRepo {
	return &memoryFileRepo{files: make(map[uint][]models.SolutionFile)}
}

func (m *memoryFileRepo) ListByArea(ctx context.Context, assignmentID uint, area string) ([]models.SolutionFile, error) {
	m.lists++
	var result []models.SolutionFile
	for _, file := range m.files[assignmentID] {
		if file.FileArea == area {
			result = append(result, file)
		}
	}
	return result, nil
}

func (m *memoryFileRepo) CountByArea(ctx context.Context, assignmentID uint, area string) (int64, error) {
	m.counts++
	var count int64
	for _, file := range m.files[assignmentID] {
		if file.FileArea == area {
			count++
		}
	}
	return count, nil
}

func (m *memoryFileRepo) ReplaceArea(ctx context.Context, assignmentID uint, area string, files []models.SolutionFile) error {
	kept := make([]models.SolutionFile, 0, len(files))
	for _, file := range m.files[assignmentID] {
		if file.FileArea != area {
			kept = append(kept, file)
		}
	}
	for i, file := range files {
		file.ID = uint(i + 1)
		file.AssignmentID = assignmentID
		file.FileArea = area
		kept = append(kept, file)
	}
	m.files[assignmentID] = kept
	return nil
}

func (m *memoryFileRepo) DeleteByAssignment(ctx context.Context, assignmentID uint) error {
	delete(m.files, assignmentID)
	return nil
}

type memoryActivityRepo struct {
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	var matched []models.ActivityLog
	for _, entry := range m.entries {
		if filter.AssignmentID != 0 && entry.AssignmentID != filter.AssignmentID {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		matched = append(matched, entry)
	}
	return matched, int64(len(matched)), nil
}

type storageStub struct {
	uploaded bytes.Buffer
	names    []string
}

func (s *storageStub) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	s.uploaded.Reset()
	if _, err := s.uploaded.ReadFrom(reader); err != nil {
		return "", err
	}
	s.names = append(s.names, name)
	return "https://cdn.example.com/" + name, nil
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(int64(len(content))+1024))
	files := req.MultipartForm.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

var pdfContent = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
