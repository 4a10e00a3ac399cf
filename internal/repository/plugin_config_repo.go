package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/solutionsheet-api/internal/models"
)

// PluginConfigRepository stores per-assignment plugin settings as name/value pairs.
type PluginConfigRepository interface {
	Get(ctx context.Context, assignmentID uint, subtype, plugin string) (map[string]string, error)
	Set(ctx context.Context, assignmentID uint, subtype, plugin string, values map[string]string) error
	DeleteByAssignment(ctx context.Context, assignmentID uint) error
}

type pluginConfigRepository struct {
	db *gorm.DB
}

// NewPluginConfigRepository instantiates a GORM-backed plugin config repository.
func NewPluginConfigRepository(db *gorm.DB) PluginConfigRepository {
	return &pluginConfigRepository{db: db}
}

func (r *pluginConfigRepository) Get(ctx context.Context, assignmentID uint, subtype, plugin string) (map[string]string, error) {
	var rows []models.PluginConfig
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND subtype = ? AND plugin = ?", assignmentID, subtype, plugin).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Name] = row.Value
	}
	return values, nil
}

func (r *pluginConfigRepository) Set(ctx context.Context, assignmentID uint, subtype, plugin string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	rows := make([]models.PluginConfig, 0, len(values))
	for name, value := range values {
		rows = append(rows, models.PluginConfig{
			AssignmentID: assignmentID,
			Subtype:      subtype,
			Plugin:       plugin,
			Name:         name,
			Value:        value,
		})
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "assignment_id"},
			{Name: "plugin"},
			{Name: "subtype"},
			{Name: "name"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&rows).Error
}

func (r *pluginConfigRepository) DeleteByAssignment(ctx context.Context, assignmentID uint) error {
	return r.db.WithContext(ctx).Where("assignment_id = ?", assignmentID).Delete(&models.PluginConfig{}).Error
}
