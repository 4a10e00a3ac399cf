package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/solutionsheet-api/internal/models"
)

// SolutionFileRepository persists metadata about files kept in plugin file areas.
type SolutionFileRepository interface {
	ListByArea(ctx context.Context, assignmentID uint, area string) ([]models.SolutionFile, error)
	CountByArea(ctx context.Context, assignmentID uint, area string) (int64, error)
	ReplaceArea(ctx context.Context, assignmentID uint, area string, files []models.SolutionFile) error
	DeleteByAssignment(ctx context.Context, assignmentID uint) error
}

type solutionFileRepository struct {
	db *gorm.DB
}

// NewSolutionFileRepository constructs a repository for solution file records.
func NewSolutionFileRepository(db *gorm.DB) SolutionFileRepository {
	return &solutionFileRepository{db: db}
}

func (r *solutionFileRepository) ListByArea(ctx context.Context, assignmentID uint, area string) ([]models.SolutionFile, error) {
	var files []models.SolutionFile
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND file_area = ?", assignmentID, area).
		Order("file_name ASC").
		Order("id ASC").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *solutionFileRepository) CountByArea(ctx context.Context, assignmentID uint, area string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.SolutionFile{}).
		Where("assignment_id = ? AND file_area = ?", assignmentID, area).
		Count(&total).Error
	return total, err
}

// ReplaceArea swaps the content of a file area in one transaction.
func (r *solutionFileRepository) ReplaceArea(ctx context.Context, assignmentID uint, area string, files []models.SolutionFile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ? AND file_area = ?", assignmentID, area).Delete(&models.SolutionFile{}).Error; err != nil {
			return err
		}
		if len(files) == 0 {
			return nil
		}
		for i := range files {
			files[i].ID = 0
			files[i].AssignmentID = assignmentID
			files[i].FileArea = area
		}
		return tx.Create(&files).Error
	})
}

func (r *solutionFileRepository) DeleteByAssignment(ctx context.Context, assignmentID uint) error {
	return r.db.WithContext(ctx).Where("assignment_id = ?", assignmentID).Delete(&models.SolutionFile{}).Error
}
