package models

import "time"

// SolutionFile is a file stored in a plugin file area of an assignment.
type SolutionFile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null;index:idx_solution_file_area" json:"assignment_id"`
	FileArea     string    `gorm:"size:64;not null;index:idx_solution_file_area" json:"file_area"`
	FileName     string    `gorm:"size:255;not null" json:"file_name"`
	URL          string    `gorm:"size:1024;not null" json:"url"`
	MimeType     string    `gorm:"size:128" json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Checksum     string    `gorm:"size:64" json:"checksum"`
	CreatedAt    time.Time `json:"created_at"`
}
