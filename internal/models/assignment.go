package models

import "time"

// Assignment is the host record a feedback plugin attaches to.
type Assignment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	DueDate     *time.Time `json:"due_date"`
	FileURL     string     `gorm:"size:512" json:"file_url"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// DueUnix returns the due date as Unix seconds, or 0 when none is set.
func (a Assignment) DueUnix() int64 {
	if a.DueDate == nil || a.DueDate.IsZero() {
		return 0
	}
	return a.DueDate.Unix()
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	if a.DueDate == nil {
		return false
	}
	return reference.After(*a.DueDate)
}
