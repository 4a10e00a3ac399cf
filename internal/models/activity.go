package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog records who changed the solution sheet of an assignment and how.
type ActivityLog struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	AssignmentID uint              `gorm:"not null;index" json:"assignment_id"`
	ActorID      uint              `gorm:"not null" json:"actor_id"`
	ActorRole    string            `gorm:"size:32;not null" json:"actor_role"`
	Action       string            `gorm:"size:64;not null" json:"action"`
	Plugin       string            `gorm:"size:64;not null" json:"plugin"`
	Metadata     datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt    time.Time         `json:"created_at"`
}
