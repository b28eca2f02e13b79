package models

import (
	"time"

	"gorm.io/gorm"
)

// Adventure represents one generated adventure and its wizard progress.
type Adventure struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	SessionID string         `gorm:"uniqueIndex;size:64" json:"session_id"`
	Title     string         `gorm:"size:255" json:"title"`
	Status    string         `gorm:"size:32" json:"status"` // "configuring", "drafting", "complete"
	DialsJSON string         `gorm:"type:text" json:"-"`    // Serialized dial state
	Outline   string         `gorm:"type:text" json:"outline,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AdventureScene is one drafted scene belonging to an adventure.
type AdventureScene struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	AdventureID string    `gorm:"index" json:"adventure_id"`
	SceneNumber int       `json:"scene_number"`
	Title       string    `gorm:"size:255" json:"title"`
	Summary     string    `gorm:"type:text" json:"summary"`
	Draft       string    `gorm:"type:text" json:"draft"`
	Confirmed   bool      `json:"confirmed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AdventureNPC is a compiled non-player character.
type AdventureNPC struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	AdventureID string    `gorm:"index" json:"adventure_id"`
	Name        string    `gorm:"size:128" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Confirmed   bool      `json:"confirmed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
