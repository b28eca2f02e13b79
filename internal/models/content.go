package models

import "time"

// Frame is a pre-written adventure frame from the content database.
type Frame struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128" json:"name"`
	Tier        string    `gorm:"index;size:8" json:"tier"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Adversary is a stat-block reference from the content database.
type Adversary struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128" json:"name"`
	Tier      string    `gorm:"index;size:8" json:"tier"`
	Role      string    `gorm:"index;size:32" json:"role"` // "bruiser", "skulk", "leader", ...
	CreatedAt time.Time `json:"created_at"`
}

// Item is a loot/reward reference from the content database.
type Item struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128" json:"name"`
	Rarity    string    `gorm:"index;size:32" json:"rarity"`
	CreatedAt time.Time `json:"created_at"`
}
