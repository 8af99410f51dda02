package history

import (
	"time"

	"gorm.io/datatypes"
)

// StationAction represents the station_actions table: an append-only
// local record of what each operator did at the station. The upstream
// keeps its own attendance truth; this table answers "who toggled
// whom, when, from this station".
type StationAction struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Operator   string         `gorm:"size:100;index" json:"operator"`
	EventID    string         `gorm:"size:64;index" json:"event_id"`
	PersonID   string         `gorm:"size:64;index" json:"person_id"`
	PersonName string         `gorm:"size:200" json:"person_name"`
	Action     string         `gorm:"size:50;not null;index" json:"action"`
	Outcome    string         `gorm:"size:20;not null" json:"outcome"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (StationAction) TableName() string {
	return "station_actions"
}

// ActionFilter narrows a history query.
type ActionFilter struct {
	Operator string     `json:"operator"`
	EventID  string     `json:"event_id"`
	PersonID string     `json:"person_id"`
	Action   string     `json:"action"`
	FromDate *time.Time `json:"from_date"`
	ToDate   *time.Time `json:"to_date"`
	Page     int        `json:"page"`
	Limit    int        `json:"limit"`
}

// PaginatedActions is a page of history rows.
type PaginatedActions struct {
	Data       []StationAction `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}
