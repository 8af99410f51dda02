package notify

import (
	"time"
)

// Notification represents the notifications table: the in-app feed
// shown on the station's bell icon.
type Notification struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	Action    string    `gorm:"size:100;index" json:"action"`
	EventID   string    `gorm:"size:64;index" json:"event_id"`
	Read      bool      `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// auditEvent mirrors the payload published to the audit topic.
type auditEvent struct {
	Operator string                 `json:"operator"`
	EventID  string                 `json:"event_id"`
	Details  map[string]interface{} `json:"details"`
	Status   string                 `json:"status"`
}
