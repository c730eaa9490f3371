package models

import "time"

// AuditEvent records one mutating console action.
type AuditEvent struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	ActorID    string    `gorm:"type:text;not null;index" json:"actorId"`
	ActorRole  string    `gorm:"type:text;not null" json:"actorRole"`
	SessionID  string    `gorm:"type:text" json:"sessionId,omitempty"`
	Action     string    `gorm:"type:text;not null" json:"action"`
	Resource   string    `gorm:"type:text;not null;index" json:"resource"`
	ResourceID string    `gorm:"type:text" json:"resourceId,omitempty"`
	Outcome    string    `gorm:"type:text;not null" json:"outcome"`
	Message    string    `gorm:"type:text" json:"message,omitempty"`
	CreatedAt  time.Time `gorm:"not null;index" json:"createdAt"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
