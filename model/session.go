package model

import (
	"time"
)

// Session represents a therapy chat conversation. The session id is supplied
// by the client so that a conversation can be resumed across requests.
type Session struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	SessionID string    `gorm:"uniqueIndex;not null;type:varchar(100)" json:"session_id"`
	Issue     string    `gorm:"type:varchar(100)" json:"issue"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"` // Nullable, backfilled on first authenticated message
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User     *User     `gorm:"foreignKey:UserID" json:"-"`
	Messages []Message `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// TableName specifies the table name for Session
func (Session) TableName() string {
	return "sessions"
}
