package models

import "time"

// TodoDependency is a directed edge: BlockerUUID blocks BlockedUUID.
type TodoDependency struct {
	BlockedUUID string    `gorm:"primaryKey;type:varchar(36)" json:"blocked_uuid"`
	BlockerUUID string    `gorm:"primaryKey;type:varchar(36);index" json:"blocker_uuid"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Blocked Todo `gorm:"foreignKey:BlockedUUID;references:UUID" json:"-"`
	Blocker Todo `gorm:"foreignKey:BlockerUUID;references:UUID" json:"-"`
}
