package models

// TodoProject links a todo to a project. An exclusive link means the todo is
// shown under that project only; a todo with an exclusive link carries no
// other project.
type TodoProject struct {
	TodoUUID    string `gorm:"primaryKey;type:varchar(36)" json:"todo_uuid"`
	ProjectUUID string `gorm:"primaryKey;type:varchar(36);index" json:"project_uuid"`
	IsExclusive bool   `gorm:"not null;default:false" json:"is_exclusive"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectUUID;references:UUID" json:"project,omitempty"`
}
