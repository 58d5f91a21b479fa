package models

import "encoding/json"

// Notification is a named per-user event. Only the latest notification of a
// given name is kept for each user.
type Notification struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"size:128;index;not null"`
	UserID      uint    `gorm:"index;not null"`
	Timestamp   float64 `gorm:"index"`
	PayloadJSON string  `gorm:"type:text"`
}

// TableName overrides the table name used by GORM
func (Notification) TableName() string {
	return "notifications"
}

// Data decodes the stored payload into v
func (n *Notification) Data(v any) error {
	return json.Unmarshal([]byte(n.PayloadJSON), v)
}
