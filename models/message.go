package models

import (
	"time"

	"gorm.io/gorm"
)

// Message represents a private message between two users
type Message struct {
	ID          uint      `gorm:"primaryKey"`
	SenderID    uint      `gorm:"index;not null"`
	RecipientID uint      `gorm:"index;not null"`
	Body        string    `gorm:"size:140"`
	Timestamp   time.Time `gorm:"index"`
	Author      User      `gorm:"foreignKey:SenderID"`
	Recipient   User      `gorm:"foreignKey:RecipientID"`
}

// TableName overrides the table name used by GORM
func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	m.Timestamp = m.Timestamp.UTC()
	return nil
}
