package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a listing offered by a user
type Post struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"size:50;not null"`
	Description string    `gorm:"size:200;not null"`
	Price       int       `gorm:"not null"`
	Timestamp   time.Time `gorm:"index"`
	UserID      uint      `gorm:"index;not null"`
	Author      User      `gorm:"foreignKey:UserID"`
}

// TableName overrides the table name used by GORM
func (Post) TableName() string {
	return "posts"
}

// BeforeCreate stamps posts that arrive without a timestamp
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now()
	}
	p.Timestamp = p.Timestamp.UTC()
	return nil
}
