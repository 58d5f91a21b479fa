package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents a registered account
type User struct {
	ID                  uint   `gorm:"primaryKey"`
	Username            string `gorm:"size:64;uniqueIndex;not null"`
	Email               string `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash        string `gorm:"size:128"`
	AboutMe             string `gorm:"size:140"`
	LastSeen            time.Time
	Token               string `gorm:"size:32;index"`
	TokenExpiration     time.Time
	LastMessageReadTime *time.Time
}

// TableName overrides the table name used by User to `users`
func (User) TableName() string {
	return "users"
}

func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
