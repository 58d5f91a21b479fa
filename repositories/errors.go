package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrConflict is returned when a write breaks a uniqueness constraint
	ErrConflict = errors.New("record already exists")
	// ErrSelfFollow is returned when a user tries to follow themselves
	ErrSelfFollow = errors.New("a user cannot follow themselves")
)

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
