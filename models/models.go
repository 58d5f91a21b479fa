package models

// All lists every model managed by the migrations
func All() []any {
	return []any{
		&User{},
		&Follow{},
		&Post{},
		&Message{},
		&Notification{},
	}
}
