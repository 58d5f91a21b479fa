package dto

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/danevairena/Bookstore/models"
	"github.com/danevairena/Bookstore/repositories"
)

type ErrorDTO struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type TokenDTO struct {
	Token string `json:"token"`
}

type UserLinks struct {
	Self      string `json:"self"`
	Followers string `json:"followers"`
	Followed  string `json:"followed"`
	Posts     string `json:"posts"`
}

type UserDTO struct {
	ID            uint      `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email,omitempty"`
	AboutMe       string    `json:"about_me"`
	LastSeen      string    `json:"last_seen,omitempty"`
	PostCount     int64     `json:"post_count"`
	FollowerCount int64     `json:"follower_count"`
	FollowedCount int64     `json:"followed_count"`
	Links         UserLinks `json:"_links"`
}

// UserCounts are the aggregate numbers shown alongside a user.
type UserCounts struct {
	Posts     int64
	Followers int64
	Followed  int64
}

// NewUserDTO renders user. The email address is only included when
// includeEmail is set, which handlers do for the user's own record.
func NewUserDTO(user *models.User, counts UserCounts, includeEmail bool) UserDTO {
	out := UserDTO{
		ID:            user.ID,
		Username:      user.Username,
		AboutMe:       user.AboutMe,
		LastSeen:      FormatTime(user.LastSeen),
		PostCount:     counts.Posts,
		FollowerCount: counts.Followers,
		FollowedCount: counts.Followed,
		Links: UserLinks{
			Self:      fmt.Sprintf("/users/%d", user.ID),
			Followers: fmt.Sprintf("/users/%d/followers", user.ID),
			Followed:  fmt.Sprintf("/users/%d/followed", user.ID),
			Posts:     fmt.Sprintf("/users/%s/posts", user.Username),
		},
	}
	if includeEmail {
		out.Email = user.Email
	}
	return out
}

type PostDTO struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Timestamp   string `json:"timestamp"`
	AuthorID    uint   `json:"author_id"`
	Author      string `json:"author"`
}

func NewPostDTO(post *models.Post) PostDTO {
	return PostDTO{
		ID:          post.ID,
		Title:       post.Title,
		Description: post.Description,
		Price:       post.Price,
		Timestamp:   FormatTime(post.Timestamp),
		AuthorID:    post.UserID,
		Author:      post.Author.Username,
	}
}

// MessageDTO is a private message as shown in the recipient's inbox
type MessageDTO struct {
	ID        uint   `json:"id"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
	Sender    string `json:"sender"`
}

func NewMessageDTO(message *models.Message) MessageDTO {
	return MessageDTO{
		ID:        message.ID,
		Body:      message.Body,
		Timestamp: FormatTime(message.Timestamp),
		Sender:    message.Author.Username,
	}
}

type NotificationDTO struct {
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Timestamp float64         `json:"timestamp"`
}

func NewNotificationDTO(n *models.Notification) NotificationDTO {
	data := json.RawMessage(n.PayloadJSON)
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return NotificationDTO{Name: n.Name, Data: data, Timestamp: n.Timestamp}
}

type PageMeta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
}

type PageLinks struct {
	Self string  `json:"self"`
	Next *string `json:"next"`
	Prev *string `json:"prev"`
}

// PageDTO is a paginated collection with navigation links.
type PageDTO[T any] struct {
	Items []T       `json:"items"`
	Meta  PageMeta  `json:"_meta"`
	Links PageLinks `json:"_links"`
}

// NewPageDTO converts every item of page with convert. path is the
// collection URL the navigation links point at.
func NewPageDTO[M, T any](page *repositories.Page[M], path string, convert func(*M) T) PageDTO[T] {
	items := make([]T, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, convert(&page.Items[i]))
	}

	totalPages := 0
	if page.PerPage > 0 {
		totalPages = int(math.Ceil(float64(page.Total) / float64(page.PerPage)))
	}

	links := PageLinks{Self: pageURL(path, page.Page)}
	if page.HasNext {
		next := pageURL(path, page.NextNum)
		links.Next = &next
	}
	if page.HasPrev {
		prev := pageURL(path, page.PrevNum)
		links.Prev = &prev
	}

	return PageDTO[T]{
		Items: items,
		Meta: PageMeta{
			Page:       page.Page,
			PerPage:    page.PerPage,
			TotalPages: totalPages,
			TotalItems: page.Total,
		},
		Links: links,
	}
}

func pageURL(path string, page int) string {
	return fmt.Sprintf("%s?page=%d", path, page)
}

// FormatTime renders t as an RFC 3339 UTC timestamp. The zero time renders
// as an empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
