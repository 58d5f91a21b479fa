package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/danevairena/Bookstore/dto"
	"github.com/danevairena/Bookstore/models"
	"github.com/danevairena/Bookstore/monitoring"
)

// UnreadMessageCount names the notification carrying a user's unread count
const UnreadMessageCount = "unread_message_count"

// MessageHandler handles private messages between users
type MessageHandler struct {
	app *App
}

func NewMessageHandler(app *App) *MessageHandler {
	return &MessageHandler{app: app}
}

// Send delivers a message to {username} and refreshes their unread count.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := mux.Vars(r)["username"]
	recipient, err := h.app.Users.FindByUsername(ctx, username)
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	if recipient == nil {
		errorResponse(w, http.StatusNotFound, fmt.Sprintf("user %s not found", username))
		return
	}

	var req dto.MessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	me := CurrentUser(r)
	message := &models.Message{
		SenderID:    me.ID,
		RecipientID: recipient.ID,
		Body:        req.Body,
		Timestamp:   h.app.Now(),
	}
	if err := h.app.Messages.Create(ctx, message); err != nil {
		h.app.serverError(w, r, err)
		return
	}
	message.Author = *me

	count, err := h.app.Messages.UnreadCount(ctx, recipient)
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	if _, err := h.app.Notifications.Add(ctx, recipient.ID, UnreadMessageCount, count); err != nil {
		h.app.serverError(w, r, err)
		return
	}

	monitoring.MessagesSent.Inc()
	writeJSON(w, http.StatusCreated, dto.NewMessageDTO(message))
}

// List shows the caller's inbox, newest first, and marks it read.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := CurrentUser(r)

	if err := h.app.Users.MarkMessagesRead(ctx, me.ID, h.app.Now()); err != nil {
		h.app.serverError(w, r, err)
		return
	}
	if _, err := h.app.Notifications.Add(ctx, me.ID, UnreadMessageCount, 0); err != nil {
		h.app.serverError(w, r, err)
		return
	}

	page, err := h.app.Messages.Received(ctx, me.ID, pageParam(r), h.app.Config.PostsPerPage)
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewPageDTO(page, "/messages", dto.NewMessageDTO))
}
