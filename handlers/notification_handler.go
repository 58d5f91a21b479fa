package handlers

import (
	"net/http"
	"strconv"

	"github.com/danevairena/Bookstore/dto"
)

type NotificationHandler struct {
	app *App
}

func NewNotificationHandler(app *App) *NotificationHandler {
	return &NotificationHandler{app: app}
}

// List returns the caller's notifications newer than ?since=, oldest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	since := 0.0
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			badRequest(w, "since must be a number")
			return
		}
		since = parsed
	}

	notifications, err := h.app.Notifications.ListSince(r.Context(), CurrentUser(r).ID, since)
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}

	out := make([]dto.NotificationDTO, 0, len(notifications))
	for i := range notifications {
		out = append(out, dto.NewNotificationDTO(&notifications[i]))
	}
	writeJSON(w, http.StatusOK, out)
}
