package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/danevairena/Bookstore/dto"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	text := http.StatusText(status)
	if text == "" {
		text = "Unknown error"
	}
	writeJSON(w, status, dto.ErrorDTO{Error: text, Message: message})
}

func badRequest(w http.ResponseWriter, message string) {
	errorResponse(w, http.StatusBadRequest, message)
}

// serverError logs err with the request id and hides the details from the
// client.
func (a *App) serverError(w http.ResponseWriter, r *http.Request, err error) {
	a.logger(r).WithError(err).Error("Request failed")
	errorResponse(w, http.StatusInternalServerError, "")
}

// decodeJSON reads the request body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body must not be empty")
		}
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	return dto.Validate(dst)
}

// pageParam reads ?page=, treating anything missing or invalid as page 1
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// NotFound renders unknown routes as JSON errors.
func NotFound(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, http.StatusNotFound, "")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, http.StatusMethodNotAllowed, "")
}
