package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/danevairena/Bookstore/dto"
	"github.com/danevairena/Bookstore/models"
	"github.com/danevairena/Bookstore/monitoring"
	"github.com/danevairena/Bookstore/repositories"
)

// PostHandler serves listings and the feeds built from them
type PostHandler struct {
	app *App
}

func NewPostHandler(app *App) *PostHandler {
	return &PostHandler{app: app}
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.PostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	me := CurrentUser(r)
	post := &models.Post{
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Timestamp:   h.app.Now(),
		UserID:      me.ID,
	}
	if err := h.app.Posts.Create(r.Context(), post); err != nil {
		h.app.serverError(w, r, err)
		return
	}
	post.Author = *me

	monitoring.PostsCreated.Inc()
	writeJSON(w, http.StatusCreated, dto.NewPostDTO(post))
}

// Index is the caller's feed: their own posts and those of everyone they
// follow.
func (h *PostHandler) Index(w http.ResponseWriter, r *http.Request) {
	page, err := h.app.Posts.FollowedPosts(r.Context(), CurrentUser(r).ID, pageParam(r), h.app.Config.PostsPerPage)
	h.writePage(w, r, page, err, "/index")
}

func (h *PostHandler) Explore(w http.ResponseWriter, r *http.Request) {
	page, err := h.app.Posts.Explore(r.Context(), pageParam(r), h.app.Config.PostsPerPage)
	h.writePage(w, r, page, err, "/explore")
}

func (h *PostHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	user, err := h.app.Users.FindByUsername(r.Context(), username)
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	if user == nil {
		errorResponse(w, http.StatusNotFound, fmt.Sprintf("user %s not found", username))
		return
	}
	page, err := h.app.Posts.ByUser(r.Context(), user.ID, pageParam(r), h.app.Config.PostsPerPage)
	h.writePage(w, r, page, err, fmt.Sprintf("/users/%s/posts", user.Username))
}

func (h *PostHandler) writePage(w http.ResponseWriter, r *http.Request, page *repositories.Page[models.Post], err error, path string) {
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewPageDTO(page, path, dto.NewPostDTO))
}
