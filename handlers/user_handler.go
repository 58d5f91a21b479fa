package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/danevairena/Bookstore/dto"
	"github.com/danevairena/Bookstore/models"
	"github.com/danevairena/Bookstore/monitoring"
	"github.com/danevairena/Bookstore/repositories"
)

// UserHandler serves user profiles and the follow graph
type UserHandler struct {
	app *App
}

func NewUserHandler(app *App) *UserHandler {
	return &UserHandler{app: app}
}

func (a *App) userCounts(r *http.Request, user *models.User) (dto.UserCounts, error) {
	ctx := r.Context()
	var counts dto.UserCounts
	var err error
	if counts.Posts, err = a.Users.PostCount(ctx, user.ID); err != nil {
		return counts, err
	}
	if counts.Followers, err = a.Users.FollowerCount(ctx, user.ID); err != nil {
		return counts, err
	}
	if counts.Followed, err = a.Users.FollowedCount(ctx, user.ID); err != nil {
		return counts, err
	}
	return counts, nil
}

// userPage renders a page of users. Conversion errors abort the whole page.
func (a *App) userPage(r *http.Request, page *repositories.Page[models.User], path string) (dto.PageDTO[dto.UserDTO], error) {
	me := CurrentUser(r)
	var firstErr error
	out := dto.NewPageDTO(page, path, func(u *models.User) dto.UserDTO {
		counts, err := a.userCounts(r, u)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return dto.NewUserDTO(u, counts, me != nil && me.ID == u.ID)
	})
	return out, firstErr
}

// lookup loads the user named by the {id} route variable, answering 404 when
// there is none.
func (h *UserHandler) lookup(w http.ResponseWriter, r *http.Request) *models.User {
	id, ok := parseID(mux.Vars(r)["id"])
	if !ok {
		errorResponse(w, http.StatusNotFound, "")
		return nil
	}
	user, err := h.app.Users.FindByID(r.Context(), id)
	if err != nil {
		h.app.serverError(w, r, err)
		return nil
	}
	if user == nil {
		errorResponse(w, http.StatusNotFound, fmt.Sprintf("user %d not found", id))
		return nil
	}
	return user
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.app.Users.List(r.Context(), pageParam(r), h.app.Config.UsersPerPage)
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	out, err := h.app.userPage(r, page, "/users")
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := h.lookup(w, r)
	if user == nil {
		return
	}
	counts, err := h.app.userCounts(r, user)
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	me := CurrentUser(r)
	writeJSON(w, http.StatusOK, dto.NewUserDTO(user, counts, me != nil && me.ID == user.ID))
}

// Update edits the caller's own profile.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := h.lookup(w, r)
	if user == nil {
		return
	}
	me := CurrentUser(r)
	if me.ID != user.ID {
		errorResponse(w, http.StatusForbidden, "you can only edit your own profile")
		return
	}

	var req dto.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	ctx := r.Context()
	if req.Username != nil && *req.Username != user.Username {
		taken, err := h.app.Users.Exists(ctx, *req.Username)
		if err != nil {
			h.app.serverError(w, r, err)
			return
		}
		if taken {
			badRequest(w, "please use a different username")
			return
		}
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		existing, err := h.app.Users.FindByEmail(ctx, *req.Email)
		if err != nil {
			h.app.serverError(w, r, err)
			return
		}
		if existing != nil {
			badRequest(w, "please use a different email address")
			return
		}
		user.Email = *req.Email
	}
	if req.AboutMe != nil {
		user.AboutMe = *req.AboutMe
	}

	if err := h.app.Users.Save(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			badRequest(w, "please use a different username or email address")
			return
		}
		h.app.serverError(w, r, err)
		return
	}

	counts, err := h.app.userCounts(r, user)
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserDTO(user, counts, true))
}

func (h *UserHandler) Followers(w http.ResponseWriter, r *http.Request) {
	user := h.lookup(w, r)
	if user == nil {
		return
	}
	page, err := h.app.Users.Followers(r.Context(), user.ID, pageParam(r), h.app.Config.UsersPerPage)
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	out, err := h.app.userPage(r, page, fmt.Sprintf("/users/%d/followers", user.ID))
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *UserHandler) Followed(w http.ResponseWriter, r *http.Request) {
	user := h.lookup(w, r)
	if user == nil {
		return
	}
	page, err := h.app.Users.Followed(r.Context(), user.ID, pageParam(r), h.app.Config.UsersPerPage)
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	out, err := h.app.userPage(r, page, fmt.Sprintf("/users/%d/followed", user.ID))
	if err != nil {
		h.app.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Follow makes the caller follow {username}.
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	target, ok := h.followTarget(w, r, "follow")
	if !ok {
		return
	}
	if err := h.app.Follows.Follow(r.Context(), CurrentUser(r).ID, target.ID); err != nil {
		if errors.Is(err, repositories.ErrSelfFollow) {
			badRequest(w, "you cannot follow yourself")
			return
		}
		h.app.serverError(w, r, err)
		return
	}
	monitoring.Follows.WithLabelValues("follow").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("You are following %s!", target.Username)})
}

func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	target, ok := h.followTarget(w, r, "unfollow")
	if !ok {
		return
	}
	if err := h.app.Follows.Unfollow(r.Context(), CurrentUser(r).ID, target.ID); err != nil {
		h.app.serverError(w, r, err)
		return
	}
	monitoring.Follows.WithLabelValues("unfollow").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("You are not following %s.", target.Username)})
}

func (h *UserHandler) followTarget(w http.ResponseWriter, r *http.Request, action string) (*models.User, bool) {
	username := mux.Vars(r)["username"]
	target, err := h.app.Users.FindByUsername(r.Context(), username)
	if err != nil {
		h.app.serverError(w, r, err)
		return nil, false
	}
	if target == nil {
		errorResponse(w, http.StatusNotFound, fmt.Sprintf("user %s not found", username))
		return nil, false
	}
	if target.ID == CurrentUser(r).ID {
		badRequest(w, fmt.Sprintf("you cannot %s yourself", action))
		return nil, false
	}
	return target, true
}
