package handlers

import (
	"net/http"

	"asahigaoka/internal/models"
	"asahigaoka/internal/services"
	"asahigaoka/internal/utils/helpers"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	svc  *services.UserService
	auth ActorResolver
}

func NewUserHandler(svc *services.UserService, auth ActorResolver) *UserHandler {
	return &UserHandler{svc: svc, auth: auth}
}

// List godoc
// @Summary List users
// @Tags admin-users
// @Produce json
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /api/admin/users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		helpers.AppError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, users)
}

// Update godoc
// @Summary Update a user's name, role or active flag
// @Tags admin-users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body models.UpdateUserRequest true "Fields"
// @Success 200 {object} models.User
// @Security BearerAuth
// @Router /api/admin/users/{id} [patch]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r, h.auth)
	if !ok {
		return
	}
	var req models.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	updated, err := h.svc.Update(r.Context(), u, mux.Vars(r)["id"], &req)
	if err != nil {
		helpers.AppError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, updated)
}

// Create godoc
// @Summary Add a user
// @Tags admin-users
// @Accept json
// @Produce json
// @Param body body models.CreateUserRequest true "New account"
// @Success 201 {object} models.User
// @Failure 422 {object} helpers.Response
// @Security BearerAuth
// @Router /api/admin/users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		helpers.AppError(w, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, created)
}

// Delete godoc
// @Summary Delete a user that owns no articles or media
// @Tags admin-users
// @Param id path string true "User ID"
// @Success 204
// @Failure 422 {object} helpers.Response
// @Security BearerAuth
// @Router /api/admin/users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r, h.auth)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), u, mux.Vars(r)["id"]); err != nil {
		helpers.AppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
