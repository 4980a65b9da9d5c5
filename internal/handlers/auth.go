package handlers

import (
	"net/http"

	"asahigaoka/internal/models"
	"asahigaoka/internal/services"
	"asahigaoka/internal/utils/helpers"
	"asahigaoka/internal/workflow"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param input body models.LoginRequest true "Credentials"
// @Success 200 {object} loginResponse
// @Failure 401 {object} helpers.Response
// @Router /api/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := workflow.ValidateStruct(req); err != nil {
		helpers.AppError(w, err)
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		helpers.AppError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, loginResponse{AccessToken: token, User: user})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Security BearerAuth
// @Router /api/admin/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r, h.authService)
	if !ok {
		return
	}
	helpers.JSON(w, http.StatusOK, u)
}
