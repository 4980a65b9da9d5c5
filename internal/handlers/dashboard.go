package handlers

import (
	"net/http"

	"asahigaoka/internal/services"
	"asahigaoka/internal/utils/helpers"
)

type DashboardHandler struct {
	svc  *services.DashboardService
	auth ActorResolver
}

func NewDashboardHandler(svc *services.DashboardService, auth ActorResolver) *DashboardHandler {
	return &DashboardHandler{svc: svc, auth: auth}
}

// Stats godoc
// @Summary Dashboard counters
// @Tags admin
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Security BearerAuth
// @Router /api/admin/dashboard [get]
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r, h.auth)
	if !ok {
		return
	}
	stats, err := h.svc.Stats(r.Context(), u)
	if err != nil {
		helpers.AppError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, stats)
}
