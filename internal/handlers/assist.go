package handlers

import (
	"net/http"

	"asahigaoka/internal/models"
	"asahigaoka/internal/services"
	"asahigaoka/internal/utils/helpers"
)

type DraftHandler struct {
	svc *services.DraftService
}

func NewDraftHandler(svc *services.DraftService) *DraftHandler {
	return &DraftHandler{svc: svc}
}

// Generate godoc
// @Summary      Draft article text with the writing assistant
// @Description  Returns suggested body, excerpt and SEO fields; nothing is saved
// @Tags         admin-articles
// @Accept       json
// @Produce      json
// @Param        body  body  models.DraftRequest  true  "Title, notes and event dates"
// @Success      200  {object}  models.DraftSuggestion
// @Failure      422  {object}  helpers.Response
// @Failure      502  {object}  helpers.Response
// @Security     BearerAuth
// @Router       /api/admin/articles/generate [post]
func (h *DraftHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.DraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.svc.Suggest(r.Context(), req)
	if err != nil {
		helpers.AppError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, out)
}
