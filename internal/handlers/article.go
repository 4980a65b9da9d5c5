package handlers

import (
	"net/http"

	"asahigaoka/internal/logger"
	"asahigaoka/internal/models"
	"asahigaoka/internal/services"
	"asahigaoka/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type ArticleHandler struct {
	svc  services.ArticleService
	auth ActorResolver
}

func NewArticleHandler(svc services.ArticleService, auth ActorResolver) *ArticleHandler {
	return &ArticleHandler{svc: svc, auth: auth}
}

// ListPublished godoc
// @Summary      Published articles
// @Description  Public listing, served from the cache when possible
// @Tags         articles
// @Produce      json
// @Param        category  query  string  false  "Category"
// @Param        order     query  string  false  "created_at | updated_at | published_at | event"
// @Param        limit     query  int     false  "Limit"
// @Param        offset    query  int     false  "Offset"
// @Success      200  {array}   models.Article
// @Router       /api/articles [get]
func (h *ArticleHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListPublished(r.Context(), filterFromQuery(r))
	if err != nil {
		helpers.AppError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, list)
}

// Search godoc
// @Summary      Search published articles
// @Tags         articles
// @Produce      json
// @Param        q      query  string  true   "Keyword"
// @Param        limit  query  int     false  "Limit"
// @Success      200  {array}   models.Article
// @Failure      422  {object}  helpers.Response
// @Router       /api/articles/search [get]
func (h *ArticleHandler) Search(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"), queryInt(r, "limit", 20))
	if err != nil {
		helpers.AppError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, list)
}

// List godoc
// @Summary      Articles visible to the current user
// @Description  Admins see everything; editors see published articles and their own drafts
// @Tags         admin-articles
// @Produce      json
// @Param        status    query  string  false  "draft | published"
// @Param        category  query  string  false  "Category"
// @Param        q         query  string  false  "Keyword"
// @Success      200  {array}   models.Article
// @Security     BearerAuth
// @Router       /api/admin/articles [get]
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r, h.auth)
	if !ok {
		return
	}
	list, err := h.svc.List(r.Context(), u, filterFromQuery(r))
	if err != nil {
		helpers.AppError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, list)
}

// Create godoc
// @Summary      Create an article
// @Description  Saves a new draft or published article and runs broadcasts and page generation
// @Tags         admin-articles
// @Accept       json
// @Produce      json
// @Param        body  body  models.ArticleInput  true  "Article"
// @Success      201  {object}  workflow.Outcome
// @Failure      422  {object}  helpers.Response
// @Security     BearerAuth
// @Router       /api/admin/articles [post]
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r, h.auth)
	if !ok {
		return
	}
	var in models.ArticleInput
	if !decodeJSON(w, r, &in) {
		return
	}
	out, err := h.svc.Save(r.Context(), u, "", in)
	if err == nil {
		logger.WithCtx(r.Context()).Info("Article created", zap.String("id", out.Article.ID))
	}
	writeOutcome(w, http.StatusCreated, out, err)
}

// Get godoc
// @Summary      Load an article for editing
// @Tags         admin-articles
// @Produce      json
// @Param        id  path  string  true  "Article ID"
// @Success      200  {object}  models.Article
// @Failure      403  {object}  helpers.Response
// @Failure      404  {object}  helpers.Response
// @Security     BearerAuth
// @Router       /api/admin/articles/{id} [get]
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r, h.auth)
	if !ok {
		return
	}
	a, err := h.svc.GetForEdit(r.Context(), u, mux.Vars(r)["id"])
	if err != nil {
		helpers.AppError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// Update godoc
// @Summary      Save an article
// @Tags         admin-articles
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "Article ID"
// @Param        body  body  models.ArticleInput  true  "Article"
// @Success      200  {object}  workflow.Outcome
// @Failure      403  {object}  helpers.Response
// @Failure      422  {object}  helpers.Response
// @Security     BearerAuth
// @Router       /api/admin/articles/{id} [put]
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r, h.auth)
	if !ok {
		return
	}
	var in models.ArticleInput
	if !decodeJSON(w, r, &in) {
		return
	}
	out, err := h.svc.Save(r.Context(), u, mux.Vars(r)["id"], in)
	writeOutcome(w, http.StatusOK, out, err)
}

// Publish godoc
// @Summary      Publish an article
// @Tags         admin-articles
// @Accept       json
// @Produce      json
// @Param        id    path  string                true   "Article ID"
// @Param        body  body  models.StatusRequest  false  "Broadcast channels"
// @Success      200  {object}  workflow.Outcome
// @Security     BearerAuth
// @Router       /api/admin/articles/{id}/publish [post]
func (h *ArticleHandler) Publish(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r, h.auth)
	if !ok {
		return
	}
	var req models.StatusRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.svc.Publish(r.Context(), u, mux.Vars(r)["id"], req)
	writeOutcome(w, http.StatusOK, out, err)
}

// Unpublish godoc
// @Summary      Unpublish an article
// @Description  Moves the article back to draft and deletes its detail page
// @Tags         admin-articles
// @Produce      json
// @Param        id  path  string  true  "Article ID"
// @Success      200  {object}  workflow.Outcome
// @Security     BearerAuth
// @Router       /api/admin/articles/{id}/unpublish [post]
func (h *ArticleHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r, h.auth)
	if !ok {
		return
	}
	out, err := h.svc.Unpublish(r.Context(), u, mux.Vars(r)["id"])
	writeOutcome(w, http.StatusOK, out, err)
}

// ToggleStatus godoc
// @Summary      Inline status toggle
// @Tags         admin-articles
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "Article ID"
// @Param        body  body  models.StatusRequest  true  "New status"
// @Success      200  {object}  workflow.Outcome
// @Failure      422  {object}  helpers.Response
// @Security     BearerAuth
// @Router       /api/admin/articles/{id}/status [patch]
func (h *ArticleHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r, h.auth)
	if !ok {
		return
	}
	var req models.StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.svc.ToggleStatus(r.Context(), u, mux.Vars(r)["id"], req)
	writeOutcome(w, http.StatusOK, out, err)
}

// Delete godoc
// @Summary      Delete an article
// @Description  Removes the detail page (best effort) and soft-deletes the record
// @Tags         admin-articles
// @Produce      json
// @Param        id  path  string  true  "Article ID"
// @Success      200  {object}  workflow.Outcome
// @Security     BearerAuth
// @Router       /api/admin/articles/{id} [delete]
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r, h.auth)
	if !ok {
		return
	}
	out, err := h.svc.Delete(r.Context(), u, mux.Vars(r)["id"])
	writeOutcome(w, http.StatusOK, out, err)
}
