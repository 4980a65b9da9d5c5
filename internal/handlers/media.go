package handlers

import (
	"io"
	"mime/multipart"
	"net/http"

	"asahigaoka/internal/logger"
	"asahigaoka/internal/models"
	"asahigaoka/internal/services"
	"asahigaoka/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type MediaHandler struct {
	svc      *services.MediaService
	auth     ActorResolver
	maxBytes int64
}

func NewMediaHandler(svc *services.MediaService, auth ActorResolver, maxBytes int64) *MediaHandler {
	return &MediaHandler{svc: svc, auth: auth, maxBytes: maxBytes}
}

// Upload godoc
// @Summary      Upload an image or attachment
// @Tags         admin-media
// @Accept       multipart/form-data
// @Produce      json
// @Param        file        formData  file    true   "File"
// @Param        kind        formData  string  false  "image | attachment"
// @Param        article_id  formData  string  false  "Article ID; omit for an article that is not saved yet"
// @Success      201  {object}  models.Media
// @Failure      422  {object}  helpers.Response
// @Security     BearerAuth
// @Router       /api/admin/media [post]
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r, h.auth)
	if !ok {
		return
	}

	// Leave room for the multipart envelope; the service enforces the file limit.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxBytes + 1<<20); err != nil {
		logger.WithCtx(r.Context()).Warn("Multipart parse failed", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = sniff(file)
	}

	m, err := h.svc.Upload(r.Context(), u, services.UploadInput{
		Kind:        r.FormValue("kind"),
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
		ArticleID:   r.FormValue("article_id"),
	})
	if err != nil {
		helpers.AppError(w, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, m)
}

func sniff(f multipart.File) string {
	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "application/octet-stream"
	}
	return http.DetectContentType(buf[:n])
}

// Link godoc
// @Summary      Link pending uploads to an article
// @Tags         admin-media
// @Accept       json
// @Produce      json
// @Param        body  body  models.LinkMediaRequest  true  "Media and article"
// @Success      200  {object}  map[string]int64
// @Security     BearerAuth
// @Router       /api/admin/media/link [post]
func (h *MediaHandler) Link(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r, h.auth)
	if !ok {
		return
	}
	var req models.LinkMediaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.svc.LinkPending(r.Context(), u, req)
	if err != nil {
		helpers.AppError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]int64{"linked": n})
}

// ListForArticle godoc
// @Summary      Files of an article
// @Tags         admin-media
// @Produce      json
// @Param        id  path  string  true  "Article ID"
// @Success      200  {array}  models.Media
// @Security     BearerAuth
// @Router       /api/admin/articles/{id}/media [get]
func (h *MediaHandler) ListForArticle(w http.ResponseWriter, r *http.Request) {
	u, ok := actor(w, r, h.auth)
	if !ok {
		return
	}
	list, err := h.svc.ListForArticle(r.Context(), u, mux.Vars(r)["id"])
	if err != nil {
		helpers.AppError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, list)
}

// Delete godoc
// @Summary      Delete a file
// @Tags         admin-media
// @Param        id  path  string  true  "Media ID"
// @Success      204
// @Security     BearerAuth
// @Router       /api/admin/media/{id} [delete]
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
