package routes

import (
	"net/http"

	"asahigaoka/internal/handlers"
	"asahigaoka/internal/middleware"
	"asahigaoka/internal/models"
	"asahigaoka/internal/utils/helpers"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Articles  *handlers.ArticleHandler
	Media     *handlers.MediaHandler
	Users     *handlers.UserHandler
	Dashboard *handlers.DashboardHandler
	Drafts    *handlers.DraftHandler
}

func InitRoutes(router *mux.Router, jwtSecret string, h Handlers) {
	router.Use(middleware.RequestID, middleware.Recoverer, middleware.Logging)

	api := router.PathPrefix("/api").Subrouter()

	// --- public ---
	api.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/articles", h.Articles.ListPublished).Methods(http.MethodGet)
	api.HandleFunc("/articles/search", h.Articles.Search).Methods(http.MethodGet)

	// --- admin console: any logged-in staff member ---
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.AnyRole(models.RoleAdmin, models.RoleEditor))

	admin.HandleFunc("/me", h.Auth.Me).Methods(http.MethodGet)
	admin.HandleFunc("/dashboard", h.Dashboard.Stats).Methods(http.MethodGet)

	admin.HandleFunc("/articles", h.Articles.List).Methods(http.MethodGet)
	admin.HandleFunc("/articles", h.Articles.Create).Methods(http.MethodPost)
	admin.HandleFunc("/articles/generate", h.Drafts.Generate).Methods(http.MethodPost)
	admin.HandleFunc("/articles/{id}", h.Articles.Get).Methods(http.MethodGet)
	admin.HandleFunc("/articles/{id}", h.Articles.Update).Methods(http.MethodPut)
	admin.HandleFunc("/articles/{id}", h.Articles.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/articles/{id}/publish", h.Articles.Publish).Methods(http.MethodPost)
	admin.HandleFunc("/articles/{id}/unpublish", h.Articles.Unpublish).Methods(http.MethodPost)
	admin.HandleFunc("/articles/{id}/status", h.Articles.ToggleStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/articles/{id}/media", h.Media.ListForArticle).Methods(http.MethodGet)

	admin.HandleFunc("/media", h.Media.Upload).Methods(http.MethodPost)
	admin.HandleFunc("/media/link", h.Media.Link).Methods(http.MethodPost)
	admin.HandleFunc("/media/{id}", h.Media.Delete).Methods(http.MethodDelete)

	// --- admin only ---
	users := admin.PathPrefix("/users").Subrouter()
	users.Use(middleware.OnlyRole(models.RoleAdmin))
	users.HandleFunc("", h.Users.List).Methods(http.MethodGet)
	users.HandleFunc("", h.Users.Create).Methods(http.MethodPost)
	users.HandleFunc("/{id}", h.Users.Update).Methods(http.MethodPatch)
	users.HandleFunc("/{id}", h.Users.Delete).Methods(http.MethodDelete)

	setFallbacks(router, api, admin, users)
}

// setFallbacks installs JSON 404/405 answers on every router level. mux does
// not run Use() middleware for unmatched requests, so the chain is applied here.
func setFallbacks(routers ...*mux.Router) {
	notFound := middleware.RequestID(middleware.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		helpers.Error(w, http.StatusNotFound, "not found")
	})))
	notAllowed := middleware.RequestID(middleware.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		helpers.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})))
	for _, r := range routers {
		r.NotFoundHandler = notFound
		r.MethodNotAllowedHandler = notAllowed
	}
}
