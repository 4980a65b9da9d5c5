package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"asahigaoka/internal/apperr"
	"asahigaoka/internal/handlers"
	"asahigaoka/internal/models"
	"asahigaoka/internal/services"
	"asahigaoka/internal/utils"
	"asahigaoka/internal/workflow"

	"github.com/gorilla/mux"
)

const secret = "test-secret"

type userRepo struct{ users map[string]*models.User }

func (r *userRepo) CreateUser(context.Context, *models.User) error { return nil }
func (r *userRepo) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, apperr.NotFound("user not found")
}
func (r *userRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("user not found")
}
func (r *userRepo) GetAllUsers(context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}
func (r *userRepo) TouchLastLogin(context.Context, string) error { return nil }
func (r *userRepo) DeleteUser(context.Context, string) error     { return nil }
func (r *userRepo) UpdateUserFields(context.Context, string, *models.UpdateUserRequest) error {
	return nil
}

type articles struct{ services.ArticleService }

func (articles) ListPublished(context.Context, models.ArticleFilter) ([]*models.Article, error) {
	return []*models.Article{}, nil
}

func (articles) List(context.Context, *models.User, models.ArticleFilter) ([]*models.Article, error) {
	return []*models.Article{}, nil
}

func (articles) Delete(context.Context, *models.User, string) (*workflow.Outcome, error) {
	return &workflow.Outcome{Message: "deleted"}, nil
}

func newTestRouter() *mux.Router {
	repo := &userRepo{users: map[string]*models.User{
		"admin":  {ID: "admin", Role: models.RoleAdmin, IsActive: true},
		"editor": {ID: "editor", Role: models.RoleEditor, IsActive: true},
	}}
	auth := services.NewAuthService(repo, secret, time.Minute)

	router := mux.NewRouter()
	InitRoutes(router, secret, Handlers{
		Auth:      handlers.NewAuthHandler(auth),
		Articles:  handlers.NewArticleHandler(articles{}, auth),
		Media:     handlers.NewMediaHandler(services.NewMediaService(nil, nil, nil, 1<<20), auth, 1<<20),
		Users:     handlers.NewUserHandler(services.NewUserService(repo), auth),
		Dashboard: handlers.NewDashboardHandler(services.NewDashboardService(nil), auth),
		Drafts:    handlers.NewDraftHandler(services.NewDraftService(nil, "")),
	})
	return router
}

func token(t *testing.T, id, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(secret, id, role, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}

func TestRouteGuards(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"public listing", http.MethodGet, "/api/articles", "", http.StatusOK},
		{"admin area needs a token", http.MethodGet, "/api/admin/articles", "", http.StatusUnauthorized},
		{"editor lists articles", http.MethodGet, "/api/admin/articles", token(t, "editor", models.RoleEditor), http.StatusOK},
		{"editor deletes through the service", http.MethodDelete, "/api/admin/articles/x", token(t, "editor", models.RoleEditor), http.StatusOK},
		{"editor cannot manage users", http.MethodGet, "/api/admin/users", token(t, "editor", models.RoleEditor), http.StatusForbidden},
		{"admin manages users", http.MethodGet, "/api/admin/users", token(t, "admin", models.RoleAdmin), http.StatusOK},
		{"editor cannot add users", http.MethodPost, "/api/admin/users", token(t, "editor", models.RoleEditor), http.StatusForbidden},
		{"editor cannot delete users", http.MethodDelete, "/api/admin/users/admin", token(t, "editor", models.RoleEditor), http.StatusForbidden},
		{"admin deletes another user", http.MethodDelete, "/api/admin/users/editor", token(t, "admin", models.RoleAdmin), http.StatusNoContent},
		{"admin cannot delete themselves", http.MethodDelete, "/api/admin/users/admin", token(t, "admin", models.RoleAdmin), http.StatusUnprocessableEntity},
		{"unknown role", http.MethodGet, "/api/admin/articles", token(t, "editor", "viewer"), http.StatusForbidden},
		{"generate is not an article id", http.MethodPost, "/api/admin/articles/generate", token(t, "editor", models.RoleEditor), http.StatusBadRequest},
		{"generate needs a token", http.MethodPost, "/api/admin/articles/generate", "", http.StatusUnauthorized},
		{"wrong method", http.MethodPatch, "/api/articles", "", http.StatusMethodNotAllowed},
		{"wrong method in admin area", http.MethodPatch, "/api/admin/dashboard", token(t, "editor", models.RoleEditor), http.StatusMethodNotAllowed},
		{"unknown api path", http.MethodGet, "/api/nope", "", http.StatusNotFound},
		{"unknown root path", http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("%s %s = %d, want %d (%s)", tt.method, tt.path, rr.Code, tt.want, rr.Body.String())
			}
			if rr.Header().Get("X-Request-ID") == "" {
				t.Errorf("missing X-Request-ID")
			}
		})
	}
}
