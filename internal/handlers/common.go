package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"asahigaoka/internal/models"
	"asahigaoka/internal/utils/helpers"
	"asahigaoka/internal/workflow"
)

// ActorResolver resolves the logged-in user behind a request.
type ActorResolver interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

func actor(w http.ResponseWriter, r *http.Request, res ActorResolver) (*models.User, bool) {
	u, err := res.CurrentUser(r.Context())
	if err != nil {
		helpers.AppError(w, err)
		return nil, false
	}
	return u, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		helpers.Error(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return v
	}
	return def
}

func filterFromQuery(r *http.Request) models.ArticleFilter {
	q := r.URL.Query()
	return models.ArticleFilter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Keyword:  q.Get("q"),
		OrderBy:  q.Get("order"),
		Limit:    queryInt(r, "limit", 20),
		Offset:   queryInt(r, "offset", 0),
	}
}

// writeOutcome answers a workflow operation with its message and warnings.
func writeOutcome(w http.ResponseWriter, status int, out *workflow.Outcome, err error) {
	if err != nil {
		helpers.AppError(w, err)
		return
	}
	var warnings []string
	for _, wn := range out.Warnings {
		warnings = append(warnings, wn.Step+": "+wn.Message)
	}
	helpers.JSONMessage(w, status, out, out.Message, warnings)
}
