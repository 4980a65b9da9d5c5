package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"asahigaoka/internal/clients/assist"
	"asahigaoka/internal/models"
	"asahigaoka/internal/services"
)

func assistServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func draftHandler(url string) *DraftHandler {
	client := assist.New(url, "https://example.tokyo/town.html", time.Second)
	return NewDraftHandler(services.NewDraftService(client, "旭丘一丁目町会"))
}

func TestGenerateDraft(t *testing.T) {
	srv := assistServer(t, http.StatusOK, `{"success":true,"data":{"text350":"一行目\n二行目","text80":"短い抜粋"}}`)
	h := draftHandler(srv.URL)

	body := `{"title":"防災訓練","summary":"9月1日 小学校","date_from":"2025-09-01"}`
	rr := httptest.NewRecorder()
	h.Generate(rr, httptest.NewRequest(http.MethodPost, "/articles/generate", bytes.NewBufferString(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var got struct {
		Data models.DraftSuggestion `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Data.Content != "<p>一行目</p>\n<p>二行目</p>" || got.Data.Excerpt != "短い抜粋" {
		t.Errorf("suggestion = %+v", got.Data)
	}
	if got.Data.MetaTitle != "防災訓練 | 旭丘一丁目町会" {
		t.Errorf("meta_title = %q", got.Data.MetaTitle)
	}
}

func TestGenerateDraft_AssistantDown(t *testing.T) {
	srv := assistServer(t, http.StatusInternalServerError, `{"success":false,"error":"Dify unavailable"}`)
	h := draftHandler(srv.URL)

	body := `{"title":"t","summary":"s","date_from":"2025-09-01"}`
	rr := httptest.NewRecorder()
	h.Generate(rr, httptest.NewRequest(http.MethodPost, "/articles/generate", bytes.NewBufferString(body)))

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rr.Code)
	}
}
