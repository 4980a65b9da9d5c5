package sitegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"asahigaoka/internal/apperr"
	"asahigaoka/internal/models"
)

func TestDetailPagePayloads(t *testing.T) {
	var got []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		got = append(got, body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"file_path":"news/a1.html"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.URL, time.Second)

	res, err := c.GenerateDetailPage(context.Background(), "a1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.FilePath != "news/a1.html" {
		t.Fatalf("file_path = %q", res.FilePath)
	}
	if _, err := c.DeleteDetailPage(context.Background(), "a1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(got))
	}
	if _, ok := got[0]["delete_flag"]; ok {
		t.Fatal("generate request must not carry delete_flag")
	}
	if got[1]["delete_flag"] != true || got[1]["article_id"] != "a1" {
		t.Fatalf("unexpected delete payload: %v", got[1])
	}
}

func TestUpdateListing(t *testing.T) {
	var got models.ListingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"updated_sections":["news_list"]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.URL, time.Second)
	res, err := c.UpdateListing(context.Background(), models.ListingRequest{
		UpdateNewsList: true, ArticleID: "a1", ArticleSlug: "hello",
	})
	if err != nil {
		t.Fatalf("update listing: %v", err)
	}
	if len(res.UpdatedSections) != 1 || res.UpdatedSections[0] != "news_list" {
		t.Fatalf("sections = %v", res.UpdatedSections)
	}
	if !got.UpdateNewsList || got.UpdateCalendar || got.ArticleSlug != "hello" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestGeneratorFailureIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"template missing"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.URL, time.Second)
	_, err := c.GenerateDetailPage(context.Background(), "a1")
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if apperr.MessageOf(err) != "template missing" {
		t.Fatalf("message = %q", apperr.MessageOf(err))
	}
}

func TestUnconfiguredEndpoint(t *testing.T) {
	c := New("", "", time.Second)
	if _, err := c.GenerateDetailPage(context.Background(), "a1"); !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if _, err := c.UpdateListing(context.Background(), models.ListingRequest{}); !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
