package social

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

func newServer(t *testing.T, status int, body string, seen *postRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPostLineSuccess(t *testing.T) {
	var seen postRequest
	srv := newServer(t, http.StatusOK, `{"status":"success"}`, &seen)

	c := New(srv.URL, "", time.Second)
	res, err := c.PostLine(context.Background(), "hello", "a1")
	if err != nil {
		t.Fatalf("post line: %v", err)
	}
	if res.Status != models.BroadcastSuccess {
		t.Fatalf("status = %q", res.Status)
	}
	if seen.Message != "hello" || seen.ArticleID != "a1" {
		t.Fatalf("unexpected payload: %+v", seen)
	}
}

func TestSkippedCountsAsDelivered(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"status":"skipped","message":"already posted"}`, nil)

	c := New("", srv.URL, time.Second)
	res, err := c.PostX(context.Background(), "hello", "a1")
	if err != nil {
		t.Fatalf("post x: %v", err)
	}
	if !res.Delivered() {
		t.Fatalf("skipped result must count as delivered: %+v", res)
	}
}

func TestErrorStatusIsUpstream(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"status":"error","message":"rate limited"}`, nil)

	c := New(srv.URL, srv.URL, time.Second)
	res, err := c.PostX(context.Background(), "hello", "a1")
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if res.Delivered() {
		t.Fatal("error result must not be delivered")
	}
	if apperr.MessageOf(err) != "rate limited" {
		t.Fatalf("message = %q", apperr.MessageOf(err))
	}
}

func TestHTTPFailureIsUpstream(t *testing.T) {
	srv := newServer(t, http.StatusBadGateway, `oops`, nil)

	c := New(srv.URL, srv.URL, time.Second)
	if _, err := c.PostLine(context.Background(), "hello", "a1"); !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestUnconfiguredChannel(t *testing.T) {
	c := New("", "", time.Second)
	if _, err := c.PostLine(context.Background(), "m", "a1"); !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
