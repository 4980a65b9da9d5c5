package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := Wrap(KindPersistence, "failed to update article", errors.New("conn reset"))
	wrapped := fmt.Errorf("save: %w", base)

	if KindOf(wrapped) != KindPersistence {
		t.Fatalf("kind = %q", KindOf(wrapped))
	}
	if MessageOf(wrapped) != "failed to update article" {
		t.Fatalf("message = %q", MessageOf(wrapped))
	}
	if HTTPStatus(wrapped) != http.StatusInternalServerError {
		t.Fatalf("status = %d", HTTPStatus(wrapped))
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		Validation(map[string]string{"title": "is required"}): http.StatusUnprocessableEntity,
		New(KindUnauthenticated, "login required"):            http.StatusUnauthorized,
		Forbidden("no"):                     http.StatusForbidden,
		NotFound("missing"):                 http.StatusNotFound,
		New(KindUpstream, "generator down"): http.StatusBadGateway,
		errors.New("plain"):                 http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := HTTPStatus(err); got != want {
			t.Errorf("%v: got %d want %d", err, got, want)
		}
	}
}

func TestFieldsOf(t *testing.T) {
	err := Validation(map[string]string{"title": "is required"})
	if FieldsOf(err)["title"] != "is required" {
		t.Fatalf("fields = %v", FieldsOf(err))
	}
	if FieldsOf(errors.New("x")) != nil {
		t.Fatal("plain errors carry no fields")
	}
}
