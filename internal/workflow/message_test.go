package workflow

import (
	"strings"
	"testing"
	"unicode/utf8"

	"asahigaoka/internal/models"
)

func TestPublicURLFallsBackToID(t *testing.T) {
	a := &models.Article{ID: "abc"}
	if got := PublicURL("https://example.tokyo/", a); got != "https://example.tokyo/news/abc.html" {
		t.Fatalf("url = %q", got)
	}
	a.Slug = "summer"
	if got := PublicURL("https://example.tokyo", a); got != "https://example.tokyo/news/summer.html" {
		t.Fatalf("url = %q", got)
	}
}

func TestBuildLineMessage(t *testing.T) {
	a := &models.Article{ID: "1", Slug: "s", Title: "夏祭り", Excerpt: "今年も開催します"}
	want := "【新着記事】夏祭り\n\n今年も開催します\n\nhttps://example.tokyo/news/s.html"
	if got := BuildLineMessage(a, "", "https://example.tokyo"); got != want {
		t.Fatalf("got %q", got)
	}
	if got := BuildLineMessage(a, "お知らせ", "https://example.tokyo"); !strings.Contains(got, "\n\nお知らせ\n\n") {
		t.Fatalf("custom message not used: %q", got)
	}
	a.Excerpt = ""
	if got := BuildLineMessage(a, "", "https://example.tokyo"); !strings.Contains(got, "\n\n夏祭り\n\n") {
		t.Fatalf("title fallback not used: %q", got)
	}
}

func TestBuildXMessageShortIsUntouched(t *testing.T) {
	a := &models.Article{ID: "1", Title: "T", Excerpt: "short"}
	want := "short\n#旭丘一丁目\nhttps://example.tokyo/news/1.html"
	if got := BuildXMessage(a, "", "#旭丘一丁目", "https://example.tokyo"); got != want {
		t.Fatalf("got %q", got)
	}
}

func TestBuildXMessageTruncationBound(t *testing.T) {
	hashtags := []string{"#旭丘一丁目", "#a #b #c", ""}
	bodies := []string{
		strings.Repeat("あ", 300),
		strings.Repeat("x", 1000),
		strings.Repeat("長", 250),
		"ちょうど",
	}
	for _, h := range hashtags {
		for _, b := range bodies {
			a := &models.Article{ID: "id-1", Title: "T", Excerpt: b}
			url := PublicURL("https://example.tokyo", a)
			suffix := "\n" + h + "\n" + url

			got := BuildXMessage(a, "", h, "https://example.tokyo")
			if n := utf8.RuneCountInString(got); n > XMaxLength {
				t.Fatalf("message has %d runes", n)
			}
			if !strings.HasSuffix(got, suffix) {
				t.Fatalf("suffix was cut: %q", got)
			}
			if utf8.RuneCountInString(b)+utf8.RuneCountInString(suffix) > XMaxLength &&
				!strings.HasSuffix(strings.TrimSuffix(got, suffix), "...") {
				t.Fatalf("truncated body must end with an ellipsis: %q", got)
			}
		}
	}
}

func TestBuildXMessageOversizedHashtagsAreDropped(t *testing.T) {
	a := &models.Article{ID: "1", Title: "T", Excerpt: "body"}
	long := strings.Repeat("#tag", 80)
	got := BuildXMessage(a, "", long, "https://example.tokyo")
	if n := utf8.RuneCountInString(got); n > XMaxLength {
		t.Fatalf("message has %d runes", n)
	}
	if strings.Contains(got, "#tag") {
		t.Fatalf("oversized hashtags must be dropped: %q", got)
	}
	if got != "body\n\nhttps://example.tokyo/news/1.html" {
		t.Fatalf("got %q", got)
	}
}
