package workflow

import (
	"strings"

	"asahigaoka/internal/models"
)

const (
	XMaxLength = 280
	ellipsis   = "..."
	linePrefix = "【新着記事】"
)

// PublicURL is the address of the article's generated detail page.
func PublicURL(siteURL string, a *models.Article) string {
	return strings.TrimRight(siteURL, "/") + "/news/" + a.PublicSlug() + ".html"
}

// messageBody picks the custom message, then the excerpt, then the title.
func messageBody(a *models.Article, custom string) string {
	if s := strings.TrimSpace(custom); s != "" {
		return s
	}
	if s := strings.TrimSpace(a.Excerpt); s != "" {
		return s
	}
	return a.Title
}

func BuildLineMessage(a *models.Article, custom, siteURL string) string {
	return linePrefix + a.Title + "\n\n" + messageBody(a, custom) + "\n\n" + PublicURL(siteURL, a)
}

// BuildXMessage keeps the message within XMaxLength runes. Only the body is
// shortened; the hashtag and URL suffix is kept whole unless it leaves no
// room for a body, in which case the hashtags are dropped.
func BuildXMessage(a *models.Article, custom, hashtags, siteURL string) string {
	body := messageBody(a, custom)
	suffix := "\n" + hashtags + "\n" + PublicURL(siteURL, a)

	bodyRunes := []rune(body)
	suffixLen := len([]rune(suffix))
	if len(bodyRunes)+suffixLen <= XMaxLength {
		return body + suffix
	}

	maxLen := XMaxLength - suffixLen - len(ellipsis)
	if maxLen <= 0 {
		if hashtags != "" {
			return BuildXMessage(a, custom, "", siteURL)
		}
		return PublicURL(siteURL, a)
	}
	return string(bodyRunes[:maxLen]) + ellipsis + suffix
}
