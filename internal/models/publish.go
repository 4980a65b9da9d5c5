package models

// PageResult is the static site generator's answer for a detail page.
type PageResult struct {
	Success  bool   `json:"success"`
	FilePath string `json:"file_path,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ListingRequest struct {
	UpdateNewsList bool   `json:"update_news_list"`
	UpdateCalendar bool   `json:"update_calendar"`
	ArticleID      string `json:"article_id"`
	ArticleSlug    string `json:"article_slug"`
}

type ListingResult struct {
	Success         bool     `json:"success"`
	UpdatedSections []string `json:"updated_sections,omitempty"`
	Error           string   `json:"error,omitempty"`
}

const (
	BroadcastSuccess = "success"
	BroadcastSkipped = "skipped"
	BroadcastError   = "error"
)

type BroadcastResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Delivered reports whether the channel should be latched. A skipped
// delivery counts, so a channel is never retried after it was skipped.
func (r BroadcastResult) Delivered() bool {
	return r.Status == BroadcastSuccess || r.Status == BroadcastSkipped
}
