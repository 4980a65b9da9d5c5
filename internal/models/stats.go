package models

type DashboardStats struct {
	TotalArticles     int `json:"total_articles"`
	PublishedArticles int `json:"published_articles"`
	DraftArticles     int `json:"draft_articles"`
	LinePublished     int `json:"line_published"`
	XPublished        int `json:"x_published"`
	MediaCount        int `json:"media_count"`

	PublishedPct int `json:"published_pct"`
}
