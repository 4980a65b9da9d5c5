package models

import "time"

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

const (
	CategoryNotice         = "notice"
	CategoryEvent          = "event"
	CategoryDisasterSafety = "disaster_safety"
	CategoryChildSupport   = "child_support"
	CategoryShoppingInfo   = "shopping_info"
	CategoryActivityReport = "activity_report"
)

const (
	EventDatetimeLayout = "2006-01-02 15:04:05"
	EventDateLayout     = "2006-01-02"
)

var Categories = []string{
	CategoryNotice,
	CategoryEvent,
	CategoryDisasterSafety,
	CategoryChildSupport,
	CategoryShoppingInfo,
	CategoryActivityReport,
}

type Article struct {
	ID       string `json:"id"`
	Slug     string `json:"slug,omitempty"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Excerpt  string `json:"excerpt,omitempty"`
	Category string `json:"category"`

	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`

	EventStartDatetime *string `json:"event_start_datetime,omitempty"`
	EventEndDatetime   *string `json:"event_end_datetime,omitempty"`
	HasStartTime       bool    `json:"has_start_time"`
	HasEndTime         bool    `json:"has_end_time"`

	MetaTitle        string `json:"meta_title,omitempty"`
	MetaDescription  string `json:"meta_description,omitempty"`
	MetaKeywords     string `json:"meta_keywords,omitempty"`
	FeaturedImageURL string `json:"featured_image_url,omitempty"`

	GenerateArticlePage bool `json:"generate_article_page"`
	ShowInNewsList      bool `json:"show_in_news_list"`
	ShowInCalendar      bool `json:"show_in_calendar"`
	IsNewsFeatured      bool `json:"is_news_featured"`
	IsActivityHighlight bool `json:"is_activity_highlight"`
	IncludeInRAG        bool `json:"include_in_rag"`

	LinePublished bool `json:"line_published"`
	XPublished    bool `json:"x_published"`

	Author     string `json:"author"`
	AuthorName string `json:"author_name,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (a *Article) IsPublished() bool { return a != nil && a.Status == StatusPublished }

// PublicSlug is the slug used in public URLs, falling back to the id.
func (a *Article) PublicSlug() string {
	if a.Slug != "" {
		return a.Slug
	}
	return a.ID
}

// ArticlePatch is a partial update; nil fields are left untouched.
// Broadcast latches can only be raised: a false value is ignored by the store.
type ArticlePatch struct {
	Slug     *string
	Title    *string
	Content  *string
	Excerpt  *string
	Category *string

	Status           *string
	PublishedAt      *time.Time
	ClearPublishedAt bool

	EventStartDatetime *string
	EventEndDatetime   *string
	ClearEventEnd      bool
	HasStartTime       *bool
	HasEndTime         *bool

	MetaTitle        *string
	MetaDescription  *string
	MetaKeywords     *string
	FeaturedImageURL *string

	GenerateArticlePage *bool
	ShowInNewsList      *bool
	ShowInCalendar      *bool
	IsNewsFeatured      *bool
	IsActivityHighlight *bool
	IncludeInRAG        *bool

	LinePublished *bool
	XPublished    *bool
}

// Empty reports whether the patch changes nothing.
func (p ArticlePatch) Empty() bool {
	return p == ArticlePatch{}
}

type ArticleFilter struct {
	Status   string
	Category string
	// AuthorOrPublished limits rows to published articles plus drafts of this author.
	AuthorOrPublished string
	Keyword           string
	Limit             int
	Offset            int
	OrderBy           string
}

// ArticleInput is the field set an editor submits, shared by the desktop
// and mobile consoles.
type ArticleInput struct {
	Title    string `json:"title"    validate:"required"`
	Content  string `json:"content"  validate:"required"`
	Excerpt  string `json:"excerpt"`
	Category string `json:"category" validate:"required,oneof=notice event disaster_safety child_support shopping_info activity_report"`
	Slug     string `json:"slug"     validate:"omitempty,max=200"`

	EventDateFrom string `json:"event_date_from" validate:"required"`
	EventTimeFrom string `json:"event_time_from"`
	EventDateTo   string `json:"event_date_to"`
	EventTimeTo   string `json:"event_time_to"`

	MetaTitle        string `json:"meta_title"`
	MetaDescription  string `json:"meta_description"`
	MetaKeywords     string `json:"meta_keywords"`
	FeaturedImageURL string `json:"featured_image_url"`

	GenerateArticlePage bool `json:"generate_article_page"`
	ShowInNewsList      bool `json:"show_in_news_list"`
	ShowInCalendar      bool `json:"show_in_calendar"`
	IsNewsFeatured      bool `json:"is_news_featured"`
	IsActivityHighlight bool `json:"is_activity_highlight"`
	IncludeInRAG        bool `json:"include_in_rag"`

	LineEnabled   bool   `json:"line_enabled"`
	XEnabled      bool   `json:"x_enabled"`
	CustomMessage string `json:"custom_message"`

	// PublishedAt in the future means a scheduled publication.
	PublishedAt *time.Time `json:"published_at,omitempty"`

	Status string `json:"status" validate:"omitempty,oneof=draft published"`

	// PendingMediaIDs are uploads made before the article had an id.
	PendingMediaIDs []string `json:"pending_media_ids"`
}

// InputFromArticle rebuilds the editor field set from a stored article, so a
// status toggle can re-run a full save with unchanged content.
func InputFromArticle(a *Article) ArticleInput {
	in := ArticleInput{
		Title:               a.Title,
		Content:             a.Content,
		Excerpt:             a.Excerpt,
		Category:            a.Category,
		Slug:                a.Slug,
		MetaTitle:           a.MetaTitle,
		MetaDescription:     a.MetaDescription,
		MetaKeywords:        a.MetaKeywords,
		FeaturedImageURL:    a.FeaturedImageURL,
		GenerateArticlePage: a.GenerateArticlePage,
		ShowInNewsList:      a.ShowInNewsList,
		ShowInCalendar:      a.ShowInCalendar,
		IsNewsFeatured:      a.IsNewsFeatured,
		IsActivityHighlight: a.IsActivityHighlight,
		IncludeInRAG:        a.IncludeInRAG,
		LineEnabled:         a.LinePublished,
		XEnabled:            a.XPublished,
		Status:              a.Status,
		PublishedAt:         a.PublishedAt,
	}
	if a.EventStartDatetime != nil {
		in.EventDateFrom, in.EventTimeFrom = splitDatetime(*a.EventStartDatetime, a.HasStartTime)
	}
	if a.EventEndDatetime != nil {
		in.EventDateTo, in.EventTimeTo = splitDatetime(*a.EventEndDatetime, a.HasEndTime)
	}
	return in
}

// splitDatetime turns a stored "YYYY-MM-DD HH:MM:SS" back into form values.
func splitDatetime(s string, hasTime bool) (date, clock string) {
	if len(s) < len(EventDateLayout) {
		return s, ""
	}
	date = s[:len(EventDateLayout)]
	if hasTime && len(s) > len(EventDateLayout)+1 {
		clock = s[len(EventDateLayout)+1:]
	}
	return date, clock
}

// swagger:model StatusRequest
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft published"`
	// Broadcast channels to request when the toggle publishes the article.
	LineEnabled bool `json:"line_enabled"`
	XEnabled    bool `json:"x_enabled"`
}
