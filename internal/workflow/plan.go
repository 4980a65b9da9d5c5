package workflow

import (
	"time"

	"asahigaoka/internal/apperr"
	"asahigaoka/internal/models"
)

// SaveInput is the field set an editor submits, whatever the console variant.
type SaveInput = models.ArticleInput

// Plan is everything a save will do, decided before any collaborator is called.
type Plan struct {
	// Create is set for a new article; otherwise Patch applies to Previous.
	Create   *models.Article
	Patch    models.ArticlePatch
	Previous *models.Article

	WasPublished bool
	FinalStatus  string

	FireLine bool
	FireX    bool

	GenerateDetail bool
	DeleteDetail   bool
	UpdateListing  bool
	Listing        models.ListingRequest
}

// Decide computes the plan for saving in over previous (nil for a new
// article). It has no side effects.
func Decide(previous *models.Article, in SaveInput, authorID string, now time.Time) (Plan, error) {
	if err := ValidateStruct(in); err != nil {
		return Plan{}, err
	}

	finalStatus := in.Status
	if finalStatus == "" {
		finalStatus = models.StatusDraft
		if previous != nil {
			finalStatus = previous.Status
		}
	}
	wasPublished := previous.IsPublished()
	prevLine := previous != nil && previous.LinePublished
	prevX := previous != nil && previous.XPublished

	fireLine := in.LineEnabled && !prevLine
	fireX := in.XEnabled && !prevX

	// A resave that omits published_at keeps the stored schedule.
	effectiveAt := in.PublishedAt
	if effectiveAt == nil && wasPublished {
		effectiveAt = previous.PublishedAt
	}
	scheduled := effectiveAt != nil && effectiveAt.After(now)
	if finalStatus == models.StatusPublished && scheduled && (fireLine || fireX) {
		return Plan{}, apperr.Validation(map[string]string{
			"published_at": "scheduled publication cannot be combined with an immediate LINE/X broadcast",
		})
	}

	events, fields := NormalizeEventRange(in.EventDateFrom, in.EventTimeFrom, in.EventDateTo, in.EventTimeTo)
	if fields != nil {
		return Plan{}, apperr.Validation(fields)
	}

	p := Plan{
		Previous:     previous,
		WasPublished: wasPublished,
		FinalStatus:  finalStatus,
		FireLine:     fireLine,
		FireX:        fireX,
	}

	var publishedAt *time.Time
	clearPublishedAt := false
	switch {
	case finalStatus == models.StatusDraft:
		clearPublishedAt = previous != nil && previous.PublishedAt != nil
	case in.PublishedAt != nil:
		t := in.PublishedAt.UTC()
		publishedAt = &t
	case !wasPublished || previous.PublishedAt == nil:
		t := now.UTC()
		publishedAt = &t
	}

	if previous == nil {
		p.Create = &models.Article{
			Slug:                in.Slug,
			Title:               in.Title,
			Content:             in.Content,
			Excerpt:             in.Excerpt,
			Category:            in.Category,
			Status:              finalStatus,
			PublishedAt:         publishedAt,
			EventStartDatetime:  &events.Start,
			EventEndDatetime:    events.End,
			HasStartTime:        events.HasStartTime,
			HasEndTime:          events.HasEndTime,
			MetaTitle:           in.MetaTitle,
			MetaDescription:     in.MetaDescription,
			MetaKeywords:        in.MetaKeywords,
			FeaturedImageURL:    in.FeaturedImageURL,
			GenerateArticlePage: in.GenerateArticlePage,
			ShowInNewsList:      in.ShowInNewsList,
			ShowInCalendar:      in.ShowInCalendar,
			IsNewsFeatured:      in.IsNewsFeatured,
			IsActivityHighlight: in.IsActivityHighlight,
			IncludeInRAG:        in.IncludeInRAG,
			Author:              authorID,
		}
	} else {
		p.Patch = models.ArticlePatch{
			Slug:                &in.Slug,
			Title:               &in.Title,
			Content:             &in.Content,
			Excerpt:             &in.Excerpt,
			Category:            &in.Category,
			Status:              &finalStatus,
			PublishedAt:         publishedAt,
			ClearPublishedAt:    clearPublishedAt,
			EventStartDatetime:  &events.Start,
			EventEndDatetime:    events.End,
			ClearEventEnd:       events.End == nil,
			HasStartTime:        &events.HasStartTime,
			HasEndTime:          &events.HasEndTime,
			MetaTitle:           &in.MetaTitle,
			MetaDescription:     &in.MetaDescription,
			MetaKeywords:        &in.MetaKeywords,
			FeaturedImageURL:    &in.FeaturedImageURL,
			GenerateArticlePage: &in.GenerateArticlePage,
			ShowInNewsList:      &in.ShowInNewsList,
			ShowInCalendar:      &in.ShowInCalendar,
			IsNewsFeatured:      &in.IsNewsFeatured,
			IsActivityHighlight: &in.IsActivityHighlight,
			IncludeInRAG:        &in.IncludeInRAG,
		}
	}

	// A page that may exist is removed when the article leaves the public
	// site or stops asking for a detail page.
	if finalStatus == models.StatusPublished && in.GenerateArticlePage {
		p.GenerateDetail = true
	} else if wasPublished {
		p.DeleteDetail = true
	}

	if in.ShowInNewsList || in.ShowInCalendar {
		p.UpdateListing = true
		p.Listing = models.ListingRequest{
			UpdateNewsList: in.ShowInNewsList,
			UpdateCalendar: in.ShowInCalendar,
		}
	}

	return p, nil
}
