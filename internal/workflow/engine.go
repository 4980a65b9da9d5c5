// Package workflow keeps an article's status, its generated pages and its
// one-shot LINE / X broadcasts consistent across saves, publishes,
// unpublishes and deletes.
package workflow

import (
	"context"
	"time"

	"asahigaoka/internal/apperr"
	"asahigaoka/internal/logger"
	"asahigaoka/internal/models"

	"go.uber.org/zap"
)

type ArticleStore interface {
	Create(ctx context.Context, a *models.Article) (*models.Article, error)
	Update(ctx context.Context, id string, p models.ArticlePatch) (*models.Article, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	SoftDelete(ctx context.Context, id string) error
}

type SiteGenerator interface {
	GenerateDetailPage(ctx context.Context, articleID string) (models.PageResult, error)
	DeleteDetailPage(ctx context.Context, articleID string) (models.PageResult, error)
	UpdateListing(ctx context.Context, req models.ListingRequest) (models.ListingResult, error)
}

type Broadcaster interface {
	PostLine(ctx context.Context, message, articleID string) (models.BroadcastResult, error)
	PostX(ctx context.Context, message, articleID string) (models.BroadcastResult, error)
}

const (
	PageGenerated = "generated"
	PageDeleted   = "deleted"
	PageSkipped   = "skipped"
	PageFailed    = "failed"

	ListingUpdated = "updated"
	ListingSkipped = "skipped"
	ListingFailed  = "failed"
)

type Warning struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

type ChannelResult struct {
	Fired  bool   `json:"fired"`
	Status string `json:"status,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Outcome reports what a workflow operation did. Side-effect failures are
// listed in Warnings; they never undo the store write.
type Outcome struct {
	Article    *models.Article `json:"article,omitempty"`
	Created    bool            `json:"created"`
	Line       ChannelResult   `json:"line"`
	X          ChannelResult   `json:"x"`
	DetailPage string          `json:"detail_page"`
	Listing    string          `json:"listing"`
	Warnings   []Warning       `json:"warnings"`
	Message    string          `json:"message"`
}

func (o *Outcome) warn(step string, err error) {
	o.Warnings = append(o.Warnings, Warning{Step: step, Message: apperr.MessageOf(err)})
}

type Options struct {
	SiteURL  string
	Hashtags string
	// Now defaults to time.Now.
	Now func() time.Time
}

type Engine struct {
	store  ArticleStore
	site   SiteGenerator
	social Broadcaster
	opts   Options
}

func NewEngine(store ArticleStore, site SiteGenerator, social Broadcaster, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{store: store, site: site, social: social, opts: opts}
}

// ApplySave persists in over previous (nil for a new article) and then runs
// broadcasts, the detail page and the listing update in that order.
func (e *Engine) ApplySave(ctx context.Context, previous *models.Article, in SaveInput, authorID string) (*Outcome, error) {
	log := logger.WithCtx(ctx)

	plan, err := Decide(previous, in, authorID, e.opts.Now())
	if err != nil {
		log.Info("Workflow: save rejected", zap.Error(err))
		return nil, err
	}

	out := &Outcome{DetailPage: PageSkipped, Listing: ListingSkipped}

	var saved *models.Article
	if plan.Create != nil {
		saved, err = e.store.Create(ctx, plan.Create)
		out.Created = true
	} else {
		saved, err = e.store.Update(ctx, previous.ID, plan.Patch)
	}
	if err != nil {
		log.Error("Workflow: persist failed", zap.Error(err))
		return nil, err
	}
	out.Article = saved
	log.Info("Workflow: article persisted",
		zap.String("article_id", saved.ID),
		zap.String("status", saved.Status),
		zap.Bool("created", out.Created),
		zap.Bool("fire_line", plan.FireLine),
		zap.Bool("fire_x", plan.FireX))

	if plan.FireLine {
		out.Line = e.broadcast(ctx, out, "line", BuildLineMessage(saved, in.CustomMessage, e.opts.SiteURL), e.social.PostLine)
	}
	if plan.FireX {
		out.X = e.broadcast(ctx, out, "x", BuildXMessage(saved, in.CustomMessage, e.opts.Hashtags, e.opts.SiteURL), e.social.PostX)
	}

	switch {
	case plan.GenerateDetail:
		e.generateDetail(ctx, out)
	case plan.DeleteDetail:
		e.deleteDetail(ctx, out)
	}

	if plan.UpdateListing {
		e.updateListing(ctx, out, plan.Listing)
	}

	out.Message = message(out, saveVerb(plan))
	return out, nil
}

func saveVerb(p Plan) string {
	switch {
	case p.FinalStatus == models.StatusPublished && !p.WasPublished:
		return "published"
	case p.FinalStatus == models.StatusDraft && p.WasPublished:
		return "unpublished"
	case p.FinalStatus == models.StatusPublished:
		return "saved"
	default:
		return "draft saved"
	}
}

type postFunc func(ctx context.Context, message, articleID string) (models.BroadcastResult, error)

// broadcast delivers one channel and latches its flag on success or skip.
func (e *Engine) broadcast(ctx context.Context, out *Outcome, channel, msg string, post postFunc) ChannelResult {
	log := logger.WithCtx(ctx).With(zap.String("channel", channel), zap.String("article_id", out.Article.ID))

	res, err := post(ctx, msg, out.Article.ID)
	if err != nil || !res.Delivered() {
		if err == nil {
			err = apperr.New(apperr.KindUpstream, channel+" broadcast failed: "+res.Message)
		}
		log.Warn("Workflow: broadcast failed, flag left unset", zap.Error(err))
		out.warn(channel, err)
		return ChannelResult{Fired: true, Status: models.BroadcastError, Detail: apperr.MessageOf(err)}
	}

	t := true
	patch := models.ArticlePatch{}
	if channel == "line" {
		patch.LinePublished = &t
	} else {
		patch.XPublished = &t
	}
	latched, err := e.store.Update(ctx, out.Article.ID, patch)
	if err != nil {
		log.Error("Workflow: broadcast delivered but latch write failed", zap.Error(err))
		out.warn(channel+"_latch", err)
	} else {
		out.Article = latched
	}

	log.Info("Workflow: broadcast delivered", zap.String("result", res.Status))
	return ChannelResult{Fired: true, Status: res.Status, Detail: res.Message}
}

func (e *Engine) generateDetail(ctx context.Context, out *Outcome) {
	if _, err := e.site.GenerateDetailPage(ctx, out.Article.ID); err != nil {
		logger.WithCtx(ctx).Warn("Workflow: detail page generation failed",
			zap.String("article_id", out.Article.ID), zap.Error(err))
		out.DetailPage = PageFailed
		out.warn("detail_page", err)
		return
	}
	out.DetailPage = PageGenerated
}

func (e *Engine) deleteDetail(ctx context.Context, out *Outcome) {
	if _, err := e.site.DeleteDetailPage(ctx, out.Article.ID); err != nil {
		logger.WithCtx(ctx).Warn("Workflow: detail page deletion failed",
			zap.String("article_id", out.Article.ID), zap.Error(err))
		out.DetailPage = PageFailed
		out.warn("detail_page", err)
		return
	}
	out.DetailPage = PageDeleted
}

func (e *Engine) updateListing(ctx context.Context, out *Outcome, req models.ListingRequest) {
	req.ArticleID = out.Article.ID
	req.ArticleSlug = out.Article.PublicSlug()
	if _, err := e.site.UpdateListing(ctx, req); err != nil {
		logger.WithCtx(ctx).Warn("Workflow: listing update failed",
			zap.String("article_id", out.Article.ID), zap.Error(err))
		out.Listing = ListingFailed
		out.warn("listing", err)
		return
	}
	out.Listing = ListingUpdated
}

func listingFor(a *models.Article) (models.ListingRequest, bool) {
	if !a.ShowInNewsList && !a.ShowInCalendar {
		return models.ListingRequest{}, false
	}
	return models.ListingRequest{UpdateNewsList: a.ShowInNewsList, UpdateCalendar: a.ShowInCalendar}, true
}

// ApplyUnpublish moves previous back to draft and removes its detail page.
// Broadcast flags are not touched.
func (e *Engine) ApplyUnpublish(ctx context.Context, previous *models.Article) (*Outcome, error) {
	log := logger.WithCtx(ctx).With(zap.String("article_id", previous.ID))

	draft := models.StatusDraft
	saved, err := e.store.Update(ctx, previous.ID, models.ArticlePatch{
		Status:           &draft,
		ClearPublishedAt: true,
	})
	if err != nil {
		log.Error("Workflow: unpublish failed", zap.Error(err))
		return nil, err
	}
	log.Info("Workflow: article unpublished")

	out := &Outcome{Article: saved, DetailPage: PageSkipped, Listing: ListingSkipped}
	e.deleteDetail(ctx, out)
	if req, ok := listingFor(saved); ok {
		e.updateListing(ctx, out, req)
	}
	out.Message = message(out, "unpublished")
	return out, nil
}

// ApplyDelete removes the detail page on a best-effort basis, then
// soft-deletes the record whatever the page removal returned.
func (e *Engine) ApplyDelete(ctx context.Context, previous *models.Article) (*Outcome, error) {
	log := logger.WithCtx(ctx).With(zap.String("article_id", previous.ID))

	out := &Outcome{Article: previous, DetailPage: PageSkipped, Listing: ListingSkipped}
	e.deleteDetail(ctx, out)

	if err := e.store.SoftDelete(ctx, previous.ID); err != nil {
		log.Error("Workflow: soft delete failed", zap.Error(err))
		return nil, err
	}
	log.Info("Workflow: article deleted")

	if req, ok := listingFor(previous); ok {
		e.updateListing(ctx, out, req)
	}
	out.Message = message(out, "deleted")
	return out, nil
}

// ApplyStatusToggle is the inline status switch of the article list. It goes
// through the same save and unpublish paths as the full editor.
func (e *Engine) ApplyStatusToggle(ctx context.Context, previous *models.Article, req models.StatusRequest, actorID string) (*Outcome, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.Status == models.StatusDraft {
		return e.ApplyUnpublish(ctx, previous)
	}

	in := models.InputFromArticle(previous)
	in.Status = models.StatusPublished
	in.LineEnabled = in.LineEnabled || req.LineEnabled
	in.XEnabled = in.XEnabled || req.XEnabled
	return e.ApplySave(ctx, previous, in, actorID)
}

func message(out *Outcome, verb string) string {
	if len(out.Warnings) > 0 {
		return verb + " with warnings"
	}
	return verb
}
