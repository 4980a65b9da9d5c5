package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"asahigaoka/internal/apperr"
	"asahigaoka/internal/logger"
	"asahigaoka/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ArticleRepo interface {
	Create(ctx context.Context, a *models.Article) (*models.Article, error)
	Update(ctx context.Context, id string, p models.ArticlePatch) (*models.Article, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	List(ctx context.Context, f models.ArticleFilter) ([]*models.Article, error)
	SoftDelete(ctx context.Context, id string) error
	Stats(ctx context.Context, authorID string) (*models.DashboardStats, error)
}

type articleRepo struct{ db *pgxpool.Pool }

func NewArticleRepo(db *pgxpool.Pool) ArticleRepo { return &articleRepo{db: db} }

const articleColumns = `
	a.id::text, a.slug, a.title, a.content, a.excerpt, a.category, a.status, a.published_at,
	a.event_start_datetime, a.event_end_datetime, a.has_start_time, a.has_end_time,
	a.meta_title, a.meta_description, a.meta_keywords, a.featured_image_url,
	a.generate_article_page, a.show_in_news_list, a.show_in_calendar,
	a.is_news_featured, a.is_activity_highlight, a.include_in_rag,
	a.line_published, a.x_published, a.author::text, COALESCE(u.name, ''),
	a.created_at, a.updated_at, a.deleted_at`

const articleFrom = ` FROM articles a LEFT JOIN users u ON u.id = a.author`

func scanArticle(row pgx.Row) (*models.Article, error) {
	var a models.Article
	err := row.Scan(
		&a.ID, &a.Slug, &a.Title, &a.Content, &a.Excerpt, &a.Category, &a.Status, &a.PublishedAt,
		&a.EventStartDatetime, &a.EventEndDatetime, &a.HasStartTime, &a.HasEndTime,
		&a.MetaTitle, &a.MetaDescription, &a.MetaKeywords, &a.FeaturedImageURL,
		&a.GenerateArticlePage, &a.ShowInNewsList, &a.ShowInCalendar,
		&a.IsNewsFeatured, &a.IsActivityHighlight, &a.IncludeInRAG,
		&a.LinePublished, &a.XPublished, &a.Author, &a.AuthorName,
		&a.CreatedAt, &a.UpdatedAt, &a.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *articleRepo) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	log := logger.WithCtx(ctx)
	log.Info("Creating article (repo)", zap.String("title", a.Title), zap.String("status", a.Status))

	const q = `
		WITH a AS (
			INSERT INTO articles (
				slug, title, content, excerpt, category, status, published_at,
				event_start_datetime, event_end_datetime, has_start_time, has_end_time,
				meta_title, meta_description, meta_keywords, featured_image_url,
				generate_article_page, show_in_news_list, show_in_calendar,
				is_news_featured, is_activity_highlight, include_in_rag,
				line_published, x_published, author
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
			RETURNING *
		)
		SELECT ` + articleColumns + ` FROM a LEFT JOIN users u ON u.id = a.author`

	out, err := scanArticle(r.db.QueryRow(ctx, q,
		a.Slug, a.Title, a.Content, a.Excerpt, a.Category, a.Status, a.PublishedAt,
		a.EventStartDatetime, a.EventEndDatetime, a.HasStartTime, a.HasEndTime,
		a.MetaTitle, a.MetaDescription, a.MetaKeywords, a.FeaturedImageURL,
		a.GenerateArticlePage, a.ShowInNewsList, a.ShowInCalendar,
		a.IsNewsFeatured, a.IsActivityHighlight, a.IncludeInRAG,
		a.LinePublished, a.XPublished, a.Author,
	))
	if err != nil {
		log.Error("Failed to create article (repo)", zap.Error(err))
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to create article", err)
	}
	return out, nil
}

// Update applies the non-nil fields of p. Broadcast flags are OR-ed into the
// stored value so a latch once set stays set.
func (r *articleRepo) Update(ctx context.Context, id string, p models.ArticlePatch) (*models.Article, error) {
	log := logger.WithCtx(ctx)

	set, args := patchSet(p)
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}
	set = append(set, "updated_at = NOW()")
	args = append(args, id)

	q := fmt.Sprintf(`
		WITH a AS (
			UPDATE articles SET %s
			WHERE id = $%d AND deleted_at IS NULL
			RETURNING *
		)
		SELECT %s FROM a LEFT JOIN users u ON u.id = a.author`,
		strings.Join(set, ", "), len(args), articleColumns)

	log.Debug("Updating article (repo)", zap.String("id", id), zap.Int("fields", len(set)-1))

	out, err := scanArticle(r.db.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("article not found")
	}
	if err != nil {
		log.Error("Failed to update article (repo)", zap.String("id", id), zap.Error(err))
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to update article", err)
	}
	return out, nil
}

func patchSet(p models.ArticlePatch) ([]string, []any) {
	var set []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	str := func(col string, v *string) {
		if v != nil {
			add(col, *v)
		}
	}
	flag := func(col string, v *bool) {
		if v != nil {
			add(col, *v)
		}
	}
	latch := func(col string, v *bool) {
		if v != nil && *v {
			args = append(args, true)
			set = append(set, fmt.Sprintf("%s = %s OR $%d", col, col, len(args)))
		}
	}

	str("slug", p.Slug)
	str("title", p.Title)
	str("content", p.Content)
	str("excerpt", p.Excerpt)
	str("category", p.Category)
	str("status", p.Status)

	switch {
	case p.ClearPublishedAt:
		set = append(set, "published_at = NULL")
	case p.PublishedAt != nil:
		add("published_at", *p.PublishedAt)
	}

	str("event_start_datetime", p.EventStartDatetime)
	switch {
	case p.ClearEventEnd:
		set = append(set, "event_end_datetime = NULL")
	case p.EventEndDatetime != nil:
		add("event_end_datetime", *p.EventEndDatetime)
	}
	flag("has_start_time", p.HasStartTime)
	flag("has_end_time", p.HasEndTime)

	str("meta_title", p.MetaTitle)
	str("meta_description", p.MetaDescription)
	str("meta_keywords", p.MetaKeywords)
	str("featured_image_url", p.FeaturedImageURL)

	flag("generate_article_page", p.GenerateArticlePage)
	flag("show_in_news_list", p.ShowInNewsList)
	flag("show_in_calendar", p.ShowInCalendar)
	flag("is_news_featured", p.IsNewsFeatured)
	flag("is_activity_highlight", p.IsActivityHighlight)
	flag("include_in_rag", p.IncludeInRAG)

	latch("line_published", p.LinePublished)
	latch("x_published", p.XPublished)

	return set, args
}

func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	logger.WithCtx(ctx).Debug("Loading article (repo)", zap.String("id", id))

	q := `SELECT ` + articleColumns + articleFrom + ` WHERE a.id = $1 AND a.deleted_at IS NULL`
	out, err := scanArticle(r.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("article not found")
	}
	if err != nil {
		logger.WithCtx(ctx).Error("Failed to load article (repo)", zap.String("id", id), zap.Error(err))
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to load article", err)
	}
	return out, nil
}

var articleOrder = map[string]string{
	"":             "a.created_at DESC",
	"created_at":   "a.created_at DESC",
	"updated_at":   "a.updated_at DESC",
	"published_at": "a.published_at DESC NULLS LAST",
	"event":        "a.event_start_datetime ASC NULLS LAST",
}

func (r *articleRepo) List(ctx context.Context, f models.ArticleFilter) ([]*models.Article, error) {
	where := []string{"a.deleted_at IS NULL"}
	args := []any{}
	i := 1

	if f.Status != "" {
		where = append(where, fmt.Sprintf("a.status = $%d", i))
		args = append(args, f.Status)
		i++
	}
	if f.Category != "" {
		where = append(where, fmt.Sprintf("a.category = $%d", i))
		args = append(args, f.Category)
		i++
	}
	if f.AuthorOrPublished != "" {
		where = append(where, fmt.Sprintf("(a.status = 'published' OR a.author = $%d)", i))
		args = append(args, f.AuthorOrPublished)
		i++
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		where = append(where, fmt.Sprintf("(a.title ILIKE $%d OR a.content ILIKE $%d OR a.excerpt ILIKE $%d)", i, i, i))
		args = append(args, "%"+kw+"%")
		i++
	}

	order, ok := articleOrder[f.OrderBy]
	if !ok {
		order = articleOrder[""]
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	q := `SELECT ` + articleColumns + articleFrom +
		` WHERE ` + strings.Join(where, " AND ") +
		fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", order, i, i+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		logger.WithCtx(ctx).Error("Failed to list articles (repo)", zap.Error(err))
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to list articles", err)
	}
	defer rows.Close()

	list := make([]*models.Article, 0, limit)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindPersistence, "failed to read article row", err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to list articles", err)
	}
	return list, nil
}

func (r *articleRepo) SoftDelete(ctx context.Context, id string) error {
	logger.WithCtx(ctx).Info("Soft-deleting article (repo)", zap.String("id", id))

	tag, err := r.db.Exec(ctx,
		`UPDATE articles SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		logger.WithCtx(ctx).Error("Failed to delete article (repo)", zap.String("id", id), zap.Error(err))
		return apperr.Wrap(apperr.KindPersistence, "failed to delete article", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("article not found")
	}
	return nil
}

// Stats counts live articles and media; an empty authorID counts everything.
func (r *articleRepo) Stats(ctx context.Context, authorID string) (*models.DashboardStats, error) {
	const q = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'published'),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE line_published),
			COUNT(*) FILTER (WHERE x_published),
			(SELECT COUNT(*) FROM media m
			  WHERE m.deleted_at IS NULL AND ($1 = '' OR m.uploaded_by::text = $1))
		FROM articles
		WHERE deleted_at IS NULL AND ($1 = '' OR author::text = $1)`

	var s models.DashboardStats
	err := r.db.QueryRow(ctx, q, authorID).Scan(
		&s.TotalArticles, &s.PublishedArticles, &s.DraftArticles,
		&s.LinePublished, &s.XPublished, &s.MediaCount,
	)
	if err != nil {
		logger.WithCtx(ctx).Error("Failed to compute dashboard stats (repo)", zap.Error(err))
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to compute stats", err)
	}
	return &s, nil
}
