// Package sitegen calls the static site generator functions that render
// article detail pages and the news / calendar listings.
package sitegen

import (
	"context"
	"fmt"
	"time"

	"asahigaoka/internal/apperr"
	"asahigaoka/internal/logger"
	"asahigaoka/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type Client struct {
	client     *resty.Client
	articleURL string
	listingURL string
}

func New(articleURL, listingURL string, timeout time.Duration) *Client {
	return &Client{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		articleURL: articleURL,
		listingURL: listingURL,
	}
}

type pageRequest struct {
	ArticleID  string `json:"article_id"`
	DeleteFlag bool   `json:"delete_flag,omitempty"`
}

func (c *Client) GenerateDetailPage(ctx context.Context, articleID string) (models.PageResult, error) {
	return c.page(ctx, pageRequest{ArticleID: articleID})
}

func (c *Client) DeleteDetailPage(ctx context.Context, articleID string) (models.PageResult, error) {
	return c.page(ctx, pageRequest{ArticleID: articleID, DeleteFlag: true})
}

func (c *Client) page(ctx context.Context, body pageRequest) (models.PageResult, error) {
	var out models.PageResult
	log := logger.WithCtx(ctx).With(zap.String("article_id", body.ArticleID), zap.Bool("delete", body.DeleteFlag))

	if c.articleURL == "" {
		return out, apperr.New(apperr.KindUpstream, "article page generator endpoint is not configured")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post(c.articleURL)
	if err != nil {
		log.Warn("Page generator request failed", zap.Error(err))
		return out, apperr.Wrap(apperr.KindUpstream, "page generator unreachable", err)
	}
	if resp.IsError() || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("page generator returned %d", resp.StatusCode())
		}
		log.Warn("Page generator reported failure", zap.Int("status", resp.StatusCode()), zap.String("error", msg))
		return out, apperr.New(apperr.KindUpstream, msg)
	}

	log.Info("Page generator succeeded", zap.String("file_path", out.FilePath))
	return out, nil
}

func (c *Client) UpdateListing(ctx context.Context, req models.ListingRequest) (models.ListingResult, error) {
	var out models.ListingResult
	log := logger.WithCtx(ctx).With(zap.String("article_id", req.ArticleID))

	if c.listingURL == "" {
		return out, apperr.New(apperr.KindUpstream, "listing generator endpoint is not configured")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post(c.listingURL)
	if err != nil {
		log.Warn("Listing generator request failed", zap.Error(err))
		return out, apperr.Wrap(apperr.KindUpstream, "listing generator unreachable", err)
	}
	if resp.IsError() || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("listing generator returned %d", resp.StatusCode())
		}
		log.Warn("Listing generator reported failure", zap.Int("status", resp.StatusCode()), zap.String("error", msg))
		return out, apperr.New(apperr.KindUpstream, msg)
	}

	log.Info("Listings updated", zap.Strings("sections", out.UpdatedSections))
	return out, nil
}
