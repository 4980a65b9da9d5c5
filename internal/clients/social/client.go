// Package social posts article announcements to the LINE and X broadcast functions.
package social

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
	client  *resty.Client
	lineURL string
	xURL    string
}

func New(lineURL, xURL string, timeout time.Duration) *Client {
	return &Client{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		lineURL: lineURL,
		xURL:    xURL,
	}
}

type postRequest struct {
	Message   string `json:"message"`
	ArticleID string `json:"article_id"`
}

func (c *Client) PostLine(ctx context.Context, message, articleID string) (models.BroadcastResult, error) {
	return c.post(ctx, "line", c.lineURL, message, articleID)
}

func (c *Client) PostX(ctx context.Context, message, articleID string) (models.BroadcastResult, error) {
	return c.post(ctx, "x", c.xURL, message, articleID)
}

func (c *Client) post(ctx context.Context, channel, url, message, articleID string) (models.BroadcastResult, error) {
	out := models.BroadcastResult{Status: models.BroadcastError}
	log := logger.WithCtx(ctx).With(zap.String("channel", channel), zap.String("article_id", articleID))

	if url == "" {
		return out, apperr.New(apperr.KindUpstream, channel+" broadcast endpoint is not configured")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(postRequest{Message: message, ArticleID: articleID}).
		SetResult(&out).
		SetError(&out).
		Post(url)
	if err != nil {
		log.Warn("Broadcast request failed", zap.Error(err))
		return models.BroadcastResult{Status: models.BroadcastError}, apperr.Wrap(apperr.KindUpstream, channel+" broadcast unreachable", err)
	}

	if resp.IsError() || !out.Delivered() {
		msg := out.Message
		if msg == "" {
			msg = fmt.Sprintf("%s broadcast returned %d", channel, resp.StatusCode())
		}
		log.Warn("Broadcast rejected", zap.Int("status", resp.StatusCode()), zap.String("result", out.Status), zap.String("message", msg))
		return models.BroadcastResult{Status: models.BroadcastError, Message: msg}, apperr.New(apperr.KindUpstream, msg)
	}

	log.Info("Broadcast delivered", zap.String("result", out.Status))
	return out, nil
}
