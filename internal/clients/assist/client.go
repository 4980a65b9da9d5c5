// Package assist calls the article writing assistant function.
package assist

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
	client   *resty.Client
	url      string
	introURL string
}

// New returns a client for the endpoint at url. introURL is passed to the
// assistant as background on the neighbourhood.
func New(url, introURL string, timeout time.Duration) *Client {
	return &Client{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		url:      url,
		introURL: introURL,
	}
}

type generateRequest struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Date     string `json:"date"`
	DateTo   string `json:"date_to,omitempty"`
	IntroURL string `json:"intro_url"`
	ImageURL string `json:"image_url,omitempty"`
}

type generateResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Text350  string `json:"text350"`
		Text80   string `json:"text80"`
		MetaDesc string `json:"meta_desc"`
		MetaKwd  string `json:"meta_kwd"`
	} `json:"data"`
}

// Text is the raw assistant output: a body of about 350 characters, a short
// excerpt and SEO metadata.
type Text struct {
	Body            string
	Excerpt         string
	MetaDescription string
	MetaKeywords    string
}

func (c *Client) Generate(ctx context.Context, req models.DraftRequest) (Text, error) {
	log := logger.WithCtx(ctx).With(zap.String("title", req.Title))

	if c.url == "" {
		return Text{}, apperr.New(apperr.KindUpstream, "writing assistant endpoint is not configured")
	}

	start := time.Now()
	var out generateResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(generateRequest{
			Title:    req.Title,
			Summary:  req.Summary,
			Date:     req.DateFrom,
			DateTo:   req.DateTo,
			IntroURL: c.introURL,
			ImageURL: req.ImageURL,
		}).
		SetResult(&out).
		SetError(&out).
		Post(c.url)
	if err != nil {
		log.Warn("Assistant request failed", zap.Error(err))
		return Text{}, apperr.Wrap(apperr.KindUpstream, "writing assistant unreachable", err)
	}

	if resp.IsError() || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("writing assistant returned %d", resp.StatusCode())
		}
		log.Warn("Assistant rejected request", zap.Int("status", resp.StatusCode()), zap.String("message", msg))
		return Text{}, apperr.New(apperr.KindUpstream, msg)
	}
	if out.Data.Text350 == "" {
		return Text{}, apperr.New(apperr.KindUpstream, "writing assistant returned no text")
	}

	log.Info("Assistant draft generated", zap.Duration("took", time.Since(start)))
	return Text{
		Body:            out.Data.Text350,
		Excerpt:         out.Data.Text80,
		MetaDescription: out.Data.MetaDesc,
		MetaKeywords:    out.Data.MetaKwd,
	}, nil
}
