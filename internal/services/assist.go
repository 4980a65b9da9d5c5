package services

import (
	"context"
	"strings"

	"asahigaoka/internal/clients/assist"
	"asahigaoka/internal/logger"
	"asahigaoka/internal/models"
	"asahigaoka/internal/workflow"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

type DraftWriter interface {
	Generate(ctx context.Context, req models.DraftRequest) (assist.Text, error)
}

// DraftService turns the writing assistant's output into editor form values.
// Nothing is persisted; the editor saves the result through the normal save path.
type DraftService struct {
	writer   DraftWriter
	siteName string
	text     *bluemonday.Policy
}

func NewDraftService(writer DraftWriter, siteName string) *DraftService {
	return &DraftService{writer: writer, siteName: siteName, text: bluemonday.StrictPolicy()}
}

func (s *DraftService) Suggest(ctx context.Context, req models.DraftRequest) (*models.DraftSuggestion, error) {
	log := logger.WithCtx(ctx)
	if err := workflow.ValidateStruct(req); err != nil {
		return nil, err
	}

	text, err := s.writer.Generate(ctx, req)
	if err != nil {
		log.Warn("Draft generation failed", zap.Error(err))
		return nil, err
	}

	out := &models.DraftSuggestion{
		Content:         s.paragraphs(text.Body),
		Excerpt:         strings.TrimSpace(text.Excerpt),
		MetaTitle:       strings.TrimSpace(req.Title),
		MetaDescription: strings.TrimSpace(text.MetaDescription),
		MetaKeywords:    strings.TrimSpace(text.MetaKeywords),
	}
	if s.siteName != "" {
		out.MetaTitle += " | " + s.siteName
	}
	log.Info("Draft suggested", zap.Int("content_len", len(out.Content)))
	return out, nil
}

// paragraphs wraps each non-empty line in <p>, escaping any markup.
func (s *DraftService) paragraphs(body string) string {
	var parts []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts = append(parts, "<p>"+s.text.Sanitize(line)+"</p>")
	}
	return strings.Join(parts, "\n")
}
