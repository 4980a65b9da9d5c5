package workflow

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"asahigaoka/internal/apperr"
	"asahigaoka/internal/models"
)

// fakeStore keeps articles in memory and applies patches like the SQL store,
// including the OR on broadcast flags.
type fakeStore struct {
	articles map[string]*models.Article
	seq      int
	writes   int
	failNext error
	deleted  []string
}

func newFakeStore() *fakeStore { return &fakeStore{articles: map[string]*models.Article{}} }

func (s *fakeStore) Create(_ context.Context, a *models.Article) (*models.Article, error) {
	if s.failNext != nil {
		return nil, s.failNext
	}
	s.writes++
	s.seq++
	cp := *a
	cp.ID = "art-" + strconv.Itoa(s.seq)
	s.articles[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *fakeStore) Update(_ context.Context, id string, p models.ArticlePatch) (*models.Article, error) {
	if s.failNext != nil {
		return nil, s.failNext
	}
	a, ok := s.articles[id]
	if !ok {
		return nil, apperr.NotFound("article not found")
	}
	s.writes++
	setS := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setB := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setS(&a.Slug, p.Slug)
	setS(&a.Title, p.Title)
	setS(&a.Content, p.Content)
	setS(&a.Excerpt, p.Excerpt)
	setS(&a.Category, p.Category)
	setS(&a.Status, p.Status)
	if p.ClearPublishedAt {
		a.PublishedAt = nil
	} else if p.PublishedAt != nil {
		t := *p.PublishedAt
		a.PublishedAt = &t
	}
	if p.EventStartDatetime != nil {
		v := *p.EventStartDatetime
		a.EventStartDatetime = &v
	}
	if p.ClearEventEnd {
		a.EventEndDatetime = nil
	} else if p.EventEndDatetime != nil {
		v := *p.EventEndDatetime
		a.EventEndDatetime = &v
	}
	setB(&a.HasStartTime, p.HasStartTime)
	setB(&a.HasEndTime, p.HasEndTime)
	setB(&a.GenerateArticlePage, p.GenerateArticlePage)
	setB(&a.ShowInNewsList, p.ShowInNewsList)
	setB(&a.ShowInCalendar, p.ShowInCalendar)
	if p.LinePublished != nil {
		a.LinePublished = a.LinePublished || *p.LinePublished
	}
	if p.XPublished != nil {
		a.XPublished = a.XPublished || *p.XPublished
	}
	out := *a
	return &out, nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*models.Article, error) {
	a, ok := s.articles[id]
	if !ok {
		return nil, apperr.NotFound("article not found")
	}
	out := *a
	return &out, nil
}

func (s *fakeStore) SoftDelete(_ context.Context, id string) error {
	if s.failNext != nil {
		return s.failNext
	}
	s.deleted = append(s.deleted, id)
	delete(s.articles, id)
	return nil
}

type fakeSite struct {
	generated, deleted, listings int
	lastListing                  models.ListingRequest
	failGenerate, failDelete     bool
}

func (f *fakeSite) GenerateDetailPage(_ context.Context, id string) (models.PageResult, error) {
	f.generated++
	if f.failGenerate {
		return models.PageResult{}, apperr.New(apperr.KindUpstream, "generator down")
	}
	return models.PageResult{Success: true, FilePath: "news/" + id + ".html"}, nil
}

func (f *fakeSite) DeleteDetailPage(_ context.Context, id string) (models.PageResult, error) {
	f.deleted++
	if f.failDelete {
		return models.PageResult{}, apperr.New(apperr.KindUpstream, "delete failed")
	}
	return models.PageResult{Success: true}, nil
}

func (f *fakeSite) UpdateListing(_ context.Context, req models.ListingRequest) (models.ListingResult, error) {
	f.listings++
	f.lastListing = req
	return models.ListingResult{Success: true}, nil
}

type fakeSocial struct {
	line, x       int
	lineMsg, xMsg string
	lineRes, xRes models.BroadcastResult
	lineErr, xErr error
}

func newFakeSocial() *fakeSocial {
	ok := models.BroadcastResult{Status: models.BroadcastSuccess}
	return &fakeSocial{lineRes: ok, xRes: ok}
}

func (f *fakeSocial) PostLine(_ context.Context, msg, _ string) (models.BroadcastResult, error) {
	f.line++
	f.lineMsg = msg
	return f.lineRes, f.lineErr
}

func (f *fakeSocial) PostX(_ context.Context, msg, _ string) (models.BroadcastResult, error) {
	f.x++
	f.xMsg = msg
	return f.xRes, f.xErr
}

var fixedNow = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestEngine() (*Engine, *fakeStore, *fakeSite, *fakeSocial) {
	store, site, social := newFakeStore(), &fakeSite{}, newFakeSocial()
	e := NewEngine(store, site, social, Options{
		SiteURL:  "https://example.tokyo",
		Hashtags: "#旭丘一丁目",
		Now:      func() time.Time { return fixedNow },
	})
	return e, store, site, social
}

func baseInput() SaveInput {
	return SaveInput{
		Title:         "T",
		Content:       "C",
		Category:      models.CategoryNotice,
		EventDateFrom: "2025-06-01",
	}
}

func TestNewDraftSaveFiresLineOnce(t *testing.T) {
	e, store, _, social := newTestEngine()
	in := baseInput()
	in.LineEnabled = true

	out, err := e.ApplySave(context.Background(), nil, in, "user-1")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !out.Created || out.Article.Status != models.StatusDraft {
		t.Fatalf("expected created draft, got %+v", out.Article)
	}
	if social.line != 1 || social.x != 0 {
		t.Fatalf("expected exactly one LINE call, got line=%d x=%d", social.line, social.x)
	}
	if !store.articles[out.Article.ID].LinePublished {
		t.Fatal("line_published must be latched after success")
	}
	if out.Article.EventStartDatetime == nil || *out.Article.EventStartDatetime != "2025-06-01 00:00:00" {
		t.Fatalf("event start = %v", out.Article.EventStartDatetime)
	}
}

func TestPublishThenResaveDoesNotBroadcastAgain(t *testing.T) {
	e, _, site, social := newTestEngine()
	in := baseInput()
	in.Status = models.StatusPublished
	in.GenerateArticlePage = true
	in.LineEnabled = true
	in.XEnabled = true

	out, err := e.ApplySave(context.Background(), nil, in, "user-1")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if social.line != 1 || social.x != 1 || site.generated != 1 {
		t.Fatalf("publish: line=%d x=%d generated=%d", social.line, social.x, site.generated)
	}
	if out.Message != "published" {
		t.Fatalf("message = %q", out.Message)
	}

	if _, err := e.ApplySave(context.Background(), out.Article, in, "user-1"); err != nil {
		t.Fatalf("resave: %v", err)
	}
	if social.line != 1 || social.x != 1 {
		t.Fatalf("resave must not broadcast: line=%d x=%d", social.line, social.x)
	}
}

func TestUnpublishNeverUnlatches(t *testing.T) {
	e, store, site, _ := newTestEngine()
	in := baseInput()
	in.Status = models.StatusPublished
	in.GenerateArticlePage = true
	in.LineEnabled = true

	out, err := e.ApplySave(context.Background(), nil, in, "user-1")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	un, err := e.ApplyUnpublish(context.Background(), out.Article)
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if site.deleted != 1 || un.DetailPage != PageDeleted {
		t.Fatalf("unpublish must delete the detail page: deleted=%d state=%s", site.deleted, un.DetailPage)
	}
	if un.Article.PublishedAt != nil || un.Article.Status != models.StatusDraft {
		t.Fatalf("unexpected state after unpublish: %+v", un.Article)
	}

	draft := baseInput()
	draft.Status = models.StatusDraft
	if _, err := e.ApplySave(context.Background(), un.Article, draft, "user-1"); err != nil {
		t.Fatalf("draft save: %v", err)
	}
	if !store.articles[out.Article.ID].LinePublished {
		t.Fatal("line_published was reset")
	}
}

func TestDetailPageSymmetry(t *testing.T) {
	e, _, site, _ := newTestEngine()
	in := baseInput()
	in.Status = models.StatusPublished
	in.GenerateArticlePage = true
	site.failGenerate = true

	out, err := e.ApplySave(context.Background(), nil, in, "user-1")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if out.DetailPage != PageFailed || len(out.Warnings) != 1 {
		t.Fatalf("generation failure must be a warning: %+v", out)
	}

	if _, err := e.ApplyUnpublish(context.Background(), out.Article); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if site.generated != 1 || site.deleted != 1 {
		t.Fatalf("expected one generate and one delete, got %d/%d", site.generated, site.deleted)
	}
}

func TestPersistFailureSkipsSideEffects(t *testing.T) {
	e, store, site, social := newTestEngine()
	store.failNext = apperr.Wrap(apperr.KindPersistence, "failed to create article", errors.New("db down"))
	in := baseInput()
	in.Status = models.StatusPublished
	in.GenerateArticlePage = true
	in.ShowInNewsList = true
	in.LineEnabled = true

	_, err := e.ApplySave(context.Background(), nil, in, "user-1")
	if !apperr.Is(err, apperr.KindPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if social.line+social.x+site.generated+site.deleted+site.listings != 0 {
		t.Fatal("no side effect may run when persistence fails")
	}
}

func TestValidationFailsBeforeWrites(t *testing.T) {
	e, store, _, social := newTestEngine()
	in := baseInput()
	in.Title = ""
	in.EventDateFrom = ""
	in.LineEnabled = true

	_, err := e.ApplySave(context.Background(), nil, in, "user-1")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := apperr.FieldsOf(err)
	if fields["title"] == "" || fields["event_date_from"] == "" {
		t.Fatalf("missing field errors: %v", fields)
	}
	if store.writes != 0 || social.line != 0 {
		t.Fatal("validation failure must not write or broadcast")
	}
}

func TestScheduledPublishWithBroadcastRejected(t *testing.T) {
	e, store, _, _ := newTestEngine()
	in := baseInput()
	in.Status = models.StatusPublished
	future := fixedNow.Add(48 * time.Hour)
	in.PublishedAt = &future
	in.XEnabled = true

	_, err := e.ApplySave(context.Background(), nil, in, "user-1")
	if !apperr.Is(err, apperr.KindValidation) || apperr.FieldsOf(err)["published_at"] == "" {
		t.Fatalf("expected published_at validation error, got %v", err)
	}
	if store.writes != 0 {
		t.Fatal("rejected save wrote to the store")
	}

	in.XEnabled = false
	out, err := e.ApplySave(context.Background(), nil, in, "user-1")
	if err != nil {
		t.Fatalf("scheduled publish without broadcast: %v", err)
	}
	if out.Article.PublishedAt == nil || !out.Article.PublishedAt.Equal(future) {
		t.Fatalf("published_at = %v", out.Article.PublishedAt)
	}
}

func TestChannelFailureIsIsolated(t *testing.T) {
	e, store, site, social := newTestEngine()
	social.lineErr = apperr.New(apperr.KindUpstream, "line down")
	social.lineRes = models.BroadcastResult{Status: models.BroadcastError}
	in := baseInput()
	in.Status = models.StatusPublished
	in.GenerateArticlePage = true
	in.ShowInCalendar = true
	in.LineEnabled = true
	in.XEnabled = true

	out, err := e.ApplySave(context.Background(), nil, in, "user-1")
	if err != nil {
		t.Fatalf("save must succeed despite broadcast failure: %v", err)
	}
	a := store.articles[out.Article.ID]
	if a.LinePublished {
		t.Fatal("failed channel must not be latched")
	}
	if !a.XPublished {
		t.Fatal("X must still be delivered and latched")
	}
	if site.generated != 1 || site.listings != 1 {
		t.Fatalf("page generation and listing must still run: %d/%d", site.generated, site.listings)
	}
	if out.Message != "published with warnings" || out.Line.Status != models.BroadcastError {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	// The flag was never latched, so a re-save retries the failed channel only.
	social.lineErr = nil
	social.lineRes = models.BroadcastResult{Status: models.BroadcastSuccess}
	if _, err := e.ApplySave(context.Background(), out.Article, in, "user-1"); err != nil {
		t.Fatalf("resave: %v", err)
	}
	if social.line != 2 || social.x != 1 {
		t.Fatalf("retry counts: line=%d x=%d", social.line, social.x)
	}
}

func TestSkippedBroadcastLatches(t *testing.T) {
	e, store, _, social := newTestEngine()
	social.xRes = models.BroadcastResult{Status: models.BroadcastSkipped}
	in := baseInput()
	in.XEnabled = true

	out, err := e.ApplySave(context.Background(), nil, in, "user-1")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !store.articles[out.Article.ID].XPublished {
		t.Fatal("skipped delivery must latch the flag")
	}
	if len(out.Warnings) != 0 {
		t.Fatalf("skipped is not a failure: %v", out.Warnings)
	}
}

func TestListingUpdatedForDraftFlagChange(t *testing.T) {
	e, _, site, _ := newTestEngine()
	in := baseInput()
	in.Slug = "spring-festival"
	in.ShowInNewsList = true

	out, err := e.ApplySave(context.Background(), nil, in, "user-1")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if site.listings != 1 || out.Listing != ListingUpdated {
		t.Fatalf("listing not updated: %d %s", site.listings, out.Listing)
	}
	if !site.lastListing.UpdateNewsList || site.lastListing.UpdateCalendar || site.lastListing.ArticleSlug != "spring-festival" {
		t.Fatalf("unexpected listing request: %+v", site.lastListing)
	}
	if site.generated != 0 || site.deleted != 0 {
		t.Fatal("a draft that was never published has no detail page to touch")
	}
}

func TestDeleteSoftDeletesEvenWhenPageRemovalFails(t *testing.T) {
	e, store, site, _ := newTestEngine()
	created, _ := store.Create(context.Background(), &models.Article{Title: "T", Status: models.StatusPublished})
	site.failDelete = true

	out, err := e.ApplyDelete(context.Background(), created)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != created.ID {
		t.Fatalf("soft delete not performed: %v", store.deleted)
	}
	if out.Message != "deleted with warnings" {
		t.Fatalf("message = %q", out.Message)
	}
}

func TestStatusTogglePublishesThroughSave(t *testing.T) {
	e, store, site, social := newTestEngine()
	in := baseInput()
	in.GenerateArticlePage = true
	in.EventTimeFrom = "10:30"

	out, err := e.ApplySave(context.Background(), nil, in, "user-1")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	pub, err := e.ApplyStatusToggle(context.Background(), out.Article,
		models.StatusRequest{Status: models.StatusPublished, XEnabled: true}, "user-1")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if pub.Article.Status != models.StatusPublished || pub.Article.PublishedAt == nil {
		t.Fatalf("not published: %+v", pub.Article)
	}
	if *pub.Article.EventStartDatetime != "2025-06-01 10:30:00" || !pub.Article.HasStartTime {
		t.Fatalf("event start changed by toggle: %v", *pub.Article.EventStartDatetime)
	}
	if social.x != 1 || social.line != 0 || site.generated != 1 {
		t.Fatalf("toggle side effects: x=%d line=%d generated=%d", social.x, social.line, site.generated)
	}

	if _, err := e.ApplyStatusToggle(context.Background(), pub.Article,
		models.StatusRequest{Status: models.StatusDraft}, "user-1"); err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	a := store.articles[out.Article.ID]
	if a.Status != models.StatusDraft || !a.XPublished || site.deleted != 1 {
		t.Fatalf("unexpected state after toggle back: %+v deleted=%d", a, site.deleted)
	}
}

func TestStoredScheduleBlocksLaterBroadcasts(t *testing.T) {
	e, store, _, social := newTestEngine()
	in := baseInput()
	in.Status = models.StatusPublished
	future := fixedNow.Add(48 * time.Hour)
	in.PublishedAt = &future

	out, err := e.ApplySave(context.Background(), nil, in, "user-1")
	if err != nil {
		t.Fatalf("scheduled publish: %v", err)
	}
	writes := store.writes

	_, err = e.ApplyStatusToggle(context.Background(), out.Article,
		models.StatusRequest{Status: models.StatusPublished, LineEnabled: true}, "user-1")
	if !apperr.Is(err, apperr.KindValidation) || apperr.FieldsOf(err)["published_at"] == "" {
		t.Fatalf("toggle: expected published_at validation error, got %v", err)
	}

	resave := baseInput()
	resave.Status = models.StatusPublished
	resave.XEnabled = true
	_, err = e.ApplySave(context.Background(), out.Article, resave, "user-1")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("resave: expected validation error, got %v", err)
	}

	if social.line != 0 || social.x != 0 || store.writes != writes {
		t.Fatalf("rejected saves had effects: line=%d x=%d writes=%d", social.line, social.x, store.writes-writes)
	}

	// Moving the publication to now lifts the restriction.
	now := fixedNow
	resave.PublishedAt = &now
	if _, err := e.ApplySave(context.Background(), out.Article, resave, "user-1"); err != nil {
		t.Fatalf("resave with immediate publication: %v", err)
	}
	if social.x != 1 {
		t.Fatalf("x calls = %d", social.x)
	}
}

func TestResaveKeepsStoredSchedule(t *testing.T) {
	e, _, _, _ := newTestEngine()
	in := baseInput()
	in.Status = models.StatusPublished
	future := fixedNow.Add(24 * time.Hour)
	in.PublishedAt = &future

	out, err := e.ApplySave(context.Background(), nil, in, "user-1")
	if err != nil {
		t.Fatalf("scheduled publish: %v", err)
	}
	toggled, err := e.ApplyStatusToggle(context.Background(), out.Article,
		models.StatusRequest{Status: models.StatusPublished}, "user-1")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.Article.PublishedAt == nil || !toggled.Article.PublishedAt.Equal(future) {
		t.Fatalf("published_at = %v, want %v", toggled.Article.PublishedAt, future)
	}
}
