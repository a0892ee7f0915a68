package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	domain "github.com/velours-paris/api/internal/domain"
	"github.com/velours-paris/api/internal/platform/auth"
	"github.com/velours-paris/api/internal/platform/requestctx"
	"github.com/velours-paris/api/internal/repositories"
	"github.com/velours-paris/api/internal/richtext"
)

// Content block body formats.
const (
	FormatRichText = "richtext"
	FormatMarkdown = "markdown"
)

// ContentServiceDeps bundles constructor inputs for the content service.
type ContentServiceDeps struct {
	Content  repositories.ContentBlockRepository
	Renderer *richtext.Renderer
	Clock    func() time.Time
}

type contentService struct {
	repo     repositories.ContentBlockRepository
	renderer *richtext.Renderer
	clock    func() time.Time
}

var (
	// ErrContentRepositoryMissing indicates the repository dependency is absent.
	ErrContentRepositoryMissing = errors.New("content service: repository is not configured")
	// ErrContentForbidden indicates the caller may not mutate content.
	ErrContentForbidden = errors.New("content service: admin role required")
	// ErrContentInvalidInput indicates a malformed block submission.
	ErrContentInvalidInput = errors.New("content service: invalid input")
)

// NewContentService constructs the content service with the supplied dependencies.
func NewContentService(deps ContentServiceDeps) (ContentService, error) {
	if deps.Content == nil {
		return nil, fmt.Errorf("content service: content repository is required")
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = richtext.NewRenderer()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &contentService{
		repo:     deps.Content,
		renderer: renderer,
		clock:    func() time.Time { return clock().UTC() },
	}, nil
}

// Block resolves one block to the requested language and sanitized HTML.
// A render failure yields an empty fragment, never an error page.
func (s *contentService) Block(ctx context.Context, page string, slug string, lang domain.Language) (RenderedBlock, error) {
	block, err := s.repo.Get(ctx, page, slug)
	if err != nil {
		return RenderedBlock{}, err
	}
	return s.render(ctx, block, lang), nil
}

// PageBlocks resolves every block on a page.
func (s *contentService) PageBlocks(ctx context.Context, page string, lang domain.Language) ([]RenderedBlock, error) {
	blocks, err := s.repo.ListByPage(ctx, page)
	if err != nil {
		return nil, err
	}
	out := make([]RenderedBlock, 0, len(blocks))
	for _, block := range blocks {
		out = append(out, s.render(ctx, block, lang))
	}
	return out, nil
}

// Upsert stores an admin-authored block. Only admins may write.
func (s *contentService) Upsert(ctx context.Context, identity *auth.Identity, block domain.ContentBlock) error {
	if !identity.IsAdmin() {
		return ErrContentForbidden
	}
	if strings.TrimSpace(block.Page) == "" || strings.TrimSpace(block.Slug) == "" {
		return fmt.Errorf("%w: page and slug are required", ErrContentInvalidInput)
	}
	switch block.Format {
	case FormatRichText, FormatMarkdown:
	case "":
		block.Format = FormatRichText
	default:
		return fmt.Errorf("%w: unknown format %q", ErrContentInvalidInput, block.Format)
	}

	block.UpdatedAt = s.clock()
	block.UpdatedBy = identity.UID
	return s.repo.Upsert(ctx, block)
}

// Delete removes a block. Only admins may delete.
func (s *contentService) Delete(ctx context.Context, identity *auth.Identity, page string, slug string) error {
	if !identity.IsAdmin() {
		return ErrContentForbidden
	}
	return s.repo.Delete(ctx, page, slug)
}

func (s *contentService) render(ctx context.Context, block domain.ContentBlock, lang domain.Language) RenderedBlock {
	body := block.Body(lang)

	var html string
	var err error
	switch block.Format {
	case FormatMarkdown:
		html, err = s.renderer.RenderMarkdown(body)
	default:
		html, err = s.renderer.Render([]byte(body))
	}
	if err != nil {
		requestctx.Logger(ctx).Warn("content block failed to render",
			zap.String("page", block.Page), zap.String("slug", block.Slug), zap.Error(err))
		html = ""
	}

	return RenderedBlock{
		Page: block.Page,
		Slug: block.Slug,
		HTML: html,
	}
}
