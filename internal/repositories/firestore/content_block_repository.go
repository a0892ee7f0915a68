package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/velours-paris/api/internal/domain"
	pfirestore "github.com/velours-paris/api/internal/platform/firestore"
	"github.com/velours-paris/api/internal/repositories"
)

const contentCollection = "contentBlocks"

// ContentBlockRepository persists admin-authored copy keyed by page and slug.
// The document ID is "<page>__<slug>" so lookups stay single reads.
type ContentBlockRepository struct {
	provider *pfirestore.Provider
}

// NewContentBlockRepository constructs a Firestore-backed content repository.
func NewContentBlockRepository(provider *pfirestore.Provider) (*ContentBlockRepository, error) {
	if provider == nil {
		return nil, errors.New("content block repository requires firestore provider")
	}
	return &ContentBlockRepository{provider: provider}, nil
}

// Get returns the block for the page/slug pair or ErrContentBlockNotFound.
func (r *ContentBlockRepository) Get(ctx context.Context, page string, slug string) (domain.ContentBlock, error) {
	client, err := r.client(ctx)
	if err != nil {
		return domain.ContentBlock{}, err
	}
	id, err := contentDocID(page, slug)
	if err != nil {
		return domain.ContentBlock{}, err
	}

	snap, err := client.Collection(contentCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ContentBlock{}, repositories.ErrContentBlockNotFound
		}
		return domain.ContentBlock{}, pfirestore.WrapError("content.get", err)
	}
	return decodeContentBlock(snap)
}

// ListByPage returns every block for a page ordered by slug.
func (r *ContentBlockRepository) ListByPage(ctx context.Context, page string) ([]domain.ContentBlock, error) {
	client, err := r.client(ctx)
	if err != nil {
		return nil, err
	}
	page = strings.TrimSpace(page)
	if page == "" {
		return nil, errors.New("content block repository: page is required")
	}

	iter := client.Collection(contentCollection).
		Where("page", "==", page).
		OrderBy("slug", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var blocks []domain.ContentBlock
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("content.listByPage", err)
		}
		block, err := decodeContentBlock(snap)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// Upsert stores the block under its composite document ID.
func (r *ContentBlockRepository) Upsert(ctx context.Context, block domain.ContentBlock) error {
	client, err := r.client(ctx)
	if err != nil {
		return err
	}
	id, err := contentDocID(block.Page, block.Slug)
	if err != nil {
		return err
	}

	doc := contentDocument{
		Page:      strings.TrimSpace(block.Page),
		Slug:      strings.TrimSpace(block.Slug),
		BodyFR:    block.BodyFR,
		BodyEN:    block.BodyEN,
		Format:    block.Format,
		UpdatedAt: block.UpdatedAt.UTC(),
		UpdatedBy: block.UpdatedBy,
	}
	if _, err := client.Collection(contentCollection).Doc(id).Set(ctx, doc); err != nil {
		return pfirestore.WrapError("content.upsert", err)
	}
	return nil
}

// Delete removes the block. Deleting an absent block is not an error.
func (r *ContentBlockRepository) Delete(ctx context.Context, page string, slug string) error {
	client, err := r.client(ctx)
	if err != nil {
		return err
	}
	id, err := contentDocID(page, slug)
	if err != nil {
		return err
	}
	if _, err := client.Collection(contentCollection).Doc(id).Delete(ctx); err != nil {
		return pfirestore.WrapError("content.delete", err)
	}
	return nil
}

func (r *ContentBlockRepository) client(ctx context.Context) (*firestore.Client, error) {
	if r == nil || r.provider == nil {
		return nil, errors.New("content block repository not initialised")
	}
	return r.provider.Client(ctx)
}

func contentDocID(page, slug string) (string, error) {
	page = strings.TrimSpace(page)
	slug = strings.TrimSpace(slug)
	if page == "" || slug == "" {
		return "", errors.New("content block repository: page and slug are required")
	}
	return page + "__" + slug, nil
}

func decodeContentBlock(snap *firestore.DocumentSnapshot) (domain.ContentBlock, error) {
	var doc contentDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.ContentBlock{}, fmt.Errorf("decode content block %s: %w", snap.Ref.ID, err)
	}
	return domain.ContentBlock{
		ID:        snap.Ref.ID,
		Page:      doc.Page,
		Slug:      doc.Slug,
		BodyFR:    doc.BodyFR,
		BodyEN:    doc.BodyEN,
		Format:    doc.Format,
		UpdatedAt: doc.UpdatedAt,
		UpdatedBy: doc.UpdatedBy,
	}, nil
}

type contentDocument struct {
	Page      string    `firestore:"page"`
	Slug      string    `firestore:"slug"`
	BodyFR    string    `firestore:"bodyFr"`
	BodyEN    string    `firestore:"bodyEn"`
	Format    string    `firestore:"format"`
	UpdatedAt time.Time `firestore:"updatedAt"`
	UpdatedBy string    `firestore:"updatedBy"`
}

// Ensure interface compliance.
var _ repositories.ContentBlockRepository = (*ContentBlockRepository)(nil)
