package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	domain "github.com/velours-paris/api/internal/domain"
	pfirestore "github.com/velours-paris/api/internal/platform/firestore"
	"github.com/velours-paris/api/internal/repositories"
)

const (
	groupCollection    = "categoryGroups"
	categoryCollection = "categories"
)

// CatalogRepository reads and writes the navigation taxonomy in Firestore.
type CatalogRepository struct {
	provider *pfirestore.Provider
}

// NewCatalogRepository constructs a Firestore-backed catalog repository.
func NewCatalogRepository(provider *pfirestore.Provider) (*CatalogRepository, error) {
	if provider == nil {
		return nil, errors.New("catalog repository requires firestore provider")
	}
	return &CatalogRepository{provider: provider}, nil
}

// ListGroups returns all active category groups ordered by sortOrder.
func (r *CatalogRepository) ListGroups(ctx context.Context) ([]domain.CategoryGroup, error) {
	client, err := r.client(ctx)
	if err != nil {
		return nil, err
	}

	iter := client.Collection(groupCollection).
		Where("isActive", "==", true).
		OrderBy("sortOrder", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var groups []domain.CategoryGroup
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("catalog.listGroups", err)
		}
		var doc groupDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode category group %s: %w", snap.Ref.ID, err)
		}
		groups = append(groups, doc.toDomain(snap.Ref.ID))
	}
	return groups, nil
}

// ListCategories returns all active categories ordered by sortOrder.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	client, err := r.client(ctx)
	if err != nil {
		return nil, err
	}

	iter := client.Collection(categoryCollection).
		Where("isActive", "==", true).
		OrderBy("sortOrder", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var categories []domain.Category
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("catalog.listCategories", err)
		}
		var doc categoryDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode category %s: %w", snap.Ref.ID, err)
		}
		categories = append(categories, doc.toDomain(snap.Ref.ID))
	}
	return categories, nil
}

// UpsertGroup stores the group keyed by its ID.
func (r *CatalogRepository) UpsertGroup(ctx context.Context, group domain.CategoryGroup) error {
	client, err := r.client(ctx)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(group.ID)
	if id == "" {
		return errors.New("catalog repository: group id is required")
	}
	doc := groupDocument{
		Slug:      group.Slug,
		NameFR:    group.NameFR,
		NameEN:    group.NameEN,
		SortOrder: group.SortOrder,
		IsActive:  group.IsActive,
	}
	if _, err := client.Collection(groupCollection).Doc(id).Set(ctx, doc); err != nil {
		return pfirestore.WrapError("catalog.upsertGroup", err)
	}
	return nil
}

// UpsertCategory stores the category keyed by its ID.
func (r *CatalogRepository) UpsertCategory(ctx context.Context, category domain.Category) error {
	client, err := r.client(ctx)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(category.ID)
	if id == "" {
		return errors.New("catalog repository: category id is required")
	}
	if strings.TrimSpace(category.GroupID) == "" {
		return errors.New("catalog repository: category group id is required")
	}
	doc := categoryDocument{
		GroupID:   category.GroupID,
		Slug:      category.Slug,
		NameFR:    category.NameFR,
		NameEN:    category.NameEN,
		SortOrder: category.SortOrder,
		IsActive:  category.IsActive,
	}
	if _, err := client.Collection(categoryCollection).Doc(id).Set(ctx, doc); err != nil {
		return pfirestore.WrapError("catalog.upsertCategory", err)
	}
	return nil
}

func (r *CatalogRepository) client(ctx context.Context) (*firestore.Client, error) {
	if r == nil || r.provider == nil {
		return nil, errors.New("catalog repository not initialised")
	}
	return r.provider.Client(ctx)
}

type groupDocument struct {
	Slug      string `firestore:"slug"`
	NameFR    string `firestore:"nameFr"`
	NameEN    string `firestore:"nameEn"`
	SortOrder int    `firestore:"sortOrder"`
	IsActive  bool   `firestore:"isActive"`
}

func (d groupDocument) toDomain(id string) domain.CategoryGroup {
	return domain.CategoryGroup{
		ID:        id,
		Slug:      d.Slug,
		NameFR:    d.NameFR,
		NameEN:    d.NameEN,
		SortOrder: d.SortOrder,
		IsActive:  d.IsActive,
	}
}

type categoryDocument struct {
	GroupID   string `firestore:"groupId"`
	Slug      string `firestore:"slug"`
	NameFR    string `firestore:"nameFr"`
	NameEN    string `firestore:"nameEn"`
	SortOrder int    `firestore:"sortOrder"`
	IsActive  bool   `firestore:"isActive"`
}

func (d categoryDocument) toDomain(id string) domain.Category {
	return domain.Category{
		ID:        id,
		GroupID:   d.GroupID,
		Slug:      d.Slug,
		NameFR:    d.NameFR,
		NameEN:    d.NameEN,
		SortOrder: d.SortOrder,
		IsActive:  d.IsActive,
	}
}

// Ensure interface compliance.
var _ repositories.CatalogRepository = (*CatalogRepository)(nil)
