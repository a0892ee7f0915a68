package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	domain "github.com/velours-paris/api/internal/domain"
	"github.com/velours-paris/api/internal/platform/requestctx"
	"github.com/velours-paris/api/internal/platform/spreadsheet"
	"github.com/velours-paris/api/internal/repositories"
)

// CatalogServiceDeps bundles constructor inputs for the catalog service.
type CatalogServiceDeps struct {
	Catalog repositories.CatalogRepository
	Clock   func() time.Time
}

type catalogService struct {
	repo  repositories.CatalogRepository
	clock func() time.Time
}

var (
	// ErrCatalogRepositoryMissing indicates the repository dependency is absent.
	ErrCatalogRepositoryMissing = errors.New("catalog service: repository is not configured")
	// ErrCatalogInvalidInput indicates the caller supplied invalid taxonomy data.
	ErrCatalogInvalidInput = errors.New("catalog service: invalid input")
)

// NewCatalogService constructs the catalog service with the supplied dependencies.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog service: catalog repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &catalogService{
		repo:  deps.Catalog,
		clock: func() time.Time { return clock().UTC() },
	}, nil
}

// Navigation fetches groups and categories concurrently and joins them in
// memory. A failed category fetch degrades to groups without members so the
// navigation shell still renders; a failed group fetch is fatal.
func (s *catalogService) Navigation(ctx context.Context) ([]domain.GroupWithCategories, error) {
	if s.repo == nil {
		return nil, ErrCatalogRepositoryMissing
	}

	var (
		groups     []domain.CategoryGroup
		categories []domain.Category
		groupsErr  error
		catErr     error
	)

	var g errgroup.Group
	g.Go(func() error {
		groups, groupsErr = s.repo.ListGroups(ctx)
		return nil
	})
	g.Go(func() error {
		categories, catErr = s.repo.ListCategories(ctx)
		return nil
	})
	_ = g.Wait()

	if groupsErr != nil {
		return nil, fmt.Errorf("catalog service: list groups: %w", groupsErr)
	}
	if catErr != nil {
		requestctx.Logger(ctx).Warn("catalog categories fetch failed, serving groups only", zap.Error(catErr))
		categories = nil
	}

	return domain.BuildGroupTree(groups, categories), nil
}

// UpsertGroup validates and stores a navigation group.
func (s *catalogService) UpsertGroup(ctx context.Context, group domain.CategoryGroup) error {
	if s.repo == nil {
		return ErrCatalogRepositoryMissing
	}
	if strings.TrimSpace(group.Slug) == "" || strings.TrimSpace(group.NameFR) == "" {
		return fmt.Errorf("%w: group slug and French name are required", ErrCatalogInvalidInput)
	}
	if strings.TrimSpace(group.ID) == "" {
		group.ID = newCatalogID(s.clock())
	}
	return s.repo.UpsertGroup(ctx, group)
}

// UpsertCategory validates and stores a category.
func (s *catalogService) UpsertCategory(ctx context.Context, category domain.Category) error {
	if s.repo == nil {
		return ErrCatalogRepositoryMissing
	}
	if strings.TrimSpace(category.GroupID) == "" {
		return fmt.Errorf("%w: category requires a group id", ErrCatalogInvalidInput)
	}
	if strings.TrimSpace(category.Slug) == "" || strings.TrimSpace(category.NameFR) == "" {
		return fmt.Errorf("%w: category slug and French name are required", ErrCatalogInvalidInput)
	}
	if strings.TrimSpace(category.ID) == "" {
		category.ID = newCatalogID(s.clock())
	}
	return s.repo.UpsertCategory(ctx, category)
}

// Taxonomy workbook columns. Rows are keyed by header, so the workbook may
// order its columns however the operator likes as long as all of these are
// present.
var taxonomyColumns = []string{"kind", "id", "group_id", "slug", "name_fr", "name_en", "sort_order"}

// resolveTaxonomyColumns maps each expected column to the sheet's verbatim
// header, matching case-insensitively. Missing columns abort the import.
func resolveTaxonomyColumns(headers []string) (map[string]string, error) {
	resolved := make(map[string]string, len(taxonomyColumns))
	var missing []string
	for _, want := range taxonomyColumns {
		found := ""
		for _, header := range headers {
			if strings.EqualFold(header, want) {
				found = header
				break
			}
		}
		if found == "" {
			missing = append(missing, want)
			continue
		}
		resolved[want] = found
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrCatalogInvalidInput, strings.Join(missing, ", "))
	}
	return resolved, nil
}

// ImportTaxonomy loads groups and categories from an uploaded workbook.
// Expected columns, in any order: kind,id,group_id,slug,name_fr,name_en,
// sort_order where kind is "group" or "category". Rows that fail validation
// are skipped and counted; workbook-level failures abort the import.
func (s *catalogService) ImportTaxonomy(ctx context.Context, workbook []byte, sheetName string) (TaxonomyImportResult, error) {
	if s.repo == nil {
		return TaxonomyImportResult{}, ErrCatalogRepositoryMissing
	}

	table, err := spreadsheet.Parse(workbook, sheetName)
	if err != nil {
		return TaxonomyImportResult{}, err
	}
	columns, err := resolveTaxonomyColumns(table.Headers)
	if err != nil {
		return TaxonomyImportResult{}, err
	}

	logger := requestctx.Logger(ctx)
	var result TaxonomyImportResult
	for i, row := range table.Rows {
		cell := func(name string) string { return row[columns[name]] }

		sortOrder, sortErr := strconv.Atoi(cell("sort_order"))
		if sortErr != nil {
			sortOrder = 0
		}

		switch strings.ToLower(cell("kind")) {
		case "group":
			group := domain.CategoryGroup{
				ID:        cell("id"),
				Slug:      cell("slug"),
				NameFR:    cell("name_fr"),
				NameEN:    cell("name_en"),
				SortOrder: sortOrder,
				IsActive:  true,
			}
			if err := s.UpsertGroup(ctx, group); err != nil {
				logger.Warn("taxonomy import: group row skipped", zap.Int("row", i+2), zap.Error(err))
				result.RowsSkipped++
				continue
			}
			result.GroupsUpserted++
		case "category":
			category := domain.Category{
				ID:        cell("id"),
				GroupID:   cell("group_id"),
				Slug:      cell("slug"),
				NameFR:    cell("name_fr"),
				NameEN:    cell("name_en"),
				SortOrder: sortOrder,
				IsActive:  true,
			}
			if err := s.UpsertCategory(ctx, category); err != nil {
				logger.Warn("taxonomy import: category row skipped", zap.Int("row", i+2), zap.Error(err))
				result.RowsSkipped++
				continue
			}
			result.CategoriesUpserted++
		default:
			logger.Warn("taxonomy import: unknown kind", zap.Int("row", i+2), zap.String("kind", cell("kind")))
			result.RowsSkipped++
		}
	}
	return result, nil
}

func newCatalogID(now time.Time) string {
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String())
}
