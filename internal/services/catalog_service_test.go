package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tealeg/xlsx"

	domain "github.com/velours-paris/api/internal/domain"
)

type stubCatalogRepo struct {
	groups     []domain.CategoryGroup
	categories []domain.Category
	groupsErr  error
	catErr     error

	upsertedGroups     []domain.CategoryGroup
	upsertedCategories []domain.Category
}

func (s *stubCatalogRepo) ListGroups(ctx context.Context) ([]domain.CategoryGroup, error) {
	return s.groups, s.groupsErr
}

func (s *stubCatalogRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories, s.catErr
}

func (s *stubCatalogRepo) UpsertGroup(ctx context.Context, group domain.CategoryGroup) error {
	s.upsertedGroups = append(s.upsertedGroups, group)
	return nil
}

func (s *stubCatalogRepo) UpsertCategory(ctx context.Context, category domain.Category) error {
	s.upsertedCategories = append(s.upsertedCategories, category)
	return nil
}

func newTestCatalogService(t *testing.T, repo *stubCatalogRepo) CatalogService {
	t.Helper()
	svc, err := NewCatalogService(CatalogServiceDeps{Catalog: repo})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	return svc
}

func TestNavigation_JoinsAndOrders(t *testing.T) {
	repo := &stubCatalogRepo{
		groups: []domain.CategoryGroup{
			{ID: "g2", NameFR: "Accessoires", SortOrder: 2, IsActive: true},
			{ID: "g1", NameFR: "Prêt-à-porter", SortOrder: 1, IsActive: true},
		},
		categories: []domain.Category{
			{ID: "c2", GroupID: "g2", NameFR: "Ceintures", SortOrder: 1, IsActive: true},
			{ID: "c3", GroupID: "g1", NameFR: "Vestes", SortOrder: 2, IsActive: true},
			{ID: "c1", GroupID: "g1", NameFR: "Robes", SortOrder: 1, IsActive: true},
		},
	}
	svc := newTestCatalogService(t, repo)

	tree, err := svc.Navigation(context.Background())
	if err != nil {
		t.Fatalf("Navigation: %v", err)
	}
	if len(tree) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(tree))
	}
	if tree[0].Group.ID != "g1" || tree[1].Group.ID != "g2" {
		t.Fatalf("groups out of order: %s, %s", tree[0].Group.ID, tree[1].Group.ID)
	}
	if len(tree[0].Categories) != 2 || tree[0].Categories[0].ID != "c1" {
		t.Fatalf("unexpected g1 members: %+v", tree[0].Categories)
	}
	if len(tree[1].Categories) != 1 || tree[1].Categories[0].ID != "c2" {
		t.Fatalf("unexpected g2 members: %+v", tree[1].Categories)
	}
}

func TestNavigation_CategoryFailureDegradesToGroupsOnly(t *testing.T) {
	repo := &stubCatalogRepo{
		groups: []domain.CategoryGroup{{ID: "g1", NameFR: "Maison", SortOrder: 1, IsActive: true}},
		catErr: errors.New("backend down"),
	}
	svc := newTestCatalogService(t, repo)

	tree, err := svc.Navigation(context.Background())
	if err != nil {
		t.Fatalf("Navigation should degrade, got %v", err)
	}
	if len(tree) != 1 || len(tree[0].Categories) != 0 {
		t.Fatalf("expected bare group, got %+v", tree)
	}
}

func TestNavigation_GroupFailureIsFatal(t *testing.T) {
	repo := &stubCatalogRepo{groupsErr: errors.New("backend down")}
	svc := newTestCatalogService(t, repo)

	if _, err := svc.Navigation(context.Background()); err == nil {
		t.Fatal("expected error when group fetch fails")
	}
}

func TestUpsertGroup_Validation(t *testing.T) {
	repo := &stubCatalogRepo{}
	svc := newTestCatalogService(t, repo)

	err := svc.UpsertGroup(context.Background(), domain.CategoryGroup{Slug: "sacs"})
	if !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	if err := svc.UpsertGroup(context.Background(), domain.CategoryGroup{Slug: "sacs", NameFR: "Sacs"}); err != nil {
		t.Fatalf("UpsertGroup: %v", err)
	}
	if len(repo.upsertedGroups) != 1 || repo.upsertedGroups[0].ID == "" {
		t.Fatalf("expected generated id, got %+v", repo.upsertedGroups)
	}
}

func taxonomyWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Taxonomie")
	if err != nil {
		t.Fatalf("AddSheet: %v", err)
	}
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, value := range cells {
			row.AddCell().SetString(value)
		}
	}
	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.Bytes()
}

func TestImportTaxonomy(t *testing.T) {
	workbook := taxonomyWorkbook(t, [][]string{
		{"kind", "id", "group_id", "slug", "name_fr", "name_en", "sort_order"},
		{"group", "g1", "", "maroquinerie", "Maroquinerie", "Leather goods", "1"},
		{"category", "c1", "g1", "sacs", "Sacs", "Bags", "1"},
		{"category", "c2", "", "orphelin", "Orphelin", "", "2"},
		{"mystery", "", "", "", "", "", ""},
	})

	repo := &stubCatalogRepo{}
	svc := newTestCatalogService(t, repo)

	result, err := svc.ImportTaxonomy(context.Background(), workbook, "taxonomie")
	if err != nil {
		t.Fatalf("ImportTaxonomy: %v", err)
	}
	if result.GroupsUpserted != 1 || result.CategoriesUpserted != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.RowsSkipped != 2 {
		t.Fatalf("expected 2 skipped rows (orphan category, unknown kind), got %d", result.RowsSkipped)
	}
}

func TestImportTaxonomy_ReorderedColumns(t *testing.T) {
	workbook := taxonomyWorkbook(t, [][]string{
		{"slug", "Name_FR", "kind", "sort_order", "id", "name_en", "group_id"},
		{"maroquinerie", "Maroquinerie", "group", "3", "g1", "Leather goods", ""},
		{"sacs", "Sacs", "category", "1", "c1", "Bags", "g1"},
	})

	repo := &stubCatalogRepo{}
	svc := newTestCatalogService(t, repo)

	result, err := svc.ImportTaxonomy(context.Background(), workbook, "Taxonomie")
	if err != nil {
		t.Fatalf("ImportTaxonomy: %v", err)
	}
	if result.GroupsUpserted != 1 || result.CategoriesUpserted != 1 || result.RowsSkipped != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(repo.upsertedGroups) != 1 || repo.upsertedGroups[0].Slug != "maroquinerie" || repo.upsertedGroups[0].SortOrder != 3 {
		t.Fatalf("group cells bound to wrong columns: %+v", repo.upsertedGroups)
	}
	if len(repo.upsertedCategories) != 1 || repo.upsertedCategories[0].GroupID != "g1" || repo.upsertedCategories[0].NameFR != "Sacs" {
		t.Fatalf("category cells bound to wrong columns: %+v", repo.upsertedCategories)
	}
}

func TestImportTaxonomy_MissingColumnAborts(t *testing.T) {
	workbook := taxonomyWorkbook(t, [][]string{
		{"kind", "id", "slug", "name_fr", "name_en"},
		{"group", "g1", "maroquinerie", "Maroquinerie", "Leather goods"},
	})

	repo := &stubCatalogRepo{}
	svc := newTestCatalogService(t, repo)

	_, err := svc.ImportTaxonomy(context.Background(), workbook, "Taxonomie")
	if !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if !strings.Contains(err.Error(), "group_id") || !strings.Contains(err.Error(), "sort_order") {
		t.Fatalf("error should name the missing columns: %v", err)
	}
	if len(repo.upsertedGroups) != 0 {
		t.Fatal("no rows should be written when the header is invalid")
	}
}
