package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/go-catalog-backend/internal/domain"
)

func TestCatalogService_ListCategories_EmptyAndOrdered(t *testing.T) {
	db := newContactDB(t, &domain.Category{}, &domain.Product{}, &domain.ProductImage{})
	s := NewCatalogService(db)

	out, err := s.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(out))
	}

	now := time.Now().UTC()
	older := domain.Category{ID: uuid.NewString(), Name: "Plants", CreatedAt: now}
	newer := domain.Category{ID: uuid.NewString(), Name: "Pots", CreatedAt: now.Add(time.Second)}
	for _, c := range []domain.Category{older, newer} {
		c := c
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("seed category: %v", err)
		}
	}
	p := domain.Product{ID: uuid.NewString(), CategoryID: &older.ID, Name: "Monstera", Price: 25}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	out, err = s.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories error: %v", err)
	}
	if len(out) != 2 || out[0].Name != "Pots" {
		t.Fatalf("expected newest-first categories, got %#v", out)
	}
	if len(out[1].Products) != 1 || out[1].Products[0].Name != "Monstera" {
		t.Fatalf("expected preloaded products, got %#v", out[1].Products)
	}
}

func TestCatalogService_GetCategory_NotFound(t *testing.T) {
	db := newContactDB(t, &domain.Category{}, &domain.Product{}, &domain.ProductImage{})
	s := NewCatalogService(db)

	if _, err := s.GetCategory(context.Background(), uuid.NewString()); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}

	c := domain.Category{ID: uuid.NewString(), Name: "Plants"}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := s.GetCategory(context.Background(), c.ID)
	if err != nil || got.Name != "Plants" {
		t.Fatalf("GetCategory: got %#v err %v", got, err)
	}
}

func TestCatalogService_ListProductsPage_SearchFoldsAccentsAndCase(t *testing.T) {
	db := newContactDB(t, &domain.Product{}, &domain.ProductImage{})
	s := NewCatalogService(db)

	names := []string{"Café Table", "Garden Chair", "CAFE Chair"}
	for _, n := range names {
		p := domain.Product{ID: uuid.NewString(), Name: n, Price: 10}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed %q: %v", n, err)
		}
	}

	// "café" matches both the accented and the unaccented names.
	items, total, err := s.ListProductsPage(context.Background(), "café", 1, 10)
	if err != nil {
		t.Fatalf("ListProductsPage error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 matches, got total=%d len=%d", total, len(items))
	}

	// Blank term returns everything.
	_, total, err = s.ListProductsPage(context.Background(), "  ", 1, 10)
	if err != nil || total != 3 {
		t.Fatalf("blank term: total=%d err=%v", total, err)
	}

	// No matches: empty page, zero total.
	items, total, err = s.ListProductsPage(context.Background(), "zzz", 1, 10)
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("no-match: total=%d len=%d err=%v", total, len(items), err)
	}
}

func TestCatalogService_ListProductsPage_PaginationDefaultsAndClamp(t *testing.T) {
	db := newContactDB(t, &domain.Product{}, &domain.ProductImage{})
	s := NewCatalogService(db)
	s.MaxPageSize = 2

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		p := domain.Product{
			ID:        uuid.NewString(),
			Name:      "Item",
			Price:     1,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	// Invalid page/pageSize fall back to defaults, then clamp to MaxPageSize.
	items, total, err := s.ListProductsPage(context.Background(), "", -1, 999)
	if err != nil {
		t.Fatalf("ListProductsPage error: %v", err)
	}
	if total != 5 || len(items) != 2 {
		t.Fatalf("expected clamped page of 2 of 5, got total=%d len=%d", total, len(items))
	}

	// Page past the end is empty but total still reported.
	items, total, err = s.ListProductsPage(context.Background(), "", 99, 2)
	if err != nil || total != 5 || len(items) != 0 {
		t.Fatalf("past-end page: total=%d len=%d err=%v", total, len(items), err)
	}
}

func TestCatalogService_GetProduct_PreloadsImages(t *testing.T) {
	db := newContactDB(t, &domain.Product{}, &domain.ProductImage{})
	s := NewCatalogService(db)

	if _, err := s.GetProduct(context.Background(), uuid.NewString()); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	p := domain.Product{ID: uuid.NewString(), Name: "Monstera", Price: 25}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	img := domain.ProductImage{ID: uuid.NewString(), ProductID: p.ID, URL: "https://cdn.example.com/m.jpg"}
	if err := db.Create(&img).Error; err != nil {
		t.Fatalf("seed image: %v", err)
	}

	got, err := s.GetProduct(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetProduct error: %v", err)
	}
	if len(got.Images) != 1 || got.Images[0].URL != img.URL {
		t.Fatalf("expected preloaded image, got %#v", got.Images)
	}
}

func TestCatalogService_ListBanners_SlideOrder(t *testing.T) {
	db := newContactDB(t, &domain.Banner{})
	s := NewCatalogService(db)

	now := time.Now().UTC()
	first := domain.Banner{ID: uuid.NewString(), Title: "Spring Sale", CreatedAt: now}
	second := domain.Banner{ID: uuid.NewString(), Title: "New Arrivals", CreatedAt: now.Add(time.Second)}
	for _, b := range []domain.Banner{second, first} {
		b := b
		if err := db.Create(&b).Error; err != nil {
			t.Fatalf("seed banner: %v", err)
		}
	}

	out, err := s.ListBanners(context.Background())
	if err != nil {
		t.Fatalf("ListBanners error: %v", err)
	}
	if len(out) != 2 || out[0].Title != "Spring Sale" {
		t.Fatalf("expected oldest-first banners, got %#v", out)
	}
}
