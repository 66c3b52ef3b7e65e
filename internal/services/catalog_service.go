// Package services – CatalogService
//
// This file implements the CatalogService, the read-only surface over the
// storefront catalog: categories with their products, paginated and
// searchable products, and promotional banners. Search terms are folded
// (case- and accent-insensitive) before they hit the repository so "Café"
// and "cafe" match the same rows.
//
// Service-level errors (e.g., ErrCategoryNotFound) are returned for
// predictable cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/go-catalog-backend/internal/domain"
	"github.com/go-catalog-backend/internal/repo"
	"github.com/go-catalog-backend/internal/search"
)

// CatalogService provides read-only catalog queries.
type CatalogService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// MaxPageSize caps the page size a client may request. Zero means the
	// default cap of 100.
	MaxPageSize int
}

const defaultMaxPageSize = 100

// NewCatalogService constructs a CatalogService with the default page cap.
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db, MaxPageSize: defaultMaxPageSize}
}

// ListCategories returns every category with its products and images.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return repo.ListCategories(ctx, s.DB)
}

// GetCategory returns one category by ID, or ErrCategoryNotFound.
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	c, err := repo.GetCategory(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListProductsPage returns a page of products matching the search term
// (all products when the term is blank) plus the total match count.
// It applies defaults for invalid page/pageSize and clamps pageSize to the
// configured cap.
func (s *CatalogService) ListProductsPage(ctx context.Context, term string, page, pageSize int) ([]domain.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if max := s.maxPageSize(); pageSize > max {
		pageSize = max
	}
	offset := (page - 1) * pageSize

	fold := search.Fold(term)

	total, err := repo.CountProducts(ctx, s.DB, fold)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Product{}, 0, nil
	}

	items, err := repo.ListProductsPage(ctx, s.DB, fold, offset, pageSize)
	return items, total, err
}

// GetProduct returns one product by ID, or ErrProductNotFound.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := repo.GetProduct(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListBanners returns all banners in slide order.
func (s *CatalogService) ListBanners(ctx context.Context) ([]domain.Banner, error) {
	return repo.ListBanners(ctx, s.DB)
}

func (s *CatalogService) maxPageSize() int {
	if s.MaxPageSize > 0 {
		return s.MaxPageSize
	}
	return defaultMaxPageSize
}
