// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read-only repository functions for the
// catalog aggregates (categories, products, banners).
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/go-catalog-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ListCategories returns all categories with their products and product
// images preloaded, ordered by creation time descending. It returns an empty
// slice when the catalog is empty.
func ListCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	var out []domain.Category
	err := db.WithContext(ctx).
		Preload("Products", func(tx *gorm.DB) *gorm.DB { return tx.Order("products.created_at desc") }).
		Preload("Products.Images").
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// GetCategory fetches a single category by ID with products and images
// preloaded, or ErrNotFound if it does not exist.
func GetCategory(ctx context.Context, db *gorm.DB, id string) (*domain.Category, error) {
	var c domain.Category
	err := db.WithContext(ctx).
		Preload("Products").
		Preload("Products.Images").
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CountProducts returns the number of products matching the folded search
// term, or all products when the term is empty.
func CountProducts(ctx context.Context, db *gorm.DB, nameFold string) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.Product{})
	if nameFold != "" {
		q = q.Where("name_fold LIKE ?", "%"+nameFold+"%")
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// ListProductsPage returns a paginated slice of products (images preloaded),
// filtered by the folded search term when non-empty, ordered by creation
// time descending. The caller computes offset and limit.
func ListProductsPage(ctx context.Context, db *gorm.DB, nameFold string, offset, limit int) ([]domain.Product, error) {
	q := db.WithContext(ctx).Preload("Images")
	if nameFold != "" {
		q = q.Where("name_fold LIKE ?", "%"+nameFold+"%")
	}
	var out []domain.Product
	err := q.Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetProduct fetches a single product by ID with its images preloaded,
// or ErrNotFound if it does not exist.
func GetProduct(ctx context.Context, db *gorm.DB, id string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Preload("Images").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListBanners returns all banners, oldest first so the storefront slide
// order is stable.
func ListBanners(ctx context.Context, db *gorm.DB) ([]domain.Banner, error) {
	var out []domain.Banner
	err := db.WithContext(ctx).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}
