// Catalog HTTP handlers.
//
// This file exposes the read-only REST endpoints for the storefront catalog:
//   - GET /categories          (list with products, ETag support)
//   - GET /categories/{id}     (single category)
//   - GET /products            (list, searchable, paginated, ETag support)
//   - GET /products/{id}       (single product)
//   - GET /banners             (landing-page slides)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/go-catalog-backend/internal/domain"
	"github.com/go-catalog-backend/internal/repo"
	"github.com/go-catalog-backend/internal/services"
	"github.com/go-catalog-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// CatalogService defines the read-only catalog operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CatalogService interface {
	// ListCategories returns all categories with products preloaded.
	ListCategories(ctx context.Context) ([]domain.Category, error)
	// GetCategory returns one category or services.ErrCategoryNotFound.
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	// ListProductsPage returns a page of products matching term plus the total.
	ListProductsPage(ctx context.Context, term string, page, pageSize int) ([]domain.Product, int64, error)
	// GetProduct returns one product or services.ErrProductNotFound.
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	// ListBanners returns all banners in slide order.
	ListBanners(ctx context.Context) ([]domain.Banner, error)
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListProductsResponse wraps a page of products and pagination information.
type ListProductsResponse struct {
	Products   []domain.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// catalogDB unwraps the concrete service to reach its DB handle for ETag
// stats queries. Returns nil for stub implementations (tests), which simply
// disables the conditional-response fast path.
func (h *Handlers) catalogDB() *gorm.DB {
	if svc, ok := h.catalogSvc.(*services.CatalogService); ok {
		return svc.DB
	}
	return nil
}

//
// Handlers
//

// ListCategories godoc
// @ID          listCategories
// @Summary     List categories
// @Description Returns all categories with their products and images. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Catalog
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
//
// @Success     200  {array}  domain.Category
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /categories [get]
func (h *Handlers) ListCategories(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if db := h.catalogDB(); db != nil {
		count, maxTS, err := repo.CategoriesStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"categories:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.catalogSvc.ListCategories(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// GetCategory godoc
// @ID          getCategory
// @Summary     Get a category
// @Description Returns a single category with its products and images.
// @Tags        Catalog
// @Produce     json
//
// @Param       id  path  string  true  "Category ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Category
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Category not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /categories/{id} [get]
func (h *Handlers) GetCategory(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "category id must be a UUID")
		return
	}

	cat, err := h.catalogSvc.GetCategory(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "category not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, cat)
}

// ListProducts godoc
// @ID          listProducts
// @Summary     List products (paginated, searchable)
// @Description Returns a page of products, optionally filtered by a case- and accent-insensitive name search. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Catalog
// @Produce     json
//
// @Param       search         query   string  false "Name search term"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object} handlers.ListProductsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /products [get]
func (h *Handlers) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()
	term := strings.TrimSpace(c.Query("search"))
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort). The tag covers the whole products table,
	// so any write invalidates every search variant.
	if db := h.catalogDB(); db != nil {
		count, maxTS, err := repo.ProductsStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"products:%d:%d:%s:%d:%d"`, count, ts, term, page, pageSize)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.catalogSvc.ListProductsPage(ctx, term, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	resp := ListProductsResponse{
		Products: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	}
	ok(c, http.StatusOK, resp)
}

// GetProduct godoc
// @ID          getProduct
// @Summary     Get a product
// @Description Returns a single product with its image gallery.
// @Tags        Catalog
// @Produce     json
//
// @Param       id  path  string  true  "Product ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Product
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Product not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /products/{id} [get]
func (h *Handlers) GetProduct(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "product id must be a UUID")
		return
	}

	p, err := h.catalogSvc.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// ListBanners godoc
// @ID          listBanners
// @Summary     List banners
// @Description Returns all promotional banners in slide order.
// @Tags        Catalog
// @Produce     json
//
// @Success     200  {array}  domain.Banner
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /banners [get]
func (h *Handlers) ListBanners(c *gin.Context) {
	items, err := h.catalogSvc.ListBanners(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}
