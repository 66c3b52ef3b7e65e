// Package domain defines the persistence models for the product catalog
// (categories, products, banners) and verified contacts. These types are
// mapped with GORM and form the core data layer of the application.
package domain

import (
	"time"

	"gorm.io/gorm"

	"github.com/go-catalog-backend/internal/search"
)

// Category groups products for navigation. Categories are managed out of band
// (seed data or an admin process); the public API exposes them read-only.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name: display name, indexed for lookups.
//   - Description: free-form description text.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
//   - Products: child products, cascade-deleted with the category.
type Category struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string         `json:"name"        gorm:"type:varchar(100);not null;index"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`

	Products []Product `json:"products" gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "categories" }

// Product is a single catalog item. A product may belong to a category and
// carry a primary image plus an ordered gallery of additional images.
type Product struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	CategoryID  *string        `json:"category_id" gorm:"type:char(36);index"`
	Type        string         `json:"type"        gorm:"type:varchar(255);not null"`
	Name        string         `json:"name"        gorm:"type:varchar(255);not null;index:idx_product_name"`
	NameFold    string         `json:"-"           gorm:"type:varchar(255);index:idx_product_name_fold"`
	Price       float64        `json:"price"       gorm:"not null"`
	Description string         `json:"description" gorm:"type:text"`
	ImageURL    string         `json:"image"       gorm:"type:varchar(512)"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`

	Images []ProductImage `json:"images" gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// BeforeSave keeps the folded search column in sync with the display name.
func (p *Product) BeforeSave(*gorm.DB) error {
	p.NameFold = search.Fold(p.Name)
	return nil
}

// ProductImage is one gallery image attached to a product. Only the serving
// URL is stored; upload and resizing happen outside this service.
type ProductImage struct {
	ID        string         `json:"-"     gorm:"type:char(36);primaryKey"`
	ProductID string         `json:"-"     gorm:"type:char(36);not null;index"`
	URL       string         `json:"image" gorm:"type:varchar(512);not null"`
	CreatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `json:"-"     gorm:"index"`
}

// TableName returns the database table name for ProductImage.
func (ProductImage) TableName() string { return "product_images" }

// Banner is a promotional slide shown on the storefront landing page.
type Banner struct {
	ID        string         `json:"id"        gorm:"type:char(36);primaryKey"`
	Title     string         `json:"title"     gorm:"type:varchar(255);not null"`
	SubTitle  string         `json:"sub_title" gorm:"type:varchar(255)"`
	ImageURL  string         `json:"image"     gorm:"type:varchar(512)"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `json:"-"         gorm:"index"`
}

// TableName returns the database table name for Banner.
func (Banner) TableName() string { return "banners" }

// Contact is a durable, verified contact-form submission. Rows are created
// exclusively by the email verification flow, so IsVerified is always true
// for rows written by this application; the column exists for compatibility
// with the historical schema. No update or delete path is exposed.
//
// The email column is named "gmail" for historical reasons; it holds any
// email address.
type Contact struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Gmail      string    `json:"gmail"       gorm:"type:varchar(254);not null;index"`
	Username   string    `json:"username"    gorm:"type:varchar(150);not null"`
	Comment    string    `json:"comment"     gorm:"type:text;not null"`
	IsVerified bool      `json:"is_verified" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for Contact.
func (Contact) TableName() string { return "contacts" }
