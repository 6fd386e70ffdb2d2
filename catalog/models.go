// Package catalog is the thin product CRUD layer fronted by the auth guard.
// It owns no security logic: create and delete are protected by whatever
// middleware the caller registers, list and get are public.
package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Product is the catalog entity
type Product struct {
	bun.BaseModel `bun:"table:products,alias:prd"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Price         float64    `bun:"price,notnull" json:"price"`
	Description   string     `bun:"description" json:"description,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// ListFilters narrows and pages the product listing.
type ListFilters struct {
	MinPrice *float64
	MaxPrice *float64
	Price    *float64
	Order    string // "asc" or "desc" by created_at, default desc
	Page     int    // 1-based
	Limit    int
}

// DefaultLimit caps unpaginated listings
const DefaultLimit = 10

func (f *ListFilters) normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Order != "asc" {
		f.Order = "desc"
	}
}

// ListResult is a single page of products plus paging metadata.
type ListResult struct {
	Data       []*Product `json:"data"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}
