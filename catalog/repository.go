package catalog

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Products is the catalog repository surface. The embedded generic
// repository is an implementation detail of the concrete type; the methods
// here take path ids and domain filters instead of select criteria.
type Products interface {
	Add(ctx context.Context, record *Product) (*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, filters ListFilters) (*ListResult, error)
	Remove(ctx context.Context, id string) (int, error)
}

type products struct {
	repository.Repository[*Product]
	db *bun.DB
}

var _ Products = (*products)(nil)

func NewProductsRepository(db *bun.DB) Products {
	repo := repository.NewRepository[*Product](db, repository.ModelHandlers[*Product]{
		NewRecord: func() *Product { return &Product{} },
		GetID: func(p *Product) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Product, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &products{
		Repository: repo,
		db:         db,
	}
}

func (r *products) Add(ctx context.Context, record *Product) (*Product, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.Name = strings.TrimSpace(record.Name)

	created, err := r.Repository.Create(ctx, record)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create product")
	}

	return created, nil
}

func (r *products) GetByID(ctx context.Context, id string) (*Product, error) {
	pid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, notFound(id)
	}

	record := &Product{}
	err = r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", pid).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, notFound(id)
		}
		return nil, err
	}

	return record, nil
}

// List applies the price filters, orders by created_at, and pages the
// result. Total is the filtered count, not the page size.
func (r *products) List(ctx context.Context, filters ListFilters) (*ListResult, error) {
	filters.normalize()

	var records []*Product
	q := r.db.NewSelect().
		Model(&records).
		Column("prd.id", "prd.name", "prd.price", "prd.description", "prd.created_at")

	if filters.MinPrice != nil {
		q = q.Where("?TableAlias.price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		q = q.Where("?TableAlias.price <= ?", *filters.MaxPrice)
	}
	if filters.Price != nil {
		q = q.Where("?TableAlias.price = ?", *filters.Price)
	}

	q = q.Order("prd.created_at " + strings.ToUpper(filters.Order)).
		Limit(filters.Limit).
		Offset((filters.Page - 1) * filters.Limit)

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list products")
	}

	totalPages := total / filters.Limit
	if total%filters.Limit != 0 {
		totalPages++
	}

	if records == nil {
		records = []*Product{}
	}

	return &ListResult{
		Data:       records,
		Total:      total,
		Page:       filters.Page,
		Limit:      filters.Limit,
		TotalPages: totalPages,
	}, nil
}

func (r *products) Remove(ctx context.Context, id string) (int, error) {
	pid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return 0, notFound(id)
	}

	res, err := r.db.NewDelete().
		Model((*Product)(nil)).
		Where("?TableAlias.id = ?", pid).
		Exec(ctx)

	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete product")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read delete result")
	}

	if affected == 0 {
		return 0, notFound(id)
	}

	return int(affected), nil
}

func notFound(id string) error {
	return goerrors.New("product not found", goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithTextCode("catalog_product_not_found").
		WithMetadata(map[string]any{"id": id})
}
