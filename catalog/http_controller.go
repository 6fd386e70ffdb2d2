package catalog

import (
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController exposes product CRUD as JSON routes.
type HTTPController struct {
	products     Products
	ErrorHandler func(ctx router.Context, err error) error
}

func NewHTTPController(products Products) *HTTPController {
	c := &HTTPController{products: products}
	c.ErrorHandler = c.defaultErrorHandler
	return c
}

// RegisterRoutes wires the product routes. Mutating routes take the guard
// middleware; reads stay public.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar, protected router.MiddlewareFunc) {
	group.Post("", c.Create, protected)
	group.Get("", c.List)
	group.Get("/:id", c.Show)
	group.Delete("/:id", c.Remove, protected)
}

// CreateProductRequest payload
type CreateProductRequest struct {
	Name        string  `form:"name" json:"name"`
	Price       float64 `form:"price" json:"price"`
	Description string  `form:"description" json:"description"`
}

// Validate will run validation rules
func (r CreateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Price, validation.Required, validation.Min(0.0)),
	)
}

func (c *HTTPController) Create(ctx router.Context) error {
	payload := new(CreateProductRequest)

	if err := ctx.Bind(payload); err != nil {
		return c.validationError(ctx, "invalid request body")
	}

	if err := payload.Validate(); err != nil {
		return c.validationError(ctx, err.Error())
	}

	product, err := c.products.Add(ctx.Context(), &Product{
		Name:        payload.Name,
		Price:       payload.Price,
		Description: payload.Description,
	})
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, product)
}

func (c *HTTPController) List(ctx router.Context) error {
	filters, err := filtersFromQuery(ctx)
	if err != nil {
		return c.validationError(ctx, err.Error())
	}

	result, err := c.products.List(ctx.Context(), filters)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, result)
}

func (c *HTTPController) Show(ctx router.Context) error {
	product, err := c.products.GetByID(ctx.Context(), ctx.Param("id"))
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, product)
}

func (c *HTTPController) Remove(ctx router.Context) error {
	deleted, err := c.products.Remove(ctx.Context(), ctx.Param("id"))
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"message":       "Product deleted successfully",
		"deleted_count": deleted,
	})
}

func filtersFromQuery(ctx router.Context) (ListFilters, error) {
	filters := ListFilters{
		Order: ctx.Query("order", ""),
	}

	if v, err := floatQuery(ctx, "min_price"); err != nil {
		return filters, err
	} else {
		filters.MinPrice = v
	}
	if v, err := floatQuery(ctx, "max_price"); err != nil {
		return filters, err
	} else {
		filters.MaxPrice = v
	}
	if v, err := floatQuery(ctx, "price"); err != nil {
		return filters, err
	} else {
		filters.Price = v
	}

	if raw := ctx.Query("page", ""); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return filters, goerrors.New("page must be a positive integer", goerrors.CategoryValidation)
		}
		filters.Page = page
	}

	if raw := ctx.Query("limit", ""); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return filters, goerrors.New("limit must be a positive integer", goerrors.CategoryValidation)
		}
		filters.Limit = limit
	}

	return filters, nil
}

func floatQuery(ctx router.Context, name string) (*float64, error) {
	raw := ctx.Query(name, "")
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, goerrors.New(name+" must be a non-negative number", goerrors.CategoryValidation)
	}

	return &v, nil
}

func (c *HTTPController) validationError(ctx router.Context, detail string) error {
	return ctx.JSON(http.StatusBadRequest, map[string]string{
		"error": detail,
		"code":  "validation_error",
	})
}

func (c *HTTPController) defaultErrorHandler(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	message := richErr.Message
	if richErr.Category == goerrors.CategoryInternal {
		message = "An unexpected server error occurred"
	}

	return ctx.JSON(status, map[string]string{
		"error": message,
		"code":  richErr.TextCode,
	})
}
