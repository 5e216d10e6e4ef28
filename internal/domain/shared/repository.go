package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Repository is the persistence contract every aggregate repository implements.
// FindByID returns (nil, nil) when the aggregate does not exist.
// Delete reports whether a row was actually removed; false is not an error.
type Repository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindAll(ctx context.Context, filter Filter, opts QueryOptions) ([]T, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Exists(ctx context.Context, filter Filter) (bool, error)
	Save(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// Filter represents query criteria.
// Filters holds equality and range criteria keyed by names the concrete
// repository understands. Search is a case-insensitive match over the
// aggregate's searchable fields. ExcludeID drops one aggregate from the result.
type Filter struct {
	Search    string
	Filters   map[string]interface{}
	ExcludeID uuid.UUID
}

// FilterID is the filter key every repository understands for matching the
// aggregate identity.
const FilterID = "id"

// NewFilter returns an empty filter
func NewFilter() Filter {
	return Filter{Filters: make(map[string]interface{})}
}

// With returns a copy of the filter with key set to value
func (f Filter) With(key string, value interface{}) Filter {
	filters := make(map[string]interface{}, len(f.Filters)+1)
	for k, v := range f.Filters {
		filters[k] = v
	}
	filters[key] = value
	f.Filters = filters
	return f
}

// SortField is one ordering key
type SortField struct {
	Field string
	Desc  bool
}

// QueryOptions controls the window and order of FindAll
type QueryOptions struct {
	Skip  int
	Limit int
	Sort  []SortField
}

// ParseSort turns "-name,code" into [{name desc} {code asc}].
// An empty expression yields nil.
func ParseSort(expr string) []SortField {
	var fields []SortField
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := false
		switch part[0] {
		case '-':
			desc = true
			part = part[1:]
		case '+':
			part = part[1:]
		}
		if part == "" {
			continue
		}
		fields = append(fields, SortField{Field: part, Desc: desc})
	}
	return fields
}

// Default list settings
const (
	DefaultPage  = 1
	DefaultLimit = 10
	DefaultSort  = "createdAt"
)

// ListOptions is what services accept for paginated queries
type ListOptions struct {
	Filter Filter
	Page   int
	Limit  int
	Sort   string
}

// Normalize fills in defaults for page, limit and sort
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if strings.TrimSpace(o.Sort) == "" {
		o.Sort = DefaultSort
	}
	if o.Filter.Filters == nil {
		o.Filter.Filters = make(map[string]interface{})
	}
	return o
}

// QueryOptions converts page/limit/sort into repository query options
func (o ListOptions) QueryOptions() QueryOptions {
	return QueryOptions{
		Skip:  (o.Page - 1) * o.Limit,
		Limit: o.Limit,
		Sort:  ParseSort(o.Sort),
	}
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](data []T, total int64, page, limit int) *Paginated[T] {
	totalPages := 0
	if limit > 0 {
		totalPages = int(total) / limit
		if int(total)%limit > 0 {
			totalPages++
		}
	}
	return &Paginated[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
