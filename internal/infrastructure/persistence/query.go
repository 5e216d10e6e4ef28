package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/spf13/cast"
	"gorm.io/gorm"
)

const likeEscape = `\`

// filterFunc applies one filter key to a query
type filterFunc func(db *gorm.DB, value any) (*gorm.DB, error)

// filterSpec describes how a repository turns a shared.Filter into SQL
type filterSpec struct {
	searchColumns []string
	// searchTags adds tag membership to the search match
	searchTags bool
	filters    map[string]filterFunc
}

func (s filterSpec) apply(db *gorm.DB, filter shared.Filter) (*gorm.DB, error) {
	if q := strings.TrimSpace(filter.Search); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		conds := make([]string, 0, len(s.searchColumns)+1)
		args := make([]any, 0, len(s.searchColumns)+1)
		for _, column := range s.searchColumns {
			conds = append(conds, "LOWER("+column+") LIKE ? ESCAPE '"+likeEscape+"'")
			args = append(args, pattern)
		}
		if s.searchTags {
			conds = append(conds, anyTag(db, "LOWER(t.value) LIKE ? ESCAPE '"+likeEscape+"'"))
			args = append(args, pattern)
		}
		db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	if filter.ExcludeID != uuid.Nil {
		db = db.Where("id <> ?", filter.ExcludeID)
	}

	for key, value := range filter.Filters {
		if value == nil {
			continue
		}
		fn, ok := s.filters[key]
		if !ok {
			return nil, fmt.Errorf("%w: unsupported filter %q", shared.ErrInvalidInput, key)
		}
		var err error
		if db, err = fn(db, value); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(s)
}

// equals matches column against the string form of the value
func equals(column string) filterFunc {
	return func(db *gorm.DB, value any) (*gorm.DB, error) {
		s, err := cast.ToStringE(value)
		if err != nil {
			s = fmt.Sprint(value)
		}
		return db.Where(column+" = ?", s), nil
	}
}

// equalsFold matches column case-insensitively
func equalsFold(column string) filterFunc {
	return func(db *gorm.DB, value any) (*gorm.DB, error) {
		return db.Where("LOWER("+column+") = ?", strings.ToLower(fmt.Sprint(value))), nil
	}
}

// equalsID matches a uuid column; value may be a uuid.UUID or its string form
func equalsID(column string) filterFunc {
	return func(db *gorm.DB, value any) (*gorm.DB, error) {
		id, err := toUUID(value)
		if err != nil {
			return nil, err
		}
		return db.Where(column+" = ?", id), nil
	}
}

// timeBound matches column against an inclusive lower or upper bound
func timeBound(column, op string) filterFunc {
	return func(db *gorm.DB, value any) (*gorm.DB, error) {
		t, err := cast.ToTimeE(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s bound: %v", shared.ErrInvalidInput, column, err)
		}
		if t.IsZero() {
			return db, nil
		}
		return db.Where(column+" "+op+" ?", t.UTC()), nil
	}
}

// hasTag matches rows holding the tag, ignoring case
func hasTag(db *gorm.DB, value any) (*gorm.DB, error) {
	tag := strings.ToLower(strings.TrimSpace(fmt.Sprint(value)))
	return db.Where(anyTag(db, "LOWER(t.value) = ?"), tag), nil
}

// anyTag wraps cond, written against t.value, in an EXISTS over the
// elements of the JSON tags column so patterns never see the array syntax
func anyTag(db *gorm.DB, cond string) string {
	elements := "json_array_elements_text(tags::json) AS t(value)"
	if db.Dialector != nil && db.Dialector.Name() == "sqlite" {
		elements = "json_each(tags) AS t"
	}
	return "EXISTS (SELECT 1 FROM " + elements + " WHERE " + cond + ")"
}

func toUUID(value any) (uuid.UUID, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, nil
	case *uuid.UUID:
		if v == nil {
			return uuid.Nil, nil
		}
		return *v, nil
	default:
		id, err := uuid.Parse(fmt.Sprint(value))
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: invalid id %v", shared.ErrInvalidInput, value)
		}
		return id, nil
	}
}

func applyQueryOptions(db *gorm.DB, opts shared.QueryOptions, columns SortColumns) *gorm.DB {
	db = db.Clauses(columns.OrderBy(opts.Sort))
	if opts.Skip > 0 {
		db = db.Offset(opts.Skip)
	}
	if opts.Limit > 0 {
		db = db.Limit(opts.Limit)
	}
	return db
}

// translateError maps storage errors onto the shared domain errors
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", shared.ErrAlreadyExists, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
