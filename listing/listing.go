// Package listing builds the paginated, filterable queries behind every
// list endpoint. An entity supplies a Spec; a request supplies a Query.
package listing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultPageSize = 10

var ErrInvalidFilter = errors.New("invalid filter value")

// Spec is the per-entity configuration of a list endpoint.
type Spec struct {
	PageSize int
	// SearchColumns are matched case-insensitively against Query.Search.
	SearchColumns []string
	// Filters maps a query parameter name to the column it must equal.
	Filters  map[string]string
	Order    []clause.OrderByColumn
	Preloads []string
}

// Query is what a single request asks for.
type Query struct {
	Page   int
	Search string
	// Params holds raw filter values keyed by parameter name. Empty
	// values and names missing from Spec.Filters are ignored.
	Params map[string]string
	Scopes []func(*gorm.DB) *gorm.DB
}

// Page is one page of results plus the metadata the client paginates with.
type Page[T any] struct {
	Rows        []T
	CurrentPage int
	TotalPages  int
	TotalRows   int64
}

// ParsePage turns a path segment into a page number, falling back to 1.
func ParsePage(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// TotalPages is ceil(total / size).
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// EscapeLike makes LIKE wildcards in s match literally.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// searchCond is the case-insensitive substring match on col for the given
// dialect. Outside postgres both sides are lowered; SQLite's LOWER folds
// ASCII letters only, so non-ASCII text matches case-sensitively there.
func searchCond(dialect, col string) string {
	if dialect == "postgres" {
		return fmt.Sprintf(`%s ILIKE ? ESCAPE '\'`, col)
	}
	return fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col)
}

// SearchScope matches term as a substring of any of columns, ignoring case.
func SearchScope(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return func(db *gorm.DB) *gorm.DB { return db }
	}
	pattern := "%" + EscapeLike(strings.ToLower(term)) + "%"
	args := make([]interface{}, len(columns))
	for i := range columns {
		args[i] = pattern
	}
	return func(db *gorm.DB) *gorm.DB {
		conds := make([]string, len(columns))
		for i, col := range columns {
			conds[i] = searchCond(db.Dialector.Name(), col)
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

func (s Spec) filterScope(params map[string]string) (func(*gorm.DB) *gorm.DB, error) {
	var exprs []clause.Expression
	for param, column := range s.Filters {
		raw := strings.TrimSpace(params[param])
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidFilter, param, raw)
		}
		exprs = append(exprs, clause.Eq{Column: clause.Column{Name: column}, Value: id})
	}
	return func(db *gorm.DB) *gorm.DB {
		if len(exprs) == 0 {
			return db
		}
		return db.Where(clause.And(exprs...))
	}, nil
}

func (s Spec) pageSize() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return DefaultPageSize
}

// Find runs q against the table of T and returns the requested page.
// Pages past the end come back with no rows.
func Find[T any](ctx context.Context, db *gorm.DB, spec Spec, q Query) (*Page[T], error) {
	filters, err := spec.filterScope(q.Params)
	if err != nil {
		return nil, err
	}
	scopes := append([]func(*gorm.DB) *gorm.DB{}, q.Scopes...)
	scopes = append(scopes, filters, SearchScope(q.Search, spec.SearchColumns...))

	page := q.Page
	if page < 1 {
		page = 1
	}
	size := spec.pageSize()

	var total int64
	if err := db.WithContext(ctx).Model(new(T)).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, err
	}

	result := &Page[T]{
		Rows:        make([]T, 0, size),
		CurrentPage: page,
		TotalPages:  TotalPages(total, size),
		TotalRows:   total,
	}
	// the offset of a page past the end may not fit in an int
	if page > result.TotalPages {
		return result, nil
	}

	tx := db.WithContext(ctx).Model(new(T)).Scopes(scopes...)
	for _, p := range spec.Preloads {
		tx = tx.Preload(p)
	}
	for _, o := range spec.Order {
		tx = tx.Order(o)
	}
	if err := tx.Offset((page - 1) * size).Limit(size).Find(&result.Rows).Error; err != nil {
		return nil, err
	}
	return result, nil
}
