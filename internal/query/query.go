// Package query builds the filtered, ordered and paginated list queries shared
// by every list endpoint, together with the grouped counts and averages that
// feed their summary blocks. Every helper applies the same filter predicate so
// totals and aggregates describe the same row set as the page.
//
// Column names passed to a Spec are trusted identifiers chosen by the caller,
// never request input; filter values are always bound as parameters.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Spec accumulates the conditions of one list query. Conditions combine with
// AND. A zero Spec matches every row.
type Spec struct {
	conditions []clause.Expression
	order      []string
	preloads   []string
}

// New returns an empty Spec
func New() *Spec {
	return &Spec{}
}

// Where adds an arbitrary condition
func (s *Spec) Where(expr clause.Expression) *Spec {
	s.conditions = append(s.conditions, expr)
	return s
}

// Eq adds column = value when value is not empty
func (s *Spec) Eq(column, value string) *Spec {
	if strings.TrimSpace(value) == "" {
		return s
	}
	return s.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
}

// AtMost adds column <= value when value is set
func (s *Spec) AtMost(column string, value *int) *Spec {
	if value == nil {
		return s
	}
	return s.Where(clause.Lte{Column: clause.Column{Name: column}, Value: *value})
}

// AtLeast adds column >= value when value is set
func (s *Spec) AtLeast(column string, value *int) *Spec {
	if value == nil {
		return s
	}
	return s.Where(clause.Gte{Column: clause.Column{Name: column}, Value: *value})
}

// Search adds a case-insensitive substring match of term against any of the
// columns. Blank terms add nothing.
func (s *Spec) Search(term string, columns ...string) *Spec {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return s
	}

	pattern := "%" + EscapeLike(strings.ToLower(term)) + "%"
	exprs := make([]clause.Expression, 0, len(columns))
	for _, col := range columns {
		exprs = append(exprs, clause.Expr{
			SQL:  `LOWER(?) LIKE ? ESCAPE '\'`,
			Vars: []interface{}{clause.Column{Name: col}, pattern},
		})
	}
	return s.Where(clause.Or(exprs...))
}

// OrderBy appends ORDER BY fragments in precedence order
func (s *Spec) OrderBy(fragments ...string) *Spec {
	s.order = append(s.order, fragments...)
	return s
}

// Preload eager-loads associations on the page query only
func (s *Spec) Preload(associations ...string) *Spec {
	s.preloads = append(s.preloads, associations...)
	return s
}

// Apply adds the filter predicate to db, without ordering or paging
func (s *Spec) Apply(db *gorm.DB) *gorm.DB {
	for _, c := range s.conditions {
		db = db.Where(c)
	}
	return db
}

// Conditions returns the number of conditions on the Spec
func (s *Spec) Conditions() int {
	return len(s.conditions)
}

// RankCase builds an ORDER BY fragment ranking column values by the position
// of ranked, first entry highest. Unlisted values sort last.
func RankCase(column string, ranked ...string) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(column)
	for i, v := range ranked {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", strings.ReplaceAll(v, "'", "''"), len(ranked)-i)
	}
	b.WriteString(" ELSE 0 END DESC")
	return b.String()
}

// EscapeLike escapes LIKE wildcards so the term matches literally
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Result is one page of rows plus the total over the whole filter
type Result[T any] struct {
	Items []T
	Total int64
}

// List counts the rows matching spec and loads the requested page. Count and
// page are separate statements, so a concurrent write between them can make
// the total disagree with the page.
func List[T any](ctx context.Context, db *gorm.DB, spec *Spec, offset, limit int) (Result[T], error) {
	var res Result[T]
	if spec == nil {
		spec = New()
	}

	if err := spec.Apply(db.WithContext(ctx).Model(new(T))).Count(&res.Total).Error; err != nil {
		return res, fmt.Errorf("count rows: %w", err)
	}

	q := spec.Apply(db.WithContext(ctx).Model(new(T)))
	for _, o := range spec.order {
		q = q.Order(o)
	}
	for _, p := range spec.preloads {
		q = q.Preload(p)
	}

	res.Items = make([]T, 0, limit)
	if err := q.Offset(offset).Limit(limit).Find(&res.Items).Error; err != nil {
		return res, fmt.Errorf("load page: %w", err)
	}
	return res, nil
}

// GroupCount is one bucket of a grouped count
type GroupCount struct {
	Value string `gorm:"column:group_value"`
	Count int64  `gorm:"column:group_count"`
}

// CountBy groups the rows matching spec by column and counts each group.
// Groups are returned in ascending value order.
func CountBy[T any](ctx context.Context, db *gorm.DB, spec *Spec, column string) ([]GroupCount, error) {
	if spec == nil {
		spec = New()
	}
	var rows []GroupCount
	err := spec.Apply(db.WithContext(ctx).Model(new(T))).
		Select(column + " AS group_value, COUNT(*) AS group_count").
		Group(column).
		Order(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count by %s: %w", column, err)
	}
	return rows, nil
}

// Avg averages column over the rows matching spec. It returns nil when no
// row contributes.
func Avg[T any](ctx context.Context, db *gorm.DB, spec *Spec, column string) (*float64, error) {
	return aggregate[T](ctx, db, spec, "AVG", column)
}

// Sum totals column over the rows matching spec. It returns nil when no row
// contributes.
func Sum[T any](ctx context.Context, db *gorm.DB, spec *Spec, column string) (*float64, error) {
	return aggregate[T](ctx, db, spec, "SUM", column)
}

func aggregate[T any](ctx context.Context, db *gorm.DB, spec *Spec, fn, column string) (*float64, error) {
	if spec == nil {
		spec = New()
	}
	var out struct {
		Value sql.NullFloat64 `gorm:"column:agg_value"`
	}
	err := spec.Apply(db.WithContext(ctx).Model(new(T))).
		Select(fn + "(" + column + ") AS agg_value").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("%s(%s): %w", strings.ToLower(fn), column, err)
	}
	if !out.Value.Valid {
		return nil, nil
	}
	v := out.Value.Float64
	return &v, nil
}
