package repoutil

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/db"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps page to >= 1 and limit to [1, MaxLimit], defaulting limit to DefaultLimit.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

// TotalPages is ceil(total/limit).
func (p Page) TotalPages(total int64) int {
	p = p.Normalize()
	if total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// Paginate counts q and then loads the requested window into dest.
func Paginate(q *gorm.DB, p Page, order string, dest any) (int64, error) {
	p = p.Normalize()
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	find := q.Session(&gorm.Session{})
	if order != "" {
		find = find.Order(order)
	}
	if err := find.Offset(p.Offset()).Limit(p.Limit).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// LikePattern escapes LIKE wildcards and wraps term for a case-insensitive substring match.
func LikePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(strings.TrimSpace(term))) + "%"
}

// ContainsFold ORs a LOWER(col) LIKE match over cols. Blank terms leave q untouched.
func ContainsFold(q *gorm.DB, term string, cols ...string) *gorm.DB {
	if strings.TrimSpace(term) == "" || len(cols) == 0 {
		return q
	}
	pattern := LikePattern(term)
	clauses := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, c := range cols {
		clauses = append(clauses, "LOWER("+c+`) LIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}
	return q.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

func Use(tx, fallback *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return fallback
}

// GetByID loads one row of T or returns an apierr.ErrNotFound-wrapped error.
func GetByID[T any](ctx context.Context, transaction *gorm.DB, id uuid.UUID) (*T, error) {
	var row T
	if err := transaction.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return &row, nil
}

// UpdateFields applies column updates to the row with id; zero matched rows is not-found.
func UpdateFields[T any](ctx context.Context, transaction *gorm.DB, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	var model T
	res := transaction.WithContext(ctx).Model(&model).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return db.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return db.TranslateError(gorm.ErrRecordNotFound)
	}
	return nil
}

func DeleteByID[T any](ctx context.Context, transaction *gorm.DB, id uuid.UUID) error {
	var model T
	res := transaction.WithContext(ctx).Where("id = ?", id).Delete(&model)
	if res.Error != nil {
		return db.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return db.TranslateError(gorm.ErrRecordNotFound)
	}
	return nil
}

// CountBy groups rows of model by col and returns value -> count.
func CountBy(ctx context.Context, transaction *gorm.DB, model any, col string) (map[string]int64, error) {
	type row struct {
		GrpKey   string
		GrpCount int64
	}
	var rows []row
	if err := transaction.WithContext(ctx).Model(model).
		Select(col + " AS grp_key, COUNT(*) AS grp_count").
		Group(col).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.GrpKey] = r.GrpCount
	}
	return out, nil
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func (p Page) Result(total int64) Pagination {
	n := p.Normalize()
	return Pagination{Page: n.Page, Limit: n.Limit, Total: total, TotalPages: p.TotalPages(total)}
}
