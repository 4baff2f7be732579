// Package query composes the role-scoped, filtered, paginated resource
// queries shared by the listings, leads and blog endpoints.
package query

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ongelEstate/internal/database"
)

// MaxLimit caps the page size regardless of what the caller asks for.
const MaxLimit = 100

// Result is the pagination envelope returned by every list endpoint.
type Result[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// ClampPage normalizes page/limit: page at least 1, limit in [1, MaxLimit],
// falling back to defaultLimit when limit is absent or nonsense.
func ClampPage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// ResolveSort maps a requested API sort field through the whitelist and
// returns a safe ORDER BY expression. Unknown fields fall back to the
// default; the column name is interpolated, so the whitelist is the only
// thing standing between the query string and the SQL text.
func ResolveSort(sortBy, sortOrder, defaultField string, allowed map[string]string) string {
	column, ok := allowed[sortBy]
	if !ok {
		column = allowed[defaultField]
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, "ASC") {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}

// ForAgent restricts the query to rows assigned to the acting user unless the
// role is admin. This is the one cross-cutting access rule of the back office.
func ForAgent(tx *gorm.DB, role database.Role, userID uuid.UUID) *gorm.DB {
	if role == database.RoleAdmin {
		return tx
	}
	return tx.Where("assigned_agent_id = ?", userID)
}

// TextSearch applies a case-insensitive substring match. LOWER/LIKE rather
// than ILIKE so the same query runs on postgres and the sqlite test database.
func TextSearch(tx *gorm.DB, column, term string) *gorm.DB {
	if strings.TrimSpace(term) == "" {
		return tx
	}
	return tx.Where(fmt.Sprintf("LOWER(%s) LIKE ?", column), "%"+strings.ToLower(term)+"%")
}

// NumericRange applies min/max bounds when present.
func NumericRange(tx *gorm.DB, column string, min, max *float64) *gorm.DB {
	if min != nil {
		tx = tx.Where(fmt.Sprintf("%s >= ?", column), *min)
	}
	if max != nil {
		tx = tx.Where(fmt.Sprintf("%s <= ?", column), *max)
	}
	return tx
}

// Run counts the filtered set, fetches the requested page and fills the
// envelope. tx must already carry every Where condition; orderExpr comes
// from ResolveSort.
func Run[T any](tx *gorm.DB, orderExpr string, page, limit int) (*Result[T], error) {
	base := tx.Session(&gorm.Session{})

	var total int64
	if err := base.Model(new(T)).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}

	rows := make([]T, 0, limit)
	if err := base.
		Order(orderExpr).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &Result[T]{
		Data:       rows,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}
