// Package listing filters and pages program collections in memory.
package listing

import (
	"strings"

	"github.com/zatekoja/trainingportal/internal/domain/entities"
)

// Page is one page of a filtered listing.
//
// Page is never clamped to TotalPages. A page past the end, which happens when
// a search shrinks the result set while the caller stays on a later page,
// yields an empty Items slice.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Page        int   `json:"page"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int   `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	PageButtons []int `json:"pageButtons"`
}

// NormalizeQuery lowercases the search text. Whitespace is part of the query.
func NormalizeQuery(q string) string {
	return strings.ToLower(q)
}

// FilterByArea keeps programs whose training area contains q, ignoring case.
// Only the empty query keeps everything; a blank query still has to match.
func FilterByArea(programs []*entities.TrainingProgram, q string) []*entities.TrainingProgram {
	q = NormalizeQuery(q)
	if q == "" {
		return programs
	}

	filtered := make([]*entities.TrainingProgram, 0, len(programs))
	for _, program := range programs {
		if strings.Contains(strings.ToLower(program.TrainingArea), q) {
			filtered = append(filtered, program)
		}
	}
	return filtered
}

// Paginate slices items into the 1-indexed page. A pageSize of zero or less
// puts everything on a single page. Pages below 1 are treated as 1.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if page < 1 {
		page = 1
	}

	total := len(items)
	if pageSize <= 0 {
		pageSize = 0
	}

	result := Page[T]{
		Items:       []T{},
		Page:        page,
		PageSize:    pageSize,
		TotalItems:  total,
		PageButtons: []int{},
	}

	if pageSize == 0 {
		if total > 0 {
			result.TotalPages = 1
		}
		if page == 1 {
			result.Items = items
		}
		return result
	}

	result.TotalPages = (total + pageSize - 1) / pageSize
	if result.TotalPages > 1 {
		for i := 1; i <= result.TotalPages; i++ {
			result.PageButtons = append(result.PageButtons, i)
		}
	}

	start := (page - 1) * pageSize
	if start >= total {
		return result
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	result.Items = items[start:end]
	return result
}
