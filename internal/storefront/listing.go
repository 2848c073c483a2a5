package storefront

import (
	"cmp"
	"slices"
	"strings"
)

// Field reads one sortable or searchable column of a row.
type Field[T any] func(T) string

// ListView is the admin table pipeline over an already fetched slice:
// search, status filter, sort, paginate. It never talks to the API.
type ListView[T any] struct {
	// Search returns the text the query is matched against.
	Search Field[T]
	// Status returns the value compared with the status filter.
	Status Field[T]
	// Sorts maps a sort key to a comparison.
	Sorts map[string]func(a, b T) int
}

type ListQuery struct {
	Search string
	Status string
	SortBy string
	Desc   bool
	Page   int
	Limit  int
}

type ListResult[T any] struct {
	Items      []T
	Total      int
	Page       int
	TotalPages int
}

// Apply runs the query. Filtering is case-insensitive substring match on
// Search and exact match on Status; an unknown sort key keeps input order.
// Page defaults to 1, Limit to 10.
func (v ListView[T]) Apply(rows []T, q ListQuery) ListResult[T] {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	filtered := make([]T, 0, len(rows))
	for _, r := range rows {
		if needle != "" && v.Search != nil && !strings.Contains(strings.ToLower(v.Search(r)), needle) {
			continue
		}
		if q.Status != "" && v.Status != nil && v.Status(r) != q.Status {
			continue
		}
		filtered = append(filtered, r)
	}

	if less, ok := v.Sorts[q.SortBy]; ok {
		slices.SortStableFunc(filtered, func(a, b T) int {
			if q.Desc {
				return less(b, a)
			}
			return less(a, b)
		})
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	total := len(filtered)
	pages := (total + limit - 1) / limit
	page := max(q.Page, 1)

	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	return ListResult[T]{
		Items:      filtered[start:end],
		Total:      total,
		Page:       page,
		TotalPages: pages,
	}
}

// ByString orders rows by a text column.
func ByString[T any](f func(T) string) func(a, b T) int {
	return func(a, b T) int { return strings.Compare(strings.ToLower(f(a)), strings.ToLower(f(b))) }
}

// By orders rows by any ordered column.
func By[T any, K cmp.Ordered](f func(T) K) func(a, b T) int {
	return func(a, b T) int { return cmp.Compare(f(a), f(b)) }
}
