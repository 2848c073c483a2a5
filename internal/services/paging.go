package services

// paginate returns the 1-based page of items and the total count. A limit of
// zero returns everything.
func paginate[T any](items []T, page, limit int) ([]T, int) {
	total := len(items)
	if limit <= 0 {
		return items, total
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * limit
	end := start + limit

	if start >= total {
		return []T{}, total
	}
	if end > total {
		end = total
	}
	return items[start:end], total
}
