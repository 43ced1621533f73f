package catalog

import (
	"sort"
	"strings"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// paginate returns the window of items following page.After. Items are
// ordered by (name, id) and the id of the last item is the cursor. A cursor
// naming no item yields an empty last page.
func paginate[T any](items []T, name, id func(T) string, page PageRequest) Page[T] {
	sort.SliceStable(items, func(i, j int) bool {
		ni, nj := strings.ToLower(name(items[i])), strings.ToLower(name(items[j]))
		if ni == nj {
			return id(items[i]) < id(items[j])
		}
		return ni < nj
	})

	start := 0
	if page.After != "" {
		start = -1
		for i, item := range items {
			if id(item) == page.After {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return Page[T]{Items: []T{}}
		}
	}

	size := page.First
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	end := start + size
	if end > len(items) {
		end = len(items)
	}
	out := Page[T]{Items: append([]T{}, items[start:end]...)}
	if end > start {
		out.EndCursor = id(items[end-1])
	}
	out.HasNextPage = end < len(items)
	return out
}

func matches(name, query string) bool {
	query = strings.TrimSpace(query)
	return query == "" || strings.Contains(strings.ToLower(name), strings.ToLower(query))
}
