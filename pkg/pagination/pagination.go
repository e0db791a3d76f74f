// Package pagination windows an ordered slice into fixed-size pages.
// Invalid input never errors: bad page numbers degrade to a valid page.
package pagination

import "strconv"

// Page is one window over the paginated items plus navigation metadata.
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	TotalItems int
}

func (p Page[T]) HasPrev() bool   { return p.Number > 1 }
func (p Page[T]) HasNext() bool   { return p.Number < p.TotalPages }
func (p Page[T]) PrevNumber() int { return p.Number - 1 }
func (p Page[T]) NextNumber() int { return p.Number + 1 }

// ParseNumber converts a raw page query parameter to a page number.
// Empty, non-numeric or non-positive input falls back to page 1.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate returns the requested page of items. A number past the last page
// clamps to the last page. An empty input yields a single empty page so
// templates always have something to render.
func Paginate[T any](items []T, pageSize, number int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	start := (number - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      items[start:end],
		Number:     number,
		TotalPages: totalPages,
		TotalItems: total,
	}
}
