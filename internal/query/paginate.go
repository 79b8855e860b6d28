package query

// Page is one page of a sequence plus the counters a table footer needs.
type Page[T any] struct {
	Rows       []T
	PageIndex  int // zero-based
	PageSize   int
	TotalRows  int
	TotalPages int // at least 1, even for an empty sequence
}

// Paginate slices items[pageIndex*pageSize : (pageIndex+1)*pageSize].
// An out-of-range or negative pageIndex yields empty Rows. A pageSize
// below 1 violates the precondition and is treated as 1.
func Paginate[T any](items []T, pageIndex, pageSize int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}

	total := len(items)
	page := Page[T]{
		Rows:       []T{},
		PageIndex:  pageIndex,
		PageSize:   pageSize,
		TotalRows:  total,
		TotalPages: TotalPages(total, pageSize),
	}

	// Compare page counts before multiplying so a huge index cannot
	// overflow into a negative offset.
	if pageIndex < 0 || pageIndex >= page.TotalPages {
		return page
	}

	start := pageIndex * pageSize
	if start >= total {
		return page
	}

	end := min(start+pageSize, total)
	page.Rows = items[start:end:end]

	return page
}

// TotalPages returns ceil(totalRows/pageSize), never less than 1.
func TotalPages(totalRows, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}

	pages := (totalRows + pageSize - 1) / pageSize

	return max(pages, 1)
}

// FirstRow is the one-based number of the first row on the page, 0 when
// the page is empty.
func (p Page[T]) FirstRow() int {
	if len(p.Rows) == 0 {
		return 0
	}

	return p.PageIndex*p.PageSize + 1
}

// LastRow is the one-based number of the last row on the page, 0 when the
// page is empty.
func (p Page[T]) LastRow() int {
	if len(p.Rows) == 0 {
		return 0
	}

	return p.PageIndex*p.PageSize + len(p.Rows)
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool { return p.PageIndex < p.TotalPages-1 }

// HasPrev reports whether a page precedes this one.
func (p Page[T]) HasPrev() bool { return p.PageIndex > 0 }

const windowSize = 5

// PageWindow returns the one-based page numbers shown as buttons: up to
// five consecutive pages, centered on currentPage once there are more than
// five, clamped at both ends.
func PageWindow(currentPage, totalPages int) []int {
	if totalPages < 1 {
		totalPages = 1
	}

	start := 1
	if totalPages > windowSize {
		start = min(max(currentPage-2, 1), totalPages-windowSize+1)
	}

	n := min(windowSize, totalPages)
	pages := make([]int, n)

	for i := range pages {
		pages[i] = start + i
	}

	return pages
}
