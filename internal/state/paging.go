package state

// PageSizes are the selectable page sizes.
var PageSizes = []int{10, 25, 50, 100}

// DefaultPageSize is used when no valid size is configured.
const DefaultPageSize = 25

// ValidPageSize reports whether size is one of PageSizes.
func ValidPageSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}

// NextPageSize returns the size after current in PageSizes, wrapping around.
func NextPageSize(current int) int {
	for i, s := range PageSizes {
		if s == current {
			return PageSizes[(i+1)%len(PageSizes)]
		}
	}
	return DefaultPageSize
}

// TotalPages returns max(1, ceil(total/size)).
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Page returns the slice [(cursor-1)*size, cursor*size) of view, clamped to
// its bounds. A cursor past the last page yields an empty slice.
func Page[T any](view []T, cursor, size int) []T {
	if size <= 0 || cursor < 1 {
		return nil
	}
	start := (cursor - 1) * size
	if start >= len(view) {
		return nil
	}
	end := start + size
	if end > len(view) {
		end = len(view)
	}
	return view[start:end]
}

// Cursors holds the per-tab page numbers and the shared page size.
// The zero value is not ready for use; call NewCursors.
type Cursors struct {
	size  int
	pages map[Tab]int
}

// NewCursors returns cursors on page 1 with the given size, falling back to
// DefaultPageSize when size is not selectable.
func NewCursors(size int) Cursors {
	if !ValidPageSize(size) {
		size = DefaultPageSize
	}
	return Cursors{size: size, pages: map[Tab]int{TabCatalog: 1, TabGenerated: 1}}
}

// PageSize returns the shared page size.
func (c *Cursors) PageSize() int { return c.size }

// Page returns the current page of tab (always >= 1).
func (c *Cursors) Page(tab Tab) int {
	if p := c.pages[tab]; p >= 1 {
		return p
	}
	return 1
}

// SetPageSize changes the shared size and resets every tab to page 1.
// Unknown sizes are rejected.
func (c *Cursors) SetPageSize(size int) bool {
	if !ValidPageSize(size) {
		return false
	}
	c.size = size
	for _, tab := range Tabs {
		c.pages[tab] = 1
	}
	return true
}

// SetPage moves tab to page, clamped into [1, TotalPages(total, size)].
func (c *Cursors) SetPage(tab Tab, page, total int) {
	c.pages[tab] = clamp(page, 1, TotalPages(total, c.size))
}

// Clamp pulls tab back into range after its list changed size.
func (c *Cursors) Clamp(tab Tab, total int) {
	c.SetPage(tab, c.Page(tab), total)
}

// Reset puts tab on page 1.
func (c *Cursors) Reset(tab Tab) {
	c.pages[tab] = 1
}

// Next advances tab one page, stopping at the last page.
func (c *Cursors) Next(tab Tab, total int) {
	c.SetPage(tab, c.Page(tab)+1, total)
}

// Prev moves tab back one page, stopping at page 1.
func (c *Cursors) Prev(tab Tab, total int) {
	c.SetPage(tab, c.Page(tab)-1, total)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
