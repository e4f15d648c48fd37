package dashboard

// Pager tracks the current page of a paginated collection.
// A non-positive PageSize disables navigation.
type Pager struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// NewPager starts at page 1.
func NewPager(pageSize int) Pager {
	return Pager{Page: 1, PageSize: pageSize}
}

// TotalPages returns ceil(total/PageSize), or 0 when PageSize is not positive.
func (p Pager) TotalPages(total int) int {
	if p.PageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}

// Next advances one page if another page exists. It reports whether the page changed.
func (p *Pager) Next(total int) bool {
	if p.PageSize <= 0 {
		return false
	}
	if p.Page < p.TotalPages(total) {
		p.Page++
		return true
	}
	return false
}

// Prev goes back one page unless already on the first. It reports whether the page changed.
func (p *Pager) Prev() bool {
	if p.PageSize <= 0 {
		return false
	}
	if p.Page > 1 {
		p.Page--
		return true
	}
	return false
}

// Reset returns to the first page.
func (p *Pager) Reset() {
	p.Page = 1
}
