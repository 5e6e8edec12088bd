package repos

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page describes one page of a filtered list.
type Page struct {
	Page  int
	Limit int
	Total int
	Pages int
}

// NewPage clamps the requested page into [1, pages] for total rows.
func NewPage(page, limit, total int) Page {
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	return Page{Page: page, Limit: limit, Total: total, Pages: pages}
}

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

func (p Page) HasPrev() bool { return p.Page > 1 }
func (p Page) HasNext() bool { return p.Page < p.Pages }
func (p Page) Prev() int     { return p.Page - 1 }
func (p Page) Next() int     { return p.Page + 1 }

// Filter carries the list query parameters shared by the index pages.
type Filter struct {
	Q               string
	StoreID         int64
	StoreQ          string
	EquipmentQ      string
	CategoryID      int64
	IncludeArchived bool
	Page            int
	Limit           int
}

func like(s string) string { return "%" + s + "%" }
