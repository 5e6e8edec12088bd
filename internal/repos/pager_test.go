package repos

import "testing"

func TestNewPageClamps(t *testing.T) {
	cases := []struct {
		page, limit, total int
		want               Page
	}{
		{0, 0, 0, Page{Page: 1, Limit: DefaultLimit, Total: 0, Pages: 1}},
		{3, 10, 25, Page{Page: 3, Limit: 10, Total: 25, Pages: 3}},
		{9, 10, 25, Page{Page: 3, Limit: 10, Total: 25, Pages: 3}},
		{-2, 500, 250, Page{Page: 1, Limit: MaxLimit, Total: 250, Pages: 3}},
	}
	for _, c := range cases {
		got := NewPage(c.page, c.limit, c.total)
		if got != c.want {
			t.Fatalf("NewPage(%d,%d,%d) = %+v, want %+v", c.page, c.limit, c.total, got, c.want)
		}
	}
}

func TestPageNavigation(t *testing.T) {
	p := NewPage(2, 10, 35)
	if p.Offset() != 10 || !p.HasPrev() || !p.HasNext() || p.Prev() != 1 || p.Next() != 3 {
		t.Fatalf("unexpected navigation for %+v", p)
	}
	last := NewPage(4, 10, 35)
	if last.HasNext() {
		t.Fatalf("last page should not have a next page")
	}
}
