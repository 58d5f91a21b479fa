package repositories

import "gorm.io/gorm"

// Page is one slice of an ordered result set. Page numbers start at 1.
type Page[T any] struct {
	Items   []T
	Page    int
	PerPage int
	Total   int64
	HasNext bool
	HasPrev bool
	NextNum int
	PrevNum int
}

// NewPage fills in the navigation fields from the total count.
func NewPage[T any](items []T, page, perPage int, total int64) *Page[T] {
	p := &Page[T]{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		HasNext: int64(page) < lastPage(total, perPage),
		HasPrev: page > 1,
	}
	if p.HasNext {
		p.NextNum = page + 1
	}
	if p.HasPrev {
		p.PrevNum = page - 1
	}
	return p
}

// lastPage is the number of the final non-empty page, 0 when total is 0.
func lastPage(total int64, perPage int) int64 {
	if perPage < 1 {
		return 0
	}
	return (total + int64(perPage) - 1) / int64(perPage)
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	return page, perPage
}

// paginate counts the rows matched by query and loads the requested page.
// Pages past the end come back empty.
func paginate[T any](query *gorm.DB, order string, page, perPage int, preload ...string) (*Page[T], error) {
	page, perPage = normalizePage(page, perPage)
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]T, 0, perPage)
	if int64(page) <= lastPage(total, perPage) {
		// page-1 < lastPage, so the offset is below total and fits in an int
		find := query.Order(order).Offset((page - 1) * perPage).Limit(perPage)
		for _, assoc := range preload {
			find = find.Preload(assoc)
		}
		if err := find.Find(&items).Error; err != nil {
			return nil, err
		}
	}

	return NewPage(items, page, perPage, total), nil
}
