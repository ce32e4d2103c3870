package model

// Page is the paginated list envelope shared by inbox and admin queries.
type Page[T any] struct {
	Data     []T   `json:"data"`
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

func NewPage[T any](data []T, page, perPage int, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	last := int(total) / perPage
	if int(total)%perPage != 0 || last == 0 {
		last++
	}
	return Page[T]{
		Data:     data,
		Page:     page,
		PerPage:  perPage,
		Total:    total,
		LastPage: last,
	}
}
