package domain

// Pagination - состояние пагинации, принадлежит координатору загрузки.
// Инвариант: 1 <= CurrentPage <= TotalPages.
type Pagination struct {
	CurrentPage int
	TotalPages  int
}

func NewPagination() Pagination {
	return Pagination{CurrentPage: 1, TotalPages: 1}
}

func (p Pagination) HasPrev() bool { return p.CurrentPage > 1 }

func (p Pagination) HasNext() bool { return p.CurrentPage < p.TotalPages }

// Clamp приводит номер страницы в допустимый диапазон.
func (p Pagination) Clamp(page int) int {
	if page > p.TotalPages {
		page = p.TotalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// WithTotal возвращает пагинацию с новым числом страниц (не меньше 1)
// и текущей страницей, прижатой к новому диапазону.
func (p Pagination) WithTotal(total int) Pagination {
	if total < 1 {
		total = 1
	}
	next := Pagination{CurrentPage: p.CurrentPage, TotalPages: total}
	next.CurrentPage = next.Clamp(next.CurrentPage)
	return next
}

// ListingView - снимок состояния страницы списка для отрисовки.
type ListingView struct {
	Query      string
	Filters    SearchFilters
	Pagination Pagination

	// Properties пуст, пока идет загрузка: предыдущий список скрывается.
	Properties []Property
	Loading    bool
	Loaded     bool
	// Error - текст последней ошибки загрузки; предыдущий список при этом сохраняется.
	Error string

	Generation uint64
}

// ShowEmptyState - загрузка завершилась успешно, но объектов нет.
func (v ListingView) ShowEmptyState() bool {
	return v.Loaded && !v.Loading && v.Error == "" && len(v.Properties) == 0
}

// ShowPagination - контролы пагинации показываются только при нескольких страницах.
func (v ListingView) ShowPagination() bool {
	return !v.Loading && v.Pagination.TotalPages > 1
}

// SearchEvent - событие аналитики о смене запроса или фильтров
type SearchEvent struct {
	SessionID string
	Query     string
	Filters   SearchFilters
	Page      int
	Results   int
	Pages     int
}
