package domain

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Pagination acompanha toda listagem paginada.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// NormalizePage aplica os padrões de paginação: página mínima 1,
// limite padrão 10 e teto de 100 itens.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// Offset converte página/limite em deslocamento SQL.
func Offset(page, limit int) int {
	return (page - 1) * limit
}

// NewPagination calcula o total de páginas (arredondado para cima).
func NewPagination(total, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}
