package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category é a categoria fixa de um produto do catálogo.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryFurniture   Category = "furniture"
	CategoryClothing    Category = "clothing"
	CategoryBooks       Category = "books"
)

// Valid informa se a categoria pertence ao catálogo.
func (c Category) Valid() bool {
	switch c {
	case CategoryElectronics, CategoryFurniture, CategoryClothing, CategoryBooks:
		return true
	}
	return false
}

// Product representa o item do catálogo da loja.
// Só o checkout (baixa de estoque) e o seed alteram produtos.
type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Category    Category         `json:"category"`
	Image       string           `json:"image"`
	Stock       int              `json:"stock"`
	Rating      float64          `json:"rating"`
	ReviewCount int              `json:"reviewCount"`
	Featured    bool             `json:"featured"`
	Discount    *decimal.Decimal `json:"discount,omitempty"` // Percentual, 0–100
	Tags        []string         `json:"tags"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// EffectivePrice devolve o preço com desconto do produto.
func (p Product) EffectivePrice() decimal.Decimal {
	return EffectivePrice(p.Price, p.Discount)
}

// Summary reduz o produto aos campos exibidos no carrinho.
func (p Product) Summary() ProductSummary {
	return ProductSummary{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Discount: p.Discount,
		Stock:    p.Stock,
	}
}

// ProductSummary é a visão reduzida do produto expandida dentro do carrinho.
type ProductSummary struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Price    decimal.Decimal  `json:"price"`
	Image    string           `json:"image"`
	Discount *decimal.Decimal `json:"discount,omitempty"`
	Stock    int              `json:"stock"`
}

// ProductFilter define os parâmetros de busca e paginação do catálogo.
type ProductFilter struct {
	Page     int
	Limit    int
	Category Category
	Featured bool
}

// ProductPage é uma página do catálogo.
type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}
