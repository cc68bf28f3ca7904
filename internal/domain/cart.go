package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart é o carrinho ativo de um usuário (um por usuário).
// TotalAmount é derivado no servidor a cada mutação; nunca vem do cliente.
type Cart struct {
	UserID      string          `json:"user"`
	Items       []CartItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// CartItem referencia um produto do catálogo; Quantity >= 1.
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// ProductIDs lista os produtos referenciados pelo carrinho.
func (c Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// SetItem troca a quantidade do item (sem somar) ou o acrescenta ao carrinho.
func (c *Cart) SetItem(productID string, quantity int) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return
		}
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: quantity})
}

// RemoveItem filtra o produto da lista de itens.
func (c *Cart) RemoveItem(productID string) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
}

// Clear esvazia o carrinho sem removê-lo.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.TotalAmount = decimal.Zero
}

// CartTotal soma preço efetivo × quantidade dos itens cujo produto ainda existe.
// Itens sem produto correspondente ficam fora da soma.
func CartTotal(items []CartItem, products map[string]Product) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		p, ok := products[item.ProductID]
		if !ok {
			continue
		}
		total = total.Add(LineTotal(p.EffectivePrice(), item.Quantity))
	}
	return total
}

// CartView é o carrinho devolvido pela API, com itens expandidos.
type CartView struct {
	User        string          `json:"user"`
	Items       []CartItemView  `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	LastUpdated *time.Time      `json:"lastUpdated,omitempty"`
}

// CartItemView traz o resumo atual do produto; Product é nulo se o produto sumiu do catálogo.
type CartItemView struct {
	Product   *ProductSummary `json:"product"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
}

// EmptyCartView é o valor devolvido quando o usuário ainda não tem carrinho.
func EmptyCartView(user string) CartView {
	return CartView{User: user, Items: []CartItemView{}, TotalAmount: decimal.Zero}
}

// CartItemRequest é o payload de POST /v1/cart.
type CartItemRequest struct {
	User      string `json:"user"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
