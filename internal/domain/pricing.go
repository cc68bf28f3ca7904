package domain

import "github.com/shopspring/decimal"

func init() {
	// Valores monetários saem como números JSON (180.5), não como strings ("180.5").
	decimal.MarshalJSONWithoutQuotes = true
}

var hundred = decimal.NewFromInt(100)

// EffectivePrice aplica o desconto percentual ao preço de catálogo e arredonda para centavos.
// É a única fonte do preço efetivo: o carrinho recalcula o total com ela e o checkout
// captura o preço do item do pedido com ela.
func EffectivePrice(price decimal.Decimal, discount *decimal.Decimal) decimal.Decimal {
	if discount == nil || discount.IsZero() {
		return price.Round(2)
	}
	factor := hundred.Sub(*discount).Div(hundred)
	return price.Mul(factor).Round(2)
}

// LineTotal é o preço efetivo multiplicado pela quantidade.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
