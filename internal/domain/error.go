package domain

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
// @Description Estrutura padronizada para respostas de erro na API.
type ErrorResponse struct {
	Error    string `json:"error" example:"Regra de negócio violada: Estoque insuficiente para Modern Leather Sofa."`
	Code     int    `json:"code" example:"400"`
	Category string `json:"category" example:"INSUFFICIENT_STOCK"`
}
