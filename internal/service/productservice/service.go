package productservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"showcase/internal/domain"
	apperror "showcase/internal/errors"
	"showcase/internal/pkg/logger"
)

// ProductRepository define o contrato (interface) que este Serviço espera
// da camada de Persistência (DB, Cache).
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)
}

// Service expõe as leituras do catálogo da loja.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// GetProducts lista o catálogo, ordenado por nome, com filtros opcionais de categoria e destaque.
func (s *Service) GetProducts(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return domain.ProductPage{}, apperror.NewValidationError(fmt.Sprintf("Categoria inválida: %s.", filter.Category))
	}
	filter.Page, filter.Limit = domain.NormalizePage(filter.Page, filter.Limit)

	products, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return domain.ProductPage{}, apperror.Classify("Falha ao listar produtos.", err)
	}

	return domain.ProductPage{
		Products:   products,
		Pagination: domain.NewPagination(total, filter.Page, filter.Limit),
	}, nil
}

// GetProductByID busca um produto; IDs fora do formato UUID não existem no catálogo.
func (s *Service) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não foi encontrado.", id))
	}

	product, err := s.repo.FindByID(ctx, parsed.String())
	if err != nil {
		return domain.Product{}, apperror.Classify("Falha ao buscar produto.", err)
	}
	return product, nil
}
