package cartrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"showcase/internal/domain"
	"showcase/internal/errors"
	"showcase/internal/pkg/database"
	"showcase/internal/pkg/logger"
)

// CartRepository persiste um carrinho por usuário (carts + cart_items).
type CartRepository struct {
	db        database.Provider
	dbTimeout time.Duration
	logger    logger.Logger
}

// NewCartRepository cria e retorna uma nova instância do Repositório.
func NewCartRepository(db database.Provider, dbTimeout time.Duration, log logger.Logger) *CartRepository {
	return &CartRepository{
		db:        db,
		dbTimeout: dbTimeout,
		logger:    log,
	}
}

// FindByUser carrega o carrinho do usuário com os itens na ordem de inclusão.
// Retorna NotFoundError se o usuário ainda não tem carrinho.
func (r *CartRepository) FindByUser(ctx context.Context, userID string) (domain.Cart, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return domain.Cart{}, errors.NewDBError("Falha ao obter conexão", err)
	}

	cart := domain.Cart{UserID: userID}
	err = db.QueryRowContext(ctxTimeout,
		`SELECT total_amount, last_updated FROM carts WHERE user_id = $1`, userID,
	).Scan(&cart.TotalAmount, &cart.LastUpdated)
	if err == sql.ErrNoRows {
		return domain.Cart{}, errors.NewNotFoundError(fmt.Sprintf("Carrinho do usuário %s não existe.", userID))
	}
	if err != nil {
		return domain.Cart{}, errors.NewDBError("Falha ao buscar carrinho", err)
	}

	rows, err := db.QueryContext(ctxTimeout,
		`SELECT product_id, quantity FROM cart_items WHERE user_id = $1 ORDER BY position ASC`, userID)
	if err != nil {
		return domain.Cart{}, errors.NewDBError("Falha ao buscar itens do carrinho", err)
	}
	defer rows.Close()

	cart.Items = []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return domain.Cart{}, errors.NewDBError("Falha ao ler item do carrinho", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, errors.NewDBError("Falha ao iterar itens do carrinho", err)
	}
	return cart, nil
}

// Save grava o carrinho inteiro (upsert do cabeçalho + substituição dos itens) numa transação.
func (r *CartRepository) Save(ctx context.Context, cart domain.Cart) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return errors.NewDBError("Falha ao obter conexão", err)
	}

	tx, err := db.BeginTx(ctxTimeout, nil)
	if err != nil {
		return errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	const upsertSQL = `INSERT INTO carts (user_id, total_amount, last_updated)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET total_amount = EXCLUDED.total_amount, last_updated = EXCLUDED.last_updated`

	if _, err := tx.ExecContext(ctxTimeout, upsertSQL, cart.UserID, cart.TotalAmount, cart.LastUpdated); err != nil {
		return errors.NewDBError("Falha ao gravar carrinho", err)
	}

	if _, err := tx.ExecContext(ctxTimeout, `DELETE FROM cart_items WHERE user_id = $1`, cart.UserID); err != nil {
		return errors.NewDBError("Falha ao limpar itens do carrinho", err)
	}

	for i, item := range cart.Items {
		_, err := tx.ExecContext(ctxTimeout,
			`INSERT INTO cart_items (user_id, product_id, quantity, position) VALUES ($1, $2, $3, $4)`,
			cart.UserID, item.ProductID, item.Quantity, i,
		)
		if err != nil {
			return errors.NewDBError("Falha ao gravar item do carrinho", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDBError("Falha ao commitar carrinho", err)
	}

	r.logger.Debug("Carrinho gravado.", map[string]interface{}{"user": cart.UserID, "items": len(cart.Items)})
	return nil
}
