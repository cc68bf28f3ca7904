package orderrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"showcase/internal/domain"
	"showcase/internal/errors"
	"showcase/internal/pkg/database"
	"showcase/internal/pkg/logger"
	"showcase/internal/repository/productrepo"
)

const orderColumns = `id, user_id, total_amount, street, city, state, country, zip_code,
	payment_method, status, payment_status, tracking_number, estimated_delivery, created_at, updated_at`

// OrderRepository persiste pedidos e executa o checkout transacional.
type OrderRepository struct {
	db        database.Provider
	dbTimeout time.Duration
	logger    logger.Logger
}

// NewOrderRepository cria e retorna uma nova instância do Repositório.
func NewOrderRepository(db database.Provider, dbTimeout time.Duration, log logger.Logger) *OrderRepository {
	return &OrderRepository{
		db:        db,
		dbTimeout: dbTimeout,
		logger:    log,
	}
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Checkout converte o carrinho do usuário em pedido numa única transação:
// trava carrinho e produtos (em ordem de ID), chama draft, baixa o estoque com
// guarda stock >= quantidade, grava o pedido e esvazia o carrinho.
// Qualquer falha desfaz tudo.
func (r *OrderRepository) Checkout(ctx context.Context, userID string, draft domain.CheckoutDraft) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return domain.Order{}, errors.NewDBError("Falha ao obter conexão", err)
	}

	tx, err := db.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Order{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	lines, err := r.lockCart(ctxTimeout, tx, userID)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := draft(lines)
	if err != nil {
		return domain.Order{}, err
	}
	if len(order.Items) == 0 {
		return domain.Order{}, errors.NewBusinessRuleError(errors.RuleEmptyCart, "O carrinho está vazio.")
	}

	for _, item := range order.Items {
		res, err := tx.ExecContext(ctxTimeout,
			`UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1`,
			item.Quantity, item.ProductID,
		)
		if err != nil {
			return domain.Order{}, errors.NewDBError("Falha ao baixar estoque", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return domain.Order{}, errors.NewDBError("Falha ao verificar baixa de estoque", err)
		}
		if affected == 0 {
			return domain.Order{}, errors.NewInsufficientStockError(item.ProductName)
		}
	}

	if err := insertOrder(ctxTimeout, tx, order); err != nil {
		return domain.Order{}, err
	}

	if _, err := tx.ExecContext(ctxTimeout, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return domain.Order{}, errors.NewDBError("Falha ao esvaziar carrinho", err)
	}
	if _, err := tx.ExecContext(ctxTimeout,
		`UPDATE carts SET total_amount = 0, last_updated = $2 WHERE user_id = $1`, userID, order.CreatedAt,
	); err != nil {
		return domain.Order{}, errors.NewDBError("Falha ao zerar carrinho", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, errors.NewDBError("Falha ao commitar pedido", err)
	}

	r.logger.Info("Pedido criado.", map[string]interface{}{"order_id": order.ID, "user": userID, "items": len(order.Items)})
	return order, nil
}

// lockCart trava o carrinho e os produtos referenciados e devolve as linhas na ordem do carrinho.
// Carrinho inexistente devolve zero linhas.
func (r *OrderRepository) lockCart(ctx context.Context, tx *sql.Tx, userID string) ([]domain.CheckoutLine, error) {
	var locked string
	err := tx.QueryRowContext(ctx, `SELECT user_id FROM carts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&locked)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewDBError("Falha ao travar carrinho", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT product_id, quantity FROM cart_items WHERE user_id = $1 ORDER BY position ASC`, userID)
	if err != nil {
		return nil, errors.NewDBError("Falha ao ler itens do carrinho", err)
	}
	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			rows.Close()
			return nil, errors.NewDBError("Falha ao ler item do carrinho", err)
		}
		items = append(items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar itens do carrinho", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	rows, err = tx.QueryContext(ctx,
		`SELECT `+productrepo.Columns+` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, pq.Array(ids))
	if err != nil {
		return nil, errors.NewDBError("Falha ao travar produtos", err)
	}
	products := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		p, err := productrepo.ScanProduct(rows)
		if err != nil {
			rows.Close()
			return nil, errors.NewDBError("Falha ao ler produto", err)
		}
		products[p.ID] = p
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar produtos", err)
	}

	lines := make([]domain.CheckoutLine, 0, len(items))
	for _, item := range items {
		line := domain.CheckoutLine{Item: item}
		if p, ok := products[item.ProductID]; ok {
			line.Product = &p
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func insertOrder(ctx context.Context, tx *sql.Tx, o domain.Order) error {
	const insertSQL = `INSERT INTO orders (id, user_id, total_amount, street, city, state, country, zip_code,
		payment_method, status, payment_status, tracking_number, estimated_delivery, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`

	_, err := tx.ExecContext(ctx, insertSQL,
		o.ID, o.UserID, o.TotalAmount,
		o.ShippingAddress.Street, o.ShippingAddress.City, o.ShippingAddress.State,
		o.ShippingAddress.Country, o.ShippingAddress.ZipCode,
		string(o.PaymentMethod), string(o.Status), string(o.PaymentStatus),
		o.TrackingNumber, o.EstimatedDelivery, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return errors.NewDBError("Falha ao inserir pedido", err)
	}

	for i, item := range o.Items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, position, product_id, quantity, price) VALUES ($1, $2, $3, $4, $5)`,
			o.ID, i, item.ProductID, item.Quantity, item.Price,
		)
		if err != nil {
			return errors.NewDBError("Falha ao inserir item do pedido", err)
		}
	}
	return nil
}

func scanOrder(row productrepo.RowScanner) (domain.Order, error) {
	var (
		o                   domain.Order
		method, status, pay string
		tracking            sql.NullString
		estimatedDelivery   sql.NullTime
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.TotalAmount,
		&o.ShippingAddress.Street, &o.ShippingAddress.City, &o.ShippingAddress.State,
		&o.ShippingAddress.Country, &o.ShippingAddress.ZipCode,
		&method, &status, &pay, &tracking, &estimatedDelivery, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	o.PaymentMethod = domain.PaymentMethod(method)
	o.Status = domain.OrderStatus(status)
	o.PaymentStatus = domain.PaymentStatus(pay)
	if tracking.Valid {
		o.TrackingNumber = &tracking.String
	}
	if estimatedDelivery.Valid {
		o.EstimatedDelivery = &estimatedDelivery.Time
	}
	o.Items = []domain.OrderItem{}
	return o, nil
}

// loadItems carrega os itens dos pedidos com nome e imagem atuais do produto.
func loadItems(ctx context.Context, q querier, orderIDs []string) (map[string][]domain.OrderItem, error) {
	items := make(map[string][]domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return items, nil
	}

	rows, err := q.QueryContext(ctx, `SELECT oi.order_id, oi.product_id, oi.quantity, oi.price,
		COALESCE(p.name, ''), COALESCE(p.image, '')
		FROM order_items oi LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1) ORDER BY oi.order_id, oi.position`, pq.Array(orderIDs))
	if err != nil {
		return nil, errors.NewDBError("Falha ao buscar itens dos pedidos", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			item    domain.OrderItem
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.Price, &item.ProductName, &item.ProductImage); err != nil {
			return nil, errors.NewDBError("Falha ao ler item do pedido", err)
		}
		items[orderID] = append(items[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar itens dos pedidos", err)
	}
	return items, nil
}

// FindAll lista os pedidos do filtro, mais recentes primeiro, e devolve o total.
func (r *OrderRepository) FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return nil, 0, errors.NewDBError("Falha ao obter conexão", err)
	}

	var (
		conds []string
		args  []interface{}
	)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := db.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewDBError("Falha ao contar pedidos", err)
	}

	args = append(args, filter.Limit, domain.Offset(filter.Page, filter.Limit))
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))

	rows, err := db.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		return nil, 0, errors.NewDBError("Falha ao listar pedidos", err)
	}
	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, 0, errors.NewDBError("Falha ao ler pedido", err)
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewDBError("Falha ao iterar pedidos", err)
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	items, err := loadItems(ctxTimeout, db, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		if its, ok := items[orders[i].ID]; ok {
			orders[i].Items = its
		}
	}
	return orders, total, nil
}

// FindByID busca um pedido com seus itens.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return domain.Order{}, errors.NewDBError("Falha ao obter conexão", err)
	}

	order, err := scanOrder(db.QueryRowContext(ctxTimeout, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return domain.Order{}, errors.NewNotFoundError(fmt.Sprintf("Pedido com ID %s não existe.", id))
	}
	if err != nil {
		return domain.Order{}, errors.NewDBError("Falha ao buscar pedido", err)
	}

	items, err := loadItems(ctxTimeout, db, []string{id})
	if err != nil {
		return domain.Order{}, err
	}
	if its, ok := items[id]; ok {
		order.Items = its
	}
	return order, nil
}

// Update trava o pedido (SELECT ... FOR UPDATE), aplica mutate e grava os campos mutáveis.
func (r *OrderRepository) Update(ctx context.Context, id string, mutate domain.OrderMutation) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return domain.Order{}, errors.NewDBError("Falha ao obter conexão", err)
	}

	tx, err := db.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Order{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	order, err := scanOrder(tx.QueryRowContext(ctxTimeout, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return domain.Order{}, errors.NewNotFoundError(fmt.Sprintf("Pedido com ID %s não existe.", id))
	}
	if err != nil {
		return domain.Order{}, errors.NewDBError("Falha ao travar pedido", err)
	}

	if err := mutate(&order); err != nil {
		return domain.Order{}, err
	}

	_, err = tx.ExecContext(ctxTimeout,
		`UPDATE orders SET status = $2, payment_status = $3, tracking_number = $4, updated_at = $5 WHERE id = $1`,
		id, string(order.Status), string(order.PaymentStatus), order.TrackingNumber, order.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, errors.NewDBError("Falha ao atualizar pedido", err)
	}

	items, err := loadItems(ctxTimeout, tx, []string{id})
	if err != nil {
		return domain.Order{}, err
	}
	if its, ok := items[id]; ok {
		order.Items = its
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, errors.NewDBError("Falha ao commitar pedido", err)
	}
	return order, nil
}
