package productrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"showcase/internal/domain"
	"showcase/internal/errors"
	"showcase/internal/pkg/cache"
	"showcase/internal/pkg/database"
	"showcase/internal/pkg/logger"
)

// Define a chave de cache para produtos.
const productCacheKey = "product:%s"

// ProductTTL é o tempo de vida de um produto no cache.
const ProductTTL = 5 * time.Minute

// Columns lista as colunas lidas por ScanProduct, na mesma ordem.
const Columns = `id, name, description, price, category, image, stock, rating,
	review_count, featured, discount, tags, created_at, updated_at`

// ProductRepository acessa o catálogo no PostgreSQL, com cache-aside no Redis
// apenas para leituras individuais da vitrine.
type ProductRepository struct {
	db        database.Provider
	cache     cache.Client
	dbTimeout time.Duration
	logger    logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
func NewProductRepository(db database.Provider, cacheClient cache.Client, dbTimeout time.Duration, log logger.Logger) *ProductRepository {
	return &ProductRepository{
		db:        db,
		cache:     cacheClient,
		dbTimeout: dbTimeout,
		logger:    log,
	}
}

// CacheKey devolve a chave de cache de um produto.
func CacheKey(id string) string {
	return fmt.Sprintf(productCacheKey, id)
}

// RowScanner é satisfeito por *sql.Row e *sql.Rows.
type RowScanner interface {
	Scan(dest ...interface{}) error
}

// ScanProduct lê uma linha de products (colunas em Columns).
func ScanProduct(row RowScanner) (domain.Product, error) {
	var (
		p        domain.Product
		discount decimal.NullDecimal
		tags     pq.StringArray
		category string
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&category,
		&p.Image,
		&p.Stock,
		&p.Rating,
		&p.ReviewCount,
		&p.Featured,
		&discount,
		&tags,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}
	p.Category = domain.Category(category)
	if discount.Valid {
		d := discount.Decimal
		p.Discount = &d
	}
	p.Tags = []string(tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

// FindByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	key := CacheKey(id)

	// 1. Cache HIT
	var product domain.Product
	if cache.GetJSON(ctxTimeout, r.cache, key, &product) {
		return product, nil
	}

	// 2. Busca no Banco de Dados
	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao obter conexão", err)
	}

	row := db.QueryRowContext(ctxTimeout, `SELECT `+Columns+` FROM products WHERE id = $1`, id)
	product, err = ScanProduct(row)
	if err == sql.ErrNoRows {
		return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}
	if err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao buscar produto no DB", err)
	}

	// 3. Popula o cache; falha de cache não falha a leitura
	if err := cache.SetJSON(ctxTimeout, r.cache, key, product, ProductTTL); err != nil {
		r.logger.Warn("Falha ao gravar produto no cache.", map[string]interface{}{"product_id": id, "error": err.Error()})
	}

	return product, nil
}

// FindByIDs lê os produtos direto do banco (sem cache), indexados por ID.
// IDs inexistentes simplesmente não aparecem no mapa.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	products := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return nil, errors.NewDBError("Falha ao obter conexão", err)
	}

	rows, err := db.QueryContext(ctxTimeout, `SELECT `+Columns+` FROM products WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, errors.NewDBError("Falha ao buscar produtos no DB", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := ScanProduct(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler produto", err)
		}
		products[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar produtos", err)
	}
	return products, nil
}

// FindAll lista o catálogo com filtros opcionais e devolve também o total.
func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
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
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Featured {
		conds = append(conds, "featured = TRUE")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := db.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewDBError("Falha ao contar produtos", err)
	}

	args = append(args, filter.Limit, domain.Offset(filter.Page, filter.Limit))
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		Columns, where, len(args)-1, len(args))

	rows, err := db.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		return nil, 0, errors.NewDBError("Falha ao listar produtos", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := ScanProduct(rows)
		if err != nil {
			return nil, 0, errors.NewDBError("Falha ao ler produto", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewDBError("Falha ao iterar produtos", err)
	}
	return products, total, nil
}

// ReplaceCatalog apaga pedidos, carrinhos e produtos e insere o catálogo informado,
// tudo numa transação. Usado apenas pelo seed do operador.
func (r *ProductRepository) ReplaceCatalog(ctx context.Context, products []domain.Product) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return 0, errors.NewDBError("Falha ao obter conexão", err)
	}

	tx, err := db.BeginTx(ctxTimeout, nil)
	if err != nil {
		return 0, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM order_items`,
		`DELETE FROM orders`,
		`DELETE FROM cart_items`,
		`DELETE FROM carts`,
	} {
		if _, err := tx.ExecContext(ctxTimeout, stmt); err != nil {
			return 0, errors.NewDBError("Falha ao limpar dados da loja", err)
		}
	}

	rows, err := tx.QueryContext(ctxTimeout, `DELETE FROM products RETURNING id`)
	if err != nil {
		return 0, errors.NewDBError("Falha ao limpar catálogo", err)
	}
	var staleKeys []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, errors.NewDBError("Falha ao ler produto removido", err)
		}
		staleKeys = append(staleKeys, CacheKey(id))
	}
	rows.Close()

	const insertSQL = `INSERT INTO products (id, name, description, price, category, image, stock, rating,
		review_count, featured, discount, tags, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`

	for _, p := range products {
		var discount interface{}
		if p.Discount != nil {
			discount = *p.Discount
		}
		_, err := tx.ExecContext(ctxTimeout, insertSQL,
			p.ID, p.Name, p.Description, p.Price, string(p.Category), p.Image, p.Stock, p.Rating,
			p.ReviewCount, p.Featured, discount, pq.Array(p.Tags), p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return 0, errors.NewDBError("Falha ao inserir produto", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.NewDBError("Falha ao commitar seed do catálogo", err)
	}

	r.invalidate(ctx, staleKeys)
	r.logger.Info("Catálogo substituído.", map[string]interface{}{"inserted": len(products), "removed": len(staleKeys)})
	return len(products), nil
}

// InvalidateCache descarta do cache os produtos informados (após baixa de estoque).
func (r *ProductRepository) InvalidateCache(ctx context.Context, ids ...string) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, CacheKey(id))
	}
	r.invalidate(ctx, keys)
}

func (r *ProductRepository) invalidate(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.logger.Warn("Falha ao invalidar produtos no cache.", map[string]interface{}{"keys": len(keys), "error": err.Error()})
	}
}
