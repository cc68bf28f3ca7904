package saasrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"showcase/internal/domain"
	"showcase/internal/errors"
	"showcase/internal/pkg/database"
	"showcase/internal/pkg/logger"
)

// Código SQLSTATE do PostgreSQL para violação de unicidade.
const uniqueViolation = "23505"

const userColumns = `id, name, email, plan, status, joined_at, last_login, subscription_id, created_at, updated_at`

const analyticsColumns = `id, date, active_users, new_users, revenue, subs_basic, subs_pro, subs_enterprise,
	page_views, unique_visitors, average_session_duration`

// SaaSRepository guarda os usuários e o rollup diário do dashboard SaaS.
type SaaSRepository struct {
	db        database.Provider
	dbTimeout time.Duration
	logger    logger.Logger
}

// NewSaaSRepository cria e retorna uma nova instância do Repositório.
func NewSaaSRepository(db database.Provider, dbTimeout time.Duration, log logger.Logger) *SaaSRepository {
	return &SaaSRepository{db: db, dbTimeout: dbTimeout, logger: log}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u            domain.User
		plan, status string
		subscription sql.NullString
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &plan, &status, &u.JoinedAt, &u.LastLogin, &subscription, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.Plan = domain.Plan(plan)
	u.Status = domain.UserStatus(status)
	if subscription.Valid {
		u.SubscriptionID = &subscription.String
	}
	return u, nil
}

func scanAnalytics(row rowScanner) (domain.Analytics, error) {
	var a domain.Analytics
	err := row.Scan(&a.ID, &a.Date, &a.ActiveUsers, &a.NewUsers, &a.Revenue,
		&a.Subscriptions.Basic, &a.Subscriptions.Pro, &a.Subscriptions.Enterprise,
		&a.Metrics.PageViews, &a.Metrics.UniqueVisitors, &a.Metrics.AverageSessionDuration)
	if err != nil {
		return domain.Analytics{}, err
	}
	a.Date = a.Date.UTC()
	return a, nil
}

// isUniqueViolation informa se o erro do driver é uma violação de UNIQUE.
func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && string(pqErr.Code) == uniqueViolation
}

// ListUsers devolve os usuários mais recentes (joinedAt desc), até limit.
func (r *SaaSRepository) ListUsers(ctx context.Context, limit int) ([]domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return nil, errors.NewDBError("Falha ao obter conexão", err)
	}

	rows, err := db.QueryContext(ctxTimeout,
		`SELECT `+userColumns+` FROM saas_users ORDER BY joined_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar usuários", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler usuário", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar usuários", err)
	}
	return users, nil
}

// CreateUser insere o usuário; e-mail duplicado vira ConflictError.
func (r *SaaSRepository) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return domain.User{}, errors.NewDBError("Falha ao obter conexão", err)
	}

	if err := insertUser(ctxTimeout, db, u); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, errors.NewConflictError(fmt.Sprintf("E-mail %s já cadastrado.", u.Email))
		}
		return domain.User{}, errors.NewDBError("Falha ao inserir usuário", err)
	}
	return u, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertUser(ctx context.Context, ex execer, u domain.User) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO saas_users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.Name, u.Email, string(u.Plan), string(u.Status), u.JoinedAt, u.LastLogin, u.SubscriptionID, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func insertAnalytics(ctx context.Context, ex execer, a domain.Analytics) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO analytics (`+analyticsColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.Date, a.ActiveUsers, a.NewUsers, a.Revenue,
		a.Subscriptions.Basic, a.Subscriptions.Pro, a.Subscriptions.Enterprise,
		a.Metrics.PageViews, a.Metrics.UniqueVisitors, a.Metrics.AverageSessionDuration,
	)
	return err
}

// FindAnalyticsSince devolve as linhas com date >= since, em ordem crescente de data.
func (r *SaaSRepository) FindAnalyticsSince(ctx context.Context, since time.Time) ([]domain.Analytics, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return nil, errors.NewDBError("Falha ao obter conexão", err)
	}

	rows, err := db.QueryContext(ctxTimeout,
		`SELECT `+analyticsColumns+` FROM analytics WHERE date >= $1 ORDER BY date ASC`, since)
	if err != nil {
		return nil, errors.NewDBError("Falha ao buscar analytics", err)
	}
	defer rows.Close()

	result := []domain.Analytics{}
	for rows.Next() {
		a, err := scanAnalytics(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler analytics", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar analytics", err)
	}
	return result, nil
}

// UpsertAnalytics grava a linha da data de a, sobrescrevendo as métricas se ela já existir.
func (r *SaaSRepository) UpsertAnalytics(ctx context.Context, a domain.Analytics) (domain.Analytics, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return domain.Analytics{}, errors.NewDBError("Falha ao obter conexão", err)
	}

	row := db.QueryRowContext(ctxTimeout,
		`INSERT INTO analytics (`+analyticsColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (date) DO UPDATE SET
			active_users = EXCLUDED.active_users,
			new_users = EXCLUDED.new_users,
			revenue = EXCLUDED.revenue,
			subs_basic = EXCLUDED.subs_basic,
			subs_pro = EXCLUDED.subs_pro,
			subs_enterprise = EXCLUDED.subs_enterprise,
			page_views = EXCLUDED.page_views,
			unique_visitors = EXCLUDED.unique_visitors,
			average_session_duration = EXCLUDED.average_session_duration,
			updated_at = NOW()
		RETURNING `+analyticsColumns,
		a.ID, a.Date, a.ActiveUsers, a.NewUsers, a.Revenue,
		a.Subscriptions.Basic, a.Subscriptions.Pro, a.Subscriptions.Enterprise,
		a.Metrics.PageViews, a.Metrics.UniqueVisitors, a.Metrics.AverageSessionDuration,
	)
	stored, err := scanAnalytics(row)
	if err != nil {
		return domain.Analytics{}, errors.NewDBError("Falha ao gravar analytics", err)
	}
	return stored, nil
}

// ReplaceAll apaga usuários e analytics e insere os dados informados numa transação.
func (r *SaaSRepository) ReplaceAll(ctx context.Context, users []domain.User, analytics []domain.Analytics) (int, int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return 0, 0, errors.NewDBError("Falha ao obter conexão", err)
	}

	tx, err := db.BeginTx(ctxTimeout, nil)
	if err != nil {
		return 0, 0, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctxTimeout, `DELETE FROM saas_users`); err != nil {
		return 0, 0, errors.NewDBError("Falha ao limpar usuários", err)
	}
	if _, err := tx.ExecContext(ctxTimeout, `DELETE FROM analytics`); err != nil {
		return 0, 0, errors.NewDBError("Falha ao limpar analytics", err)
	}

	for _, u := range users {
		if err := insertUser(ctxTimeout, tx, u); err != nil {
			return 0, 0, errors.NewDBError("Falha ao inserir usuário", err)
		}
	}
	for _, a := range analytics {
		if err := insertAnalytics(ctxTimeout, tx, a); err != nil {
			return 0, 0, errors.NewDBError("Falha ao inserir analytics", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, errors.NewDBError("Falha ao commitar seed do SaaS", err)
	}

	r.logger.Info("Dados do SaaS substituídos.", map[string]interface{}{"users": len(users), "analytics": len(analytics)})
	return len(users), len(analytics), nil
}
