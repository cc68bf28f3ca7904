package taskrepo

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

const taskColumns = `id, title, description, status, priority, due_date, created_at, updated_at`

// TaskRepository implementa o CRUD de tarefas no PostgreSQL.
type TaskRepository struct {
	db        database.Provider
	dbTimeout time.Duration
	logger    logger.Logger
}

// NewTaskRepository cria e retorna uma nova instância do Repositório.
func NewTaskRepository(db database.Provider, dbTimeout time.Duration, log logger.Logger) *TaskRepository {
	return &TaskRepository{db: db, dbTimeout: dbTimeout, logger: log}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (domain.Task, error) {
	var (
		t                domain.Task
		status, priority string
		dueDate          sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &dueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Task{}, err
	}
	t.Status = domain.TaskStatus(status)
	t.Priority = domain.TaskPriority(priority)
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	return t, nil
}

func notFound(id string) error {
	return errors.NewNotFoundError(fmt.Sprintf("Tarefa com ID %s não existe.", id))
}

// FindAll lista as tarefas, mais recentes primeiro.
func (r *TaskRepository) FindAll(ctx context.Context) ([]domain.Task, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return nil, errors.NewDBError("Falha ao obter conexão", err)
	}

	rows, err := db.QueryContext(ctxTimeout, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar tarefas", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler tarefa", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar tarefas", err)
	}
	return tasks, nil
}

// FindByID busca uma tarefa.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (domain.Task, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return domain.Task{}, errors.NewDBError("Falha ao obter conexão", err)
	}

	t, err := scanTask(db.QueryRowContext(ctxTimeout, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return domain.Task{}, notFound(id)
	}
	if err != nil {
		return domain.Task{}, errors.NewDBError("Falha ao buscar tarefa", err)
	}
	return t, nil
}

// Create insere a tarefa já validada.
func (r *TaskRepository) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return domain.Task{}, errors.NewDBError("Falha ao obter conexão", err)
	}

	_, err = db.ExecContext(ctxTimeout,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), t.DueDate, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return domain.Task{}, errors.NewDBError("Falha ao inserir tarefa", err)
	}
	return t, nil
}

// Update substitui os campos editáveis e devolve a tarefa gravada.
func (r *TaskRepository) Update(ctx context.Context, t domain.Task) (domain.Task, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return domain.Task{}, errors.NewDBError("Falha ao obter conexão", err)
	}

	row := db.QueryRowContext(ctxTimeout,
		`UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5, due_date = $6, updated_at = $7
		WHERE id = $1 RETURNING `+taskColumns,
		t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), t.DueDate, t.UpdatedAt,
	)
	updated, err := scanTask(row)
	if err == sql.ErrNoRows {
		return domain.Task{}, notFound(t.ID)
	}
	if err != nil {
		return domain.Task{}, errors.NewDBError("Falha ao atualizar tarefa", err)
	}
	return updated, nil
}

// Delete remove a tarefa; NotFound se nenhuma linha foi afetada.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	db, err := r.db.DB(ctxTimeout)
	if err != nil {
		return errors.NewDBError("Falha ao obter conexão", err)
	}

	res, err := db.ExecContext(ctxTimeout, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return errors.NewDBError("Falha ao remover tarefa", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar remoção", err)
	}
	if affected == 0 {
		return notFound(id)
	}
	return nil
}
