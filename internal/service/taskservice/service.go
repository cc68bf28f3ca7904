package taskservice

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"showcase/internal/domain"
	apperror "showcase/internal/errors"
	"showcase/internal/pkg/logger"
)

// TaskRepository define o contrato que o Serviço de Tarefas espera da camada de Persistência.
type TaskRepository interface {
	FindAll(ctx context.Context) ([]domain.Task, error)
	FindByID(ctx context.Context, id string) (domain.Task, error)
	Create(ctx context.Context, t domain.Task) (domain.Task, error)
	Update(ctx context.Context, t domain.Task) (domain.Task, error)
	Delete(ctx context.Context, id string) error
}

// TaskInput é o payload de criação e de substituição de uma tarefa.
type TaskInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"dueDate"`
}

type Service struct {
	repo   TaskRepository
	logger logger.Logger
	now    func() time.Time
}

func NewService(repo TaskRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log, now: func() time.Time { return time.Now().UTC() }}
}

// normalize apara os textos, aplica os padrões e valida os limites.
func normalize(in TaskInput) (TaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if in.Title == "" {
		return in, apperror.NewValidationError("O título é obrigatório.")
	}
	if utf8.RuneCountInString(in.Title) > domain.MaxTaskTitleLength {
		return in, apperror.NewValidationError(fmt.Sprintf("O título deve ter no máximo %d caracteres.", domain.MaxTaskTitleLength))
	}
	if utf8.RuneCountInString(in.Description) > domain.MaxTaskDescriptionLength {
		return in, apperror.NewValidationError(fmt.Sprintf("A descrição deve ter no máximo %d caracteres.", domain.MaxTaskDescriptionLength))
	}

	if in.Status == "" {
		in.Status = domain.TaskTodo
	}
	if !in.Status.Valid() {
		return in, apperror.NewValidationError(fmt.Sprintf("Status inválido: %s.", in.Status))
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if !in.Priority.Valid() {
		return in, apperror.NewValidationError(fmt.Sprintf("Prioridade inválida: %s.", in.Priority))
	}
	return in, nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID da tarefa deve ser um UUID válido.")
	}
	return nil
}

func (s *Service) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Classify("Falha ao listar tarefas.", err)
	}
	return tasks, nil
}

func (s *Service) GetTask(ctx context.Context, id string) (domain.Task, error) {
	if err := validateID(id); err != nil {
		return domain.Task{}, err
	}
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Task{}, apperror.Classify("Falha ao buscar tarefa.", err)
	}
	return t, nil
}

func (s *Service) CreateTask(ctx context.Context, in TaskInput) (domain.Task, error) {
	in, err := normalize(in)
	if err != nil {
		return domain.Task{}, err
	}

	now := s.now()
	t := domain.Task{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return domain.Task{}, apperror.Classify("Falha ao criar tarefa.", err)
	}
	s.logger.Info("Tarefa criada.", map[string]interface{}{"task_id": created.ID})
	return created, nil
}

// UpdateTask substitui todos os campos editáveis da tarefa.
func (s *Service) UpdateTask(ctx context.Context, id string, in TaskInput) (domain.Task, error) {
	if err := validateID(id); err != nil {
		return domain.Task{}, err
	}
	in, err := normalize(in)
	if err != nil {
		return domain.Task{}, err
	}

	updated, err := s.repo.Update(ctx, domain.Task{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		UpdatedAt:   s.now(),
	})
	if err != nil {
		return domain.Task{}, apperror.Classify("Falha ao atualizar tarefa.", err)
	}
	return updated, nil
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Classify("Falha ao remover tarefa.", err)
	}
	s.logger.Info("Tarefa removida.", map[string]interface{}{"task_id": id})
	return nil
}
