package task

import (
	"context"
	"net/http"

	"showcase/internal/api/response"
	"showcase/internal/domain"
	"showcase/internal/pkg/logger"
	"showcase/internal/service/taskservice"
)

// TaskService define o contrato que o Handler espera da camada de Serviço.
type TaskService interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, id string) (domain.Task, error)
	CreateTask(ctx context.Context, in taskservice.TaskInput) (domain.Task, error)
	UpdateTask(ctx context.Context, id string, in taskservice.TaskInput) (domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type Handler struct {
	Service TaskService
	Logger  logger.Logger
}

func NewHandler(svc TaskService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// MessageResponse é a resposta de uma exclusão bem-sucedida.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListTasksHandler lida com GET /v1/tasks.
//
//	@Summary	Lista as tarefas, mais recentes primeiro
//	@Tags		tasks
//	@Produce	json
//	@Success	200	{array}	domain.Task
//	@Router		/v1/tasks [get]
func (h *Handler) ListTasksHandler(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Service.ListTasks(r.Context())
	response.Handle(w, r, h.Logger, tasks, err, http.StatusOK)
}

// GetTaskHandler lida com GET /v1/tasks/{id}.
//
//	@Summary	Busca uma tarefa
//	@Tags		tasks
//	@Produce	json
//	@Param		id	path		string	true	"ID da tarefa"
//	@Success	200	{object}	domain.Task
//	@Failure	404	{object}	domain.ErrorResponse
//	@Router		/v1/tasks/{id} [get]
func (h *Handler) GetTaskHandler(w http.ResponseWriter, r *http.Request) {
	task, err := h.Service.GetTask(r.Context(), r.PathValue("id"))
	response.Handle(w, r, h.Logger, task, err, http.StatusOK)
}

// CreateTaskHandler lida com POST /v1/tasks.
//
//	@Summary	Cria uma tarefa
//	@Tags		tasks
//	@Accept		json
//	@Produce	json
//	@Param		task	body		taskservice.TaskInput	true	"tarefa"
//	@Success	201		{object}	domain.Task
//	@Failure	400		{object}	domain.ErrorResponse
//	@Router		/v1/tasks [post]
func (h *Handler) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	var in taskservice.TaskInput
	if err := response.DecodeJSON(r, &in); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	task, err := h.Service.CreateTask(r.Context(), in)
	response.Handle(w, r, h.Logger, task, err, http.StatusCreated)
}

// UpdateTaskHandler lida com PUT /v1/tasks/{id} (substituição completa).
//
//	@Summary	Substitui uma tarefa
//	@Tags		tasks
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"ID da tarefa"
//	@Param		task	body		taskservice.TaskInput	true	"tarefa"
//	@Success	200		{object}	domain.Task
//	@Failure	400		{object}	domain.ErrorResponse
//	@Failure	404		{object}	domain.ErrorResponse
//	@Router		/v1/tasks/{id} [put]
func (h *Handler) UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	var in taskservice.TaskInput
	if err := response.DecodeJSON(r, &in); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	task, err := h.Service.UpdateTask(r.Context(), r.PathValue("id"), in)
	response.Handle(w, r, h.Logger, task, err, http.StatusOK)
}

// DeleteTaskHandler lida com DELETE /v1/tasks/{id}.
//
//	@Summary	Remove uma tarefa
//	@Tags		tasks
//	@Produce	json
//	@Param		id	path		string	true	"ID da tarefa"
//	@Success	200	{object}	MessageResponse
//	@Failure	404	{object}	domain.ErrorResponse
//	@Router		/v1/tasks/{id} [delete]
func (h *Handler) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}
