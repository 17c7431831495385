// Package handlers предоставляет HTTP handlers для работы с проектами
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/Ultrahd-dev/project-manager-app/backend/internal/auth"
	"github.com/Ultrahd-dev/project-manager-app/backend/internal/projects"
	"github.com/Ultrahd-dev/project-manager-app/backend/internal/users"
)

// ProjectHandler обрабатывает HTTP запросы, связанные с проектами
type ProjectHandler struct {
	projectService *projects.Service
}

// NewProjectHandler создает новый handler для проектов
func NewProjectHandler(projectService *projects.Service) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeProjectError переводит доменные ошибки проектов в HTTP статусы
func writeProjectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrMustBeStudent), errors.Is(err, users.ErrMustBeTeacher):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, projects.ErrProjectNameExists),
		errors.Is(err, projects.ErrProjectHasAssignedTeam),
		errors.Is(err, projects.ErrNoTeam),
		errors.Is(err, projects.ErrTeamAlreadyQueued),
		errors.Is(err, projects.ErrTeamNotQueued),
		errors.Is(err, projects.ErrNoTeamsQueued):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, projects.ErrProjectNotFound):
		// Ошибка уровня границы: проект по внешнему идентификатору не найден
		http.Error(w, "invalid project", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// projectPayload формирует представление проекта для ответа
func projectPayload(project *projects.Project) map[string]interface{} {
	return map[string]interface{}{
		"id":            project.ID,
		"name":          project.Name,
		"description":   project.Description,
		"status":        project.Status,
		"author":        project.Author,
		"assigned_team": project.AssignedTeam,
		"created_at":    project.CreatedAt,
	}
}

// List возвращает проекты, опционально фильтруя по статусу
// GET /api/v1/projects?status=open|assigned
// Требует аутентификации
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	status := projects.Status(r.URL.Query().Get("status"))
	if status != "" && status != projects.StatusOpen && status != projects.StatusAssigned {
		http.Error(w, "invalid status filter", http.StatusBadRequest)
		return
	}

	allProjects, err := h.projectService.ListProjects(r.Context(), status)
	if err != nil {
		log.Printf("failed to list projects: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	payload := make([]map[string]interface{}, 0, len(allProjects))
	for _, project := range allProjects {
		payload = append(payload, projectPayload(project))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"projects": payload,
	})
}

// CreateProjectRequest структура для создания проекта
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// Create создает новый проект от имени текущего пользователя
// POST /api/v1/projects
// Требует аутентификации
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "failed to get current user", http.StatusInternalServerError)
		return
	}

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	project, err := h.projectService.CreateProject(r.Context(), user, req.Name, req.Description)
	if err != nil {
		log.Printf("failed to create project %s: %v", req.Name, err)
		writeProjectError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "project created",
		"project": projectPayload(project),
	})
}

// ProjectRequest структура для операций над проектом по идентификатору
type ProjectRequest struct {
	ProjectID uuid.UUID `json:"project_id" validate:"required"`
}

// getProject загружает проект по внешнему идентификатору из тела запроса
func (h *ProjectHandler) getProject(w http.ResponseWriter, r *http.Request) (*projects.Project, bool) {
	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return nil, false
	}

	project, err := h.projectService.GetProjectByID(r.Context(), req.ProjectID)
	if err != nil {
		writeProjectError(w, err)
		return nil, false
	}

	return project, true
}

// Delete удаляет проект
// POST /api/v1/projects/delete
// Требует аутентификации
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "failed to get current user", http.StatusInternalServerError)
		return
	}

	project, ok := h.getProject(w, r)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(r.Context(), user, project); err != nil {
		log.Printf("failed to delete project %s: %v", project.Name, err)
		writeProjectError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "project deleted",
	})
}

// Join ставит команду текущего пользователя в очередь проекта
// POST /api/v1/projects/join
// Требует аутентификации
func (h *ProjectHandler) Join(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "failed to get current user", http.StatusInternalServerError)
		return
	}

	project, ok := h.getProject(w, r)
	if !ok {
		return
	}

	if err := h.projectService.TeamJoinProject(r.Context(), user, project); err != nil {
		log.Printf("failed to queue team on project %s: %v", project.Name, err)
		writeProjectError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "team queued on project",
	})
}

// Leave убирает команду текущего пользователя из очереди проекта
// POST /api/v1/projects/leave
// Требует аутентификации
func (h *ProjectHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "failed to get current user", http.StatusInternalServerError)
		return
	}

	project, ok := h.getProject(w, r)
	if !ok {
		return
	}

	if err := h.projectService.TeamLeaveProject(r.Context(), user, project); err != nil {
		log.Printf("failed to dequeue team from project %s: %v", project.Name, err)
		writeProjectError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "team left project queue",
	})
}

// Assign назначает проекту команду из очереди (административная операция)
// POST /api/v1/projects/assign
// Требует аутентификации
func (h *ProjectHandler) Assign(w http.ResponseWriter, r *http.Request) {
	project, ok := h.getProject(w, r)
	if !ok {
		return
	}

	if err := h.projectService.AssignTeamToProject(r.Context(), project); err != nil {
		log.Printf("failed to assign team to project %s: %v", project.Name, err)
		writeProjectError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "team assigned to project",
		"project": projectPayload(project),
	})
}
