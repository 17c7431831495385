// Package handlers предоставляет HTTP handlers для работы с командами
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/Ultrahd-dev/project-manager-app/backend/internal/auth"
	"github.com/Ultrahd-dev/project-manager-app/backend/internal/teams"
	"github.com/Ultrahd-dev/project-manager-app/backend/internal/users"
)

// TeamHandler обрабатывает HTTP запросы, связанные с командами
type TeamHandler struct {
	teamService *teams.Service
}

// NewTeamHandler создает новый handler для команд
func NewTeamHandler(teamService *teams.Service) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeTeamError переводит доменные ошибки команд в HTTP статусы
func writeTeamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrMustBeStudent):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, teams.ErrTeamNameExists),
		errors.Is(err, teams.ErrUserAlreadyInTeam),
		errors.Is(err, teams.ErrUserNotInTeam),
		errors.Is(err, teams.ErrTeamIsFull),
		errors.Is(err, teams.ErrTeamAssigned):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, teams.ErrTeamNotFound):
		// Ошибка уровня границы: команда по внешнему идентификатору не найдена
		http.Error(w, "invalid team", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// teamPayload формирует представление команды для ответа
func teamPayload(team *teams.Team) map[string]interface{} {
	return map[string]interface{}{
		"id":              team.ID,
		"name":            team.Name,
		"first_teammate":  team.FirstTeammate,
		"second_teammate": team.SecondTeammate,
		"created_at":      team.CreatedAt,
	}
}

// List возвращает все команды
// GET /api/v1/teams
// Требует аутентификации
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	allTeams, err := h.teamService.ListTeams(r.Context())
	if err != nil {
		log.Printf("failed to list teams: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	payload := make([]map[string]interface{}, 0, len(allTeams))
	for _, team := range allTeams {
		payload = append(payload, teamPayload(team))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"teams":   payload,
	})
}

// CreateTeamRequest структура для создания команды
type CreateTeamRequest struct {
	Name string `json:"name" validate:"required"`
}

// Create создает новую команду от имени текущего пользователя
// POST /api/v1/teams
// Требует аутентификации
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "failed to get current user", http.StatusInternalServerError)
		return
	}

	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), user, req.Name)
	if err != nil {
		log.Printf("failed to create team %s: %v", req.Name, err)
		writeTeamError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "team created",
		"team":    teamPayload(team),
	})
}

// JoinTeamRequest структура для вступления в команду
type JoinTeamRequest struct {
	TeamID uuid.UUID `json:"team_id" validate:"required"`
}

// Join добавляет текущего пользователя в команду
// POST /api/v1/teams/join
// Требует аутентификации
func (h *TeamHandler) Join(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "failed to get current user", http.StatusInternalServerError)
		return
	}

	var req JoinTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Поиск по внешнему идентификатору — ошибка поиска остается ошибкой
	// границы и не смешивается с доменными
	team, err := h.teamService.GetTeamByID(r.Context(), req.TeamID)
	if err != nil {
		writeTeamError(w, err)
		return
	}

	if err := h.teamService.JoinTeam(r.Context(), user, team); err != nil {
		log.Printf("failed to join team %s: %v", team.Name, err)
		writeTeamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "joined team",
		"team":    teamPayload(team),
	})
}

// Leave убирает текущего пользователя из его команды
// POST /api/v1/teams/leave
// Требует аутентификации
func (h *TeamHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "failed to get current user", http.StatusInternalServerError)
		return
	}

	if err := h.teamService.LeaveTeam(r.Context(), user); err != nil {
		log.Printf("failed to leave team for %s: %v", user.Username, err)
		writeTeamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "left team",
	})
}
