// Package handlers предоставляет HTTP handlers для работы с аккаунтами
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Ultrahd-dev/project-manager-app/backend/internal/auth"
	"github.com/Ultrahd-dev/project-manager-app/backend/internal/jwt"
	"github.com/Ultrahd-dev/project-manager-app/backend/internal/users"
)

// AuthHandler обрабатывает HTTP запросы, связанные с аккаунтами
type AuthHandler struct {
	userService *users.Service
	jwtManager  *jwt.Manager
}

// NewAuthHandler создает новый handler для аккаунтов
func NewAuthHandler(userService *users.Service, jwtManager *jwt.Manager) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// writeJSON отправляет ответ в формате JSON
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeAccountError переводит доменные ошибки аккаунтов в HTTP статусы
func writeAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrUsernameExists),
		errors.Is(err, users.ErrEmailExists),
		errors.Is(err, users.ErrStudentNoExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, users.ErrInvalidPassword):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// RegisterRequest структура для данных регистрации из тела запроса
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=student teacher"`

	// Поля для студентов
	StudentNo int64 `json:"student_no,omitempty"`
}

// RegisterResponse структура для ответа на запрос регистрации
type RegisterResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    interface{} `json:"user,omitempty"`
}

// userPayload формирует представление пользователя для ответа
func userPayload(user *users.User) map[string]interface{} {
	payload := map[string]interface{}{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"role":       user.Role,
		"created_at": user.CreatedAt,
	}

	if user.IsStudent() {
		payload["student_no"] = user.StudentNo
		payload["status"] = user.Status
		payload["team_id"] = user.TeamID
	}

	return payload
}

// Register обрабатывает регистрацию новых пользователей
// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	// Декодируем тело запроса в структуру
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	// В зависимости от роли регистрируем студента или преподавателя
	switch req.Role {
	case string(users.RoleStudent):
		if req.StudentNo == 0 {
			http.Error(w, "student_no is required for students", http.StatusBadRequest)
			return
		}

		user, err := h.userService.CreateStudent(r.Context(), users.CreateStudentInput{
			StudentNo: req.StudentNo,
			Username:  req.Username,
			Email:     req.Email,
			Password:  req.Password,
		})
		if err != nil {
			log.Printf("failed to register student %s: %v", req.Username, err)
			writeAccountError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, RegisterResponse{
			Success: true,
			Message: "student registered",
			User:    userPayload(user),
		})

	case string(users.RoleTeacher):
		user, err := h.userService.CreateTeacher(r.Context(), users.CreateTeacherInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			log.Printf("failed to register teacher %s: %v", req.Username, err)
			writeAccountError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, RegisterResponse{
			Success: true,
			Message: "teacher registered",
			User:    userPayload(user),
		})

	default:
		http.Error(w, "invalid role, expected 'student' or 'teacher'", http.StatusBadRequest)
	}
}

// LoginRequest структура для данных входа из тела запроса
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse структура для ответа на запрос входа
type LoginResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Token   string      `json:"token,omitempty"`
	User    interface{} `json:"user,omitempty"`
}

// Login обрабатывает вход пользователя в систему
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Неизвестный пользователь и неверный пароль отдаются одинаково
	user, err := h.userService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Printf("failed login attempt for %s", req.Username)
		http.Error(w, "invalid username or password", http.StatusUnauthorized)
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		log.Printf("failed to generate token for %s: %v", user.Username, err)
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Message: "logged in",
		Token:   token,
		User:    userPayload(user),
	})
}

// Profile обрабатывает запрос на получение профиля текущего пользователя
// GET /api/v1/auth/profile
// Требует аутентификации
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "failed to get current user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    userPayload(user),
	})
}

// ChangePasswordRequest структура для смены пароля
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// ChangePassword обрабатывает смену пароля текущего пользователя
// POST /api/v1/account/password
// Требует аутентификации
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "failed to get current user", http.StatusInternalServerError)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.NewPassword == "" {
		http.Error(w, "new_password is required", http.StatusBadRequest)
		return
	}

	if err := h.userService.ChangePassword(r.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		log.Printf("failed to change password for %s: %v", user.Username, err)
		writeAccountError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "password changed",
	})
}

// ChangeEmailRequest структура для смены email
type ChangeEmailRequest struct {
	NewEmail string `json:"new_email" validate:"required,email"`
}

// ChangeEmail обрабатывает смену email текущего пользователя
// POST /api/v1/account/email
// Требует аутентификации
func (h *AuthHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "failed to get current user", http.StatusInternalServerError)
		return
	}

	var req ChangeEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.NewEmail == "" {
		http.Error(w, "new_email is required", http.StatusBadRequest)
		return
	}

	if err := h.userService.ChangeEmail(r.Context(), user, req.NewEmail); err != nil {
		log.Printf("failed to change email for %s: %v", user.Username, err)
		writeAccountError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "email changed",
	})
}
