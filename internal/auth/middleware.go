// Package auth предоставляет функции для аутентификации и авторизации
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/Ultrahd-dev/project-manager-app/backend/internal/jwt"
	"github.com/Ultrahd-dev/project-manager-app/backend/internal/users"
)

// Ключи для хранения данных в контексте HTTP запроса
type contextKey string

const (
	// Ключ для хранения текущего пользователя в контексте
	UserContextKey contextKey = "user"
)

// UserFromContext извлекает текущего пользователя из контекста HTTP запроса
func UserFromContext(ctx context.Context) (*users.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*users.User)
	return user, ok
}

// Middleware предоставляет middleware функции для аутентификации
type Middleware struct {
	jwtManager  *jwt.Manager
	userService *users.Service
}

// NewMiddleware создает новый middleware для аутентификации
func NewMiddleware(jwtManager *jwt.Manager, userService *users.Service) *Middleware {
	return &Middleware{
		jwtManager:  jwtManager,
		userService: userService,
	}
}

// Authenticate проверяет JWT токен из заголовка Authorization и кладет
// полного доменного пользователя в контекст запроса. Сервисы доменной
// логики работают уже с загруженным пользователем, а не с токеном.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "invalid token format", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		// Проверяем, что пользователь еще существует, и берем его свежее
		// состояние (команда и статус могли измениться после выдачи токена)
		user, err := m.userService.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "user not found", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole проверяет, что у пользователя есть одна из требуемых ролей
func (m *Middleware) RequireRole(roles ...users.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			hasRole := false
			for _, role := range roles {
				if user.Role == role {
					hasRole = true
					break
				}
			}

			if !hasRole {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
