// Package jwt предоставляет функции для работы с JWT токенами
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims структура для хранения данных в JWT токене
type Claims struct {
	UserID               uuid.UUID `json:"user_id"`  // Уникальный ID пользователя
	Username             string    `json:"username"` // Имя пользователя
	Role                 string    `json:"role"`     // Роль пользователя (student, teacher)
	jwt.RegisteredClaims           // Встроенные стандартные поля JWT
}

// Manager отвечает за создание и проверку JWT токенов
type Manager struct {
	secretKey     []byte        // Секретный ключ для подписи токенов
	tokenLifetime time.Duration // Время жизни токена
}

// NewManager создает новый менеджер JWT
func NewManager(secretKey string, lifetime time.Duration) *Manager {
	return &Manager{
		secretKey:     []byte(secretKey),
		tokenLifetime: lifetime,
	}
}

// GenerateToken создает новый JWT токен для пользователя
func (m *Manager) GenerateToken(userID uuid.UUID, username, role string) (string, error) {
	claims := &Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ParseToken проверяет и парсит JWT токен
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Проверяем метод подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	return claims, nil
}
