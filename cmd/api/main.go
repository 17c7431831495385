// Package main реализует API сервер системы распределения проектов
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/Ultrahd-dev/project-manager-app/backend/internal/auth"
	"github.com/Ultrahd-dev/project-manager-app/backend/internal/config"
	"github.com/Ultrahd-dev/project-manager-app/backend/internal/jwt"
	"github.com/Ultrahd-dev/project-manager-app/backend/internal/projects"
	projecthandlers "github.com/Ultrahd-dev/project-manager-app/backend/internal/projects/handlers"
	"github.com/Ultrahd-dev/project-manager-app/backend/internal/teams"
	teamhandlers "github.com/Ultrahd-dev/project-manager-app/backend/internal/teams/handlers"
	"github.com/Ultrahd-dev/project-manager-app/backend/internal/users"
	userhandlers "github.com/Ultrahd-dev/project-manager-app/backend/internal/users/handlers"
	_ "github.com/lib/pq"
)

// connectDB подключается к базе данных, повторяя попытки до дедлайна:
// при старте в контейнере база может быть еще не готова
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	backoff := retry.WithMaxDuration(30*time.Second, retry.NewFibonacci(time.Second))
	err = retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := db.PingContext(pingCtx); err != nil {
			log.Printf("database is not ready yet: %v", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig("./configs/config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Подключаемся к базе данных
	db, err := connectDB(cfg.Database.GetDSN())
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	log.Println("connected to database")

	// Инициализируем компоненты
	userRepo := users.NewRepository(db)
	userService := users.NewService(userRepo)

	teamRepo := teams.NewRepository(db)
	teamService := teams.NewService(teamRepo)

	projectRepo := projects.NewRepository(db)
	projectService := projects.NewService(projectRepo)

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiration)
	authMiddleware := auth.NewMiddleware(jwtManager, userService)

	authHandler := userhandlers.NewAuthHandler(userService, jwtManager)
	teamHandler := teamhandlers.NewTeamHandler(teamService)
	projectHandler := projecthandlers.NewProjectHandler(projectService)

	// Настраиваем маршруты
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	authed := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(h)
	}
	teacherOnly := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(authMiddleware.RequireRole(users.RoleTeacher)(h))
	}

	mux.Handle("GET /api/v1/auth/profile", authed(authHandler.Profile))
	mux.Handle("POST /api/v1/account/password", authed(authHandler.ChangePassword))
	mux.Handle("POST /api/v1/account/email", authed(authHandler.ChangeEmail))

	mux.Handle("GET /api/v1/teams", authed(teamHandler.List))
	mux.Handle("POST /api/v1/teams", authed(teamHandler.Create))
	mux.Handle("POST /api/v1/teams/join", authed(teamHandler.Join))
	mux.Handle("POST /api/v1/teams/leave", authed(teamHandler.Leave))

	mux.Handle("GET /api/v1/projects", authed(projectHandler.List))
	mux.Handle("POST /api/v1/projects", teacherOnly(projectHandler.Create))
	mux.Handle("POST /api/v1/projects/delete", teacherOnly(projectHandler.Delete))
	mux.Handle("POST /api/v1/projects/join", authed(projectHandler.Join))
	mux.Handle("POST /api/v1/projects/leave", authed(projectHandler.Leave))
	mux.Handle("POST /api/v1/projects/assign", authed(projectHandler.Assign))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: mux,
	}

	// Запускаем HTTP сервер в отдельной горутине
	go func() {
		log.Printf("API server listening on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Ожидаем сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("failed to shut down server gracefully: %v", err)
	}

	log.Println("server stopped")
}
