package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/internal/auth"
	"github.com/BuzzLyutic/todo-api/internal/config"
	"github.com/BuzzLyutic/todo-api/internal/database"
	"github.com/BuzzLyutic/todo-api/internal/handler"
	"github.com/BuzzLyutic/todo-api/internal/middleware"
	"github.com/BuzzLyutic/todo-api/internal/repo"
	"github.com/BuzzLyutic/todo-api/internal/service"
)

func main() {
	// Подключаем логгер
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Загрузка конфигурации
	cfg := config.Load()

	// Подключаем БД
	db, err := database.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to Database.") // Fatal потому что дальнейшая работа теряет смысл
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	logger.Info("Successfully connected to the Database!")

	// Токены и черный список
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	blacklist := auth.NewBlacklist(logger)
	blacklist.Start(context.Background())
	defer blacklist.Stop()

	// Репозитории -> сервисы -> хэндлеры
	userRepo := repo.NewUserRepo(db.Pool)
	todoRepo := repo.NewTodoRepo(db.Pool)

	authService := service.NewAuthService(userRepo, tokens, blacklist)
	todoService := service.NewTodoService(todoRepo)

	authHandler := handler.NewAuthHandler(authService, logger)
	todoHandler := handler.NewTodoHandler(todoService, logger)

	authn := middleware.Authenticator(tokens, blacklist)
	rl := middleware.NewRateLimiter(cfg.RatePerMin, cfg.RateBurst)

	r := handler.NewRouter(todoHandler, authHandler, authn, rl)

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started at ", zap.String("port", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed: ", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Shutdown error: ", zap.Error(err))
	}
	logger.Info("Server stopped succsessfully!")
}
