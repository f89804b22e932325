package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/St1cky1/task-manager/internal/api"
	"github.com/St1cky1/task-manager/internal/api/handlers"
	"github.com/St1cky1/task-manager/internal/config"
	"github.com/St1cky1/task-manager/internal/infrastructure/client"
	"github.com/St1cky1/task-manager/internal/infrastructure/logger"
	"github.com/St1cky1/task-manager/internal/repository"
	"github.com/St1cky1/task-manager/internal/usecase"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP сервер",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(os.Stdout, cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	taskRepo, health, closeRepo, err := openTaskRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	var publisher usecase.EventPublisher = usecase.NopPublisher{}
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := client.NewRabbitMQClient(cfg.RabbitMQ.URL(), cfg.RabbitMQ.Queue)
		if err != nil {
			return fmt.Errorf("❌ Ошибка подключения к RabbitMQ: %w", err)
		}
		defer rabbitMQ.Close()
		publisher = rabbitMQ
		log.Info("✅ Подключение к RabbitMQ установлено", "queue", rabbitMQ.GetQueueName())
	}

	taskService := usecase.NewTaskService(taskRepo, publisher, log)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(taskService, health),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("запуск HTTP сервера", "addr", server.Addr, "storage", cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("❌ HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("завершение работы...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("✅ Приложение завершено корректно")
	return nil
}

// openTaskRepository выбирает хранилище по storage.driver.
// Для хранилища в памяти проверка здоровья не нужна и возвращается nil.
func openTaskRepository(ctx context.Context, cfg *config.Config, log *slog.Logger) (repository.ITaskRepository, handlers.HealthChecker, func(), error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn("используется хранилище в памяти, данные не сохранятся после перезапуска")
		return repository.NewMemoryTaskRepository(), nil, func() {}, nil
	}

	// Запускаем миграции
	if err := runMigrations(cfg.Database, log); err != nil {
		return nil, nil, nil, fmt.Errorf("❌ Ошибка миграций: %w", err)
	}

	// Подключаемся к БД
	db, err := client.NewPostgresClient(ctx, cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("❌ Ошибка подключения к БД: %w", err)
	}
	log.Info("✅ Подключение к БД установлено", "host", cfg.Database.Host, "database", cfg.Database.Name)

	return repository.NewTaskRepository(db.Pool), db, db.Close, nil
}
