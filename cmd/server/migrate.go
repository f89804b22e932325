package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/St1cky1/task-manager/internal/config"
	"github.com/St1cky1/task-manager/internal/infrastructure/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Управление схемой базы данных",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Применить все миграции",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadForMigrate()
		if err != nil {
			return err
		}
		return runMigrations(cfg.Database, log)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Откатить последнюю миграцию",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadForMigrate()
		if err != nil {
			return err
		}
		return rollbackMigration(cfg.Database, log)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

func loadForMigrate() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Storage.Driver != config.StoragePostgres {
		return nil, nil, fmt.Errorf("migrations require storage.driver=%s, got %s", config.StoragePostgres, cfg.Storage.Driver)
	}
	return cfg, logger.Setup(os.Stdout, cfg.Server.LogLevel), nil
}

func newMigrator(cfg config.DatabaseConfig) (*migrate.Migrate, error) {
	m, err := migrate.New(cfg.MigrationsPath, cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("ошибка создания мигратора: %w", err)
	}
	return m, nil
}

func runMigrations(cfg config.DatabaseConfig, log *slog.Logger) error {
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	}

	log.Info("✅ Миграции выполнены успешно")
	return nil
}

func rollbackMigration(cfg config.DatabaseConfig, log *slog.Logger) error {
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка отката миграции: %w", err)
	}

	log.Info("✅ Последняя миграция откачена")
	return nil
}
