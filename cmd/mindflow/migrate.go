package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/BaSui01/mindflow/config"
	"github.com/BaSui01/mindflow/internal/migration"
)

// =============================================================================
// 🗄️ migrate 命令
// =============================================================================

// runMigrate 解析连接参数后把子命令交给 migration.CLI。
// 选项需写在子命令之前：mindflow migrate --config c.yaml up
func runMigrate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	dbType := fs.String("db-type", "", "Database type: postgres, mysql, sqlite (default: from config)")
	dbURL := fs.String("db-url", "", "Database connection URL (default: from config)")
	fs.Parse(args)

	m, err := newMigrator(*configPath, *dbType, *dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	return migration.NewCLI(m).Run(ctx, fs.Args())
}

func newMigrator(configPath, dbType, dbURL string) (*migration.DefaultMigrator, error) {
	logger := initLogger(config.LogConfig{Level: "warn", Format: "console", OutputPaths: []string{"stderr"}})

	switch {
	case dbURL != "" && dbType != "":
		return migration.NewMigratorFromURL(dbType, dbURL, logger)
	case dbURL != "" || dbType != "":
		return nil, errors.New("--db-type and --db-url must be given together")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	m, err := migration.NewMigratorFromConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
