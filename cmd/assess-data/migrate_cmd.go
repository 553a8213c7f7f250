package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/formlane/assess/modules"
	"github.com/formlane/assess/pkg/application"
	"github.com/formlane/assess/pkg/configuration"
	"github.com/formlane/assess/pkg/eventbus"
	"github.com/formlane/assess/pkg/logging"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema",
	}
	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())
	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(goose.Up)
		},
	}
}

func newMigrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(goose.Down)
		},
	}
}

func runMigrations(apply func(db *sql.DB, dir string, opts ...goose.OptionsFunc) error) error {
	conf := configuration.Use()

	db, err := sql.Open("pgx", conf.Database.Opts)
	if err != nil {
		return withCode(exitDB, fmt.Errorf("db open failed: %w", err))
	}
	defer func() { _ = db.Close() }()

	if err := goose.SetDialect("postgres"); err != nil {
		return withCode(exitDB, err)
	}

	logger := logging.ConsoleLogger(logrus.ErrorLevel)
	app := application.New(&application.ApplicationOptions{
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		return withCode(exitDB, err)
	}

	for _, schema := range app.Migrations().Schemas() {
		dirs, err := migrationDirs(schema)
		if err != nil {
			return withCode(exitDB, err)
		}
		goose.SetBaseFS(schema)
		for _, dir := range dirs {
			if err := apply(db, dir); err != nil {
				return withCode(exitDB, fmt.Errorf("migrate %s: %w", dir, err))
			}
		}
	}
	return nil
}

func migrationDirs(fsys fs.FS) ([]string, error) {
	seen := map[string]struct{}{}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".sql") {
			seen[path.Dir(p)] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}
