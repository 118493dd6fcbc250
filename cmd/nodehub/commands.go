// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/nodehub/nodehub/internal/config"
	"codeberg.org/nodehub/nodehub/internal/database"
	"codeberg.org/nodehub/nodehub/internal/repository"
	"codeberg.org/nodehub/nodehub/internal/server"
	"codeberg.org/nodehub/nodehub/internal/services/auth"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

func purgeSessionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "purge-sessions",
		Usage: "Delete expired admin sessions",
		Flags: config.DatabaseFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withRepository(cmd, func(repo *repository.Repository) error {
				n, err := repo.DeleteExpiredSessions(ctx, time.Now())
				if err != nil {
					return fmt.Errorf("failed to purge sessions: %w", err)
				}
				slog.Info("sessions_purged", "count", n)
				return nil
			})
		},
	}
}

func createAdminCommand() *cli.Command {
	flags := append(config.DatabaseFlags(),
		&cli.StringFlag{
			Name:     "username",
			Usage:    "Admin username",
			Required: true,
			Sources:  cli.EnvVars("ADMIN_USERNAME"),
		},
		&cli.StringFlag{
			Name:     "password",
			Usage:    "Admin password",
			Required: true,
			Sources:  cli.EnvVars("ADMIN_PASSWORD"),
		},
	)

	return &cli.Command{
		Name:  "create-admin",
		Usage: "Create an admin account, also after setup has completed",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withRepository(cmd, func(repo *repository.Repository) error {
				user, err := auth.NewService(repo).CreateUser(ctx, cmd.String("username"), cmd.String("password"))
				var perr *auth.PasswordValidationError
				if errors.As(err, &perr) {
					for _, msg := range perr.Messages() {
						slog.Error("password_rejected", "reason", msg)
					}
				}
				if err != nil {
					return err
				}
				slog.Info("admin_created", "user_id", user.ID, "username", user.Username)
				return nil
			})
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Inspect or roll back the database schema",
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "Print the current schema version",
				Flags: config.DatabaseFlags(),
				Action: func(_ context.Context, cmd *cli.Command) error {
					return withSchema(cmd, func(db *sql.DB) error {
						v, err := database.Version(db)
						if err != nil {
							return fmt.Errorf("failed to read schema version: %w", err)
						}
						slog.Info("schema_version", "version", v)
						return nil
					})
				},
			},
			{
				Name:  "down",
				Usage: "Roll back the most recent migration",
				Flags: config.DatabaseFlags(),
				Action: func(_ context.Context, cmd *cli.Command) error {
					return withSchema(cmd, func(db *sql.DB) error {
						if err := database.MigrateDown(db); err != nil {
							return fmt.Errorf("failed to roll back: %w", err)
						}
						slog.Warn("migration_rolled_back")
						return nil
					})
				},
			},
		},
	}
}

// withRepository opens and migrates the configured database for a
// maintenance command.
func withRepository(cmd *cli.Command, fn func(*repository.Repository) error) error {
	return withDatabase(cmd, database.Open, func(db *sqlx.DB) error {
		return fn(repository.New(db))
	})
}

// withSchema opens the configured database without migrating it.
func withSchema(cmd *cli.Command, fn func(*sql.DB) error) error {
	return withDatabase(cmd, database.Connect, func(db *sqlx.DB) error {
		return fn(db.DB)
	})
}

func withDatabase(cmd *cli.Command, open func(string) (*sqlx.DB, error), fn func(*sqlx.DB) error) error {
	server.SetupLogger(cmd.String("log-level"), cmd.String("log-format"))

	db, err := open(cmd.String("database-dsn"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	return fn(db)
}
