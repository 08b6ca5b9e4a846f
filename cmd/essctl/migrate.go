package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/essgate/internal/config"
	"github.com/dropDatabas3/essgate/internal/store"
)

func newMigrateCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones del esquema postgres (embebidas)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Aplica las migraciones pendientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(opts, func(m *store.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	})

	var yes bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Revierte todo el esquema (destructivo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("down borra todas las tablas; confirmar con --yes")
			}
			return withMigrator(opts, func(m *store.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	}
	down.Flags().BoolVar(&yes, "yes", false, "confirmar la operación")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Muestra la versión aplicada",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(opts, func(m *store.Migrator) error {
				return printVersion(cmd, m)
			})
		},
	})
	return cmd
}

func withMigrator(opts *globalOpts, fn func(*store.Migrator) error) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	if err := requirePostgres(cfg); err != nil {
		return err
	}
	m, err := store.NewMigrator(cfg.Storage.DSN)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func requirePostgres(cfg *config.Config) error {
	switch strings.ToLower(cfg.Storage.Driver) {
	case "postgres", "pg", "postgresql":
		return nil
	default:
		return fmt.Errorf("storage driver %q: se requiere postgres (STORAGE_DRIVER/STORAGE_DSN); con memory usar storage.seed_file (STORAGE_SEED_FILE)", cfg.Storage.Driver)
	}
}

func printVersion(cmd *cobra.Command, m *store.Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
	return nil
}
