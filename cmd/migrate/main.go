package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	migrations "github.com/dropDatabas3/corpsite/migrations/postgres"
)

func main() {
	_ = godotenv.Load()

	var dsn string

	open := func() (*sql.DB, error) {
		if dsn == "" {
			dsn = os.Getenv("STORAGE_DSN")
		}
		if dsn == "" {
			return nil, fmt.Errorf("falta el DSN (flag --dsn o env STORAGE_DSN)")
		}
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
		goose.SetBaseFS(migrations.Migrations)
		if err := goose.SetDialect("pgx"); err != nil {
			return nil, err
		}
		return db, nil
	}

	root := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones de esquema (goose, embebidas en el binario)",
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", "", "DSN de postgres (env STORAGE_DSN)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Aplica todas las migraciones pendientes",
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := open()
				if err != nil {
					return err
				}
				defer db.Close()
				return goose.UpContext(cmd.Context(), db, ".")
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revierte la última migración",
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := open()
				if err != nil {
					return err
				}
				defer db.Close()
				return goose.DownContext(cmd.Context(), db, ".")
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Muestra el estado de las migraciones",
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := open()
				if err != nil {
					return err
				}
				defer db.Close()
				return goose.StatusContext(cmd.Context(), db, ".")
			},
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
