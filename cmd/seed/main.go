// Comando seed: crea (o repara) el admin de bootstrap. Idempotente: si el
// usuario ya existe sólo asegura rol y flag de protección.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/corpsite/internal/config"
	"github.com/dropDatabas3/corpsite/internal/observability/logger"
	"github.com/dropDatabas3/corpsite/internal/security/password"
	"github.com/dropDatabas3/corpsite/internal/store"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath  string
		username string
		emailArg string
		pass     string
	)

	root := &cobra.Command{
		Use:   "seed",
		Short: "Siembra el usuario admin inicial",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pass == "" {
				pass = os.Getenv("SEED_ADMIN_PASSWORD")
			}
			if pass == "" {
				return fmt.Errorf("falta la contraseña (flag --password o env SEED_ADMIN_PASSWORD)")
			}
			return run(cmd.Context(), cfgPath, username, emailArg, pass)
		},
	}
	root.Flags().StringVarP(&cfgPath, "config", "c", "configs/config.yaml", "ruta del config YAML")
	root.Flags().StringVar(&username, "username", "admin", "username del admin")
	root.Flags().StringVar(&emailArg, "email", "admin@localhost", "email del admin")
	root.Flags().StringVar(&pass, "password", "", "contraseña inicial (env SEED_ADMIN_PASSWORD)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath, username, emailArg, pass string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	logger.Init(logger.Config{Env: cfg.App.Env, ServiceName: "corpsite-seed"})
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	st, err := store.New(ctx, cfg.Storage.DSN, store.Config{})
	if err != nil {
		return err
	}
	defer st.Close()

	existing, err := st.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		// ya existe: asegurar rol admin + protección
		if existing.Role != "admin" {
			if _, err := st.UpdateUserRole(ctx, existing.ID, "admin"); err != nil {
				return err
			}
		}
		if !existing.Protected {
			if err := st.MarkUserProtected(ctx, existing.ID); err != nil {
				return err
			}
		}
		fmt.Printf("admin %q ya existe (id=%s)\n", username, existing.ID)
		return nil
	case errors.Is(err, store.ErrNotFound):
		// sigue abajo
	default:
		return err
	}

	hasher := password.NewHasher(password.DefaultParams)
	policy := password.Policy{
		MinLength:     cfg.Security.PasswordPolicy.MinLength,
		RequireUpper:  cfg.Security.PasswordPolicy.RequireUpper,
		RequireLower:  cfg.Security.PasswordPolicy.RequireLower,
		RequireDigit:  cfg.Security.PasswordPolicy.RequireDigit,
		RequireSymbol: cfg.Security.PasswordPolicy.RequireSymbol,
	}
	if ok, reasons := policy.Validate(pass); !ok {
		return fmt.Errorf("la contraseña no cumple la política: %s", policy.Describe(reasons))
	}
	hash, err := hasher.Hash(pass)
	if err != nil {
		return err
	}

	u, err := st.CreateUser(ctx, &store.User{
		Username:     username,
		Email:        emailArg,
		PasswordHash: hash,
		Role:         "admin",
		Protected:    true,
	})
	if err != nil {
		return err
	}
	fmt.Printf("admin %q creado (id=%s)\n", u.Username, u.ID)
	return nil
}
