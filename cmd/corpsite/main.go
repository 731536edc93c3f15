package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dropDatabas3/corpsite/internal/audit"
	"github.com/dropDatabas3/corpsite/internal/auth"
	"github.com/dropDatabas3/corpsite/internal/config"
	"github.com/dropDatabas3/corpsite/internal/email"
	httpx "github.com/dropDatabas3/corpsite/internal/http"
	"github.com/dropDatabas3/corpsite/internal/http/router"
	jwtx "github.com/dropDatabas3/corpsite/internal/jwt"
	"github.com/dropDatabas3/corpsite/internal/observability/logger"
	"github.com/dropDatabas3/corpsite/internal/rate"
	"github.com/dropDatabas3/corpsite/internal/security/password"
	"github.com/dropDatabas3/corpsite/internal/store"
)

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:   "corpsite",
		Short: "Backend del sitio corporativo (contenido + auth + RBAC)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgPath)
		},
	}
	root.Flags().StringVarP(&cfgPath, "config", "c", "configs/config.yaml", "ruta del config YAML")

	if err := root.Execute(); err != nil {
		logger.L().Fatal("no se pudo arrancar", logger.Err(err))
	}
}

func run(cfgPath string) error {
	// .env sólo pisa lo que no esté ya en el entorno
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       os.Getenv("LOG_LEVEL"),
		ServiceName: "corpsite",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// storage
	st, err := store.New(ctx, cfg.Storage.DSN, store.Config{
		MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	// firma de tokens
	keys, err := jwtx.LoadOrCreate(cfg.JWT.KeyFile)
	if err != nil {
		return err
	}
	issuer := jwtx.NewIssuer(cfg.JWT.Issuer, keys, cfg.AccessTTL(), cfg.RefreshTTL())
	log.Info("clave de firma lista", zap.String("kid", keys.KID))

	// redis opcional: rate limiting distribuido + readyz
	var (
		redisClient   *rdb.Client
		checkRedis    func(ctx context.Context) error
		loginLimiter  rate.Limiter
		forgotLimiter rate.Limiter
	)
	if cfg.Cache.Kind == "redis" && cfg.Cache.Redis.Addr != "" {
		redisClient = rdb.NewClient(&rdb.Options{Addr: cfg.Cache.Redis.Addr, DB: cfg.Cache.Redis.DB})
		checkRedis = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		defer func() { _ = redisClient.Close() }()
	}

	if cfg.Rate.Enabled {
		loginWindow, _ := time.ParseDuration(cfg.Rate.Login.Window)
		forgotWindow, _ := time.ParseDuration(cfg.Rate.Forgot.Window)
		if redisClient != nil {
			prefix := cfg.Cache.Redis.Prefix + "rl:"
			loginLimiter = rate.NewRedisLimiter(redisClient, prefix+"login:", cfg.Rate.Login.Limit, loginWindow)
			forgotLimiter = rate.NewRedisLimiter(redisClient, prefix+"forgot:", cfg.Rate.Forgot.Limit, forgotWindow)
		} else {
			loginLimiter = rate.NewMemoryLimiter(cfg.Rate.Login.Limit, loginWindow)
			forgotLimiter = rate.NewMemoryLimiter(cfg.Rate.Forgot.Limit, forgotWindow)
		}
	}

	// mail
	var sender email.Sender
	if cfg.SMTP.Host != "" {
		sender = &email.SMTPSender{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			From:               cfg.SMTP.From,
			User:               cfg.SMTP.Username,
			Pass:               cfg.SMTP.Password,
			TLSMode:            cfg.SMTP.TLS,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		}
	}
	templates, err := email.LoadTemplates(cfg.Email.TemplatesDir)
	if err != nil {
		return err
	}

	recorder := audit.NewRecorder(st)

	authSvc := auth.NewService(auth.Options{
		Users:   st,
		Tickets: st,
		Hasher:  password.NewHasher(password.DefaultParams),
		Policy: password.Policy{
			MinLength:     cfg.Security.PasswordPolicy.MinLength,
			RequireUpper:  cfg.Security.PasswordPolicy.RequireUpper,
			RequireLower:  cfg.Security.PasswordPolicy.RequireLower,
			RequireDigit:  cfg.Security.PasswordPolicy.RequireDigit,
			RequireSymbol: cfg.Security.PasswordPolicy.RequireSymbol,
		},
		Issuer:    issuer,
		Sender:    sender,
		Templates: templates,
		Audit:     recorder,
		BaseURL:   cfg.Email.BaseURL,
		ResetTTL:  cfg.Auth.Reset.TTL,
	})
	authSvc.EchoResetLinks = cfg.Email.DebugEchoLinks

	metricsHandler, err := httpx.RegisterMetrics(nil, st.Pool)
	if err != nil {
		return err
	}

	handler := router.New(router.Deps{
		Auth:               authSvc,
		Store:              st,
		Audit:              recorder,
		Issuer:             issuer,
		CheckRedis:         checkRedis,
		LoginLimiter:       loginLimiter,
		ForgotLimiter:      forgotLimiter,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Metrics:            metricsHandler,
	})

	// limpieza periódica de tickets vencidos
	go func() {
		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := st.PurgeResetTickets(ctx, 24*time.Hour); err != nil {
					log.Warn("purge de tickets falló", logger.Err(err))
				} else if n > 0 {
					log.Info("tickets de reset purgados", zap.Int64("count", n))
				}
			}
		}
	}()

	return httpx.Serve(ctx, cfg.Server.Addr, handler)
}
