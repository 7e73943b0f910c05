package main

import (
	crypto_rand "crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/mrsinham/ncdintake/internal/config"
	"github.com/mrsinham/ncdintake/internal/logging"
	"github.com/mrsinham/ncdintake/internal/mockapi"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the reference registry API",
		Long: `Start the reference registry API used for local runs and demos.

Records are kept in PostgreSQL when DATABASE_URL is set, in memory otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				cfg.Port = port
			}
			if err := cfg.ValidateServer(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runServer(cmd, cfg)
		},
	}
	cmd.Flags().String("port", "", "Listen port (default: PORT)")
	return cmd
}

func runServer(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()
	logger := logging.New(cfg.Env, cfg.LogLevel, cmd.OutOrStdout())

	secret := cfg.JWTSecret
	if secret == "" {
		// Only reachable in development.
		buf := make([]byte, 32)
		if _, err := crypto_rand.Read(buf); err != nil {
			return fmt.Errorf("generate jwt secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		logger.Warn().Msg("JWT_SECRET not set, using an ephemeral secret")
	}

	var store mockapi.Store = mockapi.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		pool, err := mockapi.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return err
		}
		defer pool.Close()
		pg := mockapi.NewPGStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		store = pg
		logger.Info().Msg("using postgres store")
	} else {
		logger.Info().Msg("DATABASE_URL not set, using in-memory store")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := mockapi.New(mockapi.Options{
		Store:       store,
		JWTSecret:   secret,
		RequireAuth: !cfg.IsDev(),
		Logger:      logger,
		Registry:    reg,
	})
	return srv.Run(ctx, ":"+cfg.Port)
}
