package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"sealreg/internal/config"
	"sealreg/internal/domain"
	"sealreg/internal/infra/cachemem"
	"sealreg/internal/infra/crypto"
	"sealreg/internal/infra/db"
	"sealreg/internal/infra/httpapi"
	"sealreg/internal/infra/policyopa"
	"sealreg/internal/infra/ratelimit"
	"sealreg/internal/usecase"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	gdb, err := db.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.Error("open database", "error", err)
		return 1
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Error("migrate database", "error", err)
		return 1
	}

	proofRepo := db.NewProofRepository(gdb)
	attesterRepo := db.NewAttesterConfigRepository(gdb)
	listRepo := db.NewAccessListRepository(gdb)
	listingRepo := db.NewListingRepository(gdb)
	receiptRepo := db.NewReceiptRepository(gdb)
	ledgerRepo := db.NewLedgerRepository(gdb)
	versionRepo := db.NewVersionRepository(gdb)

	register := &usecase.RegisterProof{
		Proofs:        proofRepo,
		Attesters:     attesterRepo,
		AttesterCache: cachemem.New(),
		Crypto:        crypto.NewService(),
		CacheTTL:      cfg.AttesterCacheTTL,
	}
	if cfg.PolicyBundlePath != "" {
		engine, err := policyopa.NewEngineFromBundlePath(context.Background(), cfg.PolicyBundlePath, cfg.PolicyBundleID)
		if err != nil {
			logger.Error("load policy bundle", "path", cfg.PolicyBundlePath, "error", err)
			return 1
		}
		register.Policy = engine
		logger.Info("policy bundle loaded", "bundle_id", cfg.PolicyBundleID, "bundle_hash", engine.BundleHash())
	}

	feeBasis, err := cfg.ParsedFeeBasis()
	if err != nil {
		logger.Error("fee basis", "error", err)
		return 1
	}

	var limiter domain.RateLimiter
	if cfg.RateLimit > 0 {
		if cfg.RedisAddr != "" {
			limiter, err = ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil)
			if err != nil {
				logger.Warn("redis rate limiter unavailable, falling back to memory", "error", err)
			}
		}
		if limiter == nil {
			limiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{})
		}
	}

	server := httpapi.NewServer(httpapi.ServerDeps{
		Register: register,
		Access:   &usecase.AccessControl{Lists: listRepo},
		Approval: &usecase.Approval{
			Lists:    listRepo,
			Listings: listingRepo,
			Receipts: receiptRepo,
			Versions: versionRepo,
		},
		Settle: &usecase.Settlement{
			Proofs:     proofRepo,
			Listings:   listingRepo,
			Receipts:   receiptRepo,
			Ledger:     ledgerRepo,
			Tx:         db.NewTxManager(gdb),
			FeeBps:     cfg.FeeBps,
			FeeBasis:   feeBasis,
			AdminToken: cfg.PlatformAdminToken,
		},
		Proofs:          proofRepo,
		Lists:           listRepo,
		Attesters:       attesterRepo,
		AdminToken:      cfg.PlatformAdminToken,
		RateLimiter:     limiter,
		RateLimit:       cfg.RateLimit,
		RateLimitWindow: cfg.RateLimitWindow,
		Logger:          logger,
		HealthCheck: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	logger.Info("listening", "addr", cfg.ListenAddr)
	if err := server.Run(cfg.ListenAddr); err != nil {
		logger.Error("server exited", "error", err)
		return 1
	}
	return 0
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
