package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/config"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/rules"
	s3infra "github.com/Vijayapardhu/risbow-backend-sub001/internal/infra/s3"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/jobs/expiry"
	pgrepo "github.com/Vijayapardhu/risbow-backend-sub001/internal/repo/postgres"
	redrepo "github.com/Vijayapardhu/risbow-backend-sub001/internal/repo/redis"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/services/adminauth"
	auditsvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/audit"
	contentsvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/content"
	discsvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/discipline"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/services/evidence"
	flagsvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/flags"
	modsvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/moderation"
	strikesvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/strikes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	sweepJob   *expiry.Job
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	flagRepo := pgrepo.NewFlagRepo(pool)
	strikeRepo := pgrepo.NewStrikeRepo(pool)
	disciplineRepo := pgrepo.NewDisciplineRepo(pool)
	vendorRepo := pgrepo.NewVendorRepo(pool)
	productRepo := pgrepo.NewProductRepo(pool)
	productImageRepo := pgrepo.NewProductImageRepo(pool)
	reviewRepo := pgrepo.NewReviewRepo(pool)
	bannerRepo := pgrepo.NewBannerRepo(pool)
	auditRepo := pgrepo.NewAuditRepo(pool)
	vendorLockRepo := redrepo.NewVendorLockRepo(redisClient, cfg.Moderation.VendorLockTTL)

	evidenceStorage := evidence.NewStorage(s3Client, cfg.S3.Bucket)
	auditRecorder := auditsvc.NewRecorder(auditRepo, log)
	registry := contentsvc.NewRegistry(productRepo, productImageRepo, reviewRepo, vendorRepo, bannerRepo)

	disciplineService := discsvc.NewService(discsvc.Dependencies{
		Pool:        pool,
		Disciplines: disciplineRepo,
		Vendors:     vendorRepo,
		Strikes:     strikeRepo,
		Audit:       auditRecorder,
		Logger:      log,
	}, thresholdsFromConfig(cfg.Moderation.Thresholds))

	strikeService := strikesvc.NewService(strikesvc.Dependencies{
		Pool:       pool,
		Strikes:    strikeRepo,
		Vendors:    vendorRepo,
		Discipline: disciplineService,
		Locker:     vendorLockRepo,
		Audit:      auditRecorder,
		Signer:     evidenceStorage,
		Logger:     log,
	}, rules.DefaultScoringTables())

	flagService := flagsvc.NewService(flagRepo, registry, auditRecorder, log, flagsvc.Config{
		AutoFlagKeywords: cfg.Moderation.AutoFlagKeywords,
	})

	moderationService := modsvc.NewService(flagRepo, registry, strikeService, auditRecorder, log)
	authService := adminauth.NewService(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	sweepJob := expiry.New(disciplineService, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:       authService,
		FlagService:       flagService,
		ModerationService: moderationService,
		StrikeService:     strikeService,
		DisciplineService: disciplineService,
		Logger:            log,
		Config:            cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		sweepJob:   sweepJob,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// RunSweepLoop runs the discipline expiry sweep on the configured interval
// until the context is cancelled. The first sweep runs immediately.
func (a *App) RunSweepLoop(ctx context.Context) error {
	if a.sweepJob == nil {
		return nil
	}

	interval := a.cfg.Moderation.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}

	if err := a.sweepJob.Run(ctx); err != nil {
		a.logger.Error("expiry sweep failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.sweepJob.Run(ctx); err != nil {
				a.logger.Error("expiry sweep failed", zap.Error(err))
			}
		}
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

func thresholdsFromConfig(tc config.ThresholdsConfig) rules.DisciplineThresholds {
	thresholds := rules.DefaultDisciplineThresholds()
	if tc.BanPoints > 0 {
		thresholds.BanPoints = tc.BanPoints
	}
	if tc.LongSuspensionCount > 0 {
		thresholds.LongSuspensionCount = tc.LongSuspensionCount
	}
	if tc.LongSuspensionDays > 0 {
		thresholds.LongSuspensionDays = tc.LongSuspensionDays
	}
	if tc.RepeatSuspensionDays > 0 {
		thresholds.RepeatSuspensionDays = tc.RepeatSuspensionDays
	}
	if tc.ShortSuspensionCount > 0 {
		thresholds.ShortSuspensionCount = tc.ShortSuspensionCount
	}
	if tc.ShortSuspensionDays > 0 {
		thresholds.ShortSuspensionDays = tc.ShortSuspensionDays
	}
	if tc.WarningCount > 0 {
		thresholds.WarningCount = tc.WarningCount
	}
	return thresholds
}
