package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jwong2529/humor-study/internal/config"
	s3infra "github.com/jwong2529/humor-study/internal/infra/s3"
	pgrepo "github.com/jwong2529/humor-study/internal/repo/postgres"
	redrepo "github.com/jwong2529/humor-study/internal/repo/redis"
	analyticsvc "github.com/jwong2529/humor-study/internal/services/analytics"
	authsvc "github.com/jwong2529/humor-study/internal/services/auth"
	feedsvc "github.com/jwong2529/humor-study/internal/services/feed"
	mediasvc "github.com/jwong2529/humor-study/internal/services/media"
	ratesvc "github.com/jwong2529/humor-study/internal/services/rate"
	votesvc "github.com/jwong2529/humor-study/internal/services/votes"
	"github.com/jwong2529/humor-study/internal/swipe"
	"github.com/jwong2529/humor-study/internal/transport/http/handlers"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, cfg.CORS, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	if pool != nil && cfg.Postgres.MigrateOnStart {
		version, dirty, err := pgrepo.Migrate(pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate on start: %w", err)
		}
		log.Info("database migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}

	// Sessions and vote limits live in redis; there is no degraded mode without it.
	redisClient, err := redrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("init redis: %w", err)
	}

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	captionRepo := pgrepo.NewCaptionRepo(pool)
	voteRepo := pgrepo.NewVoteRepo(pool)
	eventRepo := pgrepo.NewEventRepo(pool)

	authService := authsvc.NewService(authsvc.NewSigner(cfg.Auth.JWTSecret), sessionRepo, cfg.Auth.SessionTTL)
	analyticsService := analyticsvc.NewService(eventRepo, analyticsvc.Config{
		MaxBatchSize: cfg.Events.MaxBatchSize,
	})
	mediaStorage := mediasvc.NewS3Storage(s3Client)
	resolver := mediasvc.NewResolver(mediaStorage, mediasvc.Config{
		DefaultBucket: cfg.S3.Bucket,
		SignedURLTTL:  cfg.S3.SignedURLTTL,
	})
	feedService := feedsvc.NewService(captionRepo, resolver, feedsvc.Config{
		Limit:   cfg.Feed.Limit,
		Shuffle: cfg.Feed.Shuffle,
	}, log)
	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Votes.RatePerMinute, cfg.Votes.RatePer10Sec)
	voteService := votesvc.NewService(votesvc.Dependencies{
		Store:   voteRepo,
		Limiter: rateLimiter,
		Events:  analyticsService,
		Logger:  log,
	})

	checks := map[string]handlers.Pinger{
		"redis": handlers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}),
		"postgres": handlers.PingFunc(func(ctx context.Context) error {
			if pool == nil {
				return errors.New("postgres pool is nil")
			}
			return pool.Ping(ctx)
		}),
		"s3": handlers.PingFunc(func(ctx context.Context) error {
			return mediaStorage.BucketExists(ctx, cfg.S3.Bucket)
		}),
	}

	RegisterRoutes(r, Dependencies{
		Tokens:           authService,
		Sessions:         authService,
		AnalyticsService: analyticsService,
		FeedService:      feedService,
		VoteService:      voteService,
		HealthChecks:     checks,
		Swipe:            SwipeConfig(cfg.Swipe),
		FrameInterval:    cfg.Swipe.FrameInterval,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		Logger:           log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

// SwipeConfig maps the config section onto the engine's tuning.
func SwipeConfig(c config.SwipeConfig) swipe.Config {
	cfg := swipe.DefaultConfig()
	cfg.VelocityThreshold = c.VelocityThreshold
	cfg.AdvanceDelay = c.AdvanceDelay
	cfg.ViewportWidth = c.ViewportWidth
	cfg.ExitMargin = c.ExitMargin
	cfg.SubmitTimeout = c.SubmitTimeout
	return cfg
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
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
