package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	echoapi "github.com/sentinelsso/sentinel/api/echo"
	"github.com/sentinelsso/sentinel/cache"
	cacheredis "github.com/sentinelsso/sentinel/cache/redis"
	"github.com/sentinelsso/sentinel/config"
	"github.com/sentinelsso/sentinel/domain"
	"github.com/sentinelsso/sentinel/internal/flow"
	"github.com/sentinelsso/sentinel/log"
	"github.com/sentinelsso/sentinel/services"
	"github.com/sentinelsso/sentinel/storage/memory"
	"github.com/sentinelsso/sentinel/storage/mongodb"
	"github.com/sentinelsso/sentinel/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logLevel, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logLevel = zerolog.InfoLevel
	}
	logger := log.NewZerologAdapter(logLevel, cfg.LogPretty)

	ctx := context.Background()
	logger.Info(ctx, "starting sentinel authorization server", map[string]interface{}{
		"http_port":     cfg.HTTPPort,
		"store_backend": cfg.StoreBackend,
		"cache_backend": cfg.CacheBackend,
		"log_level":     logLevel.String(),
	})

	tp, err := tracing.InitTracerProvider("sentinel")
	if err != nil {
		logger.Fatal(ctx, "failed to initialize tracer provider", err, nil)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "tracer provider shutdown failed", err, nil)
		}
	}()

	// Storage backend.
	var repo domain.OAuthRepository
	var mongoClient *mongo.Client
	switch cfg.StoreBackend {
	case config.StoreBackendMongo:
		client, db, connErr := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
		if connErr != nil {
			logger.Fatal(ctx, "failed to connect to mongodb", connErr, nil)
		}
		mongoClient = client
		if idxErr := mongodb.EnsureIndexes(ctx, db); idxErr != nil {
			logger.Fatal(ctx, "failed to ensure mongodb indexes", idxErr, nil)
		}
		repo = mongodb.NewStore(db, logger)
	default:
		repo = memory.NewStore()
	}
	if mongoClient != nil {
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				logger.Error(context.Background(), "mongodb disconnect failed", err, nil)
			}
		}()
	}

	// Validation cache.
	var tokenCache cache.TokenStore
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if pingErr := rdb.Ping(ctx).Err(); pingErr != nil {
			logger.Fatal(ctx, "failed to connect to redis", pingErr, nil)
		}
		tokenCache = cacheredis.NewTokenStore(rdb, cfg.RedisPrefix)
	default:
		tokenCache = cache.NewMemoryTokenStore(cfg.AccessTokenTTL())
	}
	defer func() {
		if err := tokenCache.Close(); err != nil {
			logger.Error(context.Background(), "token cache close failed", err, nil)
		}
	}()

	// Services.
	tokenService := services.NewTokenService(repo, tokenCache, logger,
		cfg.AuthCodeTTL(), cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
	oauthService := services.NewOAuthService(repo, tokenService, logger)
	clientService := services.NewClientService(repo, logger)
	userService := services.NewUserService(repo, logger)

	// Login-resumption stores.
	pendingStore := flow.NewPendingStore(cfg.PendingAuthTTL())
	defer pendingStore.Close()
	sessionStore := flow.NewSessionStore(cfg.SessionTTL())
	defer sessionStore.Close()

	if cfg.SeedDevData {
		seedDevData(ctx, clientService, userService, logger)
	}

	// Housekeeping sweep. Expiry stays correct without it; this just keeps
	// the stores from accumulating dead rows.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if cfg.SweepIntervalMin > 0 {
		go runSweep(sweepCtx, tokenService, logger, time.Duration(cfg.SweepIntervalMin)*time.Minute)
	}

	// HTTP server.
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	secureCookies := strings.HasPrefix(cfg.PublicURL, "https://")
	oauthAPI := echoapi.NewOAuth2API(oauthService, clientService, userService,
		pendingStore, sessionStore, logger, secureCookies)
	oauthAPI.RegisterRoutes(e)

	go func() {
		addr := ":" + cfg.HTTPPort
		logger.Info(ctx, "http server listening", map[string]interface{}{"addr": addr})
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "http server failed", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "http server shutdown failed", err, nil)
	}
}

// runSweep deletes expired codes and tokens on a fixed interval.
func runSweep(ctx context.Context, tokens *services.TokenService, logger log.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := tokens.Sweep(ctx); err != nil {
				logger.Warn(ctx, "housekeeping sweep failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}

// seedDevData registers a development client and user so the flow can be
// exercised immediately after startup. Errors are logged and ignored;
// re-seeding an existing database is expected to conflict.
func seedDevData(ctx context.Context, clients *services.ClientService, users *services.UserService, logger log.Logger) {
	_, err := clients.Register(ctx, "dev-client", "dev-secret", "Development Client",
		"http://localhost:9000/callback",
		[]string{domain.GrantTypeAuthorizationCode, domain.GrantTypeRefreshToken})
	if err != nil {
		logger.Warn(ctx, "dev client not seeded", map[string]interface{}{"error": err.Error()})
	}

	if _, err := users.Register(ctx, "dev", "devpassword"); err != nil {
		logger.Warn(ctx, "dev user not seeded", map[string]interface{}{"error": err.Error()})
	}
}
