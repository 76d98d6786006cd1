package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jeeva2692001/mindkonnect/internal/application/audit"
	"github.com/jeeva2692001/mindkonnect/internal/application/auth"
	"github.com/jeeva2692001/mindkonnect/internal/application/otp"
	"github.com/jeeva2692001/mindkonnect/internal/application/session"
	"github.com/jeeva2692001/mindkonnect/internal/application/user"
	"github.com/jeeva2692001/mindkonnect/internal/config"
	"github.com/jeeva2692001/mindkonnect/internal/infrastructure/dynamo"
	jwtinfra "github.com/jeeva2692001/mindkonnect/internal/infrastructure/jwt"
	"github.com/jeeva2692001/mindkonnect/internal/infrastructure/memory"
	redisinfra "github.com/jeeva2692001/mindkonnect/internal/infrastructure/redis"
	"github.com/jeeva2692001/mindkonnect/internal/infrastructure/smtp"
	"github.com/jeeva2692001/mindkonnect/internal/infrastructure/sns"
	"github.com/jeeva2692001/mindkonnect/internal/pkg/logger"
	transporthttp "github.com/jeeva2692001/mindkonnect/internal/transport/http"
	"github.com/jeeva2692001/mindkonnect/internal/transport/http/middleware"
)

// ephemeral bundles the short-lived state backends.
type ephemeral struct {
	codes     otp.Store
	limiter   middleware.Limiter
	blacklist session.Blacklist
	close     func()
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.OTPPepper == "" {
		zl.Warn("OTP_PEPPER is empty; OTP digests are unkeyed")
	}

	ctx := context.Background()

	eph, err := newEphemeral(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("ephemeral store", zap.Error(err))
	}
	defer eph.close()

	awsCfg, err := dynamo.LoadAWSConfig(ctx, cfg)
	if err != nil {
		zl.Fatal("aws config", zap.Error(err))
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables, zl)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		zl.Fatal("jwt provider", zap.Error(err))
	}

	var publisher audit.EventPublisher
	if cfg.SNSSecurityTopicARN != "" {
		publisher = sns.NewPublisher(sns.NewClient(awsCfg, cfg), cfg.SNSSecurityTopicARN)
	} else {
		zl.Info("SNS_SECURITY_TOPIC_ARN not set; security events are logged only")
	}

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	recorder := audit.NewRecorder(audit.ServiceDeps{
		Store:     dynamo.NewActivityRepo(dynamoClient, cfg.DynamoTables.ActivityLogs),
		Publisher: publisher,
		Logger:    zl.Named("audit"),
	})
	issuer := session.NewIssuer(session.ServiceDeps{
		Signer:    jwtProvider,
		Blacklist: eph.blacklist,
		Logger:    zl.Named("session"),
	})

	deps := &transporthttp.Deps{
		Auth: auth.NewService(auth.ServiceDeps{
			Users:    userRepo,
			OTP:      otp.NewEngine(eph.codes, cfg.OTPTTL, cfg.OTPPepper),
			Sender:   smtp.NewOTPSender(smtp.NewMailer(cfg), cfg.SiteName, cfg.OTPTTL),
			Sessions: issuer,
			Audit:    recorder,
			Logger:   zl.Named("auth"),
		}),
		Profile: user.NewService(user.ServiceDeps{
			UserRepo: userRepo,
			Activity: recorder,
			Logger:   zl.Named("user"),
		}),
		Authenticator: issuer,
		Limiter:       eph.limiter,
		Logger:        zl.Named("http"),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv), zap.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("forced shutdown", zap.Error(err))
		return
	}
	zl.Info("server stopped")
}

func newEphemeral(ctx context.Context, cfg *config.Config, zl *zap.Logger) (*ephemeral, error) {
	if cfg.StoreBackend == config.StoreBackendMemory {
		zl.Warn("STORE_BACKEND=memory: OTP codes, rate limits and revocations are per-process")
		store := memory.NewStore(nil)
		limiter := memory.NewRateLimiter(nil)
		bl := memory.NewBlacklist(nil)
		return &ephemeral{
			codes:     store,
			limiter:   limiter,
			blacklist: bl,
			close: func() {
				store.Close()
				limiter.Close()
				bl.Close()
			},
		}, nil
	}

	rdb, err := redisinfra.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &ephemeral{
		codes:     redisinfra.NewStore(rdb),
		limiter:   redisinfra.NewRateLimiter(rdb),
		blacklist: redisinfra.NewBlacklist(rdb),
		close:     func() { _ = rdb.Close() },
	}, nil
}
