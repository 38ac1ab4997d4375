package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/dillanci/settlement/internal/application/usecase"
	"github.com/dillanci/settlement/internal/domain/service"
	"github.com/dillanci/settlement/internal/infrastructure/config"
	"github.com/dillanci/settlement/internal/infrastructure/kafka"
	"github.com/dillanci/settlement/internal/infrastructure/metrics"
	pgRepo "github.com/dillanci/settlement/internal/infrastructure/postgres"
	redisinfra "github.com/dillanci/settlement/internal/infrastructure/redis"
	grpcPresentation "github.com/dillanci/settlement/internal/presentation/grpc"
	"github.com/dillanci/settlement/internal/presentation/rest"
	"github.com/dillanci/settlement/pkg/auth"
	pkgkafka "github.com/dillanci/settlement/pkg/kafka"
	"github.com/dillanci/settlement/pkg/observability"
	pkgpostgres "github.com/dillanci/settlement/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load(".env")

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.Telemetry.LogLevel,
		Format:  cfg.Telemetry.LogFormat,
		Service: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("settlement-service exited", "error", err)
		os.Exit(1)
	}
	logger.Info("settlement-service stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("starting settlement-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Initialize tracing.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.OTLPInsecure,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.WithoutCancel(ctx)) }() //nolint:errcheck // best-effort tracer shutdown
	}

	// Initialize metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.WithoutCancel(ctx)) }() //nolint:errcheck
	instruments, err := metrics.New(meterProvider.Meter(metrics.MeterName))
	if err != nil {
		return err
	}

	// Database connection.
	dbCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		MaxConns: int32(cfg.DB.MaxConns),
	}
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, dbCfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Run database migrations.
	migrationSource := "file://" + cfg.MigrationsDir
	if err := pkgpostgres.RunMigrations(dbCfg.DSN(), migrationSource); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if version, dirty, err := pkgpostgres.MigrationVersion(dbCfg.DSN(), migrationSource); err == nil {
		logger.Info("database schema ready", "version", version, "dirty", dirty)
	}

	// Redis for idempotency keys.
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Kafka producer.
	producer, err := pkgkafka.NewProducer(pkgkafka.Config{
		Brokers:       cfg.Kafka.Brokers,
		SASLEnabled:   cfg.Kafka.SASLMechanism != "",
		SASLMechanism: cfg.Kafka.SASLMechanism,
		SASLUsername:  cfg.Kafka.SASLUsername,
		SASLPassword:  cfg.Kafka.SASLPassword,
		TLS:           cfg.Kafka.TLS,
	})
	if err != nil {
		return fmt.Errorf("create kafka producer: %w", err)
	}
	defer producer.Close()

	// Wire infrastructure adapters.
	payments := pgRepo.NewSalePaymentRepo(pool)
	schedules := pgRepo.NewScheduleRepo(pool)
	mortgageFiles := pgRepo.NewMortgageFileRepo(pool)
	sales := pgRepo.NewSaleDirectory(pool)
	tx := pkgpostgres.NewTxRunner(pool)
	idempotency := redisinfra.NewIdempotencyGuard(redisClient, cfg.Redis.IdempotencyTTL)
	publisher := metrics.NewCountingPublisher(
		kafka.NewEventPublisher(producer, cfg.Kafka.Topic, logger),
		instruments,
	)
	policy := service.NewPolicy()
	clock := usecase.SystemClock

	// Wire use cases.
	recorder := usecase.NewRecordPartialPaymentUseCase(payments, schedules, tx, idempotency, publisher, policy, clock)
	useCases := grpcPresentation.UseCases{
		GetSchedule:            usecase.NewGetScheduleUseCase(schedules, policy, clock),
		PreviewSchedule:        usecase.NewPreviewScheduleUseCase(payments, policy, clock),
		CreateSchedule:         usecase.NewCreateScheduleUseCase(payments, schedules, publisher, policy, clock),
		ReplaceSchedule:        usecase.NewReplaceScheduleUseCase(schedules, publisher, policy, clock),
		MarkInstallmentPaid:    usecase.NewMarkInstallmentPaidUseCase(schedules, recorder, policy),
		OpenSalePayment:        usecase.NewOpenSalePaymentUseCase(payments, publisher, policy, clock),
		GetSalePayment:         usecase.NewGetSalePaymentUseCase(payments, policy),
		RecordPartialPayment:   recorder,
		ListPartialPayments:    usecase.NewListPartialPaymentsUseCase(payments, policy),
		GetTransferEligibility: usecase.NewGetTransferEligibilityUseCase(payments, sales, policy),
		TransferToNotary:       usecase.NewTransferToNotaryUseCase(payments, sales, sales, publisher, policy, clock),
		SubmitMortgageFile:     usecase.NewSubmitMortgageFileUseCase(mortgageFiles, publisher, policy, clock),
		GetMortgageFile:        usecase.NewGetMortgageFileUseCase(mortgageFiles, policy),
		ListMortgageFiles:      usecase.NewListMortgageFilesUseCase(mortgageFiles, policy),
		TransitionMortgageFile: usecase.NewTransitionMortgageFileUseCase(mortgageFiles, publisher, policy, clock),
	}

	// JWT service (validation-only: public key preferred, secret as fallback).
	jwtCfg := auth.JWTConfig{Issuer: cfg.Auth.JWTIssuer}
	if cfg.Auth.JWTPublicKeyFile != "" {
		keyData, err := auth.LoadKeyFromFile(cfg.Auth.JWTPublicKeyFile)
		if err != nil {
			return fmt.Errorf("load jwt public key: %w", err)
		}
		jwtCfg.PublicKeyPEM = string(keyData)
	} else {
		jwtCfg.Secret = cfg.Auth.JWTSecret
	}
	jwtSvc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return fmt.Errorf("init jwt service: %w", err)
	}

	// gRPC server.
	handler := grpcPresentation.NewSettlementHandler(useCases, logger)
	grpcServer, err := grpcPresentation.NewServer(handler, logger, jwtSvc, grpcPresentation.ServerOptions{
		ServiceName:  cfg.ServiceName,
		CertFile:     cfg.TLS.CertFile,
		KeyFile:      cfg.TLS.KeyFile,
		ClientCAFile: cfg.TLS.ClientCAFile,
		Reflection:   cfg.GRPCReflection,
		Interceptors: []grpc.UnaryServerInterceptor{instruments.UnaryServerInterceptor()},
	})
	if err != nil {
		return err
	}

	// HTTP server (health checks and metrics).
	mux := http.NewServeMux()
	rest.NewHealthHandler(cfg.ServiceName, map[string]rest.Check{
		"postgres": func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}, logger).RegisterRoutes(mux, metricsHandler)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
	}

	// Graceful shutdown.
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	return serveErr
}
