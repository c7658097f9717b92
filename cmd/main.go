package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dtroode/storefront/internal/api"
	"github.com/dtroode/storefront/internal/cli"
	"github.com/dtroode/storefront/internal/config"
	"github.com/dtroode/storefront/internal/logger"
	"github.com/dtroode/storefront/internal/model"
	"github.com/dtroode/storefront/internal/repository/postgres"
	"github.com/dtroode/storefront/internal/storage/file"
	"github.com/dtroode/storefront/internal/storage/memory"
	storage "github.com/dtroode/storefront/internal/storage/minio"
	"github.com/dtroode/storefront/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	kv, closeKV, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", "backend", cfg.Storage.Backend, "error", err)
	}
	defer func() {
		if err := closeKV.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	var sl api.SecurityLayer
	if cfg.API.CAFile != "" || cfg.API.CertFile != "" {
		sl = api.NewTLSTransport(cfg.API.CAFile, cfg.API.CertFile, cfg.API.KeyFile)
	} else {
		sl = api.NewPlainTransport()
	}

	client, err := api.NewClient(api.Config{
		BaseURL:  cfg.API.BaseURL,
		Timeout:  cfg.API.Timeout,
		Security: sl,
	}, kv, logger)
	if err != nil {
		logger.Fatal("failed to create api client", "error", err)
	}

	app := cli.NewApp(ctx, client, kv, logger, cli.Options{
		Inspector:        token.NewJWT(cfg.JWT.Secret),
		LenientBootstrap: cfg.Session.LenientBootstrap,
		Build: cli.BuildInfo{
			Version: buildVersion,
			Date:    buildDate,
			Commit:  buildCommit,
		},
	})

	logger.Debug("storefront started",
		"backend", cfg.Storage.Backend,
		"api", client.BaseURL(),
		"version", buildVersion)

	return cli.Run(ctx, app, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStorage builds the key-value store selected by the configuration.
func openStorage(ctx context.Context, cfg *config.Config, logger *logger.Logger) (model.KVStore, io.Closer, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		return file.New(cfg.Storage.Path, logger), nopCloser{}, nil

	case config.BackendMemory:
		return memory.New(), nopCloser{}, nil

	case config.BackendPostgres:
		db, err := postgres.NewConection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewKVRepository(db), db, nil

	case config.BackendMinio:
		minioClient, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
			Secure: cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		kv, err := storage.NewClient(ctx, minioClient, cfg.Minio.Bucket, cfg.Minio.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return kv, nopCloser{}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
