package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"example.com/orderdesk/internal/config"
	domoperator "example.com/orderdesk/internal/domain/operator"
	domorder "example.com/orderdesk/internal/domain/order"
	"example.com/orderdesk/internal/infra/directory"
	"example.com/orderdesk/internal/infra/events"
	"example.com/orderdesk/internal/infra/imageurl"
	"example.com/orderdesk/internal/infra/logging"
	mongostore "example.com/orderdesk/internal/infra/persistence/mongo"
	mysqlstore "example.com/orderdesk/internal/infra/persistence/mysql"
	pgstore "example.com/orderdesk/internal/infra/persistence/postgres"
	"example.com/orderdesk/internal/infra/security"
	httpapi "example.com/orderdesk/internal/interface/http"
	authuc "example.com/orderdesk/internal/usecase/auth"
	orderuc "example.com/orderdesk/internal/usecase/order"
)

func main() {
	hashPassword := flag.Bool("hash-password", false, "read a password from stdin, print its bcrypt hash for ADMIN_PASSWORD_HASH and exit")
	flag.Parse()
	if *hashPassword {
		if err := printHash(); err != nil {
			fmt.Fprintln(os.Stderr, "hash-password:", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("open store", slog.String("driver", cfg.StoreDriver), slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	publisher, closePublisher := openPublisher(ctx, cfg, logger)
	defer closePublisher()

	hasher := security.NewBcryptService(0)
	switch {
	case cfg.AdminPasswordHash == "":
		logger.Warn("ADMIN_PASSWORD_HASH is empty; no operator can log in")
	case hasher.Outdated(cfg.AdminPasswordHash):
		logger.Warn("ADMIN_PASSWORD_HASH is unreadable or below the default cost; regenerate it with -hash-password")
	}
	operators := directory.NewOperators(domoperator.Operator{
		ID:           "admin",
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		Role:         domoperator.RoleSuperAdmin,
		PasswordHash: cfg.AdminPasswordHash,
	})

	tokens := security.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)
	api := httpapi.NewAPI(httpapi.Dependencies{
		AuthService:   authuc.NewService(operators, hasher, tokens),
		OrderService:  orderuc.NewService(repo, orderuc.WithPublisher(publisher), orderuc.WithLogger(logger)),
		TokenService:  tokens,
		ImageResolver: imageurl.NewResolver(cfg.ImageCDNBase, cfg.ImageProject, cfg.ImageDataset),
		Logger:        logger,
		LoginRate:     cfg.LoginRate,
		CORSOrigins:   cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Router(),
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr), slog.String("driver", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
}

func openStore(ctx context.Context, cfg *config.Config) (domorder.Repository, func(), error) {
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := pgstore.Open(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewOrderRepository(pool), pool.Close, nil
	case "mysql":
		db, err := mysqlstore.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		return mysqlstore.NewOrderRepository(db), func() { _ = db.Close() }, nil
	default:
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return mongostore.NewOrderRepository(client.Database(cfg.MongoDB)), closeFn, nil
	}
}

// openPublisher returns the redis publisher when REDIS_ADDR is set. An
// unreachable redis only loses events, so it degrades to Nop.
func openPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domorder.Publisher, func()) {
	if cfg.RedisAddr == "" {
		return events.Nop{}, func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, order events disabled",
			slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
		_ = client.Close()
		return events.Nop{}, func() {}
	}
	return events.NewRedisPublisher(client, cfg.RedisChannel), func() { _ = client.Close() }
}

func printHash() error {
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return err
		}
		return errors.New("no password on stdin")
	}
	hash, err := security.NewBcryptService(0).Hash(sc.Text())
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
