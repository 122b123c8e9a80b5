package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	authrepo "github.com/Tokarsky98/GroceryMartAI/internal/auth/repository"
	authservice "github.com/Tokarsky98/GroceryMartAI/internal/auth/service"
	cartcache "github.com/Tokarsky98/GroceryMartAI/internal/cart/cache"
	cartdomain "github.com/Tokarsky98/GroceryMartAI/internal/cart/domain"
	cartrepo "github.com/Tokarsky98/GroceryMartAI/internal/cart/repository"
	cartservice "github.com/Tokarsky98/GroceryMartAI/internal/cart/service"
	catalogrepo "github.com/Tokarsky98/GroceryMartAI/internal/catalog/repository"
	catalogservice "github.com/Tokarsky98/GroceryMartAI/internal/catalog/service"
	checkoutservice "github.com/Tokarsky98/GroceryMartAI/internal/checkout/service"
	"github.com/Tokarsky98/GroceryMartAI/internal/httpapi"
	"github.com/Tokarsky98/GroceryMartAI/internal/inventory"
	"github.com/Tokarsky98/GroceryMartAI/internal/order/publisher"
	orderrepo "github.com/Tokarsky98/GroceryMartAI/internal/order/repository"
	orderservice "github.com/Tokarsky98/GroceryMartAI/internal/order/service"
	"github.com/Tokarsky98/GroceryMartAI/pkg/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	HTTPPort  string
	JWTSecret string

	// Catalog storage: SQLite file when set, in-memory otherwise.
	CatalogDBPath         string
	CatalogMigrationsPath string

	// Cart storage: MongoDB when MONGO_URI is set, in-memory otherwise.
	MongoURI     string
	MongoDBName  string
	MongoMaxPool uint64
	MongoMinPool uint64

	// Cart cache: Redis when REDIS_ADDR is set.
	RedisAddr     string
	RedisPassword string

	// Order storage: Postgres when POSTGRES_HOST is set, in-memory
	// otherwise.
	PostgresHost         string
	PostgresPort         int
	PostgresUser         string
	PostgresPassword     string
	PostgresDB           string
	OrdersMigrationsPath string

	// Event publishing: Kafka when KAFKA_BROKERS is set, no-op otherwise.
	KafkaBrokers string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        slog.Level
}

func loadConfig() *Config {
	pgPort, _ := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))

	level := slog.LevelInfo
	if getEnv("LOG_LEVEL", "info") == "debug" {
		level = slog.LevelDebug
	}

	return &Config{
		HTTPPort:  getEnv("HTTP_PORT", "8080"),
		JWTSecret: getEnv("JWT_SECRET", "your_secret_key_here"),

		CatalogDBPath:         getEnv("CATALOG_DB_PATH", ""),
		CatalogMigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "internal/catalog/repository/migrations"),

		MongoURI:     getEnv("MONGO_URI", ""),
		MongoDBName:  getEnv("MONGO_DB_NAME", "cartdb"),
		MongoMaxPool: getEnvUint("MONGO_MAX_POOL_SIZE", 100),
		MongoMinPool: getEnvUint("MONGO_MIN_POOL_SIZE", 10),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		PostgresHost:         getEnv("POSTGRES_HOST", ""),
		PostgresPort:         pgPort,
		PostgresUser:         getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:     getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:           getEnv("POSTGRES_DB", "ordersdb"),
		OrdersMigrationsPath: getEnv("ORDERS_MIGRATIONS_PATH", "internal/order/repository/migrations"),

		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),

		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        level,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseUint(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	inv := inventory.NewStore()

	// Catalog
	var productRepo catalogrepo.ProductRepository
	if cfg.CatalogDBPath != "" {
		sqliteRepo, err := catalogrepo.NewSQLiteRepository(cfg.CatalogDBPath)
		if err != nil {
			log.Error("failed to open catalog database", slog.Any("error", err))
			os.Exit(1)
		}
		if err := sqliteRepo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
			log.Error("failed to migrate catalog database", slog.Any("error", err))
			os.Exit(1)
		}
		productRepo = sqliteRepo
		log.Info("catalog storage: sqlite", slog.String("path", cfg.CatalogDBPath))
	} else {
		productRepo = catalogrepo.NewMemoryRepository()
		log.Info("catalog storage: in-memory")
	}
	defer productRepo.Close()

	catalog := catalogservice.NewCatalogService(productRepo, inv)
	if err := catalog.Seed(ctx); err != nil {
		log.Error("failed to seed catalog", slog.Any("error", err))
		os.Exit(1)
	}

	// Carts
	var cartRepository cartrepo.CartRepository
	if cfg.MongoURI != "" {
		db, err := cartrepo.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName, cfg.MongoMaxPool, cfg.MongoMinPool)
		if err != nil {
			log.Error("failed to connect to MongoDB", slog.Any("error", err))
			os.Exit(1)
		}
		defer db.Client().Disconnect(ctx)
		mongoRepo := cartrepo.NewMongoRepository(db)
		if err := mongoRepo.CreateIndexes(ctx); err != nil {
			log.Error("failed to create cart indexes", slog.Any("error", err))
			os.Exit(1)
		}
		cartRepository = mongoRepo
		log.Info("cart storage: mongodb", slog.String("db", cfg.MongoDBName))
	} else {
		cartRepository = cartrepo.NewMemoryRepository()
		log.Info("cart storage: in-memory")
	}

	var cache cartcache.CartCache = noopCache{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("Redis connection failed", slog.Any("error", err))
			os.Exit(1)
		}
		cache = cartcache.NewRedisCache(redisClient)
		log.Info("cart cache: redis", slog.String("addr", cfg.RedisAddr))
	}

	carts := cartservice.NewCartService(cartRepository, cache, inv, log)

	// Orders
	var orderRepository orderrepo.OrderRepository
	if cfg.PostgresHost != "" {
		creds := &orderrepo.Credentials{
			Host:              cfg.PostgresHost,
			Port:              cfg.PostgresPort,
			User:              cfg.PostgresUser,
			Password:          cfg.PostgresPassword,
			DBName:            cfg.PostgresDB,
			MigrationsDirPath: cfg.OrdersMigrationsPath,
		}
		pgRepo, err := orderrepo.NewPostgresRepository(creds)
		if err != nil {
			log.Error("failed to connect to Postgres", slog.Any("error", err))
			os.Exit(1)
		}
		if err := pgRepo.RunMigrations(creds); err != nil {
			log.Error("failed to migrate orders database", slog.Any("error", err))
			os.Exit(1)
		}
		orderRepository = pgRepo
		log.Info("order storage: postgres", slog.String("db", cfg.PostgresDB))
	} else {
		orderRepository = orderrepo.NewMemoryRepository()
		log.Info("order storage: in-memory")
	}
	defer orderRepository.Close()

	var events orderservice.EventPublisher = publisher.NoopPublisher{}
	if cfg.KafkaBrokers != "" {
		kafkaPub := publisher.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ",")...)
		defer kafkaPub.Close()
		events = kafkaPub
		log.Info("order events: kafka", slog.String("brokers", cfg.KafkaBrokers))
	}

	ledger := orderservice.NewLedger(orderRepository, carts, inv, events, log)
	checkout := checkoutservice.NewCheckout(ledger, log)

	auth := authservice.NewAuthService(authrepo.NewMemoryRepository(), []byte(cfg.JWTSecret), log)
	if err := auth.Seed(ctx); err != nil {
		log.Error("failed to seed accounts", slog.Any("error", err))
		os.Exit(1)
	}

	router := httpapi.NewRouter(httpapi.Services{
		Auth:           auth,
		Catalog:        catalog,
		Carts:          carts,
		Checkout:       checkout,
		Ledger:         ledger,
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", slog.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case <-gCtx.Done():
			return gCtx.Err()
		}

		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("server exited")
}

// noopCache satisfies the cart cache interface when no Redis is
// configured; every read is a miss.
type noopCache struct{}

func (noopCache) Get(context.Context, string) (*cartdomain.Cart, error) {
	return nil, cartcache.ErrCacheMiss
}
func (noopCache) Set(context.Context, string, *cartdomain.Cart) error { return nil }
func (noopCache) Delete(context.Context, string) error                { return nil }
