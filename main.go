package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"storefront-service/handlers"
	"storefront-service/internal/auth"
	"storefront-service/internal/cart"
	"storefront-service/internal/orders"
	"storefront-service/internal/products"
	"storefront-service/internal/shop"
	"storefront-service/internal/stores/kafka"
	"storefront-service/internal/stores/postgres"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := postgres.OpenDB()
	if err != nil {
		log.Fatalf("failed to connect to the database: %v", err)
	}
	defer db.Close()

	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := postgres.RunMigrations(db, migrationsDir); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	publicPEM, err := os.ReadFile(envOrDefault("JWT_PUBLIC_KEY_FILE", "pubkey.pem"))
	if err != nil {
		log.Fatalf("failed to read JWT public key: %v", err)
	}
	keys, err := auth.NewKeys(publicPEM, nil)
	if err != nil {
		log.Fatalf("failed to parse JWT keys: %v", err)
	}

	productsConf, err := products.NewConf(db)
	if err != nil {
		log.Fatalf("failed to init products: %v", err)
	}
	cartConf, err := cart.NewConf(db)
	if err != nil {
		log.Fatalf("failed to init cart: %v", err)
	}
	shopConf, err := shop.NewConf(db)
	if err != nil {
		log.Fatalf("failed to init shop config: %v", err)
	}
	ordersConf, err := orders.NewConf(db, shopConf)
	if err != nil {
		log.Fatalf("failed to init orders: %v", err)
	}

	// Event publishing is optional: without brokers the service runs, it
	// just does not fan out lifecycle events.
	var kafkaConf *kafka.Conf
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kafkaConf, err = kafka.NewConf(strings.Split(brokers, ","))
		if err != nil {
			log.Fatalf("failed to init kafka producer: %v", err)
		}
		defer kafkaConf.Close()
	} else {
		slog.Warn("KAFKA_BROKERS not set, lifecycle events disabled")
	}

	prefix := envOrDefault("SERVICE_ENDPOINT_PREFIX", "/v1")
	port := envOrDefault("APP_PORT", "8080")

	r := handlers.API(prefix, keys, ordersConf, productsConf, cartConf, shopConf, kafkaConf)

	slog.Info("starting storefront service", slog.String("port", port))
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
