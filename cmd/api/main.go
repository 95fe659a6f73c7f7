package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/shop-checkout/internal/api"
	"github.com/example/shop-checkout/internal/cart"
	"github.com/example/shop-checkout/internal/catalog"
	"github.com/example/shop-checkout/internal/checkout"
	"github.com/example/shop-checkout/internal/gateway"
	"github.com/example/shop-checkout/internal/identity"
	"github.com/example/shop-checkout/internal/infrastructure/kafka"
	"github.com/example/shop-checkout/internal/money"
	"github.com/example/shop-checkout/internal/order"
)

func main() {
	// Configuration from environment variables
	addr := getEnv("ADDR", ":8080")
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		log.Fatal("[API] STRIPE_SECRET_KEY environment variable is required")
	}
	currency := getEnv("CHECKOUT_CURRENCY", "usd")
	successURL := getEnv("SUCCESS_URL", "http://localhost:3000/success?session_id={CHECKOUT_SESSION_ID}")
	cancelURL := getEnv("CANCEL_URL", "http://localhost:3000/checkout")
	shippingFee := getEnvInt64("SHIPPING_FEE_MINOR_UNITS", 2000)
	catalogURL := getEnv("CATALOG_URL", "http://localhost:3333")
	catalogCDNURL := getEnv("CATALOG_CDN_URL", "")
	cartID := getEnv("CART_ID", "cart-"+uuid.New().String())
	jwtSecret := os.Getenv("JWT_SECRET")
	databaseURL := os.Getenv("DATABASE_URL")
	kafkaBrokersStr := os.Getenv("KAFKA_BROKERS")
	kafkaTopic := getEnv("KAFKA_TOPIC", "cart-events")

	log.Println("[API] ========================================")
	log.Println("[API] Shop Checkout")
	log.Println("[API] ========================================")
	log.Printf("[API] Currency: %s", currency)
	log.Printf("[API] Shipping: %s", money.Format(money.MinorUnits(shippingFee)))
	log.Printf("[API] Cart: %s", cartID)

	catalogClient := catalog.NewClient(catalogURL, catalogCDNURL)

	var opts []cart.Option
	var repo *cart.PostgresRepository

	// Optional cart durability
	if databaseURL != "" {
		db, err := cart.ConnectPostgres(databaseURL)
		if err != nil {
			log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()

		repo = cart.NewPostgresRepository(db)
		if err := repo.InitSchema(context.Background()); err != nil {
			log.Fatalf("[API] Failed to init cart schema: %v", err)
		}
		opts = append(opts, cart.WithRepository(repo))
		log.Println("[API] Cart persistence: PostgreSQL")
	}

	// Optional mutation notifications
	var producer *kafka.Producer
	if kafkaBrokersStr != "" {
		producer = kafka.NewProducer(strings.Split(kafkaBrokersStr, ","), kafkaTopic)
		defer producer.Close()
		opts = append(opts, cart.WithObserver(producer.CartObserver()))
		log.Printf("[API] Cart notifications: Kafka topic %s", kafkaTopic)
	}

	store := cart.NewStore(cartID, opts...)
	if repo != nil {
		restoreCart(store, repo, catalogClient)
	}

	stripeGateway := gateway.NewStripeGateway(stripeKey)
	handlers := api.NewHandlers(api.Config{
		Store:          store,
		Catalog:        catalogClient,
		Builder:        checkout.NewBuilder(currency),
		Gateway:        stripeGateway,
		Reconstructor:  order.NewReconstructor(stripeGateway, money.MinorUnits(shippingFee)),
		Identity:       identity.NewResolver(jwtSecret),
		SuccessURL:     successURL,
		CancelURL:      cancelURL,
		GatewayTimeout: 30 * time.Second,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: api.NewRouter(handlers),
	}

	go func() {
		log.Printf("[API] Server started on %s", addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}

// restoreCart reloads the persisted {product id, quantity} records and
// re-fetches each product from the catalog. Products that became unavailable
// since the last session are skipped.
func restoreCart(store *cart.Store, repo *cart.PostgresRepository, catalogClient *catalog.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	records, err := repo.Load(ctx, store.ID())
	if err != nil {
		log.Printf("[API] Failed to load persisted cart %s: %v", store.ID(), err)
		return
	}
	if len(records) == 0 {
		return
	}

	items := make([]cart.Item, 0, len(records))
	for _, record := range records {
		product, err := catalogClient.GetProduct(ctx, record.ProductID)
		if err != nil {
			log.Printf("[API] Skipping persisted cart item %s: %v", record.ProductID, err)
			continue
		}
		items = append(items, cart.Item{Product: product, Quantity: record.Quantity})
	}
	store.Restore(items)
	log.Printf("[API] Restored %d cart items for %s", len(items), store.ID())
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Fatalf("[API] %s must be an integer, got %q", key, value)
	}
	return parsed
}
