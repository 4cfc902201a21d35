package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	domorder "example.com/orderdesk/internal/domain/order"
	"example.com/orderdesk/internal/infra/logging"
	mongostore "example.com/orderdesk/internal/infra/persistence/mongo"
)

var catalogue = []struct{ name, image string }{
	{"Ceramic Mug", "image-a1b2c3mug-800x800-png"},
	{"Linen Tote", "image-d4e5f6tote-1024x768-jpg"},
	{"Desk Lamp", "image-0f9e8dlamp-600x900-webp"},
	{"Notebook", "https://images.example.com/notebook.jpg"},
	{"Wool Scarf", "image-77aa88scarf-1200x1200-jpg"},
}

var customers = []struct{ name, email, city, zip string }{
	{"Jane Roe", "jane@example.com", "Lisbon", "1000-001"},
	{"John Doe", "john@example.com", "Porto", "4000-002"},
	{"Ana Silva", "ana@example.com", "Braga", "4700-003"},
	{"Lee Wong", "lee@example.com", "Faro", "8000-004"},
}

func main() {
	_ = godotenv.Load()
	uri := flag.String("mongo-uri", getenv("MONGO_URI", "mongodb://localhost:27017"), "MongoDB URI")
	dbName := flag.String("db", getenv("MONGO_DB", "shop"), "database name")
	count := flag.Int("orders", 12, "number of orders to write")
	flag.Parse()

	logger := logging.New(os.Stdout, getenv("LOG_LEVEL", "info"), "text")
	if err := run(*uri, *dbName, *count, logger); err != nil {
		logger.Error("seed failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(uri, dbName string, count int, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongostore.Connect(ctx, uri)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	products := make([]mongostore.SeedProduct, 0, len(catalogue))
	for _, c := range catalogue {
		products = append(products, mongostore.SeedProduct{
			ID:    uuid.NewString(),
			Name:  c.name,
			Image: c.image,
		})
	}

	statuses := domorder.Statuses()
	now := time.Now().UTC()
	orders := make([]mongostore.SeedOrder, 0, count)
	for i := range count {
		cust := customers[i%len(customers)]
		n := 1 + rand.IntN(3)
		ids := make([]string, 0, n)
		for j := range n {
			ids = append(ids, products[(i+j)%len(products)].ID)
		}
		total := float64(10+rand.IntN(190)) + 0.99
		orders = append(orders, mongostore.SeedOrder{
			ID:              uuid.NewString(),
			FullName:        cust.name,
			Email:           cust.email,
			Phone:           fmt.Sprintf("+351 91%07d", rand.IntN(10_000_000)),
			Address:         fmt.Sprintf("%d Rua Central", 1+i),
			City:            cust.city,
			ZipCode:         cust.zip,
			TotalPrice:      total,
			DiscountedPrice: total * 0.9,
			OrderDate:       now.Add(-time.Duration(i) * 26 * time.Hour).Format(time.RFC3339),
			Status:          string(statuses[i%len(statuses)]),
			ProductIDs:      ids,
		})
	}

	if err := mongostore.Seed(ctx, client.Database(dbName), products, orders); err != nil {
		return err
	}
	logger.Info("seeded", slog.Int("products", len(products)), slog.Int("orders", len(orders)))
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
