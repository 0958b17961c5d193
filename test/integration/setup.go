package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mini-eats/internal/database"
	"mini-eats/internal/importer"
	"mini-eats/internal/model"
	"mini-eats/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and applies the schema
// through the same migration the server runs.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SetupTestRedis starts a Redis container and returns a connected client.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	url, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("failed to parse redis URL: %v", err)
	}
	client := redis.NewClient(opt)

	t.Cleanup(func() {
		client.Close()
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return client
}

// staticLoader serves fixed records regardless of path.
type staticLoader map[string][]importer.Record

func (l staticLoader) Load(_ context.Context, path string) ([]importer.Record, error) {
	records, ok := l[path]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", path)
	}
	return records, nil
}

// Fixture holds the identities created by SeedCatalog.
type Fixture struct {
	CustomerID uuid.UUID
	OwnerID    uuid.UUID
}

// SeedCatalog creates a customer and a restaurant owner, then imports two
// restaurants through the catalog importer. chez-tantie belongs to the owner.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) Fixture {
	t.Helper()

	ctx := context.Background()
	fx := Fixture{CustomerID: uuid.New(), OwnerID: uuid.New()}

	for _, p := range []struct {
		id   uuid.UUID
		name string
		role model.Role
	}{
		{fx.CustomerID, "Awa Koné", model.RoleClient},
		{fx.OwnerID, "Tantie Adjoua", model.RoleRestaurant},
	} {
		_, err := pool.Exec(ctx,
			`INSERT INTO profiles (id, email, full_name, role) VALUES ($1, $2, $3, $4)`,
			p.id, p.id.String()+"@example.ci", p.name, p.role,
		)
		if err != nil {
			t.Fatalf("failed to seed profile: %v", err)
		}
	}

	loader := staticLoader{
		"catalog.jsonl.gz": {
			{
				Slug: "chez-tantie", Name: "Chez Tantie", OwnerID: &fx.OwnerID,
				Address: "Rue des Jardins, Cocody", City: "Abidjan", Category: "ivoirien",
				DeliveryFee: 1000, MinimumOrder: 2000,
				Menu: []importer.MenuItem{
					{Name: "Poulet braisé", Category: "grillades", Price: 4500},
					{Name: "Attiéké", Category: "accompagnements", Price: 1500},
				},
			},
			{
				Slug: "le-baobab", Name: "Le Baobab", Address: "Boulevard Latrille",
				City: "Abidjan", Category: "senegalais", DeliveryFee: 1500, MinimumOrder: 3000,
				Menu: []importer.MenuItem{
					{Name: "Thiéboudienne", Category: "plats", Price: 5000},
				},
			},
		},
	}

	logger := zerolog.Nop()
	im := importer.New(importer.Config{Files: []string{"catalog.jsonl.gz"}}, loader,
		repository.NewRestaurantRepository(pool, logger), logger)
	if _, err := im.Run(ctx); err != nil {
		t.Fatalf("failed to import catalog: %v", err)
	}

	return fx
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"reviews", "order_items", "orders", "products", "restaurants", "profiles"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
