package repository

import (
	"context"
	"testing"
	"time"

	"supply-cart/internal/database"
	"supply-cart/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a migrated PostgreSQL testcontainer and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.Migrate(connStr, zerolog.Nop()))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seedUsers inserts users with placeholder password hashes.
func seedUsers(t *testing.T, pool *pgxpool.Pool, usernames ...string) {
	ctx := context.Background()
	for _, username := range usernames {
		_, err := pool.Exec(ctx,
			`INSERT INTO users (username, password, name) VALUES ($1, 'hash', $1)`, username)
		require.NoError(t, err)
	}
}

func strPtr(s string) *string { return &s }

func newCartItem(username, name string, qty, price int64) *model.CartItem {
	return &model.CartItem{
		Username:     username,
		ItemName:     name,
		PurchaseLink: "http://example.com/" + name,
		Quantity:     qty,
		UnitPrice:    price,
		TotalPrice:   qty * price,
	}
}
