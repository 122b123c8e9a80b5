package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Tokarsky98/GroceryMartAI/internal/order/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*PostgresRepository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	repo, err := NewPostgresRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func newTestOrder(userID int64) *domain.Order {
	return &domain.Order{
		ID:      uuid.New(),
		CartKey: "user:1",
		UserID:  userID,
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromFloat(4.99)},
		},
		Shipping: domain.ShippingInfo{
			FullName: "John Doe",
			Email:    "user@grocery.com",
			Phone:    "123 456 789",
			Address:  "1 Main St",
			City:     "Springfield",
			ZipCode:  "12345",
		},
		Payment:   domain.PaymentSummary{CardName: "John Doe", Last4: "3456"},
		Delivery:  domain.DeliveryExpress,
		Total:     decimal.NewFromFloat(19.97),
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestCreateOrder_RoundTrip(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder(1)

	err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	fetched, err := repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, fetched.ID)
	assert.Equal(t, order.UserID, fetched.UserID)
	assert.Equal(t, order.CartKey, fetched.CartKey)
	assert.Equal(t, order.Delivery, fetched.Delivery)
	assert.Equal(t, order.Status, fetched.Status)
	assert.True(t, order.Total.Equal(fetched.Total))
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, order.Items[0].ProductID, fetched.Items[0].ProductID)
	assert.Equal(t, order.Items[0].Quantity, fetched.Items[0].Quantity)
	assert.True(t, order.Items[0].UnitPrice.Equal(fetched.Items[0].UnitPrice))
	assert.Equal(t, order.Shipping, fetched.Shipping)
	assert.Equal(t, order.Payment, fetched.Payment)
}

func TestGetOrderByID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, err := repo.GetOrderByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrdersByUserID_Scoped(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	mine := newTestOrder(7)
	require.NoError(t, repo.CreateOrder(ctx, mine))

	theirs := newTestOrder(8)
	require.NoError(t, repo.CreateOrder(ctx, theirs))

	orders, err := repo.ListOrdersByUserID(ctx, 7)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, mine.ID, orders[0].ID)
}

func TestListOrdersByUserID_NewestFirst(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	order1 := newTestOrder(9)
	require.NoError(t, repo.CreateOrder(ctx, order1))

	// Small sleep to ensure different created_at timestamps
	time.Sleep(10 * time.Millisecond)

	order2 := newTestOrder(9)
	order2.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, repo.CreateOrder(ctx, order2))

	orders, err := repo.ListOrdersByUserID(ctx, 9)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, order2.ID, orders[0].ID)
	assert.Equal(t, order1.ID, orders[1].ID)
}
