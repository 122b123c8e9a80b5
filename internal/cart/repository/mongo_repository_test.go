package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestDB(t *testing.T) (CartRepository, func()) {
	ctx := context.Background()

	// Start MongoDB container
	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb", 100, 10)
	require.NoError(t, err)

	repo := NewMongoRepository(db)
	require.NoError(t, repo.CreateIndexes(ctx))

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func TestMongoGetCart_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	cart, err := repo.GetCart(context.Background(), "user:404")

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestMongoSetItemQuantity_NewCart(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := repo.SetItemQuantity(ctx, "user:1", 1, 3)
	require.NoError(t, err)

	cart, err := repo.GetCart(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, "user:1", cart.Key)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(1), cart.Items[0].ProductID)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestMongoSetItemQuantity_ExistingLine(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SetItemQuantity(ctx, "user:1", 1, 3))
	require.NoError(t, repo.SetItemQuantity(ctx, "user:1", 1, 7))

	cart, err := repo.GetCart(ctx, "user:1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "no duplicate lines for the same product")
	assert.Equal(t, 7, cart.Items[0].Quantity)
}

func TestMongoSetItemQuantity_SecondProduct(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SetItemQuantity(ctx, "session:abc", 1, 2))
	require.NoError(t, repo.SetItemQuantity(ctx, "session:abc", 2, 5))

	cart, err := repo.GetCart(ctx, "session:abc")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestMongoRemoveItem(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SetItemQuantity(ctx, "user:1", 1, 2))

	require.NoError(t, repo.RemoveItem(ctx, "user:1", 1))

	cart, err := repo.GetCart(ctx, "user:1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	assert.ErrorIs(t, repo.RemoveItem(ctx, "user:1", 1), ErrItemNotFound)
	assert.ErrorIs(t, repo.RemoveItem(ctx, "user:404", 1), ErrCartNotFound)
}

func TestMongoDeleteCart(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SetItemQuantity(ctx, "user:1", 1, 2))
	require.NoError(t, repo.DeleteCart(ctx, "user:1"))

	_, err := repo.GetCart(ctx, "user:1")
	assert.ErrorIs(t, err, ErrCartNotFound)

	assert.ErrorIs(t, repo.DeleteCart(ctx, "user:1"), ErrCartNotFound)
}
