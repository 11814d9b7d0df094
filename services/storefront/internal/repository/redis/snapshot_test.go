package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/FreshMarket/pkg/errors"
	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
	"github.com/utafrali/FreshMarket/services/storefront/internal/repository"
)

func setupTestRedis(t *testing.T) (*SnapshotRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewSnapshotRepository(client, 24*time.Hour)
	return repo, mr
}

func sampleItems() []domain.LineItem {
	ppp := decimal.RequireFromString("120")
	return []domain.LineItem{
		{
			Listing: domain.Listing{
				ID:          "p1",
				Name:        "Tomatoes",
				VendorID:    "v1",
				MarketID:    "m1",
				MarketName:  "North Market",
				PricingMode: domain.PricingModeUnit,
				UnitPrice:   decimal.RequireFromString("25.50"),
			},
			Quantity: 3,
		},
		{
			Listing: domain.Listing{
				ID:           "L3",
				Name:         "Carrots",
				VendorID:     "v2",
				MarketID:     "m1",
				PricingMode:  domain.PricingModePack,
				PackSize:     12,
				PricePerPack: &ppp,
			},
			Quantity:      1,
			NumberOfPacks: 2,
		},
	}
}

// ---------------------------------------------------------------------------
// Get
// ---------------------------------------------------------------------------

func TestSnapshotRepository_Get_Success(t *testing.T) {
	repo, mr := setupTestRedis(t)

	data, err := json.Marshal(sampleItems())
	require.NoError(t, err)
	require.NoError(t, mr.Set("storefront:s1:cart", string(data)))

	var got []domain.LineItem
	err = repo.Get(context.Background(), "s1", repository.KeyCart, &got)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ID)
	assert.True(t, decimal.RequireFromString("25.5").Equal(got[0].UnitPrice))
	assert.Equal(t, 2, got[1].NumberOfPacks)
	require.NotNil(t, got[1].PricePerPack)
}

func TestSnapshotRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	var got []domain.LineItem
	err := repo.Get(context.Background(), "nobody", repository.KeyCart, &got)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Nil(t, got)
}

func TestSnapshotRepository_Get_InvalidJSON(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("storefront:s1:favorites", "{{not-valid-json"))

	var got []domain.Listing
	err := repo.Get(context.Background(), "s1", repository.KeyFavorites, &got)

	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrCorrupt)
	assert.Contains(t, err.Error(), "unmarshal favorites")
}

func TestSnapshotRepository_Get_WrongShape(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("storefront:s1:cart", `{"items":"nope"}`))

	var got []domain.LineItem
	err := repo.Get(context.Background(), "s1", repository.KeyCart, &got)

	assert.ErrorIs(t, err, repository.ErrCorrupt)
}

func TestSnapshotRepository_Get_RedisDown(t *testing.T) {
	repo, mr := setupTestRedis(t)
	mr.Close()

	var got []domain.LineItem
	err := repo.Get(context.Background(), "s1", repository.KeyCart, &got)

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.NotErrorIs(t, err, repository.ErrCorrupt)
	assert.Contains(t, err.Error(), "redis get cart")
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

func TestSnapshotRepository_Save_RoundTrip(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()
	items := sampleItems()

	require.NoError(t, repo.Save(ctx, "s1", repository.KeyCart, items))
	assert.True(t, mr.Exists("storefront:s1:cart"))

	var got []domain.LineItem
	require.NoError(t, repo.Get(ctx, "s1", repository.KeyCart, &got))

	require.Len(t, got, len(items))
	for i := range items {
		assert.Equal(t, items[i].ID, got[i].ID)
		assert.Equal(t, items[i].Quantity, got[i].Quantity)
		assert.Equal(t, items[i].NumberOfPacks, got[i].NumberOfPacks)
		assert.Equal(t, items[i].MarketID, got[i].MarketID)
		assert.True(t, items[i].UnitPrice.Equal(got[i].UnitPrice))
	}
}

func TestSnapshotRepository_Save_TTL(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, repo.Save(context.Background(), "s1", repository.KeyComparison, []domain.Listing{{ID: "a"}}))

	ttl := mr.TTL("storefront:s1:comparison")
	assert.True(t, ttl > 23*time.Hour, "expected TTL > 23h, got %v", ttl)
	assert.True(t, ttl <= 24*time.Hour, "expected TTL <= 24h, got %v", ttl)
}

func TestSnapshotRepository_Save_Unencodable(t *testing.T) {
	repo, _ := setupTestRedis(t)

	err := repo.Save(context.Background(), "s1", repository.KeyCart, make(chan int))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal cart")
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestSnapshotRepository_Delete(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	for _, k := range repository.Keys {
		require.NoError(t, repo.Save(ctx, "s1", k, []string{}))
	}
	require.NoError(t, repo.Save(ctx, "s2", repository.KeyCart, []string{}))

	require.NoError(t, repo.Delete(ctx, "s1"))

	for _, k := range repository.Keys {
		assert.False(t, mr.Exists(repository.StorageKey("s1", k)), "key %s", k)
	}
	assert.True(t, mr.Exists("storefront:s2:cart"))
}

func TestSnapshotRepository_Delete_Missing(t *testing.T) {
	repo, _ := setupTestRedis(t)
	assert.NoError(t, repo.Delete(context.Background(), "nobody"))
}
