package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  category_slug TEXT NOT NULL DEFAULT '',
  price_cents INTEGER NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestRepositoryListActiveByIDs(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &Product{
		ID: "P1", Name: "Tee", Slug: "tee", PriceCents: 1999, Active: true,
	}))
	require.NoError(t, repo.Upsert(ctx, &Product{
		ID: "P2", Name: "Hoodie", Slug: "hoodie", PriceCents: 4500, Active: true,
	}))
	require.NoError(t, repo.Upsert(ctx, &Product{
		ID: "P3", Name: "Retired", Slug: "retired", PriceCents: 100, Active: false,
	}))

	products, err := repo.ListActiveByIDs(ctx, []string{"P1", "P2", "P3", "P4"})
	require.NoError(t, err)
	require.Len(t, products, 2)

	byID := map[string]Product{}
	for _, p := range products {
		byID[p.ID] = p
	}
	assert.Equal(t, "Tee", byID["P1"].Name)
	assert.Equal(t, "19.99", byID["P1"].Price().String())
	assert.Equal(t, "45", byID["P2"].Price().String())
	assert.NotContains(t, byID, "P3")
}

func TestRepositoryListActiveByIDsEmptyInput(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	products, err := repo.ListActiveByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRepositoryUpsertReplacesExistingRow(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &Product{
		ID: "P1", Name: "Tee", Slug: "tee", PriceCents: 1999, Active: true,
	}))
	require.NoError(t, repo.Upsert(ctx, &Product{
		ID: "P1", Name: "Tee v2", Slug: "tee", PriceCents: 2099, Active: true,
	}))

	products, err := repo.ListActiveByIDs(ctx, []string{"P1"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Tee v2", products[0].Name)
	assert.EqualValues(t, 2099, products[0].PriceCents)
}

func TestRepositoryUpsertRejectsNil(t *testing.T) {
	repo := NewRepository(setupCatalogTestDB(t))
	require.Error(t, repo.Upsert(context.Background(), nil))
}
