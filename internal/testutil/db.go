// Package testutil holds helpers shared by package tests that need a
// migrated database.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopwave/storefront/internal/models"
	"github.com/shopwave/storefront/pkg/db"
)

// InitTestDB opens a fresh in-memory sqlite database with every table
// migrated. It is closed when the test ends.
func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	if err := gdb.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return gdb
}

// CreateProduct inserts a product priced at price. Each call gets a strictly
// later created_at than the previous one in the same test.
func CreateProduct(t *testing.T, gdb *gorm.DB, name, description, price string) models.Product {
	t.Helper()
	p := models.Product{
		Name:        name,
		Description: description,
		Price:       decimal.RequireFromString(price),
		ImageURL:    "https://img.example/" + name + ".png",
		CreatedAt:   nextCreatedAt(),
	}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

var clock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func nextCreatedAt() time.Time {
	clock = clock.Add(time.Second)
	return clock
}
