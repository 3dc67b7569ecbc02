package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

func TestSetupTestDB(t *testing.T) {
	db := SetupTestDB(t, Laptop, Mouse)

	laptop := db.MustProduct("Laptop")
	assert.Positive(t, laptop.ID)

	sale := db.AddSale("Mouse", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), 3)
	assert.Equal(t, "4500", sale.Revenue.String())
	assert.Equal(t, "2100", sale.Profit.String())

	sales, err := db.Storage.ListSales(context.Background(), service.SaleFilter{})
	require.NoError(t, err)
	assert.Len(t, sales, 1)

	// The package-level fixture is not modified by seeding.
	assert.Zero(t, Laptop.ID)
}

func TestSetupTestDBWithOptions_CustomSetup(t *testing.T) {
	called := false
	db := SetupTestDBWithOptions(t, TestDBOptions{
		Products: []model.Product{Keyboard},
		CustomSetup: func(ctx context.Context, s service.Storage) error {
			called = true
			_, err := s.GetProductByName(ctx, "keyboard")
			return err
		},
	})

	assert.True(t, called)
	assert.NotNil(t, db.MustProduct("Keyboard"))
}
