package services

import (
	"context"
	"testing"

	"fitbook/internal/models/request_models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeeder_IsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seeder := NewSeeder(store, zap.NewNop())
	input := []request_models.BusinessRequest{
		{Name: "Riverside Yoga", Address: "4 Quay St", Postcode: "se1 9pg"},
		{Name: "No Address Gym"},
	}

	first, err := seeder.Run(ctx, input)
	require.NoError(t, err)
	require.Equal(t, len(DefaultSessionTypes), first.SessionTypes)
	require.Equal(t, 1, first.BusinessesAdded)
	require.Equal(t, 1, first.BusinessesSkipped)

	// Name matching ignores case, postcodes are normalised on the way in.
	input[0].Name = "riverside yoga"
	second, err := seeder.Run(ctx, input)
	require.NoError(t, err)
	require.Zero(t, second.BusinessesAdded)
	require.Equal(t, 2, second.BusinessesSkipped)

	require.Len(t, store.data.sessionTypes, len(DefaultSessionTypes))
	require.Len(t, store.data.businesses, 1)
	for _, b := range store.data.businesses {
		require.True(t, b.ManuallyAdded)
		require.True(t, b.Approved)
		require.True(t, b.Claimable())
		require.Equal(t, "SE1 9PG", b.Postcode)
	}
}
