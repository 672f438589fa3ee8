package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/catering-ops/pkg/cache"
	"github.com/jakechorley/catering-ops/pkg/db"
)

var testLocationInput = LocationInput{
	Province:        "Cebu",
	City:            "Cebu City",
	Barangay:        "Lahug",
	PostalCode:      "6000",
	ServiceRadiusKm: 15,
}

func seededLocations() *mockDatabase {
	database := newMockDatabase()
	database.locations = []db.ServiceLocation{
		{ID: "l1", City: "Cebu City", IsPrimary: true},
		{ID: "l2", City: "Mandaue"},
		{ID: "l3", City: "Lapu-Lapu"},
	}
	return database
}

func primaries(locations []db.ServiceLocation) []string {
	var ids []string
	for _, l := range locations {
		if l.IsPrimary {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

func TestSetPrimary_LastTargetWins(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	locations := make([]db.ServiceLocation, 6)
	for i := range locations {
		locations[i] = db.ServiceLocation{ID: fmt.Sprintf("l%d", i)}
	}

	for round := 0; round < 50; round++ {
		var last string
		for n := rng.Intn(10) + 1; n > 0; n-- {
			last = locations[rng.Intn(len(locations))].ID
			locations = SetPrimary(locations, last)
		}
		assert.Equal(t, []string{last}, primaries(locations))
	}
}

func TestSetPrimary_DoesNotMutateInput(t *testing.T) {
	in := []db.ServiceLocation{{ID: "a", IsPrimary: true}, {ID: "b"}}

	out := SetPrimary(in, "b")

	assert.True(t, in[0].IsPrimary)
	assert.Equal(t, []string{"b"}, primaries(out))
}

func TestCreateLocation_FirstIsPrimary(t *testing.T) {
	database := newMockDatabase()
	env, _ := newTestEnv(database)

	first, err := CreateLocation(context.Background(), env, database, testLocationInput)
	require.NoError(t, err)
	assert.True(t, first.IsPrimary)

	second, err := CreateLocation(context.Background(), env, database, testLocationInput)
	require.NoError(t, err)
	assert.False(t, second.IsPrimary)

	locations, err := ListLocations(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID}, primaries(locations))
}

func TestCreateLocation_Validation(t *testing.T) {
	database := newMockDatabase()
	env, _ := newTestEnv(database)

	input := testLocationInput
	input.ServiceRadiusKm = 0
	_, err := CreateLocation(context.Background(), env, database, input)
	assert.ErrorContains(t, err, "invalid input")

	input = testLocationInput
	input.PostalCode = "60A0"
	_, err = CreateLocation(context.Background(), env, database, input)
	assert.ErrorContains(t, err, "invalid input")
}

func TestSetPrimaryLocation(t *testing.T) {
	database := seededLocations()
	env, notifier := newTestEnv(database)
	ctx := context.Background()

	for _, id := range []string{"l2", "l3", "l2"} {
		require.NoError(t, SetPrimaryLocation(ctx, env, database, id))
	}

	locations, err := ListLocations(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, []string{"l2"}, primaries(locations))
	assert.Len(t, notifier.successes, 3)
}

func TestSetPrimaryLocation_FailureRestoresPrimary(t *testing.T) {
	database := seededLocations()
	env, _ := newTestEnv(database)
	_, err := ListLocations(context.Background(), env)
	require.NoError(t, err)

	database.failWith = errors.New("constraint violation")
	require.Error(t, SetPrimaryLocation(context.Background(), env, database, "l3"))

	cached, _ := env.Cache.Get(cache.NewKey(cache.EntityLocations, testProvider))
	assert.Equal(t, []string{"l1"}, primaries(cached.([]db.ServiceLocation)))
}

func TestDeleteLocation(t *testing.T) {
	database := seededLocations()
	env, _ := newTestEnv(database)
	ctx := context.Background()

	assert.ErrorIs(t, DeleteLocation(ctx, env, database, "l1"), ErrPrimaryLocation)
	assert.ErrorIs(t, DeleteLocation(ctx, env, database, "l9"), db.ErrNotFound)

	require.NoError(t, DeleteLocation(ctx, env, database, "l2"))
	require.NoError(t, DeleteLocation(ctx, env, database, "l3"))
	// the primary can go once it is the only one left
	require.NoError(t, DeleteLocation(ctx, env, database, "l1"))

	locations, err := ListLocations(ctx, env)
	require.NoError(t, err)
	assert.Empty(t, locations)
}

func TestUpdateLocation_KeepsPrimary(t *testing.T) {
	database := seededLocations()
	env, _ := newTestEnv(database)

	require.NoError(t, UpdateLocation(context.Background(), env, database, "l1", testLocationInput))

	locations, err := ListLocations(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, "Lahug", locations[0].Barangay)
	assert.True(t, locations[0].IsPrimary)
}
