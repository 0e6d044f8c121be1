package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/emberfall/internal/game/character"
	"github.com/cory-johannsen/emberfall/internal/game/stats"
	"github.com/cory-johannsen/emberfall/internal/storage/postgres"
	"github.com/cory-johannsen/emberfall/internal/testutil"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func makeTestCharacter(name string) *character.Character {
	return &character.Character{
		Name:     name,
		Level:    1,
		Gold:     25,
		Location: "market_square",
		Stats: stats.Block{
			Strength: 14, Dexterity: 12, Constitution: 12,
			Intelligence: 10, Wisdom: 10, Charisma: 8,
		},
		MaxHP:       22,
		CurrentHP:   22,
		MaxMana:     65,
		CurrentMana: 65,
	}
}

func TestCharacterRepository_Create(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, makeTestCharacter("Zara"))
	require.NoError(t, err)

	assert.Greater(t, created.ID, int64(0))
	assert.Equal(t, "Zara", created.Name)
	assert.Equal(t, 1, created.Level)
	assert.Equal(t, 25, created.Gold)
	assert.Equal(t, "market_square", created.Location)
	assert.Equal(t, 14, created.Stats.Strength)
	assert.Equal(t, 22, created.MaxHP)
	assert.Equal(t, 65, created.MaxMana)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestCharacterRepository_DuplicateNameError(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	c := makeTestCharacter("Zara")
	_, err := repo.Create(ctx, c)
	require.NoError(t, err)

	_, err = repo.Create(ctx, c)
	require.Error(t, err)
	assert.ErrorIs(t, err, postgres.ErrCharacterNameTaken)
}

func TestCharacterRepository_GetByID(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, makeTestCharacter("Zara"))
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Zara", fetched.Name)
	assert.Equal(t, 14, fetched.Stats.Strength)
}

func TestCharacterRepository_GetByID_NotFound(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	_, err := repo.GetByID(context.Background(), 99999999)
	require.Error(t, err)
	assert.ErrorIs(t, err, postgres.ErrCharacterNotFound)
}

func TestCharacterRepository_GetByName(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, makeTestCharacter("Zara"))
	require.NoError(t, err)

	fetched, err := repo.GetByName(ctx, "Zara")
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)

	_, err = repo.GetByName(ctx, "Nobody")
	assert.ErrorIs(t, err, postgres.ErrCharacterNotFound)
}

func TestCharacterRepository_List(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	chars, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, chars)
	assert.Empty(t, chars)

	_, err = repo.Create(ctx, makeTestCharacter("Alpha"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, makeTestCharacter("Beta"))
	require.NoError(t, err)

	chars, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, chars, 2)
}

func TestCharacterRepository_SaveState(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, makeTestCharacter("Zara"))
	require.NoError(t, err)

	err = repo.SaveState(ctx, created.ID, postgres.State{
		Location:    "north_gate",
		CurrentHP:   7,
		CurrentMana: 40,
		Gold:        63,
		Experience:  150,
		Level:       2,
	})
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "north_gate", fetched.Location)
	assert.Equal(t, 7, fetched.CurrentHP)
	assert.Equal(t, 40, fetched.CurrentMana)
	assert.Equal(t, 63, fetched.Gold)
	assert.Equal(t, 150, fetched.Experience)
	assert.Equal(t, 2, fetched.Level)
	assert.True(t, fetched.UpdatedAt.After(fetched.CreatedAt) || fetched.UpdatedAt.Equal(fetched.CreatedAt))
}

func TestCharacterRepository_SaveState_NotFound(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	err := repo.SaveState(context.Background(), 99999999, postgres.State{Location: "market_square", CurrentHP: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, postgres.ErrCharacterNotFound)
}

// TestCharacterRepository_Property_CreateThenGetByID verifies that for any
// valid character fields, Create followed by GetByID returns a character
// equal to the one created. A single container is shared across iterations.
func TestCharacterRepository_Property_CreateThenGetByID(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		name := uniqueName(rapid.StringMatching(`[A-Za-z][A-Za-z0-9]{1,10}`).Draw(rt, "name"))
		hp := rapid.IntRange(1, 100).Draw(rt, "hp")
		gold := rapid.IntRange(0, 10000).Draw(rt, "gold")

		c := makeTestCharacter(name)
		c.MaxHP, c.CurrentHP = hp, hp
		c.Gold = gold

		created, err := repo.Create(ctx, c)
		require.NoError(rt, err)

		fetched, err := repo.GetByID(ctx, created.ID)
		require.NoError(rt, err)

		assert.Equal(rt, created.ID, fetched.ID)
		assert.Equal(rt, name, fetched.Name)
		assert.Equal(rt, hp, fetched.MaxHP)
		assert.Equal(rt, hp, fetched.CurrentHP)
		assert.Equal(rt, gold, fetched.Gold)
	})
}

// TestCharacterRepository_Property_SaveStatePersists verifies that SaveState
// followed by GetByID always reflects the new state values.
func TestCharacterRepository_Property_SaveStatePersists(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		created, err := repo.Create(ctx, makeTestCharacter(uniqueName("prop")))
		require.NoError(rt, err)

		s := postgres.State{
			Location:    rapid.StringMatching(`[a-z_]{3,20}`).Draw(rt, "loc"),
			CurrentHP:   rapid.IntRange(0, created.MaxHP).Draw(rt, "hp"),
			CurrentMana: rapid.IntRange(0, created.MaxMana).Draw(rt, "mana"),
			Gold:        rapid.IntRange(0, 1000).Draw(rt, "gold"),
			Experience:  rapid.IntRange(0, 100000).Draw(rt, "xp"),
			Level:       rapid.IntRange(1, 20).Draw(rt, "level"),
		}
		require.NoError(rt, repo.SaveState(ctx, created.ID, s))

		fetched, err := repo.GetByID(ctx, created.ID)
		require.NoError(rt, err)
		assert.Equal(rt, s.Location, fetched.Location)
		assert.Equal(rt, s.CurrentHP, fetched.CurrentHP)
		assert.Equal(rt, s.CurrentMana, fetched.CurrentMana)
		assert.Equal(rt, s.Gold, fetched.Gold)
		assert.Equal(rt, s.Experience, fetched.Experience)
		assert.Equal(rt, s.Level, fetched.Level)
	})
}
