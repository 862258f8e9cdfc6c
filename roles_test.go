package main

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seatPlayers(names ...string) []Player {
	players := make([]Player, len(names))
	for i, name := range names {
		players[i] = Player{ID: fmt.Sprintf("id-%d", i), Name: name}
	}

	return players
}

func TestAssignRolesCount(t *testing.T) {
	t.Parallel()

	src := rand.New(rand.NewPCG(1, 2))

	for n := 1; n <= 15; n++ {
		for requested := -2; requested <= 16; requested++ {
			players := seatPlayers(make([]string, n)...)
			round := assignRoles(src, players, requested, []string{"w"}, "c")

			want := max(0, min(max(requested, 1), n-1))
			assert.Equal(t, want, round.ImpostorCount, "n=%d requested=%d", n, requested)
			assert.Len(t, round.Impostors(), want, "n=%d requested=%d", n, requested)
			assert.Len(t, round.Players, n)
		}
	}
}

func TestAssignRolesScenario(t *testing.T) {
	t.Parallel()

	players := seatPlayers("Ana", "Ben", "Cy")
	round := assignRoles(nil, players, 1, []string{"Beach"}, "Places")

	assert.Equal(t, "Beach", round.SecretWord)
	assert.Equal(t, "Places", round.Category)
	assert.Equal(t, 1, round.ImpostorCount)
	require.Len(t, round.Impostors(), 1)

	for i, p := range round.Players {
		assert.Equal(t, players[i].ID, p.ID)
		assert.Equal(t, players[i].Name, p.Name)
	}
}

func TestAssignRolesClampsForTwoPlayers(t *testing.T) {
	t.Parallel()

	round := assignRoles(nil, seatPlayers("Ana", "Ben"), 5, []string{"Beach"}, "Places")

	assert.Equal(t, 1, round.ImpostorCount)
	assert.Len(t, round.Impostors(), 1)
}

func TestAssignRolesZeroRequestedStillPicksOne(t *testing.T) {
	t.Parallel()

	round := assignRoles(nil, seatPlayers("Ana", "Ben", "Cy", "Dee"), 0, []string{"Beach"}, "Places")

	assert.Equal(t, 1, round.ImpostorCount)
}

func TestAssignRolesSinglePlayerHasNoImpostor(t *testing.T) {
	t.Parallel()

	round := assignRoles(nil, seatPlayers("Ana"), 3, []string{"Beach"}, "Places")

	assert.Zero(t, round.ImpostorCount)
	assert.Empty(t, round.Impostors())
}

func TestAssignRolesVaries(t *testing.T) {
	t.Parallel()

	src := rand.New(rand.NewPCG(42, 7))
	players := seatPlayers("Ana", "Ben", "Cy", "Dee", "Eve", "Fay")
	words := []string{"Beach", "School", "Hospital", "Airport"}

	impostorSets := map[string]int{}
	wordsSeen := map[string]int{}
	picked := map[string]int{}

	for range 1000 {
		round := assignRoles(src, players, 2, words, "Places")
		require.Contains(t, words, round.SecretWord)
		wordsSeen[round.SecretWord]++

		var ids []string
		for _, p := range round.Impostors() {
			ids = append(ids, p.ID)
			picked[p.ID]++
		}
		require.Len(t, ids, 2)
		impostorSets[fmt.Sprint(ids)]++
	}

	// 15 possible pairs
	assert.Greater(t, len(impostorSets), 10)
	assert.Len(t, wordsSeen, len(words))

	for _, p := range players {
		assert.Positive(t, picked[p.ID], "player %s never picked", p.Name)
	}
}

func TestAssignRolesDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	players := seatPlayers("Ana", "Ben", "Cy")
	players[0].IsImpostor = true
	before := slices.Clone(players)

	round := assignRoles(nil, players, 1, []string{"Beach"}, "Places")
	round.Players[1].Name = "changed"

	assert.Equal(t, before, players)
}

func TestAssignRolesEmptyPool(t *testing.T) {
	t.Parallel()

	round := assignRoles(nil, seatPlayers("Ana", "Ben", "Cy"), 1, nil, "Places")

	assert.Empty(t, round.SecretWord)
	assert.Equal(t, 1, round.ImpostorCount)
}

func TestMaxImpostors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		players int
		want    int
	}{
		{players: 1, want: 1},
		{players: 3, want: 1},
		{players: 5, want: 1},
		{players: 6, want: 2},
		{players: 9, want: 3},
		{players: 15, want: 5},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, MaxImpostors(tc.players), "players=%d", tc.players)
	}
}

func TestRoundConfigPlayerByID(t *testing.T) {
	t.Parallel()

	round := RoundConfig{Players: seatPlayers("Ana", "Ben")}

	p, ok := round.PlayerByID("id-1")
	require.True(t, ok)
	assert.Equal(t, "Ben", p.Name)

	_, ok = round.PlayerByID("missing")
	assert.False(t, ok)
}
