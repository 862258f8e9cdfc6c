package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaseTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to Phase
		want     bool
	}{
		{PhaseHome, PhasePlayerSetup, true},
		{PhaseHome, PhaseReveal, false},
		{PhasePlayerSetup, PhaseGameSettings, true},
		{PhaseOnlineLobby, PhaseGameSettings, true},
		{PhaseOnlineLobby, PhaseReveal, false},
		{PhaseGameSettings, PhaseReveal, true},
		{PhaseReveal, PhaseDiscussion, true},
		{PhaseReveal, PhaseResult, false},
		{PhaseDiscussion, PhaseResult, true},
		{PhaseDiscussion, PhaseReveal, false},
		{PhaseResult, PhaseReveal, false},
		{PhaseReveal, PhaseHome, true},
		{PhaseDiscussion, PhaseHome, true},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestPhaseAdvancesRound(t *testing.T) {
	t.Parallel()

	assert.True(t, PhaseReveal.advancesRound(PhaseDiscussion))
	assert.True(t, PhaseDiscussion.advancesRound(PhaseResult))

	assert.False(t, PhaseReveal.advancesRound(PhaseResult))
	assert.False(t, PhaseResult.advancesRound(PhaseDiscussion))
	assert.False(t, PhaseDiscussion.advancesRound(PhaseDiscussion))
	assert.False(t, PhaseOnlineLobby.advancesRound(PhaseReveal))
	assert.False(t, PhaseReveal.advancesRound(PhaseHome))
}

func TestPhaseNextInRound(t *testing.T) {
	t.Parallel()

	next, ok := PhaseReveal.nextInRound()
	assert.True(t, ok)
	assert.Equal(t, PhaseDiscussion, next)

	next, ok = PhaseDiscussion.nextInRound()
	assert.True(t, ok)
	assert.Equal(t, PhaseResult, next)

	_, ok = PhaseResult.nextInRound()
	assert.False(t, ok)

	_, ok = PhaseOnlineLobby.nextInRound()
	assert.False(t, ok)
}

func TestPhaseInRound(t *testing.T) {
	t.Parallel()

	for _, p := range []Phase{PhaseReveal, PhaseDiscussion, PhaseResult} {
		assert.True(t, p.InRound(), p)
		assert.True(t, p.valid(), p)
	}

	for _, p := range []Phase{PhaseHome, PhasePlayerSetup, PhaseOnlineLobby, PhaseGameSettings} {
		assert.False(t, p.InRound(), p)
		assert.True(t, p.valid(), p)
	}

	assert.False(t, Phase("LOADING").valid())
}
