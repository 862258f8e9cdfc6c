/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"math/rand/v2"
)

// Player is a seat in the room. ID never changes once created.
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsImpostor bool   `json:"isImpostor"`
	IsHost     bool   `json:"isHost,omitempty"`
}

// RoundConfig is the finalized setup of a single round. It is replaced
// wholesale when the next round starts.
type RoundConfig struct {
	Players       []Player `json:"players"`
	SecretWord    string   `json:"secretWord"`
	Category      string   `json:"category"`
	ImpostorCount int      `json:"impostorCount"`
}

// Impostors returns the players flagged as impostors, in roster order.
func (rc *RoundConfig) Impostors() []Player {
	out := make([]Player, 0, rc.ImpostorCount)
	for _, p := range rc.Players {
		if p.IsImpostor {
			out = append(out, p)
		}
	}

	return out
}

// PlayerByID returns the round entry for id.
func (rc *RoundConfig) PlayerByID(id string) (Player, bool) {
	for _, p := range rc.Players {
		if p.ID == id {
			return p, true
		}
	}

	return Player{}, false
}

// Source is the random source the assignment draws from. *rand.Rand
// from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// assignRoles picks a secret word from words and flags
// min(requested, len(players)-1) distinct players as impostors, sampling
// without replacement. Out of range counts are clamped, never rejected,
// so a request for zero impostors still yields one when two or more
// players are seated. The input slice is not modified.
func assignRoles(src Source, players []Player, requested int, words []string, category string) RoundConfig {
	if src == nil {
		src = globalSource{}
	}

	round := make([]Player, len(players))
	copy(round, players)
	for i := range round {
		round[i].IsImpostor = false
	}

	var secret string
	if len(words) > 0 {
		secret = words[src.IntN(len(words))]
	}

	// at least one impostor, at least one crew member
	count := max(0, min(max(requested, 1), len(round)-1))

	remaining := make([]int, len(round))
	for i := range remaining {
		remaining[i] = i
	}

	for range count {
		pick := src.IntN(len(remaining))
		round[remaining[pick]].IsImpostor = true
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}

	return RoundConfig{
		Players:       round,
		SecretWord:    secret,
		Category:      category,
		ImpostorCount: count,
	}
}

// MaxImpostors is the largest impostor count offered by the settings
// screen for n players.
func MaxImpostors(n int) int {
	return max(1, n/3)
}
