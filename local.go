/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

const (
	minLocalPlayers = 3
	maxLocalPlayers = 15
)

// LocalGame drives a single shared device through every phase directly,
// with no protocol involved.
type LocalGame struct {
	catalog *Catalog
	lang    Language
	rng     Source

	names  []string
	phase  Phase
	round  *RoundConfig
	reveal int
}

func newLocalGame(catalog *Catalog, lang Language, rng Source) *LocalGame {
	return &LocalGame{
		catalog: catalog,
		lang:    lang,
		rng:     rng,
		phase:   PhaseHome,
	}
}

func (g *LocalGame) transition(next Phase) error {
	if !g.phase.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, g.phase, next)
	}
	g.phase = next

	return nil
}

// Setup opens the player list.
func (g *LocalGame) Setup() error {
	return g.transition(PhasePlayerSetup)
}

func (g *LocalGame) AddPlayer(name string) error {
	if g.phase != PhasePlayerSetup {
		return ErrIllegalTransition
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if len(g.names) >= maxLocalPlayers {
		return ErrTooManyPlayers
	}

	g.names = append(g.names, name)

	return nil
}

// RemovePlayer drops the player at index i (zero-based).
func (g *LocalGame) RemovePlayer(i int) error {
	if g.phase != PhasePlayerSetup {
		return ErrIllegalTransition
	}
	if i < 0 || i >= len(g.names) {
		return fmt.Errorf("no player at position %d", i+1)
	}

	g.names = slices.Delete(g.names, i, i+1)

	return nil
}

// OpenSettings moves on to category and impostor selection.
func (g *LocalGame) OpenSettings() error {
	if len(g.names) < minLocalPlayers {
		return fmt.Errorf("%w: need %d, have %d", ErrNotEnoughPlayers, minLocalPlayers, len(g.names))
	}

	return g.transition(PhaseGameSettings)
}

// Start assigns roles and begins the reveal with the first player.
func (g *LocalGame) Start(categoryID string, impostors int) (RoundConfig, error) {
	if g.phase != PhaseGameSettings {
		return RoundConfig{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, g.phase, PhaseReveal)
	}

	players := make([]Player, len(g.names))
	for i, name := range g.names {
		players[i] = Player{
			ID:   fmt.Sprintf("p-%d-%s", i, uuid.NewString()),
			Name: name,
		}
	}

	category, words := g.catalog.Resolve(categoryID, g.lang)
	round := assignRoles(g.rng, players, impostors, words, category)

	g.round = &round
	g.reveal = 0
	g.phase = PhaseReveal

	return round, nil
}

// Current returns the player whose card is shown, with their 1-based
// position and the player count.
func (g *LocalGame) Current() (Player, int, int, error) {
	if g.phase != PhaseReveal || g.round == nil {
		return Player{}, 0, 0, ErrNoRound
	}

	return g.round.Players[g.reveal], g.reveal + 1, len(g.round.Players), nil
}

// Pass hands the device to the next player. After the last player the
// game moves on to discussion and done is true.
func (g *LocalGame) Pass() (done bool, err error) {
	if g.phase != PhaseReveal {
		return false, ErrNoRound
	}

	if g.reveal < len(g.round.Players)-1 {
		g.reveal++
		return false, nil
	}

	return true, g.transition(PhaseDiscussion)
}

// Unmask ends discussion and shows who the impostors were.
func (g *LocalGame) Unmask() (RoundConfig, error) {
	if err := g.transition(PhaseResult); err != nil {
		return RoundConfig{}, err
	}

	return *g.round, nil
}

// Reset returns to the home screen. The player list is kept for the next
// game, the round is discarded.
func (g *LocalGame) Reset() {
	g.phase = PhaseHome
	g.round = nil
	g.reveal = 0
}

func (g *LocalGame) Phase() Phase {
	return g.phase
}

func (g *LocalGame) Players() []string {
	return slices.Clone(g.names)
}

func (g *LocalGame) Round() (RoundConfig, bool) {
	if g.round == nil {
		return RoundConfig{}, false
	}

	return *g.round, true
}

// SetLanguage changes the word language used by the next round.
func (g *LocalGame) SetLanguage(l Language) {
	g.lang = l
}

func (g *LocalGame) Language() Language {
	return g.lang
}
