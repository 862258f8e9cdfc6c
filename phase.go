/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

// Phase is the screen a device is currently showing. It gates which
// actions are valid.
type Phase string

const (
	PhaseHome         Phase = "HOME"
	PhasePlayerSetup  Phase = "PLAYER_SETUP"
	PhaseOnlineLobby  Phase = "ONLINE_LOBBY"
	PhaseGameSettings Phase = "GAME_SETTINGS"
	PhaseReveal       Phase = "REVEAL"
	PhaseDiscussion   Phase = "DISCUSSION"
	PhaseResult       Phase = "RESULT"
)

var phaseTransitions = map[Phase][]Phase{
	PhaseHome:         {PhasePlayerSetup},
	PhasePlayerSetup:  {PhaseOnlineLobby, PhaseGameSettings, PhaseHome},
	PhaseOnlineLobby:  {PhaseGameSettings, PhaseHome},
	PhaseGameSettings: {PhaseReveal, PhasePlayerSetup, PhaseOnlineLobby},
	PhaseReveal:       {PhaseDiscussion},
	PhaseDiscussion:   {PhaseResult},
	PhaseResult:       {PhaseHome},
}

func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo reports whether target may follow p. Resetting to
// PhaseHome is always allowed.
func (p Phase) CanTransitionTo(target Phase) bool {
	if target == PhaseHome {
		return true
	}

	for _, next := range phaseTransitions[p] {
		if next == target {
			return true
		}
	}

	return false
}

// roundStep is the position of p inside a round, or -1 outside one.
func (p Phase) roundStep() int {
	switch p {
	case PhaseReveal:
		return 0
	case PhaseDiscussion:
		return 1
	case PhaseResult:
		return 2
	default:
		return -1
	}
}

// InRound reports whether p belongs to REVEAL, DISCUSSION or RESULT.
func (p Phase) InRound() bool {
	return p.roundStep() >= 0
}

// advancesRound reports whether moving from p to next is a single
// forward step along REVEAL -> DISCUSSION -> RESULT.
func (p Phase) advancesRound(next Phase) bool {
	from, to := p.roundStep(), next.roundStep()

	return from >= 0 && to == from+1
}

func (p Phase) valid() bool {
	_, ok := phaseTransitions[p]

	return ok
}

// nextInRound returns the phase that follows p inside a round.
func (p Phase) nextInRound() (Phase, bool) {
	switch p {
	case PhaseReveal:
		return PhaseDiscussion, true
	case PhaseDiscussion:
		return PhaseResult, true
	default:
		return "", false
	}
}
