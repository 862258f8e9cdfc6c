/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Impostor host session
//
// The hosting device owns the canonical room: roster, phase, round config
// and chat log. Peers only send intents (JOIN, CHAT); the host validates
// them, mutates its state and pushes authoritative replacements
// (LOBBY_UPDATE, START_GAME, NEXT_PHASE) or appends (CHAT_UPDATE) to every
// open channel.
//
// Features:
// - One room per process, addressed by a 4-character code
// - Host player record uses the sentinel id "host"
// - All mutation happens on the run loop; host UI actions are submitted
//   as controls and report their error back to the caller
// - Fire-and-forget fan-out: no acks, a peer whose queue is full is dropped
// - Disconnected players are pruned from the lobby after a grace period,
//   never during a round
// - Per-peer chat rate limiting
// - Rooms idle longer than the session timeout close themselves

package main

import (
	"slices"
	"strings"
	"sync"
	"time"
)

const hostPlayerID = "host"

type control struct {
	fn    func() error
	reply chan error
}

type Host struct {
	cfg     *Config
	id      string
	catalog *Catalog
	lang    Language
	rng     Source

	clients map[string]*Client // connection registry, keyed by peer id
	roster  []Player
	phase   Phase
	round   *RoundConfig
	chat    []ChatMessage

	register chan *Client
	unreg    chan *Client
	intents  chan intent
	controls chan control
	expired  chan string
	changed  chan struct{}
	done     chan struct{}

	closeOnce sync.Once
	mu        sync.RWMutex

	createdAt  time.Time
	lastActive time.Time
}

// createRoom opens a room under cfg.room, or a random code when unset, and
// seats the host player. The caller starts the loop with run.
func createRoom(cfg *Config, catalog *Catalog, lang Language) *Host {
	id := cfg.room
	if id == "" {
		id = newRoomCode()
	}

	return newHost(cfg, id, catalog, lang, nil)
}

func newHost(cfg *Config, id string, catalog *Catalog, lang Language, rng Source) *Host {
	now := time.Now()

	return &Host{
		cfg:     cfg,
		id:      id,
		catalog: catalog,
		lang:    lang,
		rng:     rng,
		clients: make(map[string]*Client),
		roster: []Player{{
			ID:     hostPlayerID,
			Name:   cfg.hostName,
			IsHost: true,
		}},
		phase:      PhaseOnlineLobby,
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		intents:    make(chan intent),
		controls:   make(chan control),
		expired:    make(chan string),
		changed:    make(chan struct{}, 1),
		done:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
	}
}

func (h *Host) run() {
	var reap <-chan time.Time
	if h.cfg.sessionTimeout > 0 {
		ticker := time.NewTicker(h.cfg.sessionTimeout / 2)
		defer ticker.Stop()
		reap = ticker.C
	}

	for {
		// a closed room must not pick up queued events
		select {
		case <-h.done:
			return
		default:
		}

		select {
		case <-h.done:
			return

		case c := <-h.register:
			h.handleRegister(c)

		case c := <-h.unreg:
			h.handleUnregister(c)

		case in := <-h.intents:
			switch m := in.msg.(type) {
			case Join:
				h.handleJoin(in.client, m)
			case Chat:
				h.handleChat(in.client, m)
			}

		case ctl := <-h.controls:
			ctl.reply <- ctl.fn()

		case id := <-h.expired:
			h.handleExpired(id)

		case <-reap:
			h.mu.RLock()
			idle := time.Since(h.lastActive) > h.cfg.sessionTimeout
			h.mu.RUnlock()

			if idle {
				logf(h.cfg, "GAMES: Room %s idle since %s, closing", h.id, h.lastActive.Format(logDate))
				h.Reset()
				return
			}
		}
	}
}

// do runs fn on the loop and waits for its result.
func (h *Host) do(fn func() error) error {
	reply := make(chan error, 1)

	select {
	case h.controls <- control{fn: fn, reply: reply}:
	case <-h.done:
		return ErrRoomClosed
	}

	select {
	case err := <-reply:
		return err
	case <-h.done:
		return ErrRoomClosed
	}
}

func (h *Host) handleRegister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	if old, ok := h.clients[c.peerID]; ok && old != c {
		close(old.send)
	}
	h.clients[c.peerID] = c
}

func (h *Host) handleUnregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	if cur, ok := h.clients[c.peerID]; !ok || cur != c {
		return
	}
	delete(h.clients, c.peerID)
	close(c.send)

	logf(h.cfg, "GAMES: Peer %s left %s", c.peerID, h.id)

	h.departLocked(c.peerID)
}

// departLocked handles a peer whose channel is gone: in the lobby it is
// pruned, at once or after the player timeout. Mid-round departures are
// not reconciled.
func (h *Host) departLocked(id string) {
	if h.phase.InRound() || h.rosterIndexLocked(id) < 0 {
		return
	}

	if h.cfg.playerTimeout <= 0 {
		h.pruneLocked(id)
		return
	}

	time.AfterFunc(h.cfg.playerTimeout, func() {
		select {
		case h.expired <- id:
		case <-h.done:
		}
	})
}

func (h *Host) handleExpired(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, back := h.clients[id]; back || h.phase.InRound() {
		return
	}

	h.pruneLocked(id)
}

func (h *Host) pruneLocked(id string) {
	i := h.rosterIndexLocked(id)
	if i < 0 {
		return
	}

	logf(h.cfg, "GAMES: Removing %q from %s", h.roster[i].Name, h.id)

	h.roster = slices.Delete(h.roster, i, i+1)
	h.broadcastLocked(LobbyUpdate{Players: slices.Clone(h.roster)})
}

func (h *Host) handleJoin(c *Client, m Join) {
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return
	}

	if m.ID != "" && m.ID != c.peerID {
		logf(h.cfg, "GAMES: Join from %s claimed id %s, using transport id", c.peerID, m.ID)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// the roster is frozen once a round starts
	if h.phase.InRound() {
		logf(h.cfg, "GAMES: Ignoring join from %s, round in progress in %s", c.peerID, h.id)
		return
	}

	h.lastActive = time.Now()
	h.joinLocked(c.peerID, name)
}

// joinLocked seats peerID, or renames it when already seated, and sends
// the full roster to every open channel.
func (h *Host) joinLocked(peerID, name string) {
	if i := h.rosterIndexLocked(peerID); i >= 0 {
		h.roster[i].Name = name
	} else {
		h.roster = append(h.roster, Player{ID: peerID, Name: name})
		logf(h.cfg, "GAMES: Player %q joined %s", name, h.id)
	}

	h.broadcastLocked(LobbyUpdate{Players: slices.Clone(h.roster)})
}

func (h *Host) handleChat(c *Client, m Chat) {
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return
	}

	if c.limiter != nil && !c.limiter.Allow() {
		logf(h.cfg, "GAMES: Dropping chat from %s, rate exceeded", c.peerID)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	sender := strings.TrimSpace(m.Sender)
	if sender == "" {
		if i := h.rosterIndexLocked(c.peerID); i >= 0 {
			sender = h.roster[i].Name
		}
	}

	h.chatLocked(ChatMessage{Sender: sender, Text: text})
}

// chatLocked appends to the log and relays only the new line; peers
// append it to theirs.
func (h *Host) chatLocked(msg ChatMessage) {
	h.chat = append(h.chat, msg)
	h.broadcastLocked(ChatUpdate{Messages: []ChatMessage{msg}})
}

// broadcastLocked queues u for every open channel. A peer whose queue is
// full is dropped and departs like a closed connection.
func (h *Host) broadcastLocked(u Update) {
	var dropped []string

	for id, c := range h.clients {
		select {
		case c.send <- u:
		default:
			delete(h.clients, id)
			close(c.send)
			dropped = append(dropped, id)
		}
	}

	h.notifyLocked()

	for _, id := range dropped {
		logf(h.cfg, "GAMES: Dropping slow peer %s from %s", id, h.id)
		h.departLocked(id)
	}
}

func (h *Host) notifyLocked() {
	select {
	case h.changed <- struct{}{}:
	default:
	}
}

func (h *Host) rosterIndexLocked(id string) int {
	return slices.IndexFunc(h.roster, func(p Player) bool {
		return p.ID == id
	})
}

// SendChat posts a line from the host player. The host sees it at once.
func (h *Host) SendChat(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	return h.do(func() error {
		h.mu.Lock()
		defer h.mu.Unlock()

		h.lastActive = time.Now()
		h.chatLocked(ChatMessage{Sender: h.cfg.hostName, Text: text})

		return nil
	})
}

// OpenSettings moves the host from the lobby to the settings screen.
// Peers keep showing the lobby until the round starts.
func (h *Host) OpenSettings() error {
	return h.do(func() error {
		h.mu.Lock()
		defer h.mu.Unlock()

		if h.phase != PhaseOnlineLobby {
			return ErrIllegalTransition
		}
		h.phase = PhaseGameSettings
		h.notifyLocked()

		return nil
	})
}

// StartRound assigns roles over the current roster and broadcasts the
// round to every peer.
func (h *Host) StartRound(categoryID string, impostors int) (RoundConfig, error) {
	var round RoundConfig

	err := h.do(func() error {
		h.mu.Lock()
		defer h.mu.Unlock()

		if h.phase != PhaseOnlineLobby && h.phase != PhaseGameSettings {
			return ErrIllegalTransition
		}
		if len(h.roster) < h.cfg.minPlayers {
			return ErrNotEnoughPlayers
		}

		category, words := h.catalog.Resolve(categoryID, h.lang)
		round = assignRoles(h.rng, h.roster, impostors, words, category)

		h.lastActive = time.Now()
		h.round = &round
		h.phase = PhaseReveal

		logf(h.cfg, "GAMES: Round started in %s with %d players and %d impostor(s)", h.id, len(round.Players), round.ImpostorCount)

		h.broadcastLocked(StartGame{Config: round, Screen: PhaseReveal})

		return nil
	})

	return round, err
}

// AdvancePhase moves the room one step along REVEAL -> DISCUSSION ->
// RESULT and tells every peer.
func (h *Host) AdvancePhase(next Phase) error {
	return h.do(func() error {
		h.mu.Lock()
		defer h.mu.Unlock()

		if !h.phase.advancesRound(next) {
			return ErrIllegalTransition
		}

		h.lastActive = time.Now()
		h.phase = next
		h.broadcastLocked(NextPhase{Screen: next})

		return nil
	})
}

// Reset closes every channel, stops the loop and discards the room.
func (h *Host) Reset() {
	h.closeOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		defer h.mu.Unlock()

		for id, c := range h.clients {
			close(c.send)
			c.closeConn()
			delete(h.clients, id)
		}

		h.roster = nil
		h.round = nil
		h.chat = nil
		h.phase = PhaseHome
		h.notifyLocked()

		logf(h.cfg, "GAMES: Room %s closed", h.id)
	})
}

func (h *Host) Done() <-chan struct{} {
	return h.done
}

// Changes signals, coalesced, that state visible to the host UI changed.
func (h *Host) Changes() <-chan struct{} {
	return h.changed
}

func (h *Host) ID() string {
	return h.id
}

func (h *Host) Phase() Phase {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.phase
}

func (h *Host) Roster() []Player {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.roster)
}

func (h *Host) Chat() []ChatMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.chat)
}

func (h *Host) Round() (RoundConfig, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.round == nil {
		return RoundConfig{}, false
	}

	return *h.round, true
}

// Connected returns the peer ids with an open channel.
func (h *Host) Connected() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}
