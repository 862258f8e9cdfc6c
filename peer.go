/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// PeerState is everything a joined device knows about the room. It is
// only ever written from host updates.
type PeerState struct {
	Roster []Player
	Round  *RoundConfig
	Phase  Phase
	Chat   []ChatMessage
}

// Peer is a passive mirror of a host's room.
type Peer struct {
	cfg    *Config
	id     string
	name   string
	roomID string

	conn *websocket.Conn
	send chan Intent

	mu    sync.RWMutex
	state PeerState

	changed   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newPeer(cfg *Config, id, name, roomID string) *Peer {
	return &Peer{
		cfg:     cfg,
		id:      id,
		name:    name,
		roomID:  roomID,
		send:    make(chan Intent, sendBuffer),
		state:   PeerState{Phase: PhaseOnlineLobby},
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func joinURL(cfg *Config, addr, roomID, peerID string) string {
	scheme := "ws"
	if cfg.secure {
		scheme = "wss"
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     addr,
		Path:     cfg.prefix + "/rooms/" + roomID + "/ws",
		RawQuery: url.Values{"peer": {peerID}}.Encode(),
	}

	return u.String()
}

// joinRoom dials the host at addr, opens a channel to roomID and sends
// JOIN. The room code is matched case-insensitively.
func joinRoom(ctx context.Context, cfg *Config, addr, roomID, name string) (*Peer, error) {
	code, err := normalizeRoomCode(roomID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	p := newPeer(cfg, uuid.NewString(), name, code)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, joinURL(cfg, addr, code, p.id), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
		}
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	p.conn = conn

	logf(cfg, "GAMES: Connected to room %s as %s", code, p.id)

	go p.writePump()
	go p.readPump()

	if err := p.enqueue(Join{Name: name, ID: p.id}); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

func (p *Peer) readPump() {
	defer p.Close()

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			return
		}

		u, err := decodeUpdate(data)
		if err != nil {
			logf(p.cfg, "GAMES: Ignoring frame from host: %v", err)
			continue
		}

		p.apply(u)
	}
}

func (p *Peer) writePump() {
	for {
		select {
		case msg := <-p.send:
			data, err := encodeMessage(msg)
			if err != nil {
				errorf(err, "GAMES: Unable to encode %s", msg.Type())
				continue
			}

			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				p.Close()
				return
			}
		case <-p.done:
			return
		}
	}
}

// apply mirrors one host update: rosters, round configs and phases are
// replaced, chat lines appended. A phase change that does not step forward
// through the round is ignored.
func (p *Peer) apply(u Update) {
	p.mu.Lock()

	switch m := u.(type) {
	case LobbyUpdate:
		p.state.Roster = slices.Clone(m.Players)
	case StartGame:
		round := m.Config
		p.state.Round = &round
		p.state.Phase = m.Screen
	case NextPhase:
		if !p.state.Phase.advancesRound(m.Screen) {
			logf(p.cfg, "GAMES: Ignoring phase change %s -> %s", p.state.Phase, m.Screen)
			p.mu.Unlock()
			return
		}
		p.state.Phase = m.Screen
	case ChatUpdate:
		p.state.Chat = append(p.state.Chat, m.Messages...)
	}

	p.mu.Unlock()

	select {
	case p.changed <- struct{}{}:
	default:
	}
}

func (p *Peer) enqueue(m Intent) error {
	select {
	case <-p.done:
		return ErrRoomClosed
	default:
	}

	select {
	case p.send <- m:
		return nil
	case <-p.done:
		return ErrRoomClosed
	}
}

// SendChat asks the host to relay text. The line shows up locally only
// once the host echoes it back in a CHAT_UPDATE.
func (p *Peer) SendChat(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	return p.enqueue(Chat{Sender: p.name, Text: text})
}

// Role returns this device's entry in the current round.
func (p *Peer) Role() (Player, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state.Round == nil {
		return Player{}, false
	}

	return p.state.Round.PlayerByID(p.id)
}

func (p *Peer) Snapshot() PeerState {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := PeerState{
		Roster: slices.Clone(p.state.Roster),
		Phase:  p.state.Phase,
		Chat:   slices.Clone(p.state.Chat),
	}
	if p.state.Round != nil {
		round := *p.state.Round
		round.Players = slices.Clone(round.Players)
		s.Round = &round
	}

	return s
}

func (p *Peer) ID() string {
	return p.id
}

func (p *Peer) RoomID() string {
	return p.roomID
}

// Changes signals, coalesced, that the mirrored state changed.
func (p *Peer) Changes() <-chan struct{} {
	return p.changed
}

// Done is closed once the channel to the host is gone.
func (p *Peer) Done() <-chan struct{} {
	return p.done
}

func (p *Peer) Close() {
	p.closeOnce.Do(func() {
		close(p.done)

		if p.conn == nil {
			return
		}

		_ = p.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		_ = p.conn.Close()
	})
}
