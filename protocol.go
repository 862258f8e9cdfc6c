/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"fmt"
)

// MessageType is the "type" tag of every frame on the wire.
type MessageType string

const (
	TypeJoin        MessageType = "JOIN"
	TypeLobbyUpdate MessageType = "LOBBY_UPDATE"
	TypeStartGame   MessageType = "START_GAME"
	TypeNextPhase   MessageType = "NEXT_PHASE"
	TypeChat        MessageType = "CHAT"
	TypeChatUpdate  MessageType = "CHAT_UPDATE"
)

// Message is any frame exchanged between host and peers.
type Message interface {
	Type() MessageType
}

// Intent is a peer -> host request. Only Join and Chat implement it.
type Intent interface {
	Message
	intent()
}

// Update is an authoritative host -> peer replacement or append. Only
// LobbyUpdate, StartGame, NextPhase and ChatUpdate implement it.
type Update interface {
	Message
	update()
}

// Join asks the host to seat the sender.
type Join struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Chat asks the host to relay a chat line.
type Chat struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// LobbyUpdate replaces the peer's roster.
type LobbyUpdate struct {
	Players []Player `json:"players"`
}

// StartGame replaces the peer's round config and phase.
type StartGame struct {
	Config RoundConfig `json:"config"`
	Screen Phase       `json:"screen"`
}

// NextPhase replaces the peer's phase.
type NextPhase struct {
	Screen Phase `json:"screen"`
}

type ChatMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// ChatUpdate is appended to the peer's chat log.
type ChatUpdate struct {
	Messages []ChatMessage `json:"messages"`
}

func (Join) Type() MessageType        { return TypeJoin }
func (Chat) Type() MessageType        { return TypeChat }
func (LobbyUpdate) Type() MessageType { return TypeLobbyUpdate }
func (StartGame) Type() MessageType   { return TypeStartGame }
func (NextPhase) Type() MessageType   { return TypeNextPhase }
func (ChatUpdate) Type() MessageType  { return TypeChatUpdate }

func (Join) intent() {}
func (Chat) intent() {}

func (LobbyUpdate) update() {}
func (StartGame) update()   {}
func (NextPhase) update()   {}
func (ChatUpdate) update()  {}

// encodeMessage renders m as a flat JSON object carrying its type tag.
func encodeMessage(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", m.Type(), err)
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", m.Type(), err)
	}

	tag, err := json.Marshal(m.Type())
	if err != nil {
		return nil, err
	}
	fields["type"] = tag

	return json.Marshal(fields)
}

func peekType(data []byte) (MessageType, error) {
	var head struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	return head.Type, nil
}

// decodeIntent parses a frame received by the host. Host -> peer types
// are rejected with ErrWrongDirection.
func decodeIntent(data []byte) (Intent, error) {
	t, err := peekType(data)
	if err != nil {
		return nil, err
	}

	switch t {
	case TypeJoin:
		return decodeAs[Join, Intent](data)
	case TypeChat:
		return decodeAs[Chat, Intent](data)
	case TypeLobbyUpdate, TypeStartGame, TypeNextPhase, TypeChatUpdate:
		return nil, fmt.Errorf("%w: peers may not send %s", ErrWrongDirection, t)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, t)
	}
}

// decodeUpdate parses a frame received by a peer. Peer -> host types
// are rejected with ErrWrongDirection.
func decodeUpdate(data []byte) (Update, error) {
	t, err := peekType(data)
	if err != nil {
		return nil, err
	}

	switch t {
	case TypeLobbyUpdate:
		return decodeAs[LobbyUpdate, Update](data)
	case TypeStartGame:
		return decodeAs[StartGame, Update](data)
	case TypeNextPhase:
		return decodeAs[NextPhase, Update](data)
	case TypeChatUpdate:
		return decodeAs[ChatUpdate, Update](data)
	case TypeJoin, TypeChat:
		return nil, fmt.Errorf("%w: hosts do not send %s", ErrWrongDirection, t)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, t)
	}
}

func decodeAs[T any, I Message](data []byte) (I, error) {
	var zero I

	var m T
	if err := json.Unmarshal(data, &m); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	out, ok := any(m).(I)
	if !ok {
		return zero, fmt.Errorf("%w: %T", ErrUnknownMessage, m)
	}

	return out, nil
}
