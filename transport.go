/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"golang.org/x/time/rate"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is the host's end of one peer channel.
type Client struct {
	conn    *websocket.Conn
	send    chan Update
	peerID  string
	limiter *rate.Limiter
}

func newClient(cfg *Config, conn *websocket.Conn, peerID string) *Client {
	return &Client{
		conn:    conn,
		send:    make(chan Update, sendBuffer),
		peerID:  peerID,
		limiter: rate.NewLimiter(rate.Limit(cfg.chatRate), cfg.chatBurst),
	}
}

type intent struct {
	client *Client
	msg    Intent
}

// serveWS upgrades a peer dialing this room and wires it to the host loop.
func serveWS(cfg *Config, h *Host) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if strings.ToUpper(ps.ByName("roomid")) != h.ID() {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		peerID := r.URL.Query().Get("peer")
		if peerID == "" || peerID == hostPlayerID {
			http.Error(w, "missing or reserved peer id", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			errorf(err, "SERVE: Websocket upgrade failed for %s", realIP(r))
			return
		}

		logf(cfg, "SERVE: Peer %s connected from %s", peerID, realIP(r))

		client := newClient(cfg, conn, peerID)

		select {
		case h.register <- client:
		case <-h.Done():
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(cfg, h)
	}
}

func (c *Client) readPump(cfg *Config, h *Host) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.Done():
		}
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := decodeIntent(data)
		if err != nil {
			// unknown, malformed and wrong-direction frames are dropped
			logf(cfg, "GAMES: Ignoring frame from %s: %v", c.peerID, err)
			continue
		}

		select {
		case h.intents <- intent{client: c, msg: msg}:
		case <-h.Done():
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			data, err := encodeMessage(msg)
			if err != nil {
				errorf(err, "GAMES: Unable to encode %s for %s", msg.Type(), c.peerID)
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConn shuts the socket if this client has one. Clients built in
// tests have no socket.
func (c *Client) closeConn() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
