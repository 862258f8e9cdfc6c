/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

func serveHealthCheck(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errorf(err, "SERVE: Health check to %s", realIP(r))
		}
	}
}

func serveRobots(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := "User-agent: *\nDisallow: /\n"

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errorf(err, "SERVE: Robots to %s", realIP(r))
		}
	}
}

// serveRoomInfo tells whoever scanned the QR code how to join. It never
// reveals round details.
func serveRoomInfo(cfg *Config, h *Host) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if strings.ToUpper(ps.ByName("roomid")) != h.ID() {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		var b strings.Builder
		fmt.Fprintf(&b, "Room %s\n", h.ID())
		fmt.Fprintf(&b, "Phase: %s\n", h.Phase())
		fmt.Fprintf(&b, "Players: %d\n\n", len(h.Roster()))
		fmt.Fprintf(&b, "Join with:\n  impostor join %s --host %s --name <your name>", h.ID(), r.Host)
		if cfg.prefix != "" {
			fmt.Fprintf(&b, " --prefix %s", cfg.prefix)
		}
		if r.TLS != nil {
			b.WriteString(" --secure")
		}
		b.WriteString("\n")

		_, _ = w.Write([]byte(b.String()))
	}
}

// registerRoom sets up routes so that:
//   - $prefix/rooms/:roomid     → plain text join instructions
//   - $prefix/rooms/:roomid/ws  → websocket channel for a peer
//   - $prefix/rooms/:roomid/qr  → PNG QR code of the room URL
func registerRoom(cfg *Config, h *Host, mux *httprouter.Router) {
	mux.GET(cfg.prefix+"/rooms/:roomid", serveRoomInfo(cfg, h))

	mux.GET(cfg.prefix+"/rooms/:roomid/ws", serveWS(cfg, h))

	mux.GET(cfg.prefix+"/rooms/:roomid/qr", serveQR(cfg, h))
}
