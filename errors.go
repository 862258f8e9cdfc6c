/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
)

var (
	ErrUnknownMessage    = errors.New("unknown message type")
	ErrMalformedMessage  = errors.New("malformed message")
	ErrWrongDirection    = errors.New("message sent in the wrong direction")
	ErrIllegalTransition = errors.New("illegal phase transition")
	ErrNotEnoughPlayers  = errors.New("not enough players")
	ErrTooManyPlayers    = errors.New("too many players")
	ErrEmptyName         = errors.New("player name must not be empty")
	ErrRoomClosed        = errors.New("room is closed")
	ErrRoomNotFound      = errors.New("room not found")
	ErrInvalidRoomCode   = errors.New("invalid room code")
	ErrUnknownLanguage   = errors.New("unknown language")
	ErrNoRound           = errors.New("no round in progress")
)

var logger = zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: logDate,
}).With().Timestamp().Logger()

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	logger.Info().Msgf(format, args...)
}

func errorf(err error, format string, args ...any) {
	logger.Error().Err(err).Msgf(format, args...)
}
