/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	roomCodeLength  = 4
	roomCodeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// newRoomCode returns a random room code. Collisions are not checked,
// a process only ever hosts one room.
func newRoomCode() string {
	const limit = byte(255 - (256 % len(roomCodeLetters)))

	out := make([]byte, 0, roomCodeLength)
	buf := make([]byte, roomCodeLength*2)

	for len(out) < roomCodeLength {
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}

		for _, b := range buf {
			if b > limit {
				continue
			}

			out = append(out, roomCodeLetters[int(b)%len(roomCodeLetters)])
			if len(out) == roomCodeLength {
				break
			}
		}
	}

	return string(out)
}

// normalizeRoomCode uppercases user input and checks its shape, so joins
// are case-insensitive.
func normalizeRoomCode(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if len(code) != roomCodeLength {
		return "", fmt.Errorf("%w: %q must be %d characters", ErrInvalidRoomCode, s, roomCodeLength)
	}

	for _, r := range code {
		if !strings.ContainsRune(roomCodeLetters, r) {
			return "", fmt.Errorf("%w: %q contains %q", ErrInvalidRoomCode, s, r)
		}
	}

	return code, nil
}
