package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T, cfg *Config) (*Host, string) {
	t.Helper()

	h := startTestHost(t, cfg)

	srv := httptest.NewServer(newRouter(cfg, h))
	t.Cleanup(srv.Close)

	return h, strings.TrimPrefix(srv.URL, "http://")
}

func get(t *testing.T, url string) (int, string, http.Header) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body), resp.Header
}

func TestRouterStaticPages(t *testing.T) {
	t.Parallel()

	_, addr := startTestServer(t, testConfig())

	status, body, header := get(t, "http://"+addr+"/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ok\n", body)
	assert.Equal(t, "nosniff", header.Get("X-Content-Type-Options"))

	status, body, _ = get(t, "http://"+addr+"/version")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "impostor v"+releaseVersion+"\n", body)

	status, body, _ = get(t, "http://"+addr+"/robots.txt")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Disallow: /")
}

func TestRouterRoomPages(t *testing.T) {
	t.Parallel()

	_, addr := startTestServer(t, testConfig())

	status, body, _ := get(t, "http://"+addr+"/rooms/ab12")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Room AB12")
	assert.Contains(t, body, "impostor join AB12")

	status, body, header := get(t, "http://"+addr+"/rooms/AB12/qr")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "image/png", header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "\x89PNG"))

	status, _, _ = get(t, "http://"+addr+"/rooms/ZZ99")
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = get(t, "http://"+addr+"/rooms/AB12/ws")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouterPrefixAndProfile(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.prefix = "/games"
	cfg.profile = true
	_, addr := startTestServer(t, cfg)

	status, _, _ := get(t, "http://"+addr+"/games/healthz")
	assert.Equal(t, http.StatusOK, status)

	status, _, _ = get(t, "http://"+addr+"/games/debug/pprof/")
	assert.Equal(t, http.StatusOK, status)

	status, _, _ = get(t, "http://"+addr+"/healthz")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestJoinUnknownRoom(t *testing.T) {
	t.Parallel()

	_, addr := startTestServer(t, testConfig())

	_, err := joinRoom(context.Background(), testConfig(), addr, "ZZ99", "Zoe")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = joinRoom(context.Background(), testConfig(), addr, "nope!", "Zoe")
	assert.ErrorIs(t, err, ErrInvalidRoomCode)

	_, err = joinRoom(context.Background(), testConfig(), addr, "AB12", " ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestOnlineSession(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	h, addr := startTestServer(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	zoe, err := joinRoom(ctx, testConfig(), addr, "ab12", "Zoe")
	require.NoError(t, err)
	t.Cleanup(zoe.Close)

	ana, err := joinRoom(ctx, testConfig(), addr, "AB12", "Ana")
	require.NoError(t, err)
	t.Cleanup(ana.Close)

	want := []Player{
		{ID: hostPlayerID, Name: "Me (Host)", IsHost: true},
		{ID: zoe.ID(), Name: "Zoe"},
		{ID: ana.ID(), Name: "Ana"},
	}

	require.Eventually(t, func() bool {
		return len(h.Roster()) == 3 &&
			assert.ObjectsAreEqual(h.Roster(), zoe.Snapshot().Roster) &&
			assert.ObjectsAreEqual(h.Roster(), ana.Snapshot().Roster)
	}, 5*time.Second, 10*time.Millisecond)

	roster := h.Roster()
	assert.ElementsMatch(t, want, roster)
	assert.Equal(t, hostPlayerID, roster[0].ID)

	round, err := h.StartRound("places", 1)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s := zoe.Snapshot()
		return s.Phase == PhaseReveal && s.Round != nil
	}, 5*time.Second, 10*time.Millisecond)

	got := zoe.Snapshot().Round
	assert.Equal(t, round, *got)

	mine, ok := zoe.Role()
	require.True(t, ok)
	expected, _ := round.PlayerByID(zoe.ID())
	assert.Equal(t, expected, mine)

	require.NoError(t, ana.SendChat("it's zoe"))

	require.Eventually(t, func() bool {
		return len(zoe.Snapshot().Chat) == 1 && len(ana.Snapshot().Chat) == 1
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, []ChatMessage{{Sender: "Ana", Text: "it's zoe"}}, zoe.Snapshot().Chat)
	assert.Equal(t, zoe.Snapshot().Chat, h.Chat())

	require.NoError(t, h.AdvancePhase(PhaseDiscussion))
	require.Eventually(t, func() bool {
		return ana.Snapshot().Phase == PhaseDiscussion
	}, 5*time.Second, 10*time.Millisecond)

	h.Reset()

	select {
	case <-zoe.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("peer not disconnected after reset")
	}

	assert.ErrorIs(t, zoe.SendChat("hello?"), ErrRoomClosed)
}
