package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validGame() *Game {
	now := time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
	return &Game{
		Players:            []string{"alice", "bob", "carol"},
		Admin:              "alice",
		Status:             GameStatusInProgress,
		PlayerStatus:       []PlayerStatus{PlayerPlaying, PlayerPlaying, PlayerEliminated},
		CurrentTurn:        1,
		TimerRemaining:     7,
		WaitingForJudgment: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestGameJSONRoundTrip(t *testing.T) {
	g := validGame()

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var decoded Game
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, g, &decoded)
}

func TestGameJSONRoundTripCompleted(t *testing.T) {
	g := validGame()
	g.Status = GameStatusCompleted
	g.PlayerStatus = []PlayerStatus{PlayerPlaying, PlayerEliminated, PlayerEliminated}
	g.CurrentTurn = 0
	g.WaitingForJudgment = false
	g.Winner = "alice"

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var decoded Game
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, g, &decoded)
	require.Equal(t, "alice", decoded.Winner)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(g *Game)
		wantErr bool
	}{
		{"valid record", func(g *Game) {}, false},
		{"no players", func(g *Game) { g.Players = nil; g.PlayerStatus = nil; g.CurrentTurn = 0 }, true},
		{"too many players", func(g *Game) {
			g.Players = []string{"a", "b", "c", "d", "e", "f"}
			g.PlayerStatus = make([]PlayerStatus, 6)
		}, true},
		{"length mismatch", func(g *Game) { g.PlayerStatus = g.PlayerStatus[:2] }, true},
		{"unknown status", func(g *Game) { g.Status = "paused" }, true},
		{"turn out of range", func(g *Game) { g.CurrentTurn = 3 }, true},
		{"turn on eliminated player", func(g *Game) { g.CurrentTurn = 2 }, true},
		{"winner before completion", func(g *Game) { g.Winner = "bob" }, true},
		{"winner not a player", func(g *Game) {
			g.Status = GameStatusCompleted
			g.Winner = "mallory"
		}, true},
		{"admin not a player", func(g *Game) { g.Admin = "mallory" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGame()
			tt.mutate(g)
			err := g.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := validGame()
	cp := g.Clone()

	cp.Players[0] = "mallory"
	cp.PlayerStatus[0] = PlayerEliminated

	require.Equal(t, "alice", g.Players[0])
	require.Equal(t, PlayerPlaying, g.PlayerStatus[0])
}

func TestSnapshotProjection(t *testing.T) {
	g := validGame()
	snap := g.Snapshot()

	require.Equal(t, g.Players, snap.Players)
	require.Equal(t, g.Admin, snap.Admin)
	require.Equal(t, g.Status, snap.Status)
	require.Equal(t, g.PlayerStatus, snap.PlayerStatus)
	require.Equal(t, g.CurrentTurn, snap.CurrentTurn)
	require.Equal(t, g.TimerRemaining, snap.TimerRemaining)
	require.Equal(t, g.WaitingForJudgment, snap.WaitingForJudgment)

	// Projection must not alias the record
	snap.Players[0] = "mallory"
	require.Equal(t, "alice", g.Players[0])
}
