package model

import (
	"fmt"
	"time"
)

type GameStatus string

const (
	GameStatusCreated    GameStatus = "created"
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusCompleted  GameStatus = "completed"
)

type PlayerStatus string

const (
	PlayerPlaying    PlayerStatus = "playing"
	PlayerEliminated PlayerStatus = "eliminated"
)

// MaxPlayers is the hard cap on participants per room
const MaxPlayers = 5

// Game is the authoritative state of one room. The store holds it as a
// single JSON blob keyed by room code; everything else (clocks, sockets)
// is derived from it.
type Game struct {
	Players            []string       `json:"players" bson:"players"`
	Admin              string         `json:"admin" bson:"admin"`
	Status             GameStatus     `json:"status" bson:"status"`
	PlayerStatus       []PlayerStatus `json:"playerStatus" bson:"playerStatus"`
	CurrentTurn        int            `json:"currentTurn" bson:"currentTurn"`
	TimerRemaining     int            `json:"timerRemaining" bson:"timerRemaining"`
	WaitingForJudgment bool           `json:"waitingForJudgment" bson:"waitingForJudgment"`
	Winner             string         `json:"winner,omitempty" bson:"winner,omitempty"`
	CreatedAt          time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// Clone returns a deep copy so transitions never mutate the input record
func (g *Game) Clone() *Game {
	cp := *g
	cp.Players = append([]string(nil), g.Players...)
	cp.PlayerStatus = append([]PlayerStatus(nil), g.PlayerStatus...)
	return &cp
}

// CurrentPlayer returns the name of the turn holder
func (g *Game) CurrentPlayer() string {
	if g.CurrentTurn < 0 || g.CurrentTurn >= len(g.Players) {
		return ""
	}
	return g.Players[g.CurrentTurn]
}

// PlayingCount returns how many participants are still in the game
func (g *Game) PlayingCount() int {
	n := 0
	for _, st := range g.PlayerStatus {
		if st == PlayerPlaying {
			n++
		}
	}
	return n
}

// HasPlayer reports whether name is already seated in the room
func (g *Game) HasPlayer(name string) bool {
	for _, p := range g.Players {
		if p == name {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants of a record. It is called at
// every store boundary; a record that fails here is never persisted.
func (g *Game) Validate() error {
	if len(g.Players) < 1 || len(g.Players) > MaxPlayers {
		return fmt.Errorf("invalid player count %d", len(g.Players))
	}
	if len(g.Players) != len(g.PlayerStatus) {
		return fmt.Errorf("players/playerStatus length mismatch: %d vs %d", len(g.Players), len(g.PlayerStatus))
	}
	switch g.Status {
	case GameStatusCreated, GameStatusInProgress, GameStatusCompleted:
	default:
		return fmt.Errorf("unknown status %q", g.Status)
	}
	if g.CurrentTurn < 0 || g.CurrentTurn >= len(g.Players) {
		return fmt.Errorf("currentTurn %d out of range", g.CurrentTurn)
	}
	if g.Status == GameStatusInProgress && g.PlayerStatus[g.CurrentTurn] != PlayerPlaying {
		return fmt.Errorf("currentTurn %d points at an eliminated player", g.CurrentTurn)
	}
	if g.Winner != "" {
		if g.Status != GameStatusCompleted {
			return fmt.Errorf("winner set while status is %q", g.Status)
		}
		if !g.HasPlayer(g.Winner) {
			return fmt.Errorf("winner %q is not a player", g.Winner)
		}
	}
	if !g.HasPlayer(g.Admin) {
		return fmt.Errorf("admin %q is not a player", g.Admin)
	}
	return nil
}

// Snapshot is the broadcastable projection of a Game. Field names are part
// of the wire format.
type Snapshot struct {
	Players            []string       `json:"players"`
	Admin              string         `json:"admin"`
	Status             GameStatus     `json:"status"`
	PlayerStatus       []PlayerStatus `json:"playerStatus"`
	CurrentTurn        int            `json:"currentTurn"`
	TimerRemaining     int            `json:"timerRemaining"`
	WaitingForJudgment bool           `json:"waitingForJudgment"`
	Winner             string         `json:"winner,omitempty"`
}

// Snapshot projects the record into its wire shape
func (g *Game) Snapshot() *Snapshot {
	return &Snapshot{
		Players:            append([]string(nil), g.Players...),
		Admin:              g.Admin,
		Status:             g.Status,
		PlayerStatus:       append([]PlayerStatus(nil), g.PlayerStatus...),
		CurrentTurn:        g.CurrentTurn,
		TimerRemaining:     g.TimerRemaining,
		WaitingForJudgment: g.WaitingForJudgment,
		Winner:             g.Winner,
	}
}
