package engine

import (
	"time"

	"questionsbattle/internal/model"
)

// Engine is the pure state machine for a room. Apply never mutates its
// input and never touches the store, the clock, or the network; it only
// returns the next record and the effects the orchestrator must execute.
type Engine struct {
	turnSeconds int
	maxPlayers  int
}

func New(turnSeconds, maxPlayers int) *Engine {
	if turnSeconds <= 0 {
		turnSeconds = 10
	}
	if maxPlayers <= 0 || maxPlayers > model.MaxPlayers {
		maxPlayers = model.MaxPlayers
	}
	return &Engine{turnSeconds: turnSeconds, maxPlayers: maxPlayers}
}

// TurnSeconds returns the full duration of one turn
func (e *Engine) TurnSeconds() int {
	return e.turnSeconds
}

// Apply runs one transition. For EventCreate, game must be nil; for every
// other event it must be the current record. A rejection returns a nil
// record, no effects, and one of the errors in errors.go.
func (e *Engine) Apply(game *model.Game, ev Event) (*model.Game, []Effect, error) {
	if ev.Type == EventCreate {
		return e.create(ev)
	}
	if game == nil {
		return nil, nil, ErrStaleEvent
	}

	switch ev.Type {
	case EventJoin:
		return e.join(game, ev)
	case EventStart:
		return e.start(game, ev)
	case EventSubmitTurn:
		return e.submitTurn(game, ev)
	case EventJudgmentReceived:
		return e.judgmentReceived(game, ev)
	case EventTimerExpired:
		return e.timerExpired(game, ev)
	case EventForceEnd:
		return e.forceEnd(game, ev)
	default:
		return nil, nil, ErrStaleEvent
	}
}

func (e *Engine) create(ev Event) (*model.Game, []Effect, error) {
	now := time.Now()
	g := &model.Game{
		Players:        []string{ev.Player},
		Admin:          ev.Player,
		Status:         model.GameStatusCreated,
		PlayerStatus:   []model.PlayerStatus{model.PlayerPlaying},
		CurrentTurn:    0,
		TimerRemaining: e.turnSeconds,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return g, []Effect{EffectPersist, EffectBroadcast}, nil
}

func (e *Engine) join(game *model.Game, ev Event) (*model.Game, []Effect, error) {
	if game.Status != model.GameStatusCreated {
		return nil, nil, ErrWrongStatus
	}
	if game.HasPlayer(ev.Player) {
		return nil, nil, ErrDuplicatePlayer
	}
	if len(game.Players) >= e.maxPlayers {
		return nil, nil, ErrRoomFull
	}

	g := game.Clone()
	g.Players = append(g.Players, ev.Player)
	g.PlayerStatus = append(g.PlayerStatus, model.PlayerPlaying)
	g.UpdatedAt = time.Now()
	return g, []Effect{EffectPersist, EffectBroadcast}, nil
}

func (e *Engine) start(game *model.Game, ev Event) (*model.Game, []Effect, error) {
	if ev.Player != game.Admin {
		return nil, nil, ErrNotAdmin
	}
	if game.Status != model.GameStatusCreated {
		return nil, nil, ErrWrongStatus
	}
	if len(game.Players) < 2 {
		return nil, nil, ErrNotEnoughPlayers
	}

	g := game.Clone()
	g.Status = model.GameStatusInProgress
	g.CurrentTurn = 0
	g.TimerRemaining = e.turnSeconds
	g.WaitingForJudgment = false
	g.UpdatedAt = time.Now()
	return g, []Effect{EffectPersist, EffectBroadcast, EffectArmClock}, nil
}

func (e *Engine) submitTurn(game *model.Game, ev Event) (*model.Game, []Effect, error) {
	if game.Status != model.GameStatusInProgress {
		return nil, nil, ErrWrongStatus
	}
	if game.WaitingForJudgment {
		return nil, nil, ErrJudgmentPending
	}
	if ev.Player != game.CurrentPlayer() {
		return nil, nil, ErrWrongTurn
	}

	g := game.Clone()
	g.WaitingForJudgment = true
	g.UpdatedAt = time.Now()
	return g, []Effect{EffectDisarmClock, EffectPersist, EffectBroadcast}, nil
}

func (e *Engine) judgmentReceived(game *model.Game, ev Event) (*model.Game, []Effect, error) {
	if game.Status != model.GameStatusInProgress {
		return nil, nil, ErrWrongStatus
	}
	if !game.WaitingForJudgment {
		// Verdict already applied, or the room moved on
		return nil, nil, ErrStaleEvent
	}

	g := game.Clone()
	g.WaitingForJudgment = false
	if ev.Disqualified {
		if g.PlayerStatus[g.CurrentTurn] != model.PlayerPlaying {
			return nil, nil, ErrInvariant
		}
		g.PlayerStatus[g.CurrentTurn] = model.PlayerEliminated
	}
	return e.resolve(g)
}

func (e *Engine) timerExpired(game *model.Game, ev Event) (*model.Game, []Effect, error) {
	if game.Status != model.GameStatusInProgress {
		return nil, nil, ErrWrongStatus
	}
	if game.WaitingForJudgment {
		// A submission won the race; this expiry is stale
		return nil, nil, ErrStaleEvent
	}
	if ev.Turn != game.CurrentTurn {
		return nil, nil, ErrStaleEvent
	}
	if game.PlayerStatus[game.CurrentTurn] != model.PlayerPlaying {
		return nil, nil, ErrInvariant
	}

	g := game.Clone()
	g.PlayerStatus[g.CurrentTurn] = model.PlayerEliminated
	return e.resolve(g)
}

func (e *Engine) forceEnd(game *model.Game, ev Event) (*model.Game, []Effect, error) {
	if ev.Player != game.Admin {
		return nil, nil, ErrNotAdmin
	}
	if game.Status == model.GameStatusCompleted {
		return nil, nil, ErrWrongStatus
	}

	g := game.Clone()
	g.Status = model.GameStatusCompleted
	g.WaitingForJudgment = false
	if g.PlayingCount() == 1 {
		for i, st := range g.PlayerStatus {
			if st == model.PlayerPlaying {
				g.Winner = g.Players[i]
			}
		}
	}
	g.UpdatedAt = time.Now()
	return g, []Effect{EffectDisarmClock, EffectPersist, EffectBroadcast, EffectArchive}, nil
}

// resolve is the shared tail of the elimination events: either crown the
// last player standing or hand the turn to the next playing participant.
func (e *Engine) resolve(g *model.Game) (*model.Game, []Effect, error) {
	g.UpdatedAt = time.Now()

	switch g.PlayingCount() {
	case 1:
		for i, st := range g.PlayerStatus {
			if st == model.PlayerPlaying {
				g.Winner = g.Players[i]
			}
		}
		g.Status = model.GameStatusCompleted
		return g, []Effect{EffectDisarmClock, EffectPersist, EffectBroadcast, EffectArchive}, nil
	case 0:
		// Unreachable with a single active turn, but must not crash
		g.Status = model.GameStatusCompleted
		return g, []Effect{EffectDisarmClock, EffectPersist, EffectBroadcast, EffectArchive}, nil
	}

	next := (g.CurrentTurn + 1) % len(g.Players)
	for g.PlayerStatus[next] != model.PlayerPlaying {
		next = (next + 1) % len(g.Players)
	}
	g.CurrentTurn = next
	g.TimerRemaining = e.turnSeconds
	return g, []Effect{EffectPersist, EffectBroadcast, EffectArmClock}, nil
}
