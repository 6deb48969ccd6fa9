package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"questionsbattle/internal/engine"
	"questionsbattle/internal/model"
)

// clockRegistry tracks the one cancellation handle per room with a live
// countdown. Arming a room cancels whatever was running for it before, so
// two countdowns can never decrement the same record.
type clockRegistry struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func newClockRegistry() *clockRegistry {
	return &clockRegistry{cancels: make(map[string]context.CancelFunc)}
}

// set installs cancel as the room's countdown handle, cancelling any
// previous one. Returns the context the new countdown must watch.
func (r *clockRegistry) set(code string) context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.cancels[code]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancels[code] = cancel
	return ctx
}

// disarm cancels the room's countdown. Idempotent; a tick already past
// its state check is handled by the tick's own re-check.
func (r *clockRegistry) disarm(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.cancels[code]; ok {
		cancel()
		delete(r.cancels, code)
	}
}

func (r *clockRegistry) disarmAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for code, cancel := range r.cancels {
		cancel()
		delete(r.cancels, code)
	}
}

// armClock starts the countdown for the turn that is current right now.
// The turn index travels with the clock so a countdown that outlives its
// turn discards itself.
func (s *GameService) armClock(code string, turn int) {
	ctx := s.clocks.set(code)
	go s.runClock(ctx, code, turn)
}

func (s *GameService) runClock(ctx context.Context, code string, turn int) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, done := s.clockTick(ctx, code, turn)
			if expired {
				// Re-checked by the engine under the room lock; a stale
				// expiry is rejected there
				if _, err := s.applyEvent(context.Background(), code, engine.TimerExpired(turn)); err != nil && !errors.Is(err, engine.ErrStaleEvent) {
					log.Printf("room %s: timer expiry failed: %v", code, err)
				}
				return
			}
			if done {
				return
			}
		}
	}
}

// clockTick decrements the authoritative record by one second. It takes
// the room lock and re-reads the record first: if the room moved on
// (status change, judgment pending, different turn) the tick is a no-op
// and the countdown stops itself.
func (s *GameService) clockTick(ctx context.Context, code string, turn int) (expired, done bool) {
	lock := s.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.games.Get(ctx, code)
	if err != nil || game == nil {
		return false, true
	}
	if game.Status != model.GameStatusInProgress || game.WaitingForJudgment || game.CurrentTurn != turn {
		return false, true
	}
	if game.TimerRemaining <= 0 {
		return true, true
	}

	game.TimerRemaining--
	game.UpdatedAt = time.Now()
	if err := s.games.Set(ctx, code, game); err != nil {
		log.Printf("room %s: failed to persist tick: %v", code, err)
		return false, true
	}
	s.broadcastGame(code, game)
	return false, false
}
