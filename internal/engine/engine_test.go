package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"questionsbattle/internal/model"
)

func newTestEngine() *Engine {
	return New(10, 5)
}

// buildGame applies a sequence of events from scratch, asserting that the
// record stays valid after every transition.
func buildGame(t *testing.T, e *Engine, events ...Event) *model.Game {
	t.Helper()
	var g *model.Game
	for _, ev := range events {
		next, _, err := e.Apply(g, ev)
		require.NoError(t, err)
		require.NoError(t, next.Validate())
		g = next
	}
	return g
}

func TestCreate(t *testing.T) {
	e := newTestEngine()

	g, effects, err := e.Apply(nil, Create("alice"))
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	require.Equal(t, []string{"alice"}, g.Players)
	require.Equal(t, "alice", g.Admin)
	require.Equal(t, model.GameStatusCreated, g.Status)
	require.Equal(t, []model.PlayerStatus{model.PlayerPlaying}, g.PlayerStatus)
	require.Equal(t, 10, g.TimerRemaining)
	require.False(t, g.WaitingForJudgment)
	require.Equal(t, []Effect{EffectPersist, EffectBroadcast}, effects)
}

func TestJoin(t *testing.T) {
	e := newTestEngine()

	t.Run("adds player in turn order", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Join("carol"))
		require.Equal(t, []string{"alice", "bob", "carol"}, g.Players)
		require.Equal(t, 3, g.PlayingCount())
	})

	t.Run("rejects duplicate player", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"))
		_, _, err := e.Apply(g, Join("bob"))
		require.ErrorIs(t, err, ErrDuplicatePlayer)
	})

	t.Run("rejects sixth player", func(t *testing.T) {
		g := buildGame(t, e, Create("p1"), Join("p2"), Join("p3"), Join("p4"), Join("p5"))
		_, _, err := e.Apply(g, Join("p6"))
		require.ErrorIs(t, err, ErrRoomFull)
		require.Len(t, g.Players, 5)
	})

	t.Run("rejects once started", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Start("alice"))
		_, _, err := e.Apply(g, Join("carol"))
		require.ErrorIs(t, err, ErrWrongStatus)
	})

	t.Run("does not mutate input on rejection", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Start("alice"))
		before := g.Clone()
		_, _, err := e.Apply(g, Join("carol"))
		require.Error(t, err)
		require.Equal(t, before, g)
	})
}

func TestStart(t *testing.T) {
	e := newTestEngine()

	t.Run("requires admin", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"))
		_, _, err := e.Apply(g, Start("bob"))
		require.ErrorIs(t, err, ErrNotAdmin)
	})

	t.Run("requires two players", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"))
		_, _, err := e.Apply(g, Start("alice"))
		require.ErrorIs(t, err, ErrNotEnoughPlayers)
	})

	t.Run("arms the clock and hands turn to first player", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"))
		next, effects, err := e.Apply(g, Start("alice"))
		require.NoError(t, err)
		require.Equal(t, model.GameStatusInProgress, next.Status)
		require.Equal(t, 0, next.CurrentTurn)
		require.Equal(t, 10, next.TimerRemaining)
		require.Equal(t, []Effect{EffectPersist, EffectBroadcast, EffectArmClock}, effects)
	})

	t.Run("rejects double start", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Start("alice"))
		_, _, err := e.Apply(g, Start("alice"))
		require.ErrorIs(t, err, ErrWrongStatus)
	})
}

func TestSubmitTurn(t *testing.T) {
	e := newTestEngine()

	t.Run("only the turn holder may submit", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Start("alice"))
		_, _, err := e.Apply(g, SubmitTurn("bob"))
		require.ErrorIs(t, err, ErrWrongTurn)
	})

	t.Run("rejected before start", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"))
		_, _, err := e.Apply(g, SubmitTurn("alice"))
		require.ErrorIs(t, err, ErrWrongStatus)
	})

	t.Run("flips waiting and disarms the clock", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Start("alice"))
		next, effects, err := e.Apply(g, SubmitTurn("alice"))
		require.NoError(t, err)
		require.True(t, next.WaitingForJudgment)
		require.Equal(t, []Effect{EffectDisarmClock, EffectPersist, EffectBroadcast}, effects)
	})

	t.Run("rejected while judgment pending", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Start("alice"), SubmitTurn("alice"))
		_, _, err := e.Apply(g, SubmitTurn("alice"))
		require.ErrorIs(t, err, ErrJudgmentPending)
	})
}

func TestJudgmentReceived(t *testing.T) {
	e := newTestEngine()

	t.Run("survival advances the turn", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Start("alice"), SubmitTurn("alice"))
		next, effects, err := e.Apply(g, JudgmentReceived(false))
		require.NoError(t, err)
		require.False(t, next.WaitingForJudgment)
		require.Equal(t, 1, next.CurrentTurn)
		require.Equal(t, 10, next.TimerRemaining)
		require.Equal(t, 2, next.PlayingCount())
		require.Contains(t, effects, EffectArmClock)
	})

	t.Run("disqualification eliminates the turn holder", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Join("carol"), Start("alice"), SubmitTurn("alice"))
		next, _, err := e.Apply(g, JudgmentReceived(true))
		require.NoError(t, err)
		require.Equal(t, model.PlayerEliminated, next.PlayerStatus[0])
		require.Equal(t, 1, next.CurrentTurn)
		require.Equal(t, model.GameStatusInProgress, next.Status)
	})

	t.Run("duplicate verdict is stale", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Join("carol"),
			Start("alice"), SubmitTurn("alice"), JudgmentReceived(true))
		_, _, err := e.Apply(g, JudgmentReceived(true))
		require.ErrorIs(t, err, ErrStaleEvent)
	})

	t.Run("verdict without submission is stale", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Start("alice"))
		_, _, err := e.Apply(g, JudgmentReceived(false))
		require.ErrorIs(t, err, ErrStaleEvent)
	})
}

func TestTimerExpired(t *testing.T) {
	e := newTestEngine()

	t.Run("eliminates the turn holder", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Join("carol"), Start("alice"))
		next, _, err := e.Apply(g, TimerExpired(0))
		require.NoError(t, err)
		require.Equal(t, model.PlayerEliminated, next.PlayerStatus[0])
		require.Equal(t, 1, next.CurrentTurn)
		require.Equal(t, 10, next.TimerRemaining)
	})

	t.Run("stale turn index is a no-op", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Join("carol"),
			Start("alice"), SubmitTurn("alice"), JudgmentReceived(false))
		// Clock armed for turn 0 fires after the turn moved to 1
		_, _, err := e.Apply(g, TimerExpired(0))
		require.ErrorIs(t, err, ErrStaleEvent)
	})

	t.Run("ignored while judgment pending", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Start("alice"), SubmitTurn("alice"))
		_, _, err := e.Apply(g, TimerExpired(0))
		require.ErrorIs(t, err, ErrStaleEvent)
	})
}

func TestResolveSkipsEliminated(t *testing.T) {
	e := newTestEngine()

	// alice(0) times out; turn order then cycles bob(1) -> carol(2) ->
	// bob(1), skipping alice on every wrap-around
	g := buildGame(t, e, Create("alice"), Join("bob"), Join("carol"), Start("alice"),
		TimerExpired(0))
	require.Equal(t, 1, g.CurrentTurn)

	g = buildGame(t, e, Create("alice"), Join("bob"), Join("carol"), Start("alice"),
		TimerExpired(0), SubmitTurn("bob"), JudgmentReceived(false))
	require.Equal(t, 2, g.CurrentTurn) // carol

	g = buildGame(t, e, Create("alice"), Join("bob"), Join("carol"), Start("alice"),
		TimerExpired(0), SubmitTurn("bob"), JudgmentReceived(false),
		SubmitTurn("carol"), JudgmentReceived(false))
	require.Equal(t, 1, g.CurrentTurn) // back to bob, alice skipped
}

// The elimination-order walkthrough: A times out, B is disqualified, C wins.
func TestEliminationOrder(t *testing.T) {
	e := newTestEngine()

	g := buildGame(t, e, Create("A"), Join("B"), Join("C"), Start("A"))

	g, effects, err := e.Apply(g, TimerExpired(0))
	require.NoError(t, err)
	require.Equal(t, model.PlayerEliminated, g.PlayerStatus[0])
	require.Equal(t, 1, g.CurrentTurn)
	require.Equal(t, 10, g.TimerRemaining)
	require.Equal(t, []Effect{EffectPersist, EffectBroadcast, EffectArmClock}, effects)

	g, _, err = e.Apply(g, SubmitTurn("B"))
	require.NoError(t, err)

	g, effects, err = e.Apply(g, JudgmentReceived(true))
	require.NoError(t, err)
	require.Equal(t, model.GameStatusCompleted, g.Status)
	require.Equal(t, "C", g.Winner)
	require.Contains(t, effects, EffectDisarmClock)
	require.Contains(t, effects, EffectArchive)
	require.NoError(t, g.Validate())
}

func TestForceEnd(t *testing.T) {
	e := newTestEngine()

	t.Run("requires admin", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Start("alice"))
		_, _, err := e.Apply(g, ForceEnd("bob"))
		require.ErrorIs(t, err, ErrNotAdmin)
	})

	t.Run("leaves winner unset with several players left", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Join("carol"), Start("alice"))
		next, effects, err := e.Apply(g, ForceEnd("alice"))
		require.NoError(t, err)
		require.Equal(t, model.GameStatusCompleted, next.Status)
		require.Empty(t, next.Winner)
		require.Contains(t, effects, EffectDisarmClock)
	})

	t.Run("sets winner when exactly one player was playing", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"))
		next, _, err := e.Apply(g, ForceEnd("alice"))
		require.NoError(t, err)
		require.Equal(t, model.GameStatusCompleted, next.Status)
		require.Equal(t, "alice", next.Winner)
	})

	t.Run("completed room accepts no further transitions", func(t *testing.T) {
		g := buildGame(t, e, Create("alice"), Join("bob"), Start("alice"), ForceEnd("alice"))
		_, _, err := e.Apply(g, ForceEnd("alice"))
		require.ErrorIs(t, err, ErrWrongStatus)
		_, _, err = e.Apply(g, SubmitTurn("alice"))
		require.ErrorIs(t, err, ErrWrongStatus)
		_, _, err = e.Apply(g, TimerExpired(0))
		require.ErrorIs(t, err, ErrWrongStatus)
	})
}

// A record where nobody is left playing must resolve to completed with no
// winner instead of crashing. Unreachable through the public events.
func TestResolveWithNoPlayersLeft(t *testing.T) {
	e := newTestEngine()

	g := &model.Game{
		Players:            []string{"alice", "bob"},
		Admin:              "alice",
		Status:             model.GameStatusInProgress,
		PlayerStatus:       []model.PlayerStatus{model.PlayerEliminated, model.PlayerEliminated},
		CurrentTurn:        0,
		TimerRemaining:     10,
		WaitingForJudgment: true,
	}

	next, _, err := e.Apply(g, JudgmentReceived(false))
	require.NoError(t, err)
	require.Equal(t, model.GameStatusCompleted, next.Status)
	require.Empty(t, next.Winner)
}

func TestInvariantGuard(t *testing.T) {
	e := newTestEngine()

	// currentTurn pointing at an eliminated player must refuse the
	// transition rather than eliminate them twice
	g := &model.Game{
		Players:        []string{"alice", "bob", "carol"},
		Admin:          "alice",
		Status:         model.GameStatusInProgress,
		PlayerStatus:   []model.PlayerStatus{model.PlayerEliminated, model.PlayerPlaying, model.PlayerPlaying},
		CurrentTurn:    0,
		TimerRemaining: 10,
	}

	_, _, err := e.Apply(g, TimerExpired(0))
	require.ErrorIs(t, err, ErrInvariant)
}
