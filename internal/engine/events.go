package engine

type EventType string

const (
	EventCreate           EventType = "create"
	EventJoin             EventType = "join"
	EventStart            EventType = "start"
	EventSubmitTurn       EventType = "submit_turn"
	EventJudgmentReceived EventType = "judgment_received"
	EventTimerExpired     EventType = "timer_expired"
	EventForceEnd         EventType = "force_end"
)

// Event is one input to the state machine. Player carries the acting
// participant (creator, joiner, submitter, or requestor); Turn carries the
// turn index a timer was armed for, so a countdown that outlived its turn
// is discarded as stale.
type Event struct {
	Type         EventType
	Player       string
	Disqualified bool
	Turn         int
}

func Create(player string) Event {
	return Event{Type: EventCreate, Player: player}
}

func Join(player string) Event {
	return Event{Type: EventJoin, Player: player}
}

func Start(requestor string) Event {
	return Event{Type: EventStart, Player: requestor}
}

func SubmitTurn(player string) Event {
	return Event{Type: EventSubmitTurn, Player: player}
}

func JudgmentReceived(disqualified bool) Event {
	return Event{Type: EventJudgmentReceived, Disqualified: disqualified}
}

func TimerExpired(turn int) Event {
	return Event{Type: EventTimerExpired, Turn: turn}
}

func ForceEnd(requestor string) Event {
	return Event{Type: EventForceEnd, Player: requestor}
}

// Effect tells the orchestrator what to do after a transition. Effects are
// ordered: persist before broadcast, clock changes after both.
type Effect string

const (
	EffectPersist     Effect = "persist"
	EffectBroadcast   Effect = "broadcast"
	EffectArmClock    Effect = "arm_clock"
	EffectDisarmClock Effect = "disarm_clock"
	EffectArchive     Effect = "archive"
)
