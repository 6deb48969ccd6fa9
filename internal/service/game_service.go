package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"questionsbattle/internal/cache"
	"questionsbattle/internal/config"
	"questionsbattle/internal/engine"
	"questionsbattle/internal/model"
	"questionsbattle/internal/repository"
)

// ErrRoomNotFound is returned for an unknown room code
var ErrRoomNotFound = errors.New("room not found")

// ErrRoomExists is returned when creating under a code already in use
var ErrRoomExists = errors.New("room already exists")

// opponentName is how the automated opponent signs its chat messages
const opponentName = "Sam"

// GameService orchestrates rooms: it serializes events through a per-room
// lock, runs them through the engine, and executes the resulting effects
// (persist, broadcast, clock changes, archival). The Redis record is the
// single source of truth; clocks and sockets are process-local.
type GameService struct {
	engine      *engine.Engine
	games       cache.GameCache
	messages    cache.MessageCache
	archive     repository.ArchiveRepo
	judge       Judge
	broadcaster Broadcaster

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	clocks *clockRegistry
	tick   time.Duration
}

// NewGameService creates a new game service
func NewGameService(cfg *config.Config, games cache.GameCache, messages cache.MessageCache, archive repository.ArchiveRepo, judge Judge) *GameService {
	if cfg == nil {
		cfg = config.Load()
	}
	return &GameService{
		engine:   engine.New(cfg.TurnSeconds, cfg.MaxPlayers),
		games:    games,
		messages: messages,
		archive:  archive,
		judge:    judge,
		locks:    make(map[string]*sync.Mutex),
		clocks:   newClockRegistry(),
		tick:     time.Second,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateRoom creates a new room with a generated code and the given
// player as admin
func (s *GameService) CreateRoom(ctx context.Context, playerName string) (string, *model.Snapshot, error) {
	code, err := s.generateRoomCode(ctx)
	if err != nil {
		return "", nil, err
	}
	snapshot, err := s.CreateRoomWithCode(ctx, code, playerName)
	if err != nil {
		return "", nil, err
	}
	return code, snapshot, nil
}

// CreateRoomWithCode creates a room under a caller-chosen code, which
// must not be in use
func (s *GameService) CreateRoomWithCode(ctx context.Context, code, playerName string) (*model.Snapshot, error) {
	if playerName == "" {
		return nil, fmt.Errorf("player name is required")
	}
	game, err := s.applyEvent(ctx, code, engine.Create(playerName))
	if err != nil {
		return nil, err
	}
	return game.Snapshot(), nil
}

// JoinRoom seats a player in a room that has not started yet
func (s *GameService) JoinRoom(ctx context.Context, code, playerName string) (*model.Snapshot, error) {
	if playerName == "" {
		return nil, fmt.Errorf("player name is required")
	}
	game, err := s.applyEvent(ctx, code, engine.Join(playerName))
	if err != nil {
		return nil, err
	}
	return game.Snapshot(), nil
}

// StartGame begins the game; only the admin may start, with 2+ players
func (s *GameService) StartGame(ctx context.Context, code, playerName string) (*model.Snapshot, error) {
	game, err := s.applyEvent(ctx, code, engine.Start(playerName))
	if err != nil {
		return nil, err
	}
	return game.Snapshot(), nil
}

// SubmitUtterance handles the turn holder's message: it flips the room
// into waiting-for-judgment (stopping the clock), records and broadcasts
// the utterance, and kicks off the judge call off the room lock.
func (s *GameService) SubmitUtterance(ctx context.Context, code, playerName, text string) error {
	if text == "" {
		return fmt.Errorf("utterance text is required")
	}
	if _, err := s.applyEvent(ctx, code, engine.SubmitTurn(playerName)); err != nil {
		return err
	}

	userMsg := &model.ChatMessage{Role: "user", Content: text, Name: playerName}
	if err := s.messages.Append(ctx, code, userMsg); err != nil {
		log.Printf("room %s: failed to record utterance: %v", code, err)
	}
	s.broadcastChat(code, userMsg, nil)

	go s.resolveJudgment(code)
	return nil
}

// ForceEnd lets the admin end the game in any state
func (s *GameService) ForceEnd(ctx context.Context, code, playerName string) (*model.Snapshot, error) {
	game, err := s.applyEvent(ctx, code, engine.ForceEnd(playerName))
	if err != nil {
		return nil, err
	}
	return game.Snapshot(), nil
}

// GetSnapshot returns the current room state, falling back to the archive
// for rooms that have aged out of the store.
func (s *GameService) GetSnapshot(ctx context.Context, code string) (*model.Snapshot, error) {
	game, err := s.games.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if game != nil {
		return game.Snapshot(), nil
	}
	if s.archive != nil {
		archived, err := s.archive.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if archived != nil && archived.Game != nil {
			return archived.Game.Snapshot(), nil
		}
	}
	return nil, ErrRoomNotFound
}

// Shutdown stops every live countdown
func (s *GameService) Shutdown() {
	s.clocks.disarmAll()
}

// applyEvent is the per-room exclusive section: load, transition, and
// execute effects, all serialized against other events for the same room.
func (s *GameService) applyEvent(ctx context.Context, code string, ev engine.Event) (*model.Game, error) {
	lock := s.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	var game *model.Game
	if ev.Type == engine.EventCreate {
		// Room must not exist yet; generateRoomCode already checked, but
		// re-check under the lock
		exists, err := s.games.Exists(ctx, code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("room %s: %w", code, ErrRoomExists)
		}
	} else {
		var err error
		game, err = s.games.Get(ctx, code)
		if err != nil {
			return nil, err
		}
		if game == nil {
			return nil, ErrRoomNotFound
		}
	}

	next, effects, err := s.engine.Apply(game, ev)
	if err != nil {
		return nil, err
	}

	for _, eff := range effects {
		switch eff {
		case engine.EffectPersist:
			if err := s.games.Set(ctx, code, next); err != nil {
				return nil, err
			}
		case engine.EffectBroadcast:
			s.broadcastGame(code, next)
		case engine.EffectArmClock:
			s.armClock(code, next.CurrentTurn)
		case engine.EffectDisarmClock:
			s.clocks.disarm(code)
		case engine.EffectArchive:
			go s.archiveGame(code, next)
		}
	}
	return next, nil
}

// resolveJudgment runs outside the room lock: the judge call can take as
// long as it likes without blocking the room. Whatever happens, a verdict
// is fed back so the room can never stall in waiting-for-judgment.
func (s *GameService) resolveJudgment(code string) {
	ctx := context.Background()

	history, err := s.messages.List(ctx, code)
	if err != nil {
		log.Printf("room %s: failed to load history for judgment: %v", code, err)
	}

	reply, disqualified, err := s.judge.Judge(ctx, history)
	if err != nil {
		log.Printf("room %s: judge call failed: %v", code, err)
		reply, disqualified = "Sorry, where were we?", false
	}

	aiMsg := &model.ChatMessage{Role: "assistant", Content: reply, Name: opponentName}
	if err := s.messages.Append(ctx, code, aiMsg); err != nil {
		log.Printf("room %s: failed to record reply: %v", code, err)
	}

	var audio []byte
	if rendered, err := s.judge.Render(ctx, reply); err != nil {
		log.Printf("room %s: speech render failed: %v", code, err)
	} else {
		audio = rendered
	}
	s.broadcastChat(code, aiMsg, audio)

	if _, err := s.applyEvent(ctx, code, engine.JudgmentReceived(disqualified)); err != nil && !errors.Is(err, engine.ErrStaleEvent) {
		log.Printf("room %s: failed to apply verdict: %v", code, err)
	}
}

func (s *GameService) archiveGame(code string, game *model.Game) {
	if s.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	transcript, err := s.messages.List(ctx, code)
	if err != nil {
		log.Printf("room %s: failed to load transcript for archive: %v", code, err)
	}
	err = s.archive.Insert(ctx, &repository.ArchivedGame{
		RoomCode:   code,
		Game:       game,
		Transcript: transcript,
		ArchivedAt: time.Now(),
	})
	if err != nil {
		log.Printf("room %s: archive failed: %v", code, err)
	}
}

func (s *GameService) broadcastGame(code string, game *model.Game) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToRoom(code, MsgGameUpdate, game.Snapshot())
}

func (s *GameService) broadcastChat(code string, msg *model.ChatMessage, audio []byte) {
	if s.broadcaster == nil {
		return
	}
	payload := &ChatPayload{
		Message: msg.Content,
		Sender:  msg.Name,
	}
	if len(audio) > 0 {
		payload.Audio = base64.StdEncoding.EncodeToString(audio)
	}
	s.broadcaster.BroadcastToRoom(code, MsgChatMessage, payload)
}

func (s *GameService) roomLock(code string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[code]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[code] = lock
	}
	return lock
}

// generateRoomCode creates a 6-char alphanumeric code
func (s *GameService) generateRoomCode(ctx context.Context) (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLen = 6

	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, codeLen)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, codeLen)
		for i := range code {
			code[i] = chars[int(b[i])%len(chars)]
		}
		codeStr := string(code)

		exists, err := s.games.Exists(ctx, codeStr)
		if err != nil {
			return "", err
		}
		if !exists {
			return codeStr, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique room code")
}
