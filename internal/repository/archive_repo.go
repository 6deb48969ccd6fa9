package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"questionsbattle/internal/model"
)

// ArchivedGame is the durable copy of a finished room: the final record
// plus the full conversation, written once when the game completes.
type ArchivedGame struct {
	RoomCode   string              `json:"roomCode" bson:"roomCode"`
	Game       *model.Game         `json:"game" bson:"game"`
	Transcript []model.ChatMessage `json:"transcript" bson:"transcript"`
	ArchivedAt time.Time           `json:"archivedAt" bson:"archivedAt"`
}

type ArchiveRepo interface {
	Insert(ctx context.Context, archived *ArchivedGame) error
	GetByCode(ctx context.Context, code string) (*ArchivedGame, error)
}

type archiveRepo struct {
	collection *mongo.Collection
}

func NewArchiveRepo(db *mongo.Database) ArchiveRepo {
	return &archiveRepo{
		collection: db.Collection("archived_games"),
	}
}

func (r *archiveRepo) Insert(ctx context.Context, archived *ArchivedGame) error {
	if archived.ArchivedAt.IsZero() {
		archived.ArchivedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, archived)
	return err
}

func (r *archiveRepo) GetByCode(ctx context.Context, code string) (*ArchivedGame, error) {
	var archived ArchivedGame
	err := r.collection.FindOne(ctx, map[string]interface{}{"roomCode": code}).Decode(&archived)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &archived, nil
}
