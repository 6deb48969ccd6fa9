package service

import (
	"context"

	"questionsbattle/internal/model"
)

// Judge is the external classifier deciding whether an utterance is a
// disqualifying statement. Calls may take unbounded time and may fail;
// the coordinator recovers from both.
type Judge interface {
	Judge(ctx context.Context, history []model.ChatMessage) (reply string, disqualified bool, err error)
	Render(ctx context.Context, text string) ([]byte, error)
}
