package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"questionsbattle/internal/config"
	"questionsbattle/internal/model"
)

// disqualifiedMarker is what the opponent emits when a participant broke
// the rules. The verdict is parsed out of the reply text.
const disqualifiedMarker = "GAME OVER! YOU LOSE"

const systemPrompt = `You are Sam, playing 'Questions Battle' with the players. Here's how it works:

A player will ask you a question, and you must always respond with another question on the same topic.
The game ends for a player when they respond with a statement (instead of a question).
If the player's last message is a statement (and not a question) then always respond with <GAME OVER! YOU LOSE!!!>

THE GAME IS ALREADY STARTED.

Example:

Player: Will you join us tomorrow?
Sam: At what time?

Player: When are you free?
Sam: Would the evening work?

Player: Let's meet at 7.
Sam: <GAME OVER! YOU LOSE!!!>`

// Client calls the OpenAI API for the judge verdict and the speech
// rendering. When no API key is configured it falls back to a local mock
// so the game stays playable in development.
type Client struct {
	config *config.AIConfig
	client *http.Client
}

// NewClient creates a new judge client
func NewClient(cfg *config.AIConfig) *Client {
	if cfg == nil {
		cfg = config.DefaultAIConfig()
	}
	return &Client{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// Judge sends the room conversation to the model. The last history entry
// is the utterance under judgment. It returns the opponent's reply and
// whether the utterance was a disqualifying statement.
func (c *Client) Judge(ctx context.Context, history []model.ChatMessage) (string, bool, error) {
	if !c.config.IsEnabled() {
		return c.mockJudge(history)
	}

	messages := make([]map[string]string, 0, len(history)+1)
	messages = append(messages, map[string]string{
		"role":    "system",
		"content": systemPrompt,
	})
	for _, msg := range history {
		messages = append(messages, map[string]string{
			"role":    msg.Role,
			"content": msg.Content,
		})
	}

	reqBody := map[string]interface{}{
		"model":    c.config.ChatModel,
		"messages": messages,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", false, err
	}

	url := c.config.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("judge returned status %d", resp.StatusCode)
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", false, err
	}
	if len(chatResp.Choices) == 0 {
		return "", false, fmt.Errorf("empty response from judge")
	}

	reply := chatResp.Choices[0].Message.Content
	return reply, strings.Contains(reply, disqualifiedMarker), nil
}

// Render turns text into speech audio. Purely a side output; callers must
// tolerate an error without affecting game state.
func (c *Client) Render(ctx context.Context, text string) ([]byte, error) {
	if !c.config.IsEnabled() {
		return nil, nil
	}

	reqBody := map[string]string{
		"model": c.config.TTSModel,
		"voice": c.config.Voice,
		"input": text,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := c.config.BaseURL + "/audio/speech"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech renderer returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// mockJudge keeps the game playable without an API key: it answers with a
// question and disqualifies only the most obvious statements (no question
// mark in the utterance).
func (c *Client) mockJudge(history []model.ChatMessage) (string, bool, error) {
	if len(history) == 0 {
		return "Shall we begin?", false, nil
	}
	last := history[len(history)-1]
	if !strings.Contains(last.Content, "?") {
		return "<GAME OVER! YOU LOSE!!!>", true, nil
	}
	return "Is that really what you want to ask?", false, nil
}
