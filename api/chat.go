package api

import (
	"context"
	"net/url"
	"strconv"
)

type sendMessageRequest struct {
	UserID        string   `json:"user_id"`
	Text          string   `json:"text"`
	IsVoice       bool     `json:"is_voice"`
	AudioDuration *float64 `json:"audio_duration,omitempty"`
}

// SendMessage posts a user message and returns the assistant's reply.
// audioDuration is only sent for voice messages.
func (c *Client) SendMessage(ctx context.Context, userID, text string, isVoice bool, audioDuration float64) (Message, error) {
	req := sendMessageRequest{
		UserID:  userID,
		Text:    text,
		IsVoice: isVoice,
	}
	if isVoice {
		req.AudioDuration = &audioDuration
	}
	var msg Message
	err := c.doJSON(ctx, "POST", "/chat/message", nil, req, &msg)
	return msg, err
}

func (c *Client) ChatHistory(ctx context.Context, userID string, limit int) ([]Message, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	var out struct {
		Messages []Message `json:"messages"`
	}
	err := c.doJSON(ctx, "GET", "/chat/history/"+userID, query, nil, &out)
	return out.Messages, err
}

type trackSelectRequest struct {
	UserID string `json:"user_id"`
	Track  string `json:"track"`
}

func (c *Client) SelectTrack(ctx context.Context, userID, track string) error {
	return c.doJSON(ctx, "POST", "/track/select", nil, trackSelectRequest{UserID: userID, Track: track}, nil)
}
