package api

import (
	"context"
	"net/url"
	"strconv"
)

// CreatePeerConversation creates (or returns the existing) conversation
// between two users and returns its id.
func (c *Client) CreatePeerConversation(ctx context.Context, fromUserID, toUserID string) (string, error) {
	query := url.Values{
		"from_user_id": {fromUserID},
		"to_user_id":   {toUserID},
	}
	var out struct {
		ConversationID string `json:"conversation_id"`
	}
	err := c.doJSON(ctx, "POST", "/peer/conversations/create", query, nil, &out)
	return out.ConversationID, err
}

func (c *Client) PeerConversations(ctx context.Context, userID string) ([]PeerConversation, error) {
	var out struct {
		Conversations []PeerConversation `json:"conversations"`
	}
	err := c.doJSON(ctx, "GET", "/peer/conversations/"+userID, nil, nil, &out)
	return out.Conversations, err
}

type peerMessageRequest struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Text       string `json:"text"`
}

func (c *Client) SendPeerMessage(ctx context.Context, fromUserID, toUserID, text string) (PeerMessage, error) {
	var msg PeerMessage
	err := c.doJSON(ctx, "POST", "/peer/messages", nil, peerMessageRequest{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Text:       text,
	}, &msg)
	return msg, err
}

func (c *Client) PeerMessages(ctx context.Context, conversationID string, limit int) ([]PeerMessage, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	var out struct {
		Messages []PeerMessage `json:"messages"`
	}
	err := c.doJSON(ctx, "GET", "/peer/messages/"+conversationID, query, nil, &out)
	return out.Messages, err
}

func (c *Client) EndPeerConversation(ctx context.Context, conversationID, userID string) error {
	query := url.Values{"user_id": {userID}}
	return c.doJSON(ctx, "POST", "/peer/conversations/"+conversationID+"/end", query, nil, nil)
}
