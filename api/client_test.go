package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestSendMessage(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/message", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(Message{ID: "m1", Role: RoleAssistant, Text: "hello back"})
	})

	msg, err := c.SendMessage(context.Background(), "u1", "hello", true, 3.5)
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "u1", got["user_id"])
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, true, got["is_voice"])
	assert.Equal(t, 3.5, got["audio_duration"])
}

func TestSendMessageTextOnlyOmitsDuration(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(Message{ID: "m1"})
	})

	_, err := c.SendMessage(context.Background(), "u1", "hi", false, 0)
	require.NoError(t, err)
	_, present := got["audio_duration"]
	assert.False(t, present, "audio_duration must be omitted for text messages")
}

func TestChatHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/history/u1", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(map[string]any{
			"messages": []Message{{ID: "a"}, {ID: "b"}},
		})
	})

	msgs, err := c.ChatHistory(context.Background(), "u1", 25)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "a", msgs[0].ID)
}

func TestTranscribeMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/audio/transcribe", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "audio.wav", header.Filename)
		json.NewEncoder(w).Encode(TranscriptionResult{Success: true, Text: "hi there", Duration: 1.2})
	})

	result, err := c.Transcribe(context.Background(), []byte("RIFFdata"), "audio.wav")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "hi there", result.Text)
	assert.Equal(t, 1.2, result.Duration)
}

func TestSynthesizeFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/audio/synthesize", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "say this", r.FormValue("text"))
		assert.Equal(t, "alloy", r.FormValue("voice"))
		w.Write([]byte("RIFFaudio-bytes"))
	})

	audio, err := c.Synthesize(context.Background(), "say this", "alloy")
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFFaudio-bytes"), audio)
}

func TestNon2xxBecomesError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"user not found"}`, http.StatusNotFound)
	})

	_, err := c.GetUser(context.Background(), "missing")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, apiErr.Body, "user not found")
}

func TestTransportErrorIsNotAPIError(t *testing.T) {
	c := New("http://127.0.0.1:1") // nothing listens here
	_, err := c.Analytics(context.Background())
	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestPeerEndpoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/peer/conversations/create":
			assert.Equal(t, "u1", r.URL.Query().Get("from_user_id"))
			assert.Equal(t, "u2", r.URL.Query().Get("to_user_id"))
			json.NewEncoder(w).Encode(map[string]string{"conversation_id": "c9"})
		case "/api/peer/messages/c9":
			assert.Equal(t, "50", r.URL.Query().Get("limit"))
			json.NewEncoder(w).Encode(map[string]any{"messages": []PeerMessage{{ID: "p1", Text: "yo"}}})
		case "/api/peer/conversations/c9/end":
			assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
			json.NewEncoder(w).Encode(map[string]bool{"success": true})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	ctx := context.Background()
	id, err := c.CreatePeerConversation(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, "c9", id)

	msgs, err := c.PeerMessages(ctx, "c9", 50)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "yo", msgs[0].Text)

	require.NoError(t, c.EndPeerConversation(ctx, "c9", "u1"))
}

func TestIntroLifecycle(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/intros/u1":
			json.NewEncoder(w).Encode(map[string]any{"intros": []Intro{
				{ID: "i1", Status: IntroPending, OtherUser: IntroUser{Name: "Priya"}},
			}})
		case "/api/intros/action":
			var req map[string]string
			json.NewDecoder(r.Body).Decode(&req)
			assert.Equal(t, "i1", req["intro_id"])
			assert.Equal(t, "accept", req["action"])
			json.NewEncoder(w).Encode(map[string]any{"success": true, "status": IntroAccepted})
		case "/api/intros/generate/u1":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "suggestions_count": 3})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	ctx := context.Background()
	intros, err := c.Intros(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, intros, 1)
	assert.Equal(t, "Priya", intros[0].OtherUser.Name)

	require.NoError(t, c.IntroAction(ctx, "i1", "accept"))

	n, err := c.GenerateIntros(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCreateUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users", r.URL.Path)
		var req CreateUserRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Asha", req.Name)
		json.NewEncoder(w).Encode(User{ID: "u1", Name: req.Name, PreferredMode: req.PreferredMode})
	})

	user, err := c.CreateUser(context.Background(), CreateUserRequest{Name: "Asha", PreferredMode: "voice"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}
