package api

// Wire shapes mirror the backend response models. Timestamps stay as the
// backend's ISO strings; the client only displays them.

type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	City         string   `json:"city,omitempty"`
	CurrentRole  string   `json:"current_role,omitempty"`
	Industries   []string `json:"industries,omitempty"`
	Intent       string   `json:"intent,omitempty"`
	OpenToIntros bool     `json:"open_to_intros"`
	PreferredMode string  `json:"preferred_mode"`
	CreatedAt    string   `json:"created_at"`
}

type CreateUserRequest struct {
	Name         string   `json:"name"`
	City         string   `json:"city,omitempty"`
	CurrentRole  string   `json:"current_role,omitempty"`
	Industries   []string `json:"industries,omitempty"`
	Intent       string   `json:"intent,omitempty"`
	OpenToIntros bool     `json:"open_to_intros"`
	PreferredMode string  `json:"preferred_mode"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	ID               string  `json:"id"`
	ConversationID   string  `json:"conversation_id"`
	Role             string  `json:"role"`
	Text             string  `json:"text"`
	Track            string  `json:"track,omitempty"`
	IsVoice          bool    `json:"is_voice"`
	AudioDuration    float64 `json:"audio_duration,omitempty"`
	HasAudioResponse bool    `json:"has_audio_response"`
	CreatedAt        string  `json:"created_at"`
}

// TranscriptionResult is the /audio/transcribe response. Success false or
// empty text is a soft failure: the upload worked but nothing usable came
// back.
type TranscriptionResult struct {
	Success  bool    `json:"success"`
	Text     string  `json:"text"`
	Duration float64 `json:"duration,omitempty"`
}

type IntroUser struct {
	Name        string `json:"name"`
	City        string `json:"city,omitempty"`
	CurrentRole string `json:"current_role,omitempty"`
}

const (
	IntroPending  = "pending"
	IntroAccepted = "accepted"
	IntroDeclined = "declined"
)

type Intro struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	OtherUser  IntroUser `json:"other_user"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	CreatedAt  string    `json:"created_at"`
}

type Analytics struct {
	TotalUsers         int            `json:"total_users"`
	ActiveUsers        int            `json:"active_users"`
	TotalConversations int            `json:"total_conversations"`
	TotalMessages      int            `json:"total_messages"`
	TotalVoiceMessages int            `json:"total_voice_messages"`
	TrackDistribution  map[string]int `json:"track_distribution"`
	IntrosSuggested    int            `json:"intros_suggested"`
	IntrosAccepted     int            `json:"intros_accepted"`
	IntrosDeclined     int            `json:"intros_declined"`
	PowerUsers         int            `json:"power_users"`
}

type PeerConversation struct {
	ID          string `json:"id"`
	UserAID     string `json:"user_a_id"`
	UserBID     string `json:"user_b_id"`
	PartnerName string `json:"partner_name,omitempty"`
	Ended       bool   `json:"ended"`
	CreatedAt   string `json:"created_at"`
}

type PeerMessage struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	FromUserID     string `json:"from_user_id"`
	ToUserID       string `json:"to_user_id"`
	Text           string `json:"text"`
	CreatedAt      string `json:"created_at"`
}
