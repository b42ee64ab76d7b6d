package main

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chekinn/api"
	"chekinn/clipboard"
	"chekinn/log"
	"chekinn/store"
	"chekinn/voice"
)

// TUI message types
type stageMsg struct{ Stage voice.Stage }
type messageAppendedMsg struct {
	PendingID string
	Message   api.Message
}
type turnCompletedMsg struct {
	PendingID string
	Reply     api.Message
}
type alertMsg struct {
	Stage voice.Stage
	Text  string
}
type playbackMsg struct {
	MessageID string
	Playing   bool
}
type historyMsg struct {
	Messages []api.Message
	Err      error
}
type userCreatedMsg struct {
	User api.User
	Err  error
}
type introsMsg struct {
	Intros []api.Intro
	Err    error
}
type introsGeneratedMsg struct {
	Count int
	Err   error
}
type analyticsMsg struct {
	Data api.Analytics
	Err  error
}
type peerConvsMsg struct {
	Convs []api.PeerConversation
	Err   error
}
type peerOpenedMsg struct {
	ConversationID string
	PartnerID      string
	Messages       []api.PeerMessage
	Err            error
}
type peerSentMsg struct {
	Message api.PeerMessage
	Err     error
}
type peerEndedMsg struct{ Err error }
type trackSetMsg struct {
	Track string
	Err   error
}
type copiedMsg struct{ Err error }
type updateAvailableMsg struct{ Version string }
type tickMsg time.Time

type viewMode int

const (
	viewOnboarding viewMode = iota
	viewChat
	viewIntros
	viewPeer
	viewAnalytics
	viewProfile
)

var viewNames = map[viewMode]string{
	viewChat:      "chat",
	viewIntros:    "intros",
	viewPeer:      "peer",
	viewAnalytics: "analytics",
	viewProfile:   "profile",
}

// chatEntry wraps a wire message with local-only display state.
type chatEntry struct {
	api.Message
	Pending bool
	Playing bool
}

type quickStart struct {
	Title  string
	Detail string
	Prompt string
}

var quickStarts = []quickStart{
	{
		Title:  "Talk through CAT vs MBA",
		Detail: "You're torn between studying more and working more. Let's unpack that.",
		Prompt: "I'm stuck between preparing CAT again or focusing on my job.",
	},
	{
		Title:  "Sense-check my next career move",
		Detail: "Use me as a sounding board before you jump.",
		Prompt: "I want to sense-check my next career move.",
	},
	{
		Title:  "Just vent about prep or work",
		Detail: "No advice unless you ask. Just space.",
		Prompt: "I need to vent about what's on my mind right now.",
	},
}

var trackOptions = []struct {
	ID    string
	Label string
}{
	{"cat_mba", "CAT / MBA entrance prep"},
	{"jobs_career", "Jobs & career decisions"},
}

type model struct {
	client *api.Client
	st     *store.Store
	orch   *voice.Orchestrator

	profile *store.Profile
	view    viewMode

	width, height int
	frame         int

	stage voice.Stage
	alert string

	// chat
	entries       []chatEntry
	input         string
	historyLoaded bool
	trackPicker   bool

	// onboarding: name, city, current role, intent, plus the intros toggle
	obFields [4]string
	obIntros bool
	obFocus  int
	obBusy   bool

	// intros
	intros      []api.Intro
	introCursor int
	introBusy   bool

	// peer
	convs      []api.PeerConversation
	peerCursor int
	peerConvID string
	peerWith   string
	peerMsgs   []api.PeerMessage
	peerInput  string

	analytics       *api.Analytics
	analyticsLoaded bool

	updateVersion string
}

func newModel(client *api.Client, st *store.Store, orch *voice.Orchestrator, profile *store.Profile) model {
	m := model{client: client, st: st, orch: orch, profile: profile, obIntros: true}
	if profile == nil {
		m.view = viewOnboarding
	} else {
		m.view = viewChat
	}
	return m
}

func NewTUIProgram(m model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{tuiTick()}
	if m.profile != nil {
		cmds = append(cmds, m.loadHistory())
	}
	return tea.Batch(cmds...)
}

// --- commands ---

func (m model) loadHistory() tea.Cmd {
	client, userID := m.client, m.profile.UserID
	return func() tea.Msg {
		msgs, err := client.ChatHistory(context.Background(), userID, 50)
		return historyMsg{Messages: msgs, Err: err}
	}
}

func (m model) createUser() tea.Cmd {
	client, st := m.client, m.st
	req := api.CreateUserRequest{
		Name:          strings.TrimSpace(m.obFields[0]),
		City:          strings.TrimSpace(m.obFields[1]),
		CurrentRole:   strings.TrimSpace(m.obFields[2]),
		Intent:        strings.TrimSpace(m.obFields[3]),
		OpenToIntros:  m.obIntros,
		PreferredMode: "voice",
	}
	return func() tea.Msg {
		user, err := client.CreateUser(context.Background(), req)
		if err == nil {
			if serr := st.Save(store.Profile{
				UserID:      user.ID,
				Name:        user.Name,
				City:        user.City,
				CurrentRole: user.CurrentRole,
			}); serr != nil {
				log.Warnf("profile save: %v", serr)
			}
		}
		return userCreatedMsg{User: user, Err: err}
	}
}

func (m model) sendText(text string) tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		orch.SendText(context.Background(), text)
		return nil
	}
}

func (m model) toggleMic() tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		orch.ToggleMic(context.Background())
		return nil
	}
}

func (m model) playReply(msg api.Message) tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		orch.PlayReply(context.Background(), msg)
		return nil
	}
}

func (m model) selectTrack(track string) tea.Cmd {
	client, userID := m.client, m.profile.UserID
	return func() tea.Msg {
		err := client.SelectTrack(context.Background(), userID, track)
		return trackSetMsg{Track: track, Err: err}
	}
}

func (m model) loadIntros() tea.Cmd {
	client, userID := m.client, m.profile.UserID
	return func() tea.Msg {
		intros, err := client.Intros(context.Background(), userID)
		return introsMsg{Intros: intros, Err: err}
	}
}

func (m model) actIntro(introID, action string) tea.Cmd {
	client, userID := m.client, m.profile.UserID
	return func() tea.Msg {
		if err := client.IntroAction(context.Background(), introID, action); err != nil {
			return introsMsg{Err: err}
		}
		intros, err := client.Intros(context.Background(), userID)
		return introsMsg{Intros: intros, Err: err}
	}
}

func (m model) generateIntros() tea.Cmd {
	client, userID := m.client, m.profile.UserID
	return func() tea.Msg {
		count, err := client.GenerateIntros(context.Background(), userID)
		if err != nil {
			return introsGeneratedMsg{Err: err}
		}
		intros, lerr := client.Intros(context.Background(), userID)
		if lerr != nil {
			return introsGeneratedMsg{Count: count, Err: lerr}
		}
		return introsMsg{Intros: intros}
	}
}

func (m model) loadAnalytics() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		data, err := client.Analytics(context.Background())
		return analyticsMsg{Data: data, Err: err}
	}
}

func (m model) loadPeerConvs() tea.Cmd {
	client, userID := m.client, m.profile.UserID
	return func() tea.Msg {
		convs, err := client.PeerConversations(context.Background(), userID)
		return peerConvsMsg{Convs: convs, Err: err}
	}
}

func (m model) openPeerConv(conv api.PeerConversation) tea.Cmd {
	client, userID := m.client, m.profile.UserID
	return func() tea.Msg {
		partner := conv.UserAID
		if partner == userID {
			partner = conv.UserBID
		}
		msgs, err := client.PeerMessages(context.Background(), conv.ID, 50)
		return peerOpenedMsg{ConversationID: conv.ID, PartnerID: partner, Messages: msgs, Err: err}
	}
}

func (m model) startPeerConv(withUserID string) tea.Cmd {
	client, userID := m.client, m.profile.UserID
	return func() tea.Msg {
		id, err := client.CreatePeerConversation(context.Background(), userID, withUserID)
		if err != nil {
			return peerOpenedMsg{Err: err}
		}
		msgs, err := client.PeerMessages(context.Background(), id, 50)
		return peerOpenedMsg{ConversationID: id, PartnerID: withUserID, Messages: msgs, Err: err}
	}
}

func (m model) sendPeerMessage(text string) tea.Cmd {
	client, userID, to := m.client, m.profile.UserID, m.peerWith
	return func() tea.Msg {
		msg, err := client.SendPeerMessage(context.Background(), userID, to, text)
		return peerSentMsg{Message: msg, Err: err}
	}
}

func (m model) endPeerConv() tea.Cmd {
	client, userID, convID := m.client, m.profile.UserID, m.peerConvID
	return func() tea.Msg {
		err := client.EndPeerConversation(context.Background(), convID, userID)
		return peerEndedMsg{Err: err}
	}
}

func (m model) copyLastReply() tea.Cmd {
	var text string
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Role == api.RoleAssistant {
			text = m.entries[i].Text
			break
		}
	}
	if text == "" {
		return nil
	}
	return func() tea.Msg {
		return copiedMsg{Err: clipboard.Copy(text)}
	}
}

func (m *model) lastPlayableReply() *api.Message {
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.Role == api.RoleAssistant && e.HasAudioResponse {
			msg := e.Message
			return &msg
		}
	}
	return nil
}

// --- update ---

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case stageMsg:
		m.stage = msg.Stage
		if msg.Stage == voice.StageRecording {
			m.alert = ""
		}

	case messageAppendedMsg:
		m.entries = append(m.entries, chatEntry{Message: msg.Message, Pending: true})

	case turnCompletedMsg:
		for i := range m.entries {
			if m.entries[i].ID == msg.PendingID {
				m.entries[i].Pending = false
				break
			}
		}
		m.entries = append(m.entries, chatEntry{Message: msg.Reply})

	case alertMsg:
		m.alert = msg.Text

	case playbackMsg:
		for i := range m.entries {
			m.entries[i].Playing = m.entries[i].ID == msg.MessageID && msg.Playing
		}

	case historyMsg:
		m.historyLoaded = true
		if msg.Err != nil {
			log.Errorf("history load: %v", msg.Err)
			m.alert = "Could not load your conversation history."
			break
		}
		m.entries = m.entries[:0]
		for _, wire := range msg.Messages {
			m.entries = append(m.entries, chatEntry{Message: wire})
		}

	case userCreatedMsg:
		m.obBusy = false
		if msg.Err != nil {
			log.Errorf("create user: %v", msg.Err)
			m.alert = "Could not create your profile. Is the backend running?"
			break
		}
		m.profile = &store.Profile{
			UserID:      msg.User.ID,
			Name:        msg.User.Name,
			City:        msg.User.City,
			CurrentRole: msg.User.CurrentRole,
		}
		m.orch.SetUser(msg.User.ID)
		m.view = viewChat
		return m, m.loadHistory()

	case introsMsg:
		m.introBusy = false
		if msg.Err != nil {
			log.Errorf("intros: %v", msg.Err)
			m.alert = "Could not load intros."
			break
		}
		m.intros = msg.Intros
		if m.introCursor >= len(m.intros) {
			m.introCursor = 0
		}

	case introsGeneratedMsg:
		m.introBusy = false
		if msg.Err != nil {
			log.Errorf("generate intros: %v", msg.Err)
			m.alert = "Could not generate intros."
		}

	case analyticsMsg:
		m.analyticsLoaded = true
		if msg.Err != nil {
			log.Errorf("analytics: %v", msg.Err)
			m.alert = "Could not load analytics."
			break
		}
		data := msg.Data
		m.analytics = &data

	case peerConvsMsg:
		if msg.Err != nil {
			log.Errorf("peer conversations: %v", msg.Err)
			m.alert = "Could not load peer conversations."
			break
		}
		m.convs = msg.Convs
		if m.peerCursor >= len(m.convs) {
			m.peerCursor = 0
		}

	case peerOpenedMsg:
		if msg.Err != nil {
			log.Errorf("peer open: %v", msg.Err)
			m.alert = "Could not open the conversation."
			break
		}
		m.peerConvID = msg.ConversationID
		m.peerWith = msg.PartnerID
		m.peerMsgs = msg.Messages
		m.view = viewPeer

	case peerSentMsg:
		if msg.Err != nil {
			log.Errorf("peer send: %v", msg.Err)
			m.alert = "Could not send the message."
			break
		}
		m.peerMsgs = append(m.peerMsgs, msg.Message)

	case peerEndedMsg:
		if msg.Err != nil {
			log.Errorf("peer end: %v", msg.Err)
			m.alert = "Could not end the conversation."
			break
		}
		m.peerConvID = ""
		m.peerWith = ""
		m.peerMsgs = nil
		return m, m.loadPeerConvs()

	case trackSetMsg:
		if msg.Err != nil {
			log.Errorf("track select: %v", msg.Err)
			m.alert = "Could not switch track."
			break
		}
		if m.profile != nil {
			m.profile.Track = msg.Track
			if err := m.st.Save(*m.profile); err != nil {
				log.Warnf("profile save: %v", err)
			}
		}

	case copiedMsg:
		if msg.Err != nil {
			m.alert = "Could not copy to clipboard."
		}

	case updateAvailableMsg:
		m.updateVersion = msg.Version
	}
	return m, nil
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// Any key dismisses a standing alert
	if m.alert != "" {
		m.alert = ""
	}

	if m.view == viewOnboarding {
		return m.updateOnboardingKeys(msg)
	}

	// View switching
	if key == "tab" {
		order := []viewMode{viewChat, viewIntros, viewPeer, viewAnalytics, viewProfile}
		for i, v := range order {
			if v == m.view {
				m.view = order[(i+1)%len(order)]
				break
			}
		}
		switch m.view {
		case viewIntros:
			return m, m.loadIntros()
		case viewPeer:
			return m, m.loadPeerConvs()
		case viewAnalytics:
			return m, m.loadAnalytics()
		}
		return m, nil
	}

	switch m.view {
	case viewChat:
		return m.updateChatKeys(msg)
	case viewIntros:
		return m.updateIntroKeys(msg)
	case viewPeer:
		return m.updatePeerKeys(msg)
	case viewProfile:
		if key == "ctrl+l" {
			if err := m.st.Clear(); err != nil {
				log.Warnf("profile clear: %v", err)
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) updateOnboardingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.obBusy {
		return m, nil
	}
	toggleRow := len(m.obFields) // intros yes/no sits under the text fields
	switch msg.String() {
	case "enter":
		if m.obFocus < toggleRow {
			m.obFocus++
			return m, nil
		}
		if strings.TrimSpace(m.obFields[0]) == "" {
			m.alert = "Your name is required."
			m.obFocus = 0
			return m, nil
		}
		m.obBusy = true
		return m, m.createUser()
	case "shift+tab", "up":
		if m.obFocus > 0 {
			m.obFocus--
		}
	case "tab", "down":
		if m.obFocus < toggleRow {
			m.obFocus++
		}
	case "left", "right":
		if m.obFocus == toggleRow {
			m.obIntros = !m.obIntros
		}
	case "backspace":
		if m.obFocus < toggleRow {
			f := m.obFields[m.obFocus]
			if len(f) > 0 {
				m.obFields[m.obFocus] = f[:len(f)-1]
			}
		}
	default:
		if m.obFocus == toggleRow {
			if msg.Type == tea.KeySpace {
				m.obIntros = !m.obIntros
			}
			return m, nil
		}
		if msg.Type == tea.KeyRunes {
			m.obFields[m.obFocus] += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.obFields[m.obFocus] += " "
		}
	}
	return m, nil
}

func (m model) updateChatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.trackPicker {
		switch key {
		case "esc":
			m.trackPicker = false
		case "1", "2":
			idx := int(key[0] - '1')
			if idx < len(trackOptions) {
				m.trackPicker = false
				return m, m.selectTrack(trackOptions[idx].ID)
			}
		}
		return m, nil
	}

	switch key {
	case "enter":
		text := strings.TrimSpace(m.input)
		if text == "" {
			return m, nil
		}
		m.input = ""
		return m, m.sendText(text)
	case "ctrl+r":
		return m, m.toggleMic()
	case "ctrl+p":
		if m.stage == voice.StagePlaying {
			m.orch.StopPlayback()
			return m, nil
		}
		if reply := m.lastPlayableReply(); reply != nil {
			return m, m.playReply(*reply)
		}
	case "ctrl+y":
		return m, m.copyLastReply()
	case "ctrl+t":
		m.trackPicker = true
	case "1", "2", "3":
		// Quick-start cards, only while the conversation is empty
		if len(m.entries) == 0 && m.input == "" {
			idx := int(key[0] - '1')
			if idx < len(quickStarts) {
				return m, m.sendText(quickStarts[idx].Prompt)
			}
		}
		m.input += key
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.input += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.input += " "
		}
	}
	return m, nil
}

func (m model) updateIntroKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.introCursor > 0 {
			m.introCursor--
		}
	case "down", "j":
		if m.introCursor < len(m.intros)-1 {
			m.introCursor++
		}
	case "a":
		if m.introCursor < len(m.intros) && m.intros[m.introCursor].Status == api.IntroPending {
			return m, m.actIntro(m.intros[m.introCursor].ID, "accept")
		}
	case "d":
		if m.introCursor < len(m.intros) && m.intros[m.introCursor].Status == api.IntroPending {
			return m, m.actIntro(m.intros[m.introCursor].ID, "decline")
		}
	case "g":
		if !m.introBusy {
			m.introBusy = true
			return m, m.generateIntros()
		}
	case "enter", "o":
		if m.introCursor < len(m.intros) {
			in := m.intros[m.introCursor]
			if in.Status == api.IntroAccepted {
				other := in.FromUserID
				if other == m.profile.UserID {
					other = in.ToUserID
				}
				return m, m.startPeerConv(other)
			}
		}
	case "r":
		return m, m.loadIntros()
	}
	return m, nil
}

func (m model) updatePeerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Conversation list when none is open
	if m.peerConvID == "" {
		switch key {
		case "up", "k":
			if m.peerCursor > 0 {
				m.peerCursor--
			}
		case "down", "j":
			if m.peerCursor < len(m.convs)-1 {
				m.peerCursor++
			}
		case "enter", "o":
			if m.peerCursor < len(m.convs) {
				return m, m.openPeerConv(m.convs[m.peerCursor])
			}
		case "r":
			return m, m.loadPeerConvs()
		}
		return m, nil
	}

	switch key {
	case "esc":
		m.peerConvID = ""
		m.peerWith = ""
		m.peerMsgs = nil
		return m, m.loadPeerConvs()
	case "ctrl+e":
		return m, m.endPeerConv()
	case "enter":
		text := strings.TrimSpace(m.peerInput)
		if text == "" {
			return m, nil
		}
		m.peerInput = ""
		return m, m.sendPeerMessage(text)
	case "backspace":
		if len(m.peerInput) > 0 {
			m.peerInput = m.peerInput[:len(m.peerInput)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.peerInput += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.peerInput += " "
		}
	}
	return m, nil
}
