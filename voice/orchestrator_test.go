package voice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chekinn/api"
	"chekinn/audio"
	"chekinn/encoder"
)

type fakeBackend struct {
	mu sync.Mutex

	transcription api.TranscriptionResult
	transcribeErr error
	reply         api.Message
	sendErr       error
	synthData     []byte
	synthErr      error

	// sendEntered closes when SendMessage is reached; sendBlock, when
	// set, holds the call open until closed. Both drive concurrency
	// tests.
	sendEntered chan struct{}
	sendBlock   chan struct{}

	sentText    []string
	sentIsVoice []bool
	sentDur     []float64
	synthTexts  []string
}

func (b *fakeBackend) Transcribe(_ context.Context, data []byte, filename string) (api.TranscriptionResult, error) {
	if b.transcribeErr != nil {
		return api.TranscriptionResult{}, b.transcribeErr
	}
	return b.transcription, nil
}

func (b *fakeBackend) SendMessage(_ context.Context, userID, text string, isVoice bool, dur float64) (api.Message, error) {
	b.mu.Lock()
	b.sentText = append(b.sentText, text)
	b.sentIsVoice = append(b.sentIsVoice, isVoice)
	b.sentDur = append(b.sentDur, dur)
	entered := b.sendEntered
	b.sendEntered = nil
	b.mu.Unlock()
	if entered != nil {
		close(entered)
	}
	if b.sendBlock != nil {
		<-b.sendBlock
	}
	if b.sendErr != nil {
		return api.Message{}, b.sendErr
	}
	return b.reply, nil
}

func (b *fakeBackend) Synthesize(_ context.Context, text, voice string) ([]byte, error) {
	b.mu.Lock()
	b.synthTexts = append(b.synthTexts, text)
	b.mu.Unlock()
	if b.synthErr != nil {
		return nil, b.synthErr
	}
	return b.synthData, nil
}

type sinkEvent struct {
	kind  string
	stage Stage
	id    string
	msg   api.Message
	text  string
	on    bool
}

type fakeSink struct {
	mu     sync.Mutex
	events []sinkEvent
}

func (s *fakeSink) record(e sinkEvent) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func (s *fakeSink) StateChanged(stage Stage) { s.record(sinkEvent{kind: "state", stage: stage}) }
func (s *fakeSink) MessageAppended(id string, msg api.Message) {
	s.record(sinkEvent{kind: "appended", id: id, msg: msg})
}
func (s *fakeSink) TurnCompleted(id string, reply api.Message) {
	s.record(sinkEvent{kind: "completed", id: id, msg: reply})
}
func (s *fakeSink) Alert(stage Stage, text string) {
	s.record(sinkEvent{kind: "alert", stage: stage, text: text})
}
func (s *fakeSink) PlaybackChanged(id string, on bool) {
	s.record(sinkEvent{kind: "playback", id: id, on: on})
}

func (s *fakeSink) byKind(kind string) []sinkEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sinkEvent
	for _, e := range s.events {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

type turnFixture struct {
	orch    *Orchestrator
	backend *fakeBackend
	sink    *fakeSink
	gate    *FakeGate
	dev     *audio.FakePlayback
}

func newTurnFixture(t *testing.T, backend *fakeBackend, status PermissionStatus) *turnFixture {
	t.Helper()
	fctx := &audio.FakeContext{PCM: sinePCM(t, 2000)}
	cap, err := fctx.NewCapture(nil, audio.CaptureConfig{SampleRate: encoder.SampleRate, Channels: encoder.Channels})
	require.NoError(t, err)
	play, err := fctx.NewPlayback()
	require.NoError(t, err)

	gate := NewFakeGate(status)
	sink := &fakeSink{}
	orch := NewOrchestrator(
		"user-1", backend, gate,
		NewRecorder(gate, cap),
		wavPayloadEncoder{},
		NewPlayer(play),
		sink, "nova",
	)
	return &turnFixture{orch: orch, backend: backend, sink: sink, gate: gate, dev: fctx.Playback()}
}

func TestVoiceTurnHappyPath(t *testing.T) {
	backend := &fakeBackend{
		transcription: api.TranscriptionResult{Success: true, Text: "hello there", Duration: 1.5},
		reply: api.Message{
			ID: "m-2", Role: api.RoleAssistant, Text: "Hi! How was your week?",
			HasAudioResponse: true,
		},
		synthData: wavClip(t, 1500),
	}
	f := newTurnFixture(t, backend, PermissionGranted)
	ctx := context.Background()

	f.orch.ToggleMic(ctx)
	assert.Equal(t, StageRecording, f.orch.Stage())
	f.orch.ToggleMic(ctx)

	appended := f.sink.byKind("appended")
	require.Len(t, appended, 1)
	assert.True(t, strings.HasPrefix(appended[0].id, "local-"))
	assert.Equal(t, "hello there", appended[0].msg.Text)
	assert.True(t, appended[0].msg.IsVoice)
	assert.Equal(t, api.RoleUser, appended[0].msg.Role)

	completed := f.sink.byKind("completed")
	require.Len(t, completed, 1)
	assert.Equal(t, appended[0].id, completed[0].id)
	assert.Equal(t, "m-2", completed[0].msg.ID)

	require.Equal(t, []bool{true}, backend.sentIsVoice)
	assert.Equal(t, []float64{1.5}, backend.sentDur)
	assert.Empty(t, f.sink.byKind("alert"))

	assert.Equal(t, StagePlaying, f.orch.Stage())
	f.dev.Finish()
	assert.Equal(t, StageIdle, f.orch.Stage())

	playback := f.sink.byKind("playback")
	require.Len(t, playback, 2)
	assert.True(t, playback[0].on)
	assert.False(t, playback[1].on)
}

func TestVoiceTurnTranscriptionFailure(t *testing.T) {
	backend := &fakeBackend{transcription: api.TranscriptionResult{Success: false}}
	f := newTurnFixture(t, backend, PermissionGranted)
	ctx := context.Background()

	f.orch.ToggleMic(ctx)
	f.orch.ToggleMic(ctx)

	assert.Equal(t, StageIdle, f.orch.Stage())
	alerts := f.sink.byKind("alert")
	require.Len(t, alerts, 1)
	// success:false is the soft no-speech outcome, not a transport error.
	assert.Contains(t, alerts[0].text, "No speech")
	assert.Empty(t, f.sink.byKind("appended"))
	assert.Empty(t, backend.sentText)
}

func TestTranscribeClassifiesSoftAndHardFailures(t *testing.T) {
	art := testArtifact(encoder.SampleRate / 2)

	// 2xx with success:false and 2xx with empty text are both soft.
	for _, res := range []api.TranscriptionResult{
		{Success: false},
		{Success: true, Text: ""},
	} {
		f := newTurnFixture(t, &fakeBackend{transcription: res}, PermissionGranted)
		_, _, err := f.orch.transcribe(context.Background(), art)
		assert.ErrorIs(t, err, ErrTranscriptionEmpty)
		assert.NotErrorIs(t, err, ErrTranscriptionFailed)
	}

	// A transport error is the hard sentinel.
	f := newTurnFixture(t, &fakeBackend{transcribeErr: errors.New("connection reset")}, PermissionGranted)
	_, _, err := f.orch.transcribe(context.Background(), art)
	assert.ErrorIs(t, err, ErrTranscriptionFailed)
	assert.NotErrorIs(t, err, ErrTranscriptionEmpty)
}

func TestSendAndSynthesizeWrapSentinels(t *testing.T) {
	f := newTurnFixture(t, &fakeBackend{
		sendErr:  errors.New("503"),
		synthErr: errors.New("bad voice"),
	}, PermissionGranted)

	_, err := f.orch.send(context.Background(), "hi", false, 0)
	assert.ErrorIs(t, err, ErrSendFailed)

	_, err = f.orch.synthesize(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrSynthesisFailed)
}

func TestVoiceTurnSendFailureKeepsPendingVisible(t *testing.T) {
	backend := &fakeBackend{
		transcription: api.TranscriptionResult{Success: true, Text: "are you there"},
		sendErr:       errors.New("connection refused"),
	}
	f := newTurnFixture(t, backend, PermissionGranted)
	ctx := context.Background()

	f.orch.ToggleMic(ctx)
	f.orch.ToggleMic(ctx)

	assert.Equal(t, StageIdle, f.orch.Stage())
	assert.Len(t, f.sink.byKind("appended"), 1)
	assert.Empty(t, f.sink.byKind("completed"))
	assert.Len(t, f.sink.byKind("alert"), 1)

	// The next press is accepted again.
	f.orch.ToggleMic(ctx)
	assert.Equal(t, StageRecording, f.orch.Stage())
}

func TestVoiceTurnDeniedPermissionStillAttemptsStart(t *testing.T) {
	backend := &fakeBackend{}
	f := newTurnFixture(t, backend, PermissionUndetermined)
	f.gate.OnReq = PermissionDenied

	f.orch.ToggleMic(context.Background())

	assert.Equal(t, 1, f.gate.Requests)
	alerts := f.sink.byKind("alert")
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].text, "denied")
	assert.Equal(t, StageIdle, f.orch.Stage())

	// The warning fires once; another press stays quiet.
	f.orch.ToggleMic(context.Background())
	assert.Len(t, f.sink.byKind("alert"), 1)
}

func TestSendTextSkipsTranscription(t *testing.T) {
	backend := &fakeBackend{
		reply: api.Message{ID: "m-9", Role: api.RoleAssistant, Text: "Good to hear."},
	}
	f := newTurnFixture(t, backend, PermissionGranted)

	f.orch.SendText(context.Background(), "typed message")

	require.Equal(t, []string{"typed message"}, backend.sentText)
	assert.Equal(t, []bool{false}, backend.sentIsVoice)
	// Text turns never synthesize.
	assert.Empty(t, backend.synthTexts)
	assert.Equal(t, StageIdle, f.orch.Stage())
}

func TestPlayReplyOnDemand(t *testing.T) {
	backend := &fakeBackend{synthData: wavClip(t, 800)}
	f := newTurnFixture(t, backend, PermissionGranted)

	f.orch.PlayReply(context.Background(), api.Message{ID: "m-5", Text: "earlier reply"})

	assert.Equal(t, []string{"earlier reply"}, backend.synthTexts)
	assert.Equal(t, StagePlaying, f.orch.Stage())

	f.orch.StopPlayback()
	assert.Equal(t, StageIdle, f.orch.Stage())
	playback := f.sink.byKind("playback")
	require.NotEmpty(t, playback)
	assert.True(t, playback[0].on)
}

func TestConcurrentTogglePressDroppedMidTurn(t *testing.T) {
	backend := &fakeBackend{
		transcription: api.TranscriptionResult{Success: true, Text: "hello"},
		reply:         api.Message{ID: "m-2", Role: api.RoleAssistant, Text: "hi"},
		sendEntered:   make(chan struct{}),
		sendBlock:     make(chan struct{}),
	}
	f := newTurnFixture(t, backend, PermissionGranted)
	ctx := context.Background()
	entered := backend.sendEntered

	f.orch.ToggleMic(ctx)
	require.Equal(t, StageRecording, f.orch.Stage())

	done := make(chan struct{})
	go func() {
		f.orch.ToggleMic(ctx) // stops the mic, then blocks inside the send
		close(done)
	}()
	<-entered

	// A press from the other entry point while the turn holds the lock
	// is dropped outright, it must not reach the recorder's guards.
	f.orch.ToggleMic(ctx)
	assert.Equal(t, StageSending, f.orch.Stage())

	close(backend.sendBlock)
	<-done

	assert.Equal(t, StageIdle, f.orch.Stage())
	assert.Empty(t, f.sink.byKind("alert"))
	require.Len(t, f.sink.byKind("appended"), 1)
	require.Len(t, f.sink.byKind("completed"), 1)
}

func TestToggleIgnoredWhileBusy(t *testing.T) {
	backend := &fakeBackend{synthData: wavClip(t, 800)}
	f := newTurnFixture(t, backend, PermissionGranted)

	f.orch.PlayReply(context.Background(), api.Message{ID: "m-5", Text: "reply"})
	require.Equal(t, StagePlaying, f.orch.Stage())

	f.orch.ToggleMic(context.Background())
	assert.Equal(t, StagePlaying, f.orch.Stage())
}
