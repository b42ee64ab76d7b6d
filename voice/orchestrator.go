package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"chekinn/api"
	"chekinn/log"
)

// Stage names the step of a voice turn currently in flight. Stages map
// one to one onto the busy indicators the UI shows.
type Stage int

const (
	StageIdle Stage = iota
	StageRecording
	StageTranscribing
	StageSending
	StageSynthesizing
	StagePlaying
)

func (s Stage) String() string {
	switch s {
	case StageRecording:
		return "recording"
	case StageTranscribing:
		return "transcribing"
	case StageSending:
		return "sending"
	case StageSynthesizing:
		return "synthesizing"
	case StagePlaying:
		return "playing"
	default:
		return "idle"
	}
}

// Backend is the slice of the HTTP client a voice turn needs. *api.Client
// satisfies it.
type Backend interface {
	Transcribe(ctx context.Context, audioData []byte, filename string) (api.TranscriptionResult, error)
	SendMessage(ctx context.Context, userID, text string, isVoice bool, audioDuration float64) (api.Message, error)
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// EventSink receives orchestrator progress. Implementations must be safe
// to call from the orchestrator's worker goroutine; the TUI bridges these
// into program messages.
type EventSink interface {
	StateChanged(stage Stage)
	// MessageAppended delivers the optimistic local copy of the user's
	// message before the backend has confirmed it.
	MessageAppended(pendingID string, msg api.Message)
	// TurnCompleted confirms the pending message and delivers the
	// assistant reply.
	TurnCompleted(pendingID string, reply api.Message)
	Alert(stage Stage, text string)
	PlaybackChanged(messageID string, playing bool)
}

// Orchestrator drives a full voice turn: record, encode, transcribe,
// send, synthesize, play. One turn at a time; input while a turn is in
// flight is ignored rather than queued.
type Orchestrator struct {
	userID  string
	backend Backend
	gate    PermissionGate
	rec     *Recorder
	payload PayloadEncoder
	player  *Player
	sink    EventSink
	voice   string

	// turnMu serializes turn entry points. The stage check and the
	// action it guards must be one atomic step: the hotkey loop and the
	// TUI key handler call in from different goroutines, and without the
	// lock both can pass the Idle check and trip the recorder's misuse
	// guards.
	turnMu sync.Mutex

	mu           sync.Mutex
	stage        Stage
	playingMsgID string

	// warnedDenied keeps the denied-permission alert from repeating on
	// every press.
	warnedDenied bool
}

func NewOrchestrator(userID string, backend Backend, gate PermissionGate, rec *Recorder, payload PayloadEncoder, player *Player, sink EventSink, voiceName string) *Orchestrator {
	return &Orchestrator{
		userID:  userID,
		backend: backend,
		gate:    gate,
		rec:     rec,
		payload: payload,
		player:  player,
		sink:    sink,
		voice:   voiceName,
	}
}

// SetUser rebinds the orchestrator to a user. Used once after
// onboarding creates the profile.
func (o *Orchestrator) SetUser(userID string) {
	o.mu.Lock()
	o.userID = userID
	o.mu.Unlock()
}

func (o *Orchestrator) user() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.userID
}

func (o *Orchestrator) Stage() Stage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stage
}

func (o *Orchestrator) setStage(s Stage) {
	o.mu.Lock()
	o.stage = s
	o.mu.Unlock()
	o.sink.StateChanged(s)
}

// ToggleMic is the push-to-talk entry point. Idle starts a recording,
// Recording stops it and runs the rest of the turn synchronously. Any
// other stage means a turn is already in flight and the press is
// ignored.
func (o *Orchestrator) ToggleMic(ctx context.Context) {
	if !o.turnMu.TryLock() {
		log.Info("mic toggle ignored: turn in flight")
		return
	}
	defer o.turnMu.Unlock()

	switch o.Stage() {
	case StageIdle:
		o.startRecording(ctx)
	case StageRecording:
		o.finishRecording(ctx)
	default:
		log.Info("mic toggle ignored: turn in flight")
	}
}

func (o *Orchestrator) startRecording(ctx context.Context) {
	if o.gate.Status() != PermissionGranted {
		status, err := o.gate.Request(ctx)
		if err != nil {
			o.sink.Alert(StageRecording, "Could not check microphone access: "+err.Error())
			return
		}
		if status == PermissionDenied && !o.warnedDenied {
			o.warnedDenied = true
			o.sink.Alert(StageRecording, "Microphone access is denied. Enable it in your system settings to use voice.")
		}
	}
	// Fall through to Start either way. The recorder re-checks the gate
	// and fails closed on denied, so the advisory above is the only
	// thing the user sees for that case.
	if err := o.rec.Start(ctx); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			return
		}
		o.sink.Alert(StageRecording, "Could not start recording: "+err.Error())
		return
	}
	o.setStage(StageRecording)
}

func (o *Orchestrator) finishRecording(ctx context.Context) {
	art, err := o.rec.Stop()
	if err != nil {
		o.setStage(StageIdle)
		if !errors.Is(err, ErrNoAudioCaptured) {
			o.sink.Alert(StageRecording, "Recording failed: "+err.Error())
		}
		return
	}

	o.setStage(StageTranscribing)
	text, dur, err := o.transcribe(ctx, art)
	if err != nil {
		o.setStage(StageIdle)
		if errors.Is(err, ErrTranscriptionEmpty) {
			o.sink.Alert(StageTranscribing, "No speech was recognized. Please try again.")
		} else {
			o.sink.Alert(StageTranscribing, "Could not transcribe your recording. Please try again.")
		}
		return
	}

	o.runTurn(ctx, text, true, dur)
}

// SendText runs a typed message through the same send path as a voice
// turn, minus recording and transcription.
func (o *Orchestrator) SendText(ctx context.Context, text string) {
	if !o.turnMu.TryLock() {
		return
	}
	defer o.turnMu.Unlock()

	if o.Stage() != StageIdle {
		return
	}
	if text == "" {
		return
	}
	o.runTurn(ctx, text, false, 0)
}

func (o *Orchestrator) transcribe(ctx context.Context, art Artifact) (string, float64, error) {
	p, err := o.payload.Encode(art)
	if err != nil {
		log.Errorf("payload encode: %v", err)
		return "", 0, err
	}

	res, err := o.backend.Transcribe(ctx, p.Bytes, p.Filename)
	if err != nil {
		log.Errorf("transcribe request: %v", err)
		return "", 0, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	// success:false on a 2xx means the upload worked but no speech came
	// back. That is the same soft outcome as an empty transcript, not a
	// transport failure.
	if !res.Success || res.Text == "" {
		return "", 0, ErrTranscriptionEmpty
	}
	dur := res.Duration
	if dur == 0 {
		dur = art.DurationSeconds()
	}
	log.TranscriptionText(res.Text)
	return res.Text, dur, nil
}

func (o *Orchestrator) runTurn(ctx context.Context, text string, isVoice bool, duration float64) {
	pendingID := "local-" + uuid.NewString()
	o.sink.MessageAppended(pendingID, api.Message{
		ID:            pendingID,
		Role:          api.RoleUser,
		Text:          text,
		IsVoice:       isVoice,
		AudioDuration: duration,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	})

	o.setStage(StageSending)
	reply, err := o.send(ctx, text, isVoice, duration)
	if err != nil {
		o.setStage(StageIdle)
		log.Errorf("send message: %v", err)
		o.sink.Alert(StageSending, "Could not reach ChekInn. Your message is shown above but was not delivered.")
		return
	}
	o.sink.TurnCompleted(pendingID, reply)

	if isVoice && reply.HasAudioResponse {
		o.setStage(StageSynthesizing)
		data, err := o.synthesize(ctx, reply.Text)
		if err != nil {
			o.setStage(StageIdle)
			log.Errorf("synthesize: %v", err)
			o.sink.Alert(StageSynthesizing, "The reply arrived but its audio could not be generated.")
			return
		}
		o.playBytes(reply.ID, data)
		return
	}
	o.setStage(StageIdle)
}

// PlayReply synthesizes and plays a past assistant message on demand.
func (o *Orchestrator) PlayReply(ctx context.Context, msg api.Message) {
	if !o.turnMu.TryLock() {
		return
	}
	defer o.turnMu.Unlock()

	if o.Stage() != StageIdle {
		return
	}
	o.setStage(StageSynthesizing)
	data, err := o.synthesize(ctx, msg.Text)
	if err != nil {
		o.setStage(StageIdle)
		log.Errorf("synthesize: %v", err)
		o.sink.Alert(StageSynthesizing, "Audio for this reply could not be generated.")
		return
	}
	o.playBytes(msg.ID, data)
}

func (o *Orchestrator) send(ctx context.Context, text string, isVoice bool, duration float64) (api.Message, error) {
	reply, err := o.backend.SendMessage(ctx, o.user(), text, isVoice, duration)
	if err != nil {
		return api.Message{}, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return reply, nil
}

func (o *Orchestrator) synthesize(ctx context.Context, text string) ([]byte, error) {
	data, err := o.backend.Synthesize(ctx, text, o.voice)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	return data, nil
}

func (o *Orchestrator) playBytes(messageID string, data []byte) {
	o.mu.Lock()
	o.playingMsgID = messageID
	o.mu.Unlock()
	o.setStage(StagePlaying)
	o.sink.PlaybackChanged(messageID, true)
	err := o.player.LoadAndPlay(data, func() {
		o.sink.PlaybackChanged(messageID, false)
		o.setStage(StageIdle)
	})
	if err != nil {
		o.sink.PlaybackChanged(messageID, false)
		o.setStage(StageIdle)
		log.Errorf("playback: %v", err)
		o.sink.Alert(StagePlaying, "The reply audio could not be played.")
	}
}

// StopPlayback cuts the current clip short and returns to idle.
func (o *Orchestrator) StopPlayback() {
	if o.Stage() != StagePlaying {
		return
	}
	o.player.Stop()
	o.mu.Lock()
	id := o.playingMsgID
	o.playingMsgID = ""
	o.mu.Unlock()
	o.sink.PlaybackChanged(id, false)
	o.setStage(StageIdle)
}

// Close releases the recorder and player. Safe in any state.
func (o *Orchestrator) Close() {
	o.rec.Close()
	o.player.Close()
}
