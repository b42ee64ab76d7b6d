package voice

import "errors"

// Pipeline failures. The first three are misuse guards that should never
// reach a user; the rest map one-to-one onto user-visible alerts at the
// orchestrator boundary.
var (
	ErrPermissionDenied  = errors.New("microphone permission denied")
	ErrAlreadyRecording  = errors.New("recording already in progress")
	ErrNoActiveRecording = errors.New("no active recording")

	ErrNoAudioCaptured     = errors.New("recording produced no audio")
	ErrEncodingFailed      = errors.New("audio encoding failed")
	ErrTranscriptionFailed = errors.New("transcription request failed")
	ErrTranscriptionEmpty  = errors.New("no speech recognized")
	ErrSendFailed          = errors.New("sending message failed")
	ErrSynthesisFailed     = errors.New("speech synthesis failed")
	ErrPlaybackFailed      = errors.New("audio playback failed")
)
