package main

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"chekinn/api"
	"chekinn/beep"
	"chekinn/voice"
)

// stageIndicator is the optional floating indicator window. Nil unless
// built with the gui tag and started with -indicator.
type stageIndicator interface {
	RecordingStart()
	RecordingStop()
	Working(label string)
	Idle()
}

// uiSink fans orchestrator events out to the Bubble Tea program, the
// earcons, and the indicator window. Safe to call before the program is
// attached; events from that window are dropped.
type uiSink struct {
	mu        sync.Mutex
	program   *tea.Program
	beeper    *beep.Beeper
	indicator stageIndicator
	lastStage voice.Stage
	turns     int
}

func (s *uiSink) attach(p *tea.Program) {
	s.mu.Lock()
	s.program = p
	s.mu.Unlock()
}

func (s *uiSink) setBeeper(b *beep.Beeper) {
	s.mu.Lock()
	s.beeper = b
	s.mu.Unlock()
}

func (s *uiSink) setIndicator(ind stageIndicator) {
	s.mu.Lock()
	s.indicator = ind
	s.mu.Unlock()
}

func (s *uiSink) completedTurns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns
}

func (s *uiSink) send(msg tea.Msg) {
	s.mu.Lock()
	p := s.program
	s.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (s *uiSink) StateChanged(stage voice.Stage) {
	s.mu.Lock()
	prev := s.lastStage
	s.lastStage = stage
	ind := s.indicator
	b := s.beeper
	s.mu.Unlock()

	if b != nil {
		if stage == voice.StageRecording {
			b.Start()
		} else if prev == voice.StageRecording {
			b.End()
		}
	}
	if ind != nil {
		switch stage {
		case voice.StageRecording:
			ind.RecordingStart()
		case voice.StageIdle:
			ind.Idle()
		default:
			ind.Working(stage.String())
		}
	}
	s.send(stageMsg{Stage: stage})
}

func (s *uiSink) MessageAppended(pendingID string, msg api.Message) {
	s.send(messageAppendedMsg{PendingID: pendingID, Message: msg})
}

func (s *uiSink) TurnCompleted(pendingID string, reply api.Message) {
	s.mu.Lock()
	s.turns++
	s.mu.Unlock()
	s.send(turnCompletedMsg{PendingID: pendingID, Reply: reply})
}

func (s *uiSink) Alert(stage voice.Stage, text string) {
	s.mu.Lock()
	b := s.beeper
	s.mu.Unlock()
	if b != nil {
		b.Error()
	}
	s.send(alertMsg{Stage: stage, Text: text})
}

func (s *uiSink) PlaybackChanged(messageID string, playing bool) {
	s.send(playbackMsg{MessageID: messageID, Playing: playing})
}
