package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"chekinn/api"
	"chekinn/voice"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	tabStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tabActive     = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Bold(true)
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	botStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("249"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	alertStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	recStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	workStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	playStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cardStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("249")).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	helpBoldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.view == viewOnboarding {
		return m.viewOnboarding()
	}

	var b strings.Builder
	b.WriteString(m.headerLine() + "\n\n")

	switch m.view {
	case viewChat:
		b.WriteString(m.viewChat())
	case viewIntros:
		b.WriteString(m.viewIntros())
	case viewPeer:
		b.WriteString(m.viewPeer())
	case viewAnalytics:
		b.WriteString(m.viewAnalytics())
	case viewProfile:
		b.WriteString(m.viewProfile())
	}

	if m.alert != "" {
		b.WriteString("\n" + alertStyle.Render("! "+m.alert) + "\n")
	}
	return b.String()
}

func (m model) headerLine() string {
	var tabs []string
	for _, v := range []viewMode{viewChat, viewIntros, viewPeer, viewAnalytics, viewProfile} {
		name := viewNames[v]
		if v == m.view {
			tabs = append(tabs, tabActive.Render("["+name+"]"))
		} else {
			tabs = append(tabs, tabStyle.Render(" "+name+" "))
		}
	}
	left := titleStyle.Render("ChekInn") + "  " + strings.Join(tabs, " ")

	status := m.stageLine()
	pad := m.width - lipgloss.Width(left) - lipgloss.Width(status)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + status
}

func (m model) stageLine() string {
	spin := spinnerFrames[m.frame%len(spinnerFrames)]
	switch m.stage {
	case voice.StageRecording:
		return recStyle.Render("● REC")
	case voice.StageTranscribing:
		return workStyle.Render(spin + " Transcribing…")
	case voice.StageSending:
		return workStyle.Render(spin + " Thinking…")
	case voice.StageSynthesizing:
		return workStyle.Render(spin + " Preparing audio…")
	case voice.StagePlaying:
		return playStyle.Render("▶ Playing")
	}
	return dimStyle.Render("○ idle")
}

func (m model) viewOnboarding() string {
	labels := []string{"Name", "City", "Current role", "What brings you here"}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Welcome to ChekInn") + "\n")
	b.WriteString(dimStyle.Render("A space to think out loud about CAT, MBA and career moves.") + "\n\n")

	for i, label := range labels {
		marker := "  "
		style := botStyle
		if i == m.obFocus {
			marker = cursorStyle.Render("> ")
			style = tabActive
		}
		value := m.obFields[i]
		if i == m.obFocus {
			value += "▏"
		}
		b.WriteString(marker + labelStyle.Render(fmt.Sprintf("%-22s", label)) + style.Render(value) + "\n")
	}

	toggleMarker := "  "
	toggleStyle := botStyle
	if m.obFocus == len(m.obFields) {
		toggleMarker = cursorStyle.Render("> ")
		toggleStyle = tabActive
	}
	toggleValue := "no"
	if m.obIntros {
		toggleValue = "yes"
	}
	b.WriteString(toggleMarker + labelStyle.Render(fmt.Sprintf("%-22s", "Open to intros")) +
		toggleStyle.Render(toggleValue) + dimStyle.Render("  (space to change)") + "\n")

	b.WriteString("\n")
	if m.obBusy {
		spin := spinnerFrames[m.frame%len(spinnerFrames)]
		b.WriteString(workStyle.Render(spin+" Creating your profile…") + "\n")
	} else {
		b.WriteString(helpBoldStyle.Render("enter") + helpStyle.Render(" next field / submit   ") +
			helpBoldStyle.Render("tab") + helpStyle.Render(" move   ") +
			helpBoldStyle.Render("ctrl+c") + helpStyle.Render(" quit") + "\n")
	}
	if m.alert != "" {
		b.WriteString("\n" + alertStyle.Render("! "+m.alert) + "\n")
	}
	return b.String()
}

func (m model) viewChat() string {
	var b strings.Builder
	wrapWidth := m.width - 6
	if wrapWidth < 20 {
		wrapWidth = 20
	}

	if len(m.entries) == 0 {
		if !m.historyLoaded {
			spin := spinnerFrames[m.frame%len(spinnerFrames)]
			b.WriteString(dimStyle.Render(spin+" Loading your conversation…") + "\n")
		} else {
			b.WriteString(m.renderQuickStarts())
		}
	} else {
		// Keep the tail that fits the window
		lines := m.renderEntries(wrapWidth)
		avail := m.height - 7
		if avail < 3 {
			avail = 3
		}
		if len(lines) > avail {
			lines = lines[len(lines)-avail:]
		}
		b.WriteString(strings.Join(lines, "\n") + "\n")
	}

	if m.trackPicker {
		b.WriteString("\n" + titleStyle.Render("Pick a track") + "\n")
		for i, t := range trackOptions {
			marker := " "
			if m.profile != nil && m.profile.Track == t.ID {
				marker = playStyle.Render("✓")
			}
			b.WriteString(fmt.Sprintf("  %s %d. %s\n", marker, i+1, botStyle.Render(t.Label)))
		}
		b.WriteString(dimStyle.Render("  esc to cancel") + "\n")
		return b.String()
	}

	b.WriteString("\n" + cursorStyle.Render("> ") + m.input + "▏\n")
	b.WriteString(helpBoldStyle.Render("enter") + helpStyle.Render(" send   ") +
		helpBoldStyle.Render("ctrl+r") + helpStyle.Render(" mic   ") +
		helpBoldStyle.Render("ctrl+p") + helpStyle.Render(" play reply   ") +
		helpBoldStyle.Render("ctrl+y") + helpStyle.Render(" copy   ") +
		helpBoldStyle.Render("ctrl+t") + helpStyle.Render(" track   ") +
		helpBoldStyle.Render("tab") + helpStyle.Render(" views") + "\n")
	return b.String()
}

func (m model) renderQuickStarts() string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("Not sure where to start? Pick one, or just type.") + "\n\n")
	for i, qs := range quickStarts {
		body := tabActive.Render(fmt.Sprintf("%d. %s", i+1, qs.Title)) + "\n" + dimStyle.Render(qs.Detail)
		b.WriteString(cardStyle.Render(body) + "\n")
	}
	return b.String()
}

func (m model) renderEntries(wrapWidth int) []string {
	var lines []string
	for _, e := range m.entries {
		prefix := "you"
		style := userStyle
		if e.Role == api.RoleAssistant {
			prefix = "chekinn"
			style = botStyle
		}
		if e.Pending {
			style = pendingStyle
		}

		var marks []string
		if e.IsVoice {
			mark := "🎤"
			if e.AudioDuration > 0 {
				mark += dimStyle.Render(fmt.Sprintf(" %.1fs", e.AudioDuration))
			}
			marks = append(marks, mark)
		}
		if e.Playing {
			marks = append(marks, playStyle.Render("▶"))
		} else if e.Role == api.RoleAssistant && e.HasAudioResponse {
			marks = append(marks, dimStyle.Render("♪"))
		}
		if e.Pending {
			marks = append(marks, pendingStyle.Render("…"))
		}

		head := labelStyle.Render(prefix)
		if len(marks) > 0 {
			head += " " + strings.Join(marks, " ")
		}
		lines = append(lines, head)
		for _, line := range wrapText(e.Text, wrapWidth) {
			lines = append(lines, "  "+style.Render(line))
		}
		lines = append(lines, "")
	}

	// In-flight turn indicator under the last message
	spin := spinnerFrames[m.frame%len(spinnerFrames)]
	switch m.stage {
	case voice.StageTranscribing:
		lines = append(lines, workStyle.Render(spin+" Transcribing…"))
	case voice.StageSending:
		lines = append(lines, workStyle.Render(spin+" Thinking…"))
	case voice.StageSynthesizing:
		lines = append(lines, workStyle.Render(spin+" Preparing audio…"))
	}
	return lines
}

func (m model) viewIntros() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Intros") + "  " + dimStyle.Render("people worth meeting") + "\n\n")

	if m.introBusy {
		spin := spinnerFrames[m.frame%len(spinnerFrames)]
		b.WriteString(workStyle.Render(spin+" Finding matches…") + "\n\n")
	}

	if len(m.intros) == 0 {
		b.WriteString(dimStyle.Render("No intros yet. Press g to look for matches.") + "\n")
	}
	for i, in := range m.intros {
		marker := "  "
		if i == m.introCursor {
			marker = cursorStyle.Render("> ")
		}
		who := in.OtherUser.Name
		if in.OtherUser.CurrentRole != "" {
			who += dimStyle.Render(" · " + in.OtherUser.CurrentRole)
		}
		if in.OtherUser.City != "" {
			who += dimStyle.Render(" · " + in.OtherUser.City)
		}
		var status string
		switch in.Status {
		case api.IntroAccepted:
			status = playStyle.Render("accepted")
		case api.IntroDeclined:
			status = dimStyle.Render("declined")
		default:
			status = workStyle.Render("pending")
		}
		b.WriteString(fmt.Sprintf("%s%s  [%s]\n", marker, botStyle.Render(who), status))
		if in.Reason != "" {
			b.WriteString("    " + dimStyle.Render(in.Reason) + "\n")
		}
	}

	b.WriteString("\n" + helpBoldStyle.Render("a") + helpStyle.Render(" accept   ") +
		helpBoldStyle.Render("d") + helpStyle.Render(" decline   ") +
		helpBoldStyle.Render("g") + helpStyle.Render(" generate   ") +
		helpBoldStyle.Render("enter") + helpStyle.Render(" chat with accepted   ") +
		helpBoldStyle.Render("r") + helpStyle.Render(" refresh") + "\n")
	return b.String()
}

func (m model) viewPeer() string {
	var b strings.Builder

	if m.peerConvID == "" {
		b.WriteString(titleStyle.Render("Peer chats") + "\n\n")
		if len(m.convs) == 0 {
			b.WriteString(dimStyle.Render("No peer conversations yet. Accept an intro to start one.") + "\n")
		}
		for i, conv := range m.convs {
			marker := "  "
			if i == m.peerCursor {
				marker = cursorStyle.Render("> ")
			}
			name := conv.PartnerName
			if name == "" {
				name = conv.ID
			}
			line := botStyle.Render(name)
			if conv.Ended {
				line += dimStyle.Render("  (ended)")
			}
			b.WriteString(marker + line + "\n")
		}
		b.WriteString("\n" + helpBoldStyle.Render("enter") + helpStyle.Render(" open   ") +
			helpBoldStyle.Render("r") + helpStyle.Render(" refresh") + "\n")
		return b.String()
	}

	b.WriteString(titleStyle.Render("Peer chat") + "\n\n")
	wrapWidth := m.width - 6
	if wrapWidth < 20 {
		wrapWidth = 20
	}
	var lines []string
	for _, pm := range m.peerMsgs {
		prefix, style := "them", botStyle
		if m.profile != nil && pm.FromUserID == m.profile.UserID {
			prefix, style = "you", userStyle
		}
		lines = append(lines, labelStyle.Render(prefix))
		for _, line := range wrapText(pm.Text, wrapWidth) {
			lines = append(lines, "  "+style.Render(line))
		}
		lines = append(lines, "")
	}
	avail := m.height - 8
	if avail < 3 {
		avail = 3
	}
	if len(lines) > avail {
		lines = lines[len(lines)-avail:]
	}
	b.WriteString(strings.Join(lines, "\n") + "\n")

	b.WriteString("\n" + cursorStyle.Render("> ") + m.peerInput + "▏\n")
	b.WriteString(helpBoldStyle.Render("enter") + helpStyle.Render(" send   ") +
		helpBoldStyle.Render("esc") + helpStyle.Render(" back   ") +
		helpBoldStyle.Render("ctrl+e") + helpStyle.Render(" end conversation") + "\n")
	return b.String()
}

func (m model) viewAnalytics() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Analytics") + "\n\n")

	if m.analytics == nil {
		if !m.analyticsLoaded {
			spin := spinnerFrames[m.frame%len(spinnerFrames)]
			b.WriteString(dimStyle.Render(spin+" Loading…") + "\n")
		} else {
			b.WriteString(dimStyle.Render("No data.") + "\n")
		}
		return b.String()
	}

	a := m.analytics
	row := func(label string, value int) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("  %-22s", label)) + botStyle.Render(fmt.Sprintf("%d", value)) + "\n")
	}
	row("Users", a.TotalUsers)
	row("Active users", a.ActiveUsers)
	row("Conversations", a.TotalConversations)
	row("Messages", a.TotalMessages)
	row("Voice messages", a.TotalVoiceMessages)
	row("Power users", a.PowerUsers)
	b.WriteString("\n")
	row("Intros suggested", a.IntrosSuggested)
	row("Intros accepted", a.IntrosAccepted)
	row("Intros declined", a.IntrosDeclined)

	if len(a.TrackDistribution) > 0 {
		b.WriteString("\n" + labelStyle.Render("  Tracks") + "\n")
		for _, t := range trackOptions {
			if n, ok := a.TrackDistribution[t.ID]; ok {
				b.WriteString(dimStyle.Render(fmt.Sprintf("    %-26s %d", t.Label, n)) + "\n")
			}
		}
	}
	return b.String()
}

func (m model) viewProfile() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Profile") + "\n\n")
	if m.profile == nil {
		b.WriteString(dimStyle.Render("No profile.") + "\n")
		return b.String()
	}
	row := func(label, value string) {
		if value == "" {
			value = dimStyle.Render("—")
		} else {
			value = botStyle.Render(value)
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + value + "\n")
	}
	row("Name", m.profile.Name)
	row("City", m.profile.City)
	row("Role", m.profile.CurrentRole)
	track := m.profile.Track
	for _, t := range trackOptions {
		if t.ID == track {
			track = t.Label
		}
	}
	row("Track", track)
	row("User ID", m.profile.UserID)

	b.WriteString("\n" + helpBoldStyle.Render("ctrl+l") + helpStyle.Render(" log out and quit   ") +
		helpBoldStyle.Render("tab") + helpStyle.Render(" views") + "\n")
	b.WriteString(helpStyle.Render("chekinn "+version) + "\n")
	if m.updateVersion != "" {
		b.WriteString(workStyle.Render("Update available: "+m.updateVersion) +
			dimStyle.Render("  run: chekinn update") + "\n")
	}
	return b.String()
}

// wrapText breaks on spaces, counting runes so multi-byte text never
// splits mid-character.
func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	runes := []rune(text)
	var lines []string
	for len(runes) > width {
		splitAt := width
		for i := width; i > 0; i-- {
			if runes[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, string(runes[:splitAt]))
		runes = runes[splitAt:]
		for len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}
	if len(runes) > 0 {
		lines = append(lines, string(runes))
	}
	return lines
}
