// Package display holds the in-memory station page: the elements anomalies
// disturb and the terminal rendering of them.
package display

import (
	"fmt"
	"sync"

	"github.com/nvandessel/ox500/internal/effects"
	"github.com/nvandessel/ox500/internal/models"
)

// Element is one display node. Its methods lock the owning board, so effect
// handlers on the loop and renderers on other goroutines can share it.
type Element struct {
	board     *Board
	text      string
	label     string   // line elements: fixed prefix
	value     *Element // line elements: value slot rendered after label
	classes   map[effects.Class]bool
	connected bool
}

func (b *Board) newElement(text string) *Element {
	return &Element{board: b, text: text, classes: map[effects.Class]bool{}, connected: true}
}

func (e *Element) textLocked() string {
	if e.value != nil {
		return e.label + " " + e.value.text
	}
	return e.text
}

// Text returns the rendered text.
func (e *Element) Text() string {
	e.board.mu.RLock()
	defer e.board.mu.RUnlock()
	return e.textLocked()
}

// SetText replaces the text. Line elements keep their label and forward the
// value to their slot.
func (e *Element) SetText(s string) {
	e.board.mu.Lock()
	defer e.board.mu.Unlock()
	if e.value != nil {
		e.value.text = s
		return
	}
	e.text = s
}

func (e *Element) AddClass(c effects.Class) {
	e.board.mu.Lock()
	e.classes[c] = true
	e.board.mu.Unlock()
}

func (e *Element) RemoveClass(c effects.Class) {
	e.board.mu.Lock()
	delete(e.classes, c)
	e.board.mu.Unlock()
}

func (e *Element) HasClass(c effects.Class) bool {
	e.board.mu.RLock()
	defer e.board.mu.RUnlock()
	return e.classes[c]
}

func (e *Element) Connected() bool {
	e.board.mu.RLock()
	defer e.board.mu.RUnlock()
	return e.connected
}

// Overlay is the incident glitch layer drawn over the board.
type Overlay struct {
	Effect    string
	Intensity string
}

var diagLabels = []struct {
	id    effects.TargetID
	label string
	init  string
}{
	{effects.TargetDiagDrift, "TEMPORAL DRIFT:", "+0.000"},
	{effects.TargetDiagDensity, "EVENT DENSITY:", "LOW"},
	{effects.TargetDiagCoherence, "SIGNAL COHERENCE:", "0.98"},
	{effects.TargetDiagAnomaly, "ANOMALY PROBABILITY:", "LOW"},
	{effects.TargetDiagPhase, "SYSTEM PHASE:", "NOMINAL"},
	{effects.TargetDiagTransient, "LAST TRANSIENT:", "ARCHIVE LINK STABLE"},
}

// Board is the station page. It implements effects.Surface.
type Board struct {
	mu sync.RWMutex

	byID      map[effects.TargetID]*Element
	diagLines []*Element
	logLines  []*Element
	links     []*Element

	phase      models.Phase
	phaseClass string
	pulse      bool
	overlay    *Overlay
	title      string
}

var _ effects.Surface = (*Board)(nil)

// NewBoard creates a board with its fixed elements and the given archive
// content.
func NewBoard(node string, logLines, links []string) *Board {
	b := &Board{
		byID:       map[effects.TargetID]*Element{},
		phase:      models.PhaseNominal,
		phaseClass: models.PhaseNominal.Class(),
		title:      "OX-500 // ARCHIVE TERMINAL",
	}

	fixed := []struct {
		id   effects.TargetID
		text string
	}{
		{effects.TargetClock, "--:--:--"},
		{effects.TargetFeed1, ""},
		{effects.TargetFeed2, ""},
		{effects.TargetFeed3, ""},
		{effects.TargetSensorPill, "SENSOR GRID"},
		{effects.TargetSensorHot, "4/6"},
		{effects.TargetNodePill, "NODE " + node},
		{effects.TargetAvail, "AVAIL 0000"},
		{effects.TargetPhaseIcon, "●"},
	}
	for _, f := range fixed {
		b.byID[f.id] = b.newElement(f.text)
	}

	for _, d := range diagLabels {
		slot := b.newElement(d.init)
		b.byID[d.id] = slot
		line := b.newElement("")
		line.label = d.label
		line.value = slot
		b.diagLines = append(b.diagLines, line)
	}

	b.SetLogLines(logLines)
	b.SetLinks(links)
	return b
}

// Target implements effects.Surface.
func (b *Board) Target(id effects.TargetID) (effects.Target, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.byID[id]
	if !ok {
		return nil, false
	}
	return e, true
}

// Lines implements effects.Surface.
func (b *Board) Lines() []effects.Target {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]effects.Target, 0, len(b.diagLines)+len(b.logLines))
	for _, l := range b.diagLines {
		out = append(out, l)
	}
	for _, l := range b.logLines {
		out = append(out, l)
	}
	return out
}

// Links implements effects.Surface.
func (b *Board) Links() []effects.Target {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]effects.Target, 0, len(b.links))
	for _, l := range b.links {
		out = append(out, l)
	}
	return out
}

func (b *Board) replace(old []*Element, texts []string) []*Element {
	for _, e := range old {
		e.connected = false
	}
	next := make([]*Element, 0, len(texts))
	for _, t := range texts {
		next = append(next, b.newElement(t))
	}
	return next
}

// SetLogLines replaces the archive log lines. Previous lines are
// disconnected, so pending effects on them will not write back.
func (b *Board) SetLogLines(lines []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logLines = b.replace(b.logLines, lines)
}

// SetLinks replaces the archive links.
func (b *Board) SetLinks(links []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.links = b.replace(b.links, links)
}

// ApplySnapshot paints the diagnostics panel.
func (b *Board) ApplySnapshot(s models.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byID[effects.TargetDiagDrift].text = s.Drift
	b.byID[effects.TargetDiagDensity].text = s.Density
	b.byID[effects.TargetDiagCoherence].text = s.Coherence
	b.byID[effects.TargetDiagAnomaly].text = s.Anomaly
	b.byID[effects.TargetDiagPhase].text = string(s.Phase)
	b.byID[effects.TargetDiagTransient].text = s.Transient
	b.phaseClass = s.PhaseClass
}

// SetPhase records the system phase used for the page palette.
func (b *Board) SetPhase(p models.Phase) {
	b.mu.Lock()
	b.phase = p
	b.mu.Unlock()
}

// SetPulse flashes the diagnostics panel on or off.
func (b *Board) SetPulse(on bool) {
	b.mu.Lock()
	b.pulse = on
	b.mu.Unlock()
}

// Pulsing reports whether the diagnostics panel is flashing.
func (b *Board) Pulsing() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pulse
}

// Phase returns the system phase the board is painted for.
func (b *Board) Phase() models.Phase {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.phase
}

// SetClock sets the clock text.
func (b *Board) SetClock(s string) {
	b.mu.Lock()
	b.byID[effects.TargetClock].text = s
	b.mu.Unlock()
}

// SetAvail sets the available-entries counter.
func (b *Board) SetAvail(n int) {
	b.mu.Lock()
	b.byID[effects.TargetAvail].text = fmt.Sprintf("AVAIL %04d", n)
	b.mu.Unlock()
}

// SetFeed writes a feed line. slot is 0, 1 or 2.
func (b *Board) SetFeed(slot int, text string) {
	ids := []effects.TargetID{effects.TargetFeed1, effects.TargetFeed2, effects.TargetFeed3}
	b.mu.Lock()
	b.byID[ids[slot%len(ids)]].text = text
	b.mu.Unlock()
}

// SetOverlay shows the incident overlay.
func (b *Board) SetOverlay(o Overlay) {
	b.mu.Lock()
	b.overlay = &o
	b.mu.Unlock()
}

// ClearOverlay hides the incident overlay.
func (b *Board) ClearOverlay() {
	b.mu.Lock()
	b.overlay = nil
	b.mu.Unlock()
}

// CurrentOverlay returns the overlay, if one is showing.
func (b *Board) CurrentOverlay() (Overlay, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.overlay == nil {
		return Overlay{}, false
	}
	return *b.overlay, true
}

// TextOf returns the text of a fixed element, or "" if it does not exist.
func (b *Board) TextOf(id effects.TargetID) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if e, ok := b.byID[id]; ok {
		return e.textLocked()
	}
	return ""
}

// ActiveClasses counts elements currently carrying any anomaly class.
func (b *Board) ActiveClasses() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	count := func(list []*Element) {
		for _, e := range list {
			if len(e.classes) > 0 {
				n++
			}
		}
	}
	for _, e := range b.byID {
		if len(e.classes) > 0 {
			n++
		}
	}
	count(b.diagLines)
	count(b.logLines)
	count(b.links)
	return n
}
