// Package audio owns playback of synthesized replies. A Player holds at
// most one loaded track and drives the player affordances shown to the
// learner.
package audio

import (
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrRejected is returned by Track.Play when the environment refuses to
// start playback (browser autoplay policy, no output device, no player
// binary).
var ErrRejected = errors.New("audio: playback rejected")

// State is the playback state of the Player.
type State int

const (
	Idle State = iota
	Paused
	Playing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Events are the notifications a backend delivers for an open track.
// Backends must call them asynchronously, never from inside a Track method.
type Events struct {
	Progress func(position, duration time.Duration)
	Ended    func()
}

// Track is a playable handle for one decoded clip.
type Track interface {
	// Play starts or resumes playback. It returns ErrRejected (possibly
	// wrapped) when playback is refused.
	Play() error
	Pause()
	// Rewind moves the position back to the start without playing.
	Rewind()
	Close()
}

// Backend turns decoded audio into a Track.
type Backend interface {
	Open(data []byte, ev Events) (Track, error)
}

// Display is the player UI: container visibility, play/pause affordance,
// progress bar and time label.
type Display interface {
	ShowPlayer(visible bool)
	SetPlaying(playing bool)
	SetProgress(percent float64, clock string)
}

// Player is the single owner of the current audio session.
type Player struct {
	backend Backend
	display Display
	logger  *zap.Logger

	mu      sync.Mutex
	state   State
	track   Track
	session uint64
}

func NewPlayer(backend Backend, display Display, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{
		backend: backend,
		display: display,
		logger:  logger,
	}
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start replaces any current session with the base64-encoded clip and
// tries to play it right away. A refused autoplay leaves the session
// loaded and paused; that is not an error.
func (p *Player) Start(payload string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		p.display.ShowPlayer(false)
		return fmt.Errorf("decode audio payload: %w", err)
	}

	p.session++
	id := p.session
	track, err := p.backend.Open(data, Events{
		Progress: func(pos, dur time.Duration) { p.onProgress(id, pos, dur) },
		Ended:    func() { p.onEnded(id) },
	})
	if err != nil {
		p.display.ShowPlayer(false)
		return fmt.Errorf("open audio: %w", err)
	}

	p.track = track
	p.state = Paused
	p.display.ShowPlayer(true)
	p.display.SetProgress(0, FormatClock(0))
	p.playLocked()
	return nil
}

// Toggle pauses a playing session or resumes a paused one. It does nothing
// when no session is loaded.
func (p *Player) Toggle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case Playing:
		p.track.Pause()
		p.state = Paused
		p.display.SetPlaying(false)
	case Paused:
		p.playLocked()
	}
}

// Stop ends the current session, if any, and hides the player.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.display.ShowPlayer(false)
}

func (p *Player) stopLocked() {
	if p.track != nil {
		p.track.Pause()
		p.track.Close()
		p.track = nil
	}
	p.state = Idle
	p.display.SetPlaying(false)
}

func (p *Player) playLocked() {
	if err := p.track.Play(); err != nil {
		p.logger.Debug("audio: playback not started", zap.Error(err))
		p.state = Paused
		p.display.SetPlaying(false)
		return
	}
	p.state = Playing
	p.display.SetPlaying(true)
}

func (p *Player) onProgress(id uint64, pos, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id != p.session || p.state != Playing {
		return
	}
	p.display.SetProgress(Percent(pos, dur), FormatClock(pos))
}

func (p *Player) onEnded(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id != p.session || p.track == nil {
		return
	}
	p.track.Rewind()
	p.state = Paused
	p.display.SetPlaying(false)
	p.display.SetProgress(0, FormatClock(0))
}

// FormatClock renders a position as minutes:seconds.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Percent returns how far pos is into dur, from 0 to 100.
func Percent(pos, dur time.Duration) float64 {
	if dur <= 0 || pos <= 0 {
		return 0
	}
	pct := float64(pos) / float64(dur) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
