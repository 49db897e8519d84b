// Package terminal renders the conversation and the audio controls on a
// text terminal.
package terminal

import (
	"fmt"
	"html"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/optimalbrew/espChat/internal/widget"
)

var lineBreaks = strings.NewReplacer("<br>", "\n")

// PlainText reverses entry markup back into terminal text.
func PlainText(markup string) string {
	return html.UnescapeString(lineBreaks.Replace(markup))
}

// Options control the terminal output.
type Options struct {
	NoColor bool
}

// Screen writes transcript entries and player status to out. It
// implements widget.View and audio.Display.
type Screen struct {
	mu  sync.Mutex
	out io.Writer

	user, tutor, system, failure, dim *color.Color

	showPlayer bool
	playing    bool
	percent    float64
	clock      string
}

func New(out io.Writer, opts Options) *Screen {
	s := &Screen{
		out:     out,
		user:    color.New(color.FgGreen, color.Bold),
		tutor:   color.New(color.FgCyan),
		system:  color.New(color.FgHiBlack, color.Italic),
		failure: color.New(color.FgRed),
		dim:     color.New(color.Faint),
		clock:   "0:00",
	}
	if opts.NoColor {
		for _, c := range []*color.Color{s.user, s.tutor, s.system, s.failure, s.dim} {
			c.DisableColor()
		}
	}
	return s
}

func (s *Screen) AppendEntry(e widget.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := PlainText(e.HTML)
	switch {
	case e.Error:
		s.failure.Fprintf(s.out, "! %s\n", text)
	case e.Role == widget.RoleUser:
		s.user.Fprintf(s.out, "tú> %s\n", text)
	case e.Role == widget.RoleAssistant:
		s.tutor.Fprintf(s.out, "tutor> %s\n", indent(text, "       "))
	default:
		s.system.Fprintf(s.out, "%s\n", text)
	}
}

func indent(text, pad string) string {
	return strings.ReplaceAll(text, "\n", "\n"+pad)
}

func (s *Screen) ClearTranscript() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dim.Fprintln(s.out, strings.Repeat("─", 40))
}

// ClearInput is a no-op: the terminal consumed the line already.
func (s *Screen) ClearInput() {}

func (s *Screen) SetLoading(loading bool) {
	if !loading {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dim.Fprintln(s.out, "…")
}

func (s *Screen) ShowPlayer(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if show && !s.showPlayer {
		s.dim.Fprintln(s.out, "[audio] /play to pause or resume")
	}
	s.showPlayer = show
}

func (s *Screen) SetPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if playing == s.playing {
		return
	}
	s.playing = playing
	if !s.showPlayer {
		return
	}
	s.dim.Fprintf(s.out, "[audio] %s\n", s.statusLocked())
}

// SetProgress records the position; progress is shown on request only.
func (s *Screen) SetProgress(percent float64, clock string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.percent = percent
	s.clock = clock
}

// Status describes the player, e.g. "playing 0:07 (35%)".
func (s *Screen) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.showPlayer {
		return "no audio"
	}
	return s.statusLocked()
}

func (s *Screen) statusLocked() string {
	state := "paused"
	if s.playing {
		state = "playing"
	}
	return fmt.Sprintf("%s %s (%.0f%%)", state, s.clock, s.percent)
}
