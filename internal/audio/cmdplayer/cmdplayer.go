// Package cmdplayer plays MP3 clips through an external command line
// player such as ffplay or mpv. Pausing stops the process and remembers the
// position; resuming starts it again at that offset.
package cmdplayer

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hajimehoshi/go-mp3"
	"github.com/optimalbrew/espChat/internal/audio"
	"go.uber.org/zap"
)

// DefaultCommand reads the clip from stdin. {offset} is replaced with the
// resume position in seconds.
const DefaultCommand = "ffplay -nodisp -autoexit -loglevel quiet -ss {offset} -"

const tickInterval = 250 * time.Millisecond

// Backend implements audio.Backend.
type Backend struct {
	command []string
	logger  *zap.Logger
	tick    time.Duration
}

// New creates a backend for the given command line. An empty command makes
// every Play a rejection, which leaves sessions loaded and paused.
func New(command string, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		command: strings.Fields(command),
		logger:  logger,
		tick:    tickInterval,
	}
}

// Open measures the clip and returns a stopped track.
func (b *Backend) Open(data []byte, ev audio.Events) (audio.Track, error) {
	dur, err := Duration(data)
	if err != nil {
		return nil, err
	}
	return b.newTrack(data, dur, ev), nil
}

func (b *Backend) newTrack(data []byte, dur time.Duration, ev audio.Events) *track {
	return &track{b: b, data: data, dur: dur, ev: ev}
}

// Duration decodes the MP3 stream length.
func Duration(data []byte) (time.Duration, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("decode mp3: %w", err)
	}
	// 16-bit stereo PCM
	frames := dec.Length() / 4
	if frames <= 0 || dec.SampleRate() <= 0 {
		return 0, nil
	}
	return time.Duration(frames) * time.Second / time.Duration(dec.SampleRate()), nil
}

type track struct {
	b    *Backend
	data []byte
	dur  time.Duration
	ev   audio.Events

	mu      sync.Mutex
	offset  time.Duration
	started time.Time
	cmd     *exec.Cmd
	stop    chan struct{}
}

func (t *track) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cmd != nil {
		return nil
	}
	if len(t.b.command) == 0 {
		return fmt.Errorf("%w: no player command configured", audio.ErrRejected)
	}
	path, err := exec.LookPath(t.b.command[0])
	if err != nil {
		return fmt.Errorf("%w: %v", audio.ErrRejected, err)
	}

	offset := strconv.FormatFloat(t.offset.Seconds(), 'f', 2, 64)
	args := make([]string, 0, len(t.b.command)-1)
	for _, a := range t.b.command[1:] {
		args = append(args, strings.ReplaceAll(a, "{offset}", offset))
	}

	cmd := exec.Command(path, args...)
	cmd.Stdin = bytes.NewReader(t.data)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", audio.ErrRejected, err)
	}

	stop := make(chan struct{})
	t.cmd = cmd
	t.stop = stop
	t.started = time.Now()

	go t.progress(stop)
	go t.wait(cmd, stop)
	return nil
}

func (t *track) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cmd == nil {
		return
	}
	t.offset = min(t.offset+time.Since(t.started), t.dur)
	_ = t.cmd.Process.Kill()
	t.cmd = nil
	close(t.stop)
}

func (t *track) Rewind() {
	t.mu.Lock()
	t.offset = 0
	t.mu.Unlock()
}

func (t *track) Close() {
	t.Pause()
}

func (t *track) position() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	pos := t.offset
	if t.cmd != nil {
		pos += time.Since(t.started)
	}
	return min(pos, t.dur)
}

func (t *track) progress(stop <-chan struct{}) {
	ticker := time.NewTicker(t.b.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if t.ev.Progress != nil {
				t.ev.Progress(t.position(), t.dur)
			}
		}
	}
}

func (t *track) wait(cmd *exec.Cmd, stop chan struct{}) {
	err := cmd.Wait()

	t.mu.Lock()
	if t.cmd != cmd {
		// killed by Pause
		t.mu.Unlock()
		return
	}
	t.cmd = nil
	t.offset = t.dur
	close(stop)
	t.mu.Unlock()

	if err != nil {
		t.b.logger.Warn("audio: player exited with error", zap.Error(err))
	}
	if t.ev.Ended != nil {
		t.ev.Ended()
	}
}
