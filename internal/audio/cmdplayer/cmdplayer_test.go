package cmdplayer

import (
	"os/exec"
	"testing"
	"time"

	"github.com/optimalbrew/espChat/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

func TestDurationRejectsGarbage(t *testing.T) {
	_, err := Duration([]byte("definitely not an mp3"))
	require.Error(t, err)
}

func TestPlayWithoutCommandIsRejected(t *testing.T) {
	b := New("", nil)
	tr := b.newTrack([]byte("clip"), time.Second, audio.Events{})

	err := tr.Play()
	require.ErrorIs(t, err, audio.ErrRejected)
}

func TestPlayMissingBinaryIsRejected(t *testing.T) {
	b := New("espchat-no-such-player -q", nil)
	tr := b.newTrack([]byte("clip"), time.Second, audio.Events{})

	err := tr.Play()
	require.ErrorIs(t, err, audio.ErrRejected)
}

func TestTrackEndsWhenPlayerExits(t *testing.T) {
	requireBinary(t, "cat")

	ended := make(chan struct{})
	b := New("cat", nil)
	tr := b.newTrack([]byte("clip"), time.Second, audio.Events{
		Ended: func() { close(ended) },
	})

	require.NoError(t, tr.Play())

	select {
	case <-ended:
	case <-time.After(5 * time.Second):
		t.Fatal("ended event not delivered")
	}

	tr.Rewind()
	assert.Zero(t, tr.position())
}

func TestPauseKeepsPosition(t *testing.T) {
	requireBinary(t, "sleep")

	ended := make(chan struct{}, 1)
	b := New("sleep 5", nil)
	tr := b.newTrack(nil, 10*time.Second, audio.Events{
		Ended: func() { ended <- struct{}{} },
	})

	require.NoError(t, tr.Play())
	time.Sleep(100 * time.Millisecond)
	tr.Pause()

	pos := tr.position()
	assert.Greater(t, pos, time.Duration(0))
	assert.Less(t, pos, 10*time.Second)

	select {
	case <-ended:
		t.Fatal("paused track reported end")
	case <-time.After(200 * time.Millisecond):
	}

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, pos, tr.position(), "position frozen while paused")
	tr.Close()
}

func TestProgressTicks(t *testing.T) {
	requireBinary(t, "sleep")

	ticks := make(chan time.Duration, 16)
	b := New("sleep 5", nil)
	b.tick = 10 * time.Millisecond
	tr := b.newTrack(nil, 10*time.Second, audio.Events{
		Progress: func(pos, dur time.Duration) {
			select {
			case ticks <- pos:
			default:
			}
		},
	})

	require.NoError(t, tr.Play())
	defer tr.Close()

	select {
	case pos := <-ticks:
		assert.GreaterOrEqual(t, pos, time.Duration(0))
	case <-time.After(2 * time.Second):
		t.Fatal("no progress tick")
	}
}
