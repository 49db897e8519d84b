//go:build js && wasm

package dom

import (
	"encoding/base64"
	"fmt"
	"math"
	"syscall/js"
	"time"

	"github.com/optimalbrew/espChat/internal/audio"
	"go.uber.org/zap"
)

// Backend plays clips through an HTMLAudioElement.
type Backend struct {
	logger *zap.Logger
}

func NewBackend(logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{logger: logger}
}

// Open wraps data in a data URL. Element events are forwarded to ev in
// order from a separate goroutine.
func (b *Backend) Open(data []byte, ev audio.Events) (audio.Track, error) {
	src := "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(data)
	el := js.Global().Get("Audio").New(src)

	t := &track{el: el, events: make(chan func(), 64), done: make(chan struct{})}
	go t.dispatch()

	t.on("timeupdate", func() {
		pos, dur := seconds(el.Get("currentTime")), seconds(el.Get("duration"))
		t.post(false, func() {
			if ev.Progress != nil {
				ev.Progress(pos, dur)
			}
		})
	})
	t.on("ended", func() {
		t.post(true, func() {
			if ev.Ended != nil {
				ev.Ended()
			}
		})
	})
	return t, nil
}

// seconds converts a media time, which is NaN or Inf while unknown.
func seconds(v js.Value) time.Duration {
	f := v.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

type listener struct {
	event string
	fn    js.Func
}

type track struct {
	el        js.Value
	listeners []listener
	events    chan func()
	done      chan struct{}
	closed    bool
}

func (t *track) on(event string, fn func()) {
	f := js.FuncOf(func(js.Value, []js.Value) any {
		fn()
		return nil
	})
	t.listeners = append(t.listeners, listener{event: event, fn: f})
	t.el.Call("addEventListener", event, f)
}

// post queues an event without blocking the JS callback. Progress is
// periodic and may be dropped under backlog; must-deliver events wait in
// their own goroutine.
func (t *track) post(mustDeliver bool, fn func()) {
	select {
	case t.events <- fn:
		return
	case <-t.done:
		return
	default:
	}
	if !mustDeliver {
		return
	}
	go func() {
		select {
		case t.events <- fn:
		case <-t.done:
		}
	}()
}

func (t *track) dispatch() {
	for {
		select {
		case fn := <-t.events:
			fn()
		case <-t.done:
			return
		}
	}
}

// Play starts playback and waits for the browser's answer. It must not be
// called from inside a JS callback.
func (t *track) Play() error {
	result := make(chan error, 1)
	var onOK, onErr js.Func
	onOK = js.FuncOf(func(js.Value, []js.Value) any {
		result <- nil
		return nil
	})
	onErr = js.FuncOf(func(_ js.Value, args []js.Value) any {
		reason := "unknown"
		if len(args) > 0 {
			reason = args[0].Call("toString").String()
		}
		result <- fmt.Errorf("%w: %s", audio.ErrRejected, reason)
		return nil
	})
	defer onOK.Release()
	defer onErr.Release()

	promise := t.el.Call("play")
	if promise.IsUndefined() {
		return nil
	}
	promise.Call("then", onOK, onErr)
	return <-result
}

func (t *track) Pause() {
	t.el.Call("pause")
}

func (t *track) Rewind() {
	t.el.Set("currentTime", 0)
}

func (t *track) Close() {
	if t.closed {
		return
	}
	t.closed = true
	t.el.Call("pause")
	for _, l := range t.listeners {
		t.el.Call("removeEventListener", l.event, l.fn)
		l.fn.Release()
	}
	t.listeners = nil
	t.el.Call("removeAttribute", "src")
	close(t.done)
}
