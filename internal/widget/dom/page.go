//go:build js && wasm

// Package dom binds the widget controller and the audio player to the
// browser page.
package dom

import (
	"fmt"
	"syscall/js"

	"github.com/optimalbrew/espChat/internal/widget"
)

// Element ids the page must carry.
const (
	IDChatForm     = "chat-form"
	IDMessageInput = "message-input"
	IDMessages     = "chat-messages"
	IDResetButton  = "reset-button"
	IDLevelSelect  = "level-select"
	IDTopicSelect  = "topic-select"
	IDLoading      = "loading-indicator"
	IDAudioPlayer  = "audio-player"
	IDPlayPause    = "play-pause-button"
	IDProgress     = "audio-progress"
	IDAudioTime    = "audio-time"
)

const hiddenClass = "d-none"

// Page implements widget.View and audio.Display on the document.
type Page struct {
	doc      js.Value
	form     js.Value
	input    js.Value
	messages js.Value
	reset    js.Value
	level    js.Value
	topic    js.Value
	loading  js.Value
	player   js.Value
	toggle   js.Value
	progress js.Value
	clock    js.Value

	listeners []pageListener
}

type pageListener struct {
	el    js.Value
	event string
	fn    js.Func
}

// Bind looks up every element the widget drives.
func Bind(doc js.Value) (*Page, error) {
	p := &Page{doc: doc}
	for id, dst := range map[string]*js.Value{
		IDChatForm:     &p.form,
		IDMessageInput: &p.input,
		IDMessages:     &p.messages,
		IDResetButton:  &p.reset,
		IDLevelSelect:  &p.level,
		IDTopicSelect:  &p.topic,
		IDLoading:      &p.loading,
		IDAudioPlayer:  &p.player,
		IDPlayPause:    &p.toggle,
		IDProgress:     &p.progress,
		IDAudioTime:    &p.clock,
	} {
		el := doc.Call("getElementById", id)
		if el.IsNull() || el.IsUndefined() {
			return nil, fmt.Errorf("dom: element #%s not found", id)
		}
		*dst = el
	}
	return p, nil
}

// OnSubmit calls fn with the raw input text and the current selections.
// fn runs inside the event callback and must not block.
func (p *Page) OnSubmit(fn func(text, level, topic string)) {
	p.listen(p.form, "submit", func(ev js.Value) {
		ev.Call("preventDefault")
		fn(p.input.Get("value").String(), p.level.Get("value").String(), p.topic.Get("value").String())
	})
}

// OnReset calls fn when the reset control is clicked. fn must not block.
func (p *Page) OnReset(fn func()) {
	p.listen(p.reset, "click", func(js.Value) { fn() })
}

// OnPlayPause calls fn when the play/pause control is clicked. fn must not
// block.
func (p *Page) OnPlayPause(fn func()) {
	p.listen(p.toggle, "click", func(js.Value) { fn() })
}

func (p *Page) listen(el js.Value, event string, fn func(ev js.Value)) {
	f := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			fn(args[0])
		} else {
			fn(js.Undefined())
		}
		return nil
	})
	p.listeners = append(p.listeners, pageListener{el: el, event: event, fn: f})
	el.Call("addEventListener", event, f)
}

// Release drops the registered event callbacks.
func (p *Page) Release() {
	for _, l := range p.listeners {
		l.el.Call("removeEventListener", l.event, l.fn)
		l.fn.Release()
	}
	p.listeners = nil
}

func (p *Page) AppendEntry(e widget.Entry) {
	div := p.doc.Call("createElement", "div")
	div.Set("className", e.Class())
	// e.HTML is escaped by widget.RenderContent.
	div.Set("innerHTML", e.HTML)
	p.messages.Call("appendChild", div)
	p.messages.Set("scrollTop", p.messages.Get("scrollHeight"))
}

func (p *Page) ClearTranscript() {
	p.messages.Set("innerHTML", "")
}

func (p *Page) ClearInput() {
	p.input.Set("value", "")
}

func (p *Page) SetLoading(loading bool) {
	setHidden(p.loading, !loading)
}

func (p *Page) ShowPlayer(show bool) {
	setHidden(p.player, !show)
}

func (p *Page) SetPlaying(playing bool) {
	label := "Play"
	if playing {
		label = "Pause"
	}
	p.toggle.Set("textContent", label)
}

func (p *Page) SetProgress(percent float64, clock string) {
	p.progress.Get("style").Set("width", fmt.Sprintf("%.1f%%", percent))
	p.clock.Set("textContent", clock)
}

func setHidden(el js.Value, hidden bool) {
	el.Get("classList").Call("toggle", hiddenClass, hidden)
}
