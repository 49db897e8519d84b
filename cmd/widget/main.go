//go:build js && wasm

// Command widget is the browser build of the conversation widget.
package main

import (
	"context"
	"net/http"
	"syscall/js"

	"github.com/optimalbrew/espChat/internal/audio"
	"github.com/optimalbrew/espChat/internal/logging"
	"github.com/optimalbrew/espChat/internal/widget"
	"github.com/optimalbrew/espChat/internal/widget/dom"
	"go.uber.org/zap"
)

func main() {
	// Console output lands in the browser's developer console.
	logger := logging.New(logging.Options{Level: "debug"})

	page, err := dom.Bind(js.Global().Get("document"))
	if err != nil {
		logger.Fatal("widget: bind page", zap.Error(err))
	}

	origin := js.Global().Get("location").Get("origin").String()
	// The browser attaches the session cookie to same-origin fetches.
	client := widget.NewClientWithHTTP(origin, &http.Client{})

	player := audio.NewPlayer(dom.NewBackend(logger), page, logger)
	ctrl := widget.NewController(client, page, player, logger)

	ctx := context.Background()
	// Callbacks run on the JS event loop; anything that waits on the
	// network or on a promise goes to its own goroutine.
	page.OnSubmit(func(text, level, topic string) {
		go ctrl.SubmitMessage(ctx, text, level, topic)
	})
	page.OnReset(func() {
		go ctrl.ResetConversation(ctx)
	})
	page.OnPlayPause(func() {
		go player.Toggle()
	})

	logger.Info("widget: ready")
	select {}
}
