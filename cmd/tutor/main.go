// Command tutor is a terminal client for the tutoring server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/optimalbrew/espChat/internal/audio"
	"github.com/optimalbrew/espChat/internal/audio/cmdplayer"
	"github.com/optimalbrew/espChat/internal/logging"
	"github.com/optimalbrew/espChat/internal/terminal"
	"github.com/optimalbrew/espChat/internal/widget"
	"go.uber.org/zap"
)

type settings struct {
	serverURL string
	level     string
	topic     string
	player    string
	logLevel  string
	logFile   string
}

func loadSettings() settings {
	return settings{
		serverURL: getenv("TUTOR_SERVER_URL", "http://localhost:5000"),
		level:     getenv("TUTOR_LEVEL", "beginner"),
		topic:     getenv("TUTOR_TOPIC", "greetings"),
		player:    getenv("TUTOR_PLAYER", cmdplayer.DefaultCommand),
		logLevel:  getenv("LOG_LEVEL", "info"),
		logFile:   getenv("LOG_FILE", ""),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	s := loadSettings()

	logger := logging.New(logging.Options{
		Level:     s.logLevel,
		FilePath:  s.logFile,
		NoConsole: true,
	})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	screen := terminal.New(os.Stdout, terminal.Options{NoColor: color.NoColor})
	player := audio.NewPlayer(cmdplayer.New(s.player, logger), screen, logger)
	defer player.Stop()

	ctrl := widget.NewController(widget.NewClient(s.serverURL), screen, player, logger)
	ctrl.AppendEntry(widget.RoleSystem, widget.Greeting)

	r := &repl{
		ctrl:   ctrl,
		player: player,
		screen: screen,
		out:    os.Stdout,
		level:  s.level,
		topic:  s.topic,
		logger: logger,
	}
	r.run(ctx, os.Stdin)
}

type repl struct {
	ctrl   *widget.Controller
	player *audio.Player
	screen *terminal.Screen
	out    io.Writer
	level  string
	topic  string
	logger *zap.Logger
}

// run reads lines until EOF, /quit or ctx is cancelled.
func (r *repl) run(ctx context.Context, in io.Reader) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok || !r.handle(ctx, line) {
				return
			}
		}
	}
}

// handle processes one input line and reports whether to keep going.
func (r *repl) handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return false
	case "/reset":
		r.ctrl.ResetConversation(ctx)
	case "/play":
		if r.player.State() == audio.Idle {
			fmt.Fprintln(r.out, "no audio yet")
			break
		}
		r.player.Toggle()
	case "/status":
		fmt.Fprintf(r.out, "level=%s topic=%s audio=%s\n", r.level, r.topic, r.screen.Status())
	case "/level":
		if arg == "" {
			fmt.Fprintf(r.out, "level is %s\n", r.level)
			break
		}
		r.level = arg
		fmt.Fprintf(r.out, "level set to %s\n", arg)
	case "/topic":
		if arg == "" {
			fmt.Fprintf(r.out, "topic is %s\n", r.topic)
			break
		}
		r.topic = arg
		fmt.Fprintf(r.out, "topic set to %s\n", arg)
	case "/help":
		fmt.Fprintln(r.out, "commands: /reset /play /status /level <name> /topic <name> /quit")
	default:
		if strings.HasPrefix(cmd, "/") {
			fmt.Fprintf(r.out, "unknown command %s (try /help)\n", cmd)
			break
		}
		r.ctrl.SubmitMessage(ctx, line, r.level, r.topic)
	}
	return true
}
