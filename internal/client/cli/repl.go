package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/devfeed/internal/client/session"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	route(ctx context.Context) session.Route

	Login(ctx context.Context) error
	Unlock(ctx context.Context) error
	Register(ctx context.Context) error

	Feed(ctx context.Context) error
	Post(ctx context.Context) error
	Attach(ctx context.Context, path string) error
	Like(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	Swipe(ctx context.Context, id int64, dx float64) error
	Files(ctx context.Context) error
	Settings(ctx context.Context) error
	Toggle(ctx context.Context, name string) error
	Logout(ctx context.Context) error
}

const (
	welcomeHelp = "Available commands: login, unlock, register, exit"
	shellHelp   = "Available commands: feed, post, attach <path>, like <id>, delete <id>, swipe <id> <dx>, files, settings, toggle <pref>, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the devfeed CLI.
//
// It reads a line with readLine, parses the first token as the command, and
// dispatches to methods on 'a'. The command set depends on the session
// route, which is re-read before every prompt. The loop exits on input EOF
// or when the user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// what the user needs to see. This keeps the REPL loop resilient and
// focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, readLine func() (string, error)) {
	for {
		r := a.route(ctx)
		printlnFn(fmt.Sprintf("devfeed %s> ", statusFn()))

		line, err := readLine()
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		switch r {
		case session.RouteAppShell:
			runShellCommand(ctx, a, cmd, args)
		case session.RouteWelcome:
			runWelcomeCommand(ctx, a, cmd)
		default:
			printlnFn("Still connecting, try again in a moment.")
		}
	}
}

func runWelcomeCommand(ctx context.Context, a execIface, cmd string) {
	switch cmd {
	case "help":
		printlnFn(welcomeHelp)
	case "login":
		_ = a.Login(ctx)
	case "unlock":
		_ = a.Unlock(ctx)
	case "register":
		_ = a.Register(ctx)
	default:
		printlnFn("Unknown command:", cmd)
	}
}

func runShellCommand(ctx context.Context, a execIface, cmd string, args []string) {
	switch cmd {
	case "help":
		printlnFn(shellHelp)

	case "feed", "f":
		_ = a.Feed(ctx)

	case "post":
		_ = a.Post(ctx)

	case "attach":
		if len(args) != 1 {
			printlnFn("Usage: attach <path>")
			return
		}
		_ = a.Attach(ctx, args[0])

	case "like", "delete":
		id, ok := parseID(args)
		if !ok {
			printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
			return
		}
		if cmd == "like" {
			_ = a.Like(ctx, id)
		} else {
			_ = a.Delete(ctx, id)
		}

	case "swipe":
		if len(args) != 2 {
			printlnFn("Usage: swipe <id> <dx>")
			return
		}
		id, ok := parseID(args[:1])
		dx, err := strconv.ParseFloat(args[1], 64)
		if !ok || err != nil {
			printlnFn("Usage: swipe <id> <dx>")
			return
		}
		_ = a.Swipe(ctx, id, dx)

	case "files":
		_ = a.Files(ctx)

	case "settings":
		_ = a.Settings(ctx)

	case "toggle":
		if len(args) != 1 {
			printlnFn("Usage: toggle <pref>")
			return
		}
		_ = a.Toggle(ctx, args[0])

	case "logout":
		_ = a.Logout(ctx)

	default:
		printlnFn("Unknown command:", cmd)
	}
}

func parseID(args []string) (int64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
