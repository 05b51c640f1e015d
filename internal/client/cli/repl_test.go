package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/devfeed/internal/client/session"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	r     session.Route
	calls []string
}

func (f *fakeExec) route(context.Context) session.Route { return f.r }

func (f *fakeExec) record(c string) error { f.calls = append(f.calls, c); return nil }

func (f *fakeExec) Login(context.Context) error {
	f.r = session.RouteAppShell
	return f.record("login")
}
func (f *fakeExec) Unlock(context.Context) error   { return f.record("unlock") }
func (f *fakeExec) Register(context.Context) error { return f.record("register") }
func (f *fakeExec) Feed(context.Context) error     { return f.record("feed") }
func (f *fakeExec) Post(context.Context) error     { return f.record("post") }
func (f *fakeExec) Attach(_ context.Context, p string) error {
	return f.record("attach " + p)
}
func (f *fakeExec) Like(_ context.Context, id int64) error {
	return f.record(fmt.Sprint("like ", id))
}
func (f *fakeExec) Delete(_ context.Context, id int64) error {
	return f.record(fmt.Sprint("delete ", id))
}
func (f *fakeExec) Swipe(_ context.Context, id int64, dx float64) error {
	return f.record(fmt.Sprint("swipe ", id, " ", dx))
}
func (f *fakeExec) Files(context.Context) error    { return f.record("files") }
func (f *fakeExec) Settings(context.Context) error { return f.record("settings") }
func (f *fakeExec) Toggle(_ context.Context, n string) error {
	return f.record("toggle " + n)
}
func (f *fakeExec) Logout(context.Context) error {
	f.r = session.RouteWelcome
	return f.record("logout")
}

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprint(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func lines(input ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i >= len(input) {
			return "", io.EOF
		}
		i++
		return input[i-1], nil
	}
}

func TestRunREPL_CommandSetFollowsRoute(t *testing.T) {
	silencePrintln(t)

	exec := &fakeExec{r: session.RouteWelcome}
	runREPL(context.Background(), exec, func() string { return "status" }, lines(
		"feed", // not available on the welcome screen
		"register",
		"unlock",
		"login",
		"login", // not available in the shell
		"feed",
		"post",
		"attach /tmp/cat.png",
		"like 3",
		"delete 4",
		"swipe 5 -120.5",
		"files",
		"settings",
		"toggle darkMode",
		"logout",
		"feed",
		"exit",
		"register",
	))

	assert.Equal(t, []string{
		"register", "unlock", "login",
		"feed", "post", "attach /tmp/cat.png", "like 3", "delete 4", "swipe 5 -120.5",
		"files", "settings", "toggle darkMode", "logout",
	}, exec.calls)
}

func TestRunREPL_UsageErrors(t *testing.T) {
	out := silencePrintln(t)

	exec := &fakeExec{r: session.RouteAppShell}
	runREPL(context.Background(), exec, func() string { return "" }, lines(
		"like", "like x", "like -1", "delete", "swipe 1", "swipe 1 left", "attach", "toggle", "bogus", "quit",
	))

	assert.Empty(t, exec.calls)
	joined := strings.Join(*out, "\n")
	for _, want := range []string{"Usage: like <id>", "Usage: delete <id>", "Usage: swipe <id> <dx>", "Usage: attach <path>", "Usage: toggle <pref>", "Unknown command:bogus", "Bye!"} {
		assert.Contains(t, joined, want)
	}
}

func TestRunREPL_HelpPerRoute(t *testing.T) {
	out := silencePrintln(t)

	runREPL(context.Background(), &fakeExec{r: session.RouteWelcome}, func() string { return "" }, lines("help"))
	runREPL(context.Background(), &fakeExec{r: session.RouteAppShell}, func() string { return "" }, lines("help"))

	assert.Contains(t, *out, welcomeHelp)
	assert.Contains(t, *out, shellHelp)
}

func TestRunREPL_StopsOnReadError(t *testing.T) {
	silencePrintln(t)
	exec := &fakeExec{r: session.RouteWelcome}
	runREPL(context.Background(), exec, func() string { return "" }, func() (string, error) {
		return "", errors.New("closed")
	})
	assert.Empty(t, exec.calls)
}

func TestRunREPL_NoDispatchWhileInitializing(t *testing.T) {
	out := silencePrintln(t)

	exec := &fakeExec{r: session.RouteInitializing}
	runREPL(context.Background(), exec, func() string { return "" }, lines("login", "feed", "help"))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, "Still connecting, try again in a moment.")
	assert.NotContains(t, *out, welcomeHelp)
}
