package biometric

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

var isTerminal = term.IsTerminal

// TerminalProvider stands in for a fingerprint reader on a terminal: the
// "hardware" is an interactive stdin and presence is confirmed by typing y.
// Any other answer, the fallback included, cancels the prompt.
//
// readLine is shared with the REPL so both consume the same buffered input.
type TerminalProvider struct {
	fd       int
	readLine func() (string, error)
	out      io.Writer
}

func NewTerminalProvider(fd int, readLine func() (string, error), out io.Writer) *TerminalProvider {
	return &TerminalProvider{fd: fd, readLine: readLine, out: out}
}

func (p *TerminalProvider) HasHardware(context.Context) (bool, error) {
	return isTerminal(p.fd), nil
}

func (p *TerminalProvider) Authenticate(ctx context.Context, pr Prompt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !isTerminal(p.fd) {
		return ErrNotAvailable
	}

	fmt.Fprintf(p.out, "%s [y = confirm, p = %s]: ", pr.Message, pr.FallbackLabel)

	answer, err := p.readLine()
	if err != nil && answer == "" {
		return fmt.Errorf("%w: %v", ErrFailed, err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return ErrCancelled
	}
}
