package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"golang.org/x/term"
)

// urlPromptMessage is shown when no URL was given on the command line.
const urlPromptMessage = "Enter Spotify URL (track/album/playlist):"

// ErrEmptyURL indicates that the user entered nothing.
var ErrEmptyURL = errors.New("no URL entered")

// URLPrompt asks the user for a URL.
type URLPrompt struct {
	in         io.Reader
	out        io.Writer
	isTerminal bool
}

// NewURLPrompt creates a prompt over the given streams.
// An interactive prompt is used only when in is a terminal.
func NewURLPrompt(in io.Reader, out io.Writer) *URLPrompt {
	isTerminal := false
	if f, ok := in.(*os.File); ok {
		isTerminal = term.IsTerminal(int(f.Fd())) //nolint:gosec // File descriptors fit in int.
	}

	return &URLPrompt{in: in, out: out, isTerminal: isTerminal}
}

// Ask reads one URL. Surrounding whitespace is trimmed.
func (p *URLPrompt) Ask(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		answer string
		err    error
	)

	if p.isTerminal {
		answer, err = p.askInteractive()
	} else {
		answer, err = p.askPlain()
	}

	if err != nil {
		return "", err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ErrEmptyURL
	}

	return answer, nil
}

func (p *URLPrompt) askInteractive() (string, error) {
	var answer string

	err := survey.AskOne(&survey.Input{Message: urlPromptMessage}, &answer)
	if errors.Is(err, terminal.InterruptErr) {
		return "", fmt.Errorf("prompt canceled: %w", err)
	}

	return answer, err
}

func (p *URLPrompt) askPlain() (string, error) {
	fmt.Fprint(p.out, urlPromptMessage+" ") //nolint:errcheck // Prompt output is best-effort.

	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read URL: %w", err)
	}

	return line, nil
}
