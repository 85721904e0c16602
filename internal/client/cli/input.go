package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"golang.org/x/term"
)

// Terminal seams, replaced in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

var (
	errNoEmail       = errors.New("email is required")
	errBadEmail      = errors.New("email must look like name@example.com")
	errNoPassword    = errors.New("password is required")
	errShortPassword = fmt.Errorf("password must be at least %d characters", common.MinPasswordLength)
)

// prompter asks the user for credentials. Answers come from the same scanner
// the REPL reads commands from, so piped input stays in order. Passwords are
// read from the terminal without echo when stdin is one.
type prompter struct {
	lines *bufio.Scanner
	out   io.Writer
	fd    int
}

func newPrompter(lines *bufio.Scanner, out io.Writer) *prompter {
	return &prompter{lines: lines, out: out, fd: int(os.Stdin.Fd())}
}

// line prints "prompt: " and returns the next input line, trimmed. It
// returns io.EOF once input is exhausted.
func (p *prompter) line(prompt string) (string, error) {
	if _, err := fmt.Fprintf(p.out, "%s: ", prompt); err != nil {
		return "", err
	}
	if !p.lines.Scan() {
		if err := p.lines.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.lines.Text()), nil
}

// secret reads a line without echo. Off a terminal it falls back to line.
// The caller wipes the result.
func (p *prompter) secret(prompt string) ([]byte, error) {
	if !isTerminal(p.fd) {
		s, err := p.line(prompt)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	}

	if _, err := fmt.Fprintf(p.out, "%s: ", prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// email asks for an address and rejects answers that cannot be one. Case is
// kept since the server compares addresses verbatim.
func (p *prompter) email() (string, error) {
	s, err := p.line("Email")
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", errNoEmail
	}
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 || strings.Count(s, "@") != 1 || strings.ContainsAny(s, " \t") {
		return "", errBadEmail
	}
	return s, nil
}

// password asks for a password. Answers shorter than minLen are wiped and
// rejected locally, saving a round trip the server would refuse anyway.
func (p *prompter) password(minLen int) ([]byte, error) {
	pw, err := p.secret("Password")
	if err != nil {
		return nil, err
	}
	if len(pw) == 0 {
		return nil, errNoPassword
	}
	if len(pw) < minLen {
		common.WipeByteArray(pw)
		return nil, errShortPassword
	}
	return pw, nil
}
