package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

type prompter interface {
	// Confirm asks a yes/no question; non-interactive sessions answer no.
	Confirm(question string) bool
	// Secret reads a line without echo when attached to a terminal.
	Secret(label string) (string, error)
}

type terminalPrompter struct {
	in  *os.File
	out io.Writer
}

func newTerminalEnv() *env {
	return &env{
		out:    os.Stdout,
		errOut: os.Stderr,
		prompt: terminalPrompter{in: os.Stdin, out: os.Stderr},
	}
}

func (p terminalPrompter) interactive() bool {
	return term.IsTerminal(int(p.in.Fd()))
}

func (p terminalPrompter) Confirm(question string) bool {
	if !p.interactive() {
		return false
	}
	return readConfirm(p.in, p.out, question)
}

func (p terminalPrompter) Secret(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.interactive() {
		line, err := bufio.NewReader(p.in).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
	raw, err := term.ReadPassword(int(p.in.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func readConfirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
