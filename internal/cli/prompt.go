package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Replaced in tests so they never touch the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// ReadLine prints prompt and returns the next line without surrounding spaces.
// A final line without a newline is returned as is.
func (cli *InteractiveCLI) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		if _, err := cli.bold.Fprint(cli.stdoutWriter, prompt); err != nil {
			return "", err
		}
	}
	line, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadPassword prints prompt and reads a line from the terminal without echo.
// When stdin is not a terminal it falls back to ReadLine.
func (cli *InteractiveCLI) ReadPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return cli.ReadLine(prompt)
	}
	if _, err := cli.bold.Fprint(cli.stdoutWriter, prompt); err != nil {
		return "", err
	}
	password, err := readPassword(fd)
	_, _ = fmt.Fprintln(cli.stdoutWriter)
	if err != nil {
		return "", fmt.Errorf("term.ReadPassword() > %w", err)
	}
	return string(password), nil
}

// Confirm asks a yes/no question. Anything but y or yes is a no.
func (cli *InteractiveCLI) Confirm(prompt string) (bool, error) {
	answer, err := cli.ReadLine(prompt + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
