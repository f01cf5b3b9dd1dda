package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPIN returns preset when given, reads a hidden PIN when stdin is a
// terminal, and otherwise reads one line from the command's input.
func (c *commandContext) readPIN(cmd *cobra.Command, label, preset string) (string, error) {
	if preset != "" {
		return preset, nil
	}
	if file, ok := cmd.InOrStdin().(*os.File); ok && isTerminal(file) {
		fmt.Fprint(cmd.ErrOrStderr(), label)
		secret, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read PIN: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}
	return c.readLine(cmd, label)
}

// readLine reads one line from the command's input. Prompts go to stderr so
// piped output stays clean.
func (c *commandContext) readLine(cmd *cobra.Command, label string) (string, error) {
	if c.input == nil {
		c.input = bufio.NewReader(cmd.InOrStdin())
	}
	if file, ok := cmd.InOrStdin().(*os.File); ok && isTerminal(file) {
		fmt.Fprint(cmd.ErrOrStderr(), label)
	}
	line, err := c.input.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read %s: no input", strings.TrimSuffix(strings.TrimSpace(label), ":"))
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
