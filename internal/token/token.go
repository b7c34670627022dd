// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package token obtains the Joplin Clipper API token. The token lives in a
// plain-text file; on first run it is collected interactively and persisted
// so later runs never prompt.
package token

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
)

// DefaultFile is the token file consulted when no path is configured.
const DefaultFile = "joplin_token.txt"

// PromptFunc asks the user for a token once and returns the entered text.
// It is a separate capability so tests can inject a fixed value instead of
// driving a terminal.
type PromptFunc func() (string, error)

// Load returns the Clipper API token.
//
// An existing non-empty token file wins. Otherwise prompt is called until
// it yields a non-empty value, which is then persisted to path for future
// runs; a persist failure is reported as a warning on w but does not fail
// the load. A nil prompt with no usable file is an error.
func Load(path string, prompt PromptFunc, w io.Writer) (string, error) {
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if tok := strings.TrimSpace(string(data)); tok != "" {
			return tok, nil
		}
		fmt.Fprintf(w, "warning: token file %s is empty\n", path)
	case !os.IsNotExist(err):
		return "", fmt.Errorf("reading token file %s: %w", path, err)
	}

	if prompt == nil {
		return "", fmt.Errorf("no token in %s and interactive prompting is disabled", path)
	}

	fmt.Fprintln(w, "A Joplin API token is required. Find it in Joplin under")
	fmt.Fprintln(w, "Tools > Options > Web Clipper (the service must be enabled).")

	var tok string
	for tok == "" {
		entered, err := prompt()
		if err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		tok = strings.TrimSpace(entered)
		if tok == "" {
			fmt.Fprintln(w, "Token cannot be empty.")
		}
	}

	if err := Save(path, tok); err != nil {
		fmt.Fprintf(w, "warning: could not save token to %s: %v\n", path, err)
	} else {
		fmt.Fprintf(w, "Token saved to %s for future use.\n", path)
	}
	return tok, nil
}

// Save persists the token atomically so a crash mid-write cannot leave a
// truncated token file behind.
func Save(path, tok string) error {
	return atomic.WriteFile(path, strings.NewReader(tok+"\n"))
}

// TerminalPrompt returns a PromptFunc backed by a readline-style terminal
// prompt. Ctrl-C aborts instead of entering a literal control character.
func TerminalPrompt() PromptFunc {
	return func() (string, error) {
		l := liner.NewLiner()
		defer l.Close()
		l.SetCtrlCAborts(true)

		entered, err := l.Prompt("Joplin API token: ")
		if err != nil {
			if err == liner.ErrPromptAborted {
				return "", fmt.Errorf("token entry aborted")
			}
			return "", err
		}
		return entered, nil
	}
}
