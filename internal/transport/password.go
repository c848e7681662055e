// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package transport

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PasswordEnv names the environment variable holding the WebSocket password
const PasswordEnv = "UMX_PASSWORD"

// Password retrieves the WebSocket password from UMX_PASSWORD or prompts
// on stderr, without echo when stdin is a terminal
func Password() (string, error) {
	return readPassword(os.Getenv, os.Stdin, os.Stderr)
}

func readPassword(getenv func(string) string, in *os.File, prompt io.Writer) (string, error) {
	if pw := getenv(PasswordEnv); pw != "" {
		return pw, nil
	}

	fmt.Fprint(prompt, "Password: ")

	passwordBytes, err := term.ReadPassword(int(in.Fd()))
	if err != nil {
		// Not a terminal: read a plain line
		reader := bufio.NewReader(in)
		password, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || password == "") {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(prompt)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(prompt)
	return string(passwordBytes), nil
}
