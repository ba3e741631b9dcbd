// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package bootparam reads the kernel command line and resolves what the init
// hands off to.
package bootparam

import (
	"fmt"
	"os"
	"strings"
)

// CmdlineFile is where the kernel exposes its command line.
const CmdlineFile = "/proc/cmdline"

// Params are the whitespace separated tokens of the kernel command line in
// the order given.
type Params []string

// Parse splits a kernel command line into [Params].
func Parse(cmdline string) Params {
	return Params(strings.Fields(cmdline))
}

// ReadFile reads and parses the kernel command line from the given file.
func ReadFile(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read kernel command line: %w", err)
	}

	return Parse(string(data)), nil
}

// Value returns the value of the last key=value token with the given key.
// The second return value reports whether any such token was present.
func (p Params) Value(key string) (string, bool) {
	var (
		value string
		found bool
	)

	prefix := key + "="

	for _, token := range p {
		if v, ok := strings.CutPrefix(token, prefix); ok {
			value, found = v, true
		}
	}

	return value, found
}

// ResolveTarget returns the executable bound to the last token that exactly
// matches a key of targets. If no token matches, fallback is returned.
//
// All tokens are scanned: later matches override earlier ones, tokens
// without a binding are ignored.
func ResolveTarget(params Params, targets map[string]string, fallback string) string {
	target := fallback

	for _, token := range params {
		if path, ok := targets[token]; ok {
			target = path
		}
	}

	return target
}
