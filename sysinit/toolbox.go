// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultPath is the search path used if the environment has none.
const DefaultPath = "/usr/sbin:/usr/bin:/sbin:/bin"

// InstallToolbox makes all applets of the multi-call binary at the given path
// available in dir.
//
// The applets are listed by calling the binary with "--list" and a symlink to
// the binary is created in dir for each of them. Existing files in dir are
// kept. Finally dir is added to the front of PATH if it is missing there.
func InstallToolbox(binary, dir string) error {
	out, err := exec.Command(binary, "--list").Output()
	if err != nil {
		return fmt.Errorf("list applets: %w", err)
	}

	applets := strings.Fields(string(out))
	if len(applets) == 0 {
		return fmt.Errorf("%s: %w", binary, ErrNoApplets)
	}

	if err := os.MkdirAll(dir, defaultDirMode); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	for _, applet := range applets {
		link := filepath.Join(dir, filepath.Base(applet))
		if link == binary {
			continue
		}

		err := os.Symlink(binary, link)
		if err != nil && !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("install %s: %w", applet, err)
		}
	}

	slog.Debug("Toolbox installed",
		slog.String("binary", binary),
		slog.String("dir", dir),
		slog.Int("applets", len(applets)),
	)

	return prependPath(dir)
}

// WithToolbox returns a setup [Func] that wraps [InstallToolbox] and can be
// used with [Run].
func WithToolbox(binary, dir string) Func {
	return func(_ *State) error {
		return InstallToolbox(binary, dir)
	}
}

func prependPath(dir string) error {
	path := os.Getenv("PATH")
	if path == "" {
		path = DefaultPath
	}

	if slices.Contains(filepath.SplitList(path), dir) {
		return setenv("PATH", path)
	}

	return setenv("PATH", dir+string(os.PathListSeparator)+path)
}
