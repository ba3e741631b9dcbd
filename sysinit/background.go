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
	"syscall"

	"golang.org/x/sys/unix"
)

// StartBackground starts the given command in its own session and returns
// without waiting for it. Nobody joins the process: once it exits it is reaped
// by the init like any other orphan.
func StartBackground(cmd *exec.Cmd) error {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}

	cmd.SysProcAttr.Setsid = true

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", cmd.Path, err)
	}

	slog.Debug("Background process started",
		slog.String("path", cmd.Path),
		slog.Int("pid", cmd.Process.Pid),
	)

	return nil
}

// StopBackground sends SIGTERM to a process started with [StartBackground].
// A process that is gone already is not an error.
func StopBackground(cmd *exec.Cmd) error {
	err := cmd.Process.Signal(unix.SIGTERM)
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("stop %s: %w", cmd.Path, err)
	}

	return nil
}

// WithBackground returns a setup [Func] that wraps [StartBackground] and can
// be used with [Run].
//
// The command is created by newCmd only when the [Func] runs, so it sees the
// environment set up by earlier [Func]s. A failure to start is logged but does
// not abort the boot. A started process is stopped with [StopBackground] on
// cleanup, before the machine is powered off.
func WithBackground(name string, newCmd func() *exec.Cmd) Func {
	return func(state *State) error {
		cmd := newCmd()

		if err := StartBackground(cmd); err != nil {
			slog.Warn("Background process not started",
				slog.String("name", name),
				slog.Any("error", err),
			)

			return nil
		}

		state.Cleanup(func() error {
			return StopBackground(cmd)
		})

		return nil
	}
}
