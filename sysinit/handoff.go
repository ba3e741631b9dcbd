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

// Target is the single process the init hands the console over to.
type Target struct {
	// Path is the executable. It is looked up in PATH if it is not absolute.
	Path string

	// Args are the arguments passed to the executable.
	Args []string

	// Env is the environment of the process. If nil, the environment of the
	// init is inherited.
	Env []string
}

// RunTarget hands the console over to the given [Target] and blocks until it
// exited. The exit code is recorded in the [State].
//
// The target is started in a new session with the console device as
// controlling terminal and as stdin, stdout and stderr. The init closes its
// own descriptor of the console right after the start. While waiting, all
// other children that terminate are reaped.
//
// Signals that terminated the target are reported as exit code 128 + signal
// number, like shells do.
func RunTarget(state *State, target Target, consolePath string) error {
	if target.Path == "" {
		return ErrEmptyTarget
	}

	pid, err := startTarget(target, consolePath)
	if err != nil {
		return err
	}

	slog.Info("Target started",
		slog.String("path", target.Path),
		slog.String("console", consolePath),
		slog.Int("pid", pid),
	)

	exitCode, err := waitTarget(pid)
	if err != nil {
		return err
	}

	state.SetExitCode(exitCode)

	return nil
}

func startTarget(target Target, consolePath string) (int, error) {
	tty, err := os.OpenFile(consolePath, os.O_RDWR, 0)
	if err != nil {
		return 0, fmt.Errorf("open console: %w", err)
	}

	// The child holds its own copies from here on.
	defer tty.Close()

	cmd := targetCommand(target, tty, true)

	err = cmd.Start()
	if err != nil && !errors.Is(err, exec.ErrNotFound) && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Console refused to become controlling terminal",
			slog.String("console", consolePath),
			slog.Any("error", err),
		)

		cmd = targetCommand(target, tty, false)
		err = cmd.Start()
	}

	if err != nil {
		return 0, fmt.Errorf("start target %s: %w", target.Path, err)
	}

	return cmd.Process.Pid, nil
}

func targetCommand(target Target, tty *os.File, ctty bool) *exec.Cmd {
	cmd := exec.Command(target.Path, target.Args...)
	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	cmd.Env = target.Env
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: ctty,
		// Index into the child's descriptors: stdin.
		Ctty: 0,
	}

	return cmd
}

// waitTarget reaps children until the one with the given pid terminated and
// returns its exit code.
func waitTarget(pid int) (int, error) {
	for {
		var status unix.WaitStatus

		wpid, err := unix.Wait4(-1, &status, 0, nil)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}

			return -1, fmt.Errorf("wait for target: %w", err)
		}

		if wpid != pid {
			slog.Debug("Reaped process", slog.Int("pid", wpid))
			continue
		}

		return exitCodeOf(status), nil
	}
}

func exitCodeOf(status unix.WaitStatus) int {
	switch {
	case status.Exited():
		return status.ExitStatus()
	case status.Signaled():
		return 128 + int(status.Signal())
	default:
		return -1
	}
}
