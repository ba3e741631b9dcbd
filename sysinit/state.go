// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"log/slog"
	"slices"
)

// CleanupFunc is registered with [State.Cleanup] and run once all [Func]s
// are done.
type CleanupFunc func() error

// State is shared by all [Func]s run by [Run].
type State struct {
	cleanupFns []CleanupFunc
	phase      Phase
	exitCode   *int
}

// Cleanup registers a function that is run after all [Func]s ran or one of
// them failed. Functions are run in reverse order of registration.
func (s *State) Cleanup(fn CleanupFunc) {
	s.cleanupFns = append(s.cleanupFns, fn)
}

// Phase returns the current boot [Phase].
func (s *State) Phase() Phase {
	return s.phase
}

// SetExitCode records the exit code of the target process.
func (s *State) SetExitCode(exitCode int) {
	s.exitCode = &exitCode
}

// ExitCode returns the exit code of the target process and whether it has
// been set at all.
func (s *State) ExitCode() (int, bool) {
	if s.exitCode == nil {
		return 0, false
	}

	return *s.exitCode, true
}

func (s *State) enter(phase Phase) {
	if phase <= s.phase {
		return
	}

	logPhase(s.phase, phase)
	s.phase = phase
}

func (s *State) doCleanup() {
	slices.Reverse(s.cleanupFns)

	for _, fn := range s.cleanupFns {
		if err := fn(); err != nil {
			slog.Error("Cleanup failed", slog.Any("error", err))
		}
	}

	s.cleanupFns = nil
}
