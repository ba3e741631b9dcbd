// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_Cleanup(t *testing.T) {
	calls := []int{}

	state := new(State)
	state.Cleanup(func() error {
		calls = append(calls, 1)
		return nil
	})

	state.Cleanup(func() error {
		calls = append(calls, 2)
		return assert.AnError
	})

	state.Cleanup(func() error {
		calls = append(calls, 3)
		return nil
	})

	state.doCleanup()

	assert.Equal(t, []int{3, 2, 1}, calls)

	state.doCleanup()

	assert.Equal(t, []int{3, 2, 1}, calls, "cleanup must run only once")
}

func TestState_ExitCode(t *testing.T) {
	state := new(State)

	_, ok := state.ExitCode()
	assert.False(t, ok, "unset")

	state.SetExitCode(0)

	exitCode, ok := state.ExitCode()
	assert.True(t, ok)
	assert.Equal(t, 0, exitCode)

	state.SetExitCode(42)

	exitCode, _ = state.ExitCode()
	assert.Equal(t, 42, exitCode)
}

func TestState_Enter(t *testing.T) {
	var logOut bytes.Buffer

	defaultLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logOut, nil)))
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })

	state := new(State)
	assert.Equal(t, PhaseInitializing, state.Phase())

	state.enter(PhaseTargetRunning)
	assert.Equal(t, PhaseTargetRunning, state.Phase())

	state.enter(PhaseNetworkStarting)
	assert.Equal(t, PhaseTargetRunning, state.Phase(), "phases must not go back")

	state.enter(PhasePoweringOff)
	assert.Equal(t, PhasePoweringOff, state.Phase())

	assert.Contains(t, logOut.String(), "from=initializing to=target-running")
	assert.Contains(t, logOut.String(), "from=target-running to=powering-off")
	assert.NotContains(t, logOut.String(), "to=network-starting")
}
