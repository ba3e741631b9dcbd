// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import "log/slog"

// Phase is a stage of the boot. Phases only ever advance.
type Phase int

// Boot phases in the order they are passed.
const (
	PhaseInitializing Phase = iota
	PhaseNetworkStarting
	PhaseTargetRunning
	PhasePoweringOff
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseNetworkStarting:
		return "network-starting"
	case PhaseTargetRunning:
		return "target-running"
	case PhasePoweringOff:
		return "powering-off"
	default:
		return "unknown"
	}
}

// WithPhase returns a setup [Func] that advances the boot to the given
// [Phase]. It can be used with [Run] to mark the start of a group of
// functions.
func WithPhase(phase Phase) Func {
	return func(state *State) error {
		state.enter(phase)
		return nil
	}
}

func logPhase(from, to Phase) {
	slog.Info("Boot phase",
		slog.String("from", from.String()),
		slog.String("to", to.String()),
	)
}
