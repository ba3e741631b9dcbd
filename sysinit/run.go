// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"fmt"
	"log/slog"
)

// Func is a function run by [Run].
type Func func(*State) error

// Run is the entry point for the realm init.
//
// It runs the given functions in the order given and stops at the first one
// that returns an error. Panics are recovered from. Whatever happens, cleanup
// functions registered on the [State] are run and the system is powered off
// afterwards. Run must be run as PID 1, otherwise it panics immediately.
//
// A typical boot looks like:
//
//	Run(
//		WithToolbox("/bin/busybox", "/usr/bin"),
//		WithMountPoints(EssentialMountPoints()),
//		WithMountPoints(OptionalMountPoints()),
//		WithSymlinks(DevSymlinks()),
//		WithPhase(PhaseNetworkStarting),
//		WithInterfaceUp("eth0"),
//		WithBackground("dhcp client", dhcpClientCommand),
//		WithPhase(PhaseTargetRunning),
//		func(state *State) error {
//			return RunTarget(state, Target{Path: "/usr/bin/app-manager"}, "/dev/ttyAMA0")
//		},
//	)
//
// Functions that must not abort the boot, like bringing the network interface
// up, log their failure and return nil.
func Run(funcs ...Func) {
	if !IsPidOne() {
		panic(ErrNotPidOne)
	}

	run(Poweroff, funcs)
}

func run(poweroff func() error, funcs []Func) *State {
	state := new(State)

	// The power off edge is taken on every path out of the boot, including
	// errors and panics of the funcs.
	defer func() {
		state.enter(PhasePoweringOff)

		if err := poweroff(); err != nil {
			logError(fmt.Errorf("poweroff: %w", err))
		}
	}()

	err := runFuncs(state, funcs)

	state.doCleanup()

	if err != nil {
		logError(err)
		return state
	}

	if exitCode, ok := state.ExitCode(); ok {
		slog.Info("Target exited", slog.Int("exit_code", exitCode))
	}

	return state
}

func runFuncs(state *State, funcs []Func) (err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}

		if recoveredErr, ok := rec.(error); ok {
			err = fmt.Errorf("%w: %w", ErrPanic, recoveredErr)
		} else {
			err = fmt.Errorf("%w: %v", ErrPanic, rec)
		}
	}()

	for _, fn := range funcs {
		if err = fn(state); err != nil {
			return err
		}
	}

	return nil
}

func logError(err error) {
	if err != nil {
		slog.Error(err.Error())
	}
}
