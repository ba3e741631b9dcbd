// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package udhcpc

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aibor/realminit/internal/cmd"
	"github.com/aibor/realminit/internal/config"
	"github.com/aibor/realminit/internal/lease"
	"github.com/aibor/realminit/internal/netconf"
)

const (
	exitOK    = 0
	exitUsage = 1
)

type openNetlinkFunc func() (netconf.Netlink, func(), error)

func openNetlink() (netconf.Netlink, func(), error) {
	handle, err := netconf.NewNetlink()
	if err != nil {
		return nil, nil, err
	}

	return handle, handle.Close, nil
}

// Run is the entry point of the hook. args are the command line arguments
// including the program name, environ the environment in "key=value" form.
// It returns the exit code.
func Run(args, environ []string, stderr io.Writer) int {
	return run(args, environ, stderr, openNetlink)
}

func run(args, environ []string, stderr io.Writer, open openNetlinkFunc) int {
	settings, settingsErr := SettingsFromEnviron(environ)

	level, levelErr := config.ParseLogLevel(settings.LogLevel)
	cmd.SetupLogging(stderr, level)

	// Trailing arguments are ignored.
	if len(args) < 2 {
		fmt.Fprintf(stderr, "Usage: %s deconfig|bound|renew|leasefail|nak\n",
			programName(args))

		return exitUsage
	}

	for _, err := range []error{settingsErr, levelErr} {
		if err != nil {
			slog.Warn("Using default settings", slog.Any("error", err))
		}
	}

	event, err := lease.ParseEvent(args[1])
	if err != nil {
		slog.Info("Ignoring event", slog.Any("error", err))
		return exitOK
	}

	if event != lease.Deconfig && !event.CarriesLease() {
		slog.Info("Nothing to apply", slog.String("event", string(event)))
		return exitOK
	}

	data, err := lease.FromEnviron(environ)
	if err != nil {
		slog.Warn("Incomplete lease", slog.Any("error", err))
	}

	nl, closeNetlink, err := open()
	if err != nil {
		slog.Error("Netlink not available", slog.Any("error", err))
		return exitOK
	}
	defer closeNetlink()

	configurator := netconf.New(nl, settings.Options()...)

	err = configurator.Apply(event, data)
	if err != nil {
		slog.Error("Event not applied completely",
			slog.String("event", string(event)),
			slog.String("interface", data.Interface),
			slog.Any("error", err),
		)

		return exitOK
	}

	slog.Debug("Event applied",
		slog.String("event", string(event)),
		slog.String("interface", data.Interface),
	)

	return exitOK
}

func programName(args []string) string {
	if len(args) == 0 {
		return "udhcpc-handler"
	}

	return filepath.Base(args[0])
}
