// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Command init is the PID 1 of the realm. It prepares the minimal system,
// starts the DHCP client, hands the console over to the execution target
// selected on the kernel command line and powers off once it exited.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aibor/realminit/internal/boot"
	"github.com/aibor/realminit/internal/cmd"
	"github.com/aibor/realminit/internal/config"
	"github.com/aibor/realminit/sysinit"
)

func main() {
	if !sysinit.IsPidOne() {
		fmt.Fprintf(os.Stderr, "Error: %v\n", sysinit.ErrNotPidOne)
		os.Exit(127)
	}

	var level slog.LevelVar

	cmd.SetupLogging(os.Stderr, &level)

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		slog.Warn("Using default config", slog.Any("error", err))
	}

	// Validated by Load.
	if configured, err := config.ParseLogLevel(cfg.LogLevel); err == nil {
		level.Set(configured)
	}

	sysinit.Run(boot.New(cfg, &level).Funcs()...)
}
