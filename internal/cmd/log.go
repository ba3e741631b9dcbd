// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"io"
	"log/slog"
)

// SetupLogging makes a text handler writing to the given writer the default
// logger. The level may be a [slog.LevelVar] to change it later on.
func SetupLogging(writer io.Writer, level slog.Leveler) {
	slog.SetDefault(slog.New(slog.NewTextHandler(
		writer,
		&slog.HandlerOptions{
			Level: level,
		},
	)))
}
