// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import "fmt"

// Poweroff flushes file system buffers and powers the machine off.
//
// It does not return, unless in case of error. [Run] calls it deferred, so
// there is usually no need to call it directly.
func Poweroff() error {
	if err := poweroff(); err != nil {
		return fmt.Errorf("poweroff failed: %w", err)
	}

	return nil
}

// IsPidOne returns true if the running process has PID 1.
func IsPidOne() bool {
	return getpid() == 1
}
