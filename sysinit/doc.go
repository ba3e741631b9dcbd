// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sysinit provides the building blocks of the realm guest init: it
// sets up the essential virtual file systems, installs the busybox toolset,
// starts background helpers, hands the console over to a single target
// process and powers the machine off once that process is gone.
//
// The boot is a sequence of [Func]s run by [Run]. [Run] must be called by
// PID 1. It only returns if powering off failed.
package sysinit
