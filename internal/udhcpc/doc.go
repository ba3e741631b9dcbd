// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package udhcpc implements the hook a udhcpc style DHCP client calls on
// every lease state transition.
//
// The client runs the hook with the event name as only argument and the
// lease data in the environment. The hook applies the lease to the kernel
// network configuration and exits. It never fails the client: apart from
// usage errors the exit status is always 0, problems are reported on stderr.
package udhcpc
