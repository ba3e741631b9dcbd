// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package netconf applies DHCP lease events to the kernel network
// configuration of a single interface.
//
// The kernel's address and route tables are shared by every process in the
// guest. A [Configurator] serializes its own calls with a mutex and, if
// configured, serializes against other processes with an flock(2) on a lock
// file. It holds no state between events: every call derives the complete
// configuration from its event and lease.
package netconf
