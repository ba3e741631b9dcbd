// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Command udhcpc-handler is the hook the udhcpc DHCP client calls on lease
// state transitions. It applies the lease to the network interface.
package main

import (
	"os"

	"github.com/aibor/realminit/internal/udhcpc"
)

func main() {
	os.Exit(udhcpc.Run(os.Args, os.Environ(), os.Stderr))
}
