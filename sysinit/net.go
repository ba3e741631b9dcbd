// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"fmt"
	"log/slog"

	"github.com/vishvananda/netlink"
)

// SetInterfaceUp sets the link of the named interface administratively up.
// No address is configured.
func SetInterfaceUp(name string) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return fmt.Errorf("link %s: %w", name, err)
	}

	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("set %s up: %w", name, err)
	}

	return nil
}

// WithInterfaceUp returns a setup [Func] that wraps [SetInterfaceUp] and can
// be used with [Run].
//
// A failure is logged but does not abort the boot. The target is expected to
// cope without network.
func WithInterfaceUp(name string) Func {
	return func(_ *State) error {
		if err := SetInterfaceUp(name); err != nil {
			slog.Warn("Network interface not available",
				slog.String("interface", name),
				slog.Any("error", err),
			)
		}

		return nil
	}
}
