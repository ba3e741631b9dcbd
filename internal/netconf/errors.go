// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package netconf

import "errors"

var (
	// ErrNoInterface is returned if a lease does not name an interface.
	ErrNoInterface = errors.New("no interface in lease")
	// ErrNoAddress is returned if a bound or renew lease has no address.
	ErrNoAddress = errors.New("no address in lease")
)
