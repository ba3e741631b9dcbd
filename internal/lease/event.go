// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package lease models the events and lease data a udhcpc style DHCP client
// passes to its hook.
package lease

import (
	"errors"
	"fmt"
)

// ErrUnknownEvent is returned for event names the DHCP client is not known
// to send.
var ErrUnknownEvent = errors.New("unknown event")

// Event is the kind of lease state transition.
type Event string

// Events sent by the DHCP client.
const (
	// Deconfig is sent when the client starts and when a lease is lost. The
	// interface must not keep an address.
	Deconfig Event = "deconfig"
	// Bound is sent when a lease was obtained.
	Bound Event = "bound"
	// Renew is sent when a lease was renewed. Its data may differ from the
	// previous one.
	Renew Event = "renew"
	// LeaseFail is sent when no lease could be obtained.
	LeaseFail Event = "leasefail"
	// Nak is sent when the server refused the request.
	Nak Event = "nak"
)

// ParseEvent returns the [Event] for the given name.
func ParseEvent(name string) (Event, error) {
	switch event := Event(name); event {
	case Deconfig, Bound, Renew, LeaseFail, Nak:
		return event, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
}

// CarriesLease reports whether the event comes with an address to apply.
func (e Event) CarriesLease() bool {
	return e == Bound || e == Renew
}
