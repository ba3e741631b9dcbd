// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package netconf

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/aibor/realminit/internal/lease"
	"github.com/google/renameio/v2"
	"github.com/miekg/dns"
)

const resolvConfMode = 0o644

// Resolver is the policy for the system resolver configuration on new
// leases.
type Resolver interface {
	Apply(data lease.Lease) error
}

// NopResolver leaves the resolver configuration untouched.
type NopResolver struct{}

// Apply does nothing.
func (NopResolver) Apply(lease.Lease) error {
	return nil
}

// ResolvConf rewrites a resolv.conf(5) file with the name servers and the
// search domain of the lease.
//
// The file is replaced atomically: readers see either the old or the new
// content, never a partial write.
type ResolvConf struct {
	Path string
}

// Apply writes the resolver file for the given lease. Leases without name
// servers and without search domain leave the file untouched.
func (r ResolvConf) Apply(data lease.Lease) error {
	content, ok := renderResolvConf(data)
	if !ok {
		slog.Debug("No resolver data in lease", slog.String("path", r.Path))
		return nil
	}

	if err := renameio.WriteFile(r.Path, content, resolvConfMode); err != nil {
		return fmt.Errorf("write %s: %w", r.Path, err)
	}

	slog.Info("Resolver configuration written", slog.String("path", r.Path))

	return nil
}

func renderResolvConf(data lease.Lease) ([]byte, bool) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Generated for %s by udhcpc-handler\n", data.Interface)

	written := false

	if data.Domain != "" {
		if _, ok := dns.IsDomainName(data.Domain); ok {
			fmt.Fprintf(&buf, "search %s\n", data.Domain)

			written = true
		} else {
			slog.Warn("Ignoring invalid search domain",
				slog.String("domain", data.Domain))
		}
	}

	for _, server := range data.DNS {
		fmt.Fprintf(&buf, "nameserver %s\n", server)

		written = true
	}

	return buf.Bytes(), written
}
