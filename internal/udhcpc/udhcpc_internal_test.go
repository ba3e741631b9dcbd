// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package udhcpc

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aibor/realminit/internal/netconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// recordingNetlink knows a single link "eth0" with index 2.
type recordingNetlink struct {
	addrs  []netlink.Addr
	routes []netlink.Route
	closed bool
}

func (r *recordingNetlink) LinkByName(name string) (netlink.Link, error) {
	if name != "eth0" {
		return nil, errors.New("link not found")
	}

	attrs := netlink.NewLinkAttrs()
	attrs.Name = name
	attrs.Index = 2

	return &netlink.Dummy{LinkAttrs: attrs}, nil
}

func (r *recordingNetlink) AddrList(netlink.Link, int) ([]netlink.Addr, error) {
	return append([]netlink.Addr{}, r.addrs...), nil
}

func (r *recordingNetlink) AddrReplace(_ netlink.Link, addr *netlink.Addr) error {
	r.addrs = append(r.addrs, *addr)
	return nil
}

func (r *recordingNetlink) AddrDel(_ netlink.Link, addr *netlink.Addr) error {
	for idx, existing := range r.addrs {
		if existing.IP.Equal(addr.IP) {
			r.addrs = append(r.addrs[:idx], r.addrs[idx+1:]...)
			return nil
		}
	}

	return unix.EADDRNOTAVAIL
}

func (r *recordingNetlink) RouteAdd(route *netlink.Route) error {
	r.routes = append(r.routes, *route)
	return nil
}

func (r *recordingNetlink) RouteDel(*netlink.Route) error {
	if len(r.routes) == 0 {
		return unix.ESRCH
	}

	r.routes = r.routes[1:]

	return nil
}

func (r *recordingNetlink) open() openNetlinkFunc {
	return func() (netconf.Netlink, func(), error) {
		return r, func() { r.closed = true }, nil
	}
}

func failingOpen(t *testing.T) openNetlinkFunc {
	t.Helper()

	return func() (netconf.Netlink, func(), error) {
		t.Error("netlink must not be opened")
		return nil, nil, assert.AnError
	}
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "no args",
		},
		{
			name: "no event",
			args: []string{"/sbin/udhcpc-handler"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer

			exitCode := run(tt.args, nil, &stderr, failingOpen(t))

			assert.Equal(t, 1, exitCode)
			assert.Contains(t, stderr.String(), "Usage: udhcpc-handler")
		})
	}
}

func TestRun_TrailingArgsIgnored(t *testing.T) {
	var (
		stderr bytes.Buffer
		nl     recordingNetlink
	)

	environ := []string{"interface=eth0", "ip=10.0.2.15"}

	exitCode := run([]string{"udhcpc-handler", "bound", "extra"}, environ, &stderr, nl.open())

	assert.Equal(t, 0, exitCode)
	require.Len(t, nl.addrs, 1)
	assert.Equal(t, "10.0.2.15/8", nl.addrs[0].IPNet.String())
}

func TestRun_NotApplied(t *testing.T) {
	for _, event := range []string{"leasefail", "nak", "unknown", ""} {
		t.Run(event, func(t *testing.T) {
			var stderr bytes.Buffer

			exitCode := run([]string{"udhcpc-handler", event}, nil, &stderr, failingOpen(t))

			assert.Equal(t, 0, exitCode)
		})
	}
}

func TestRun_Bound(t *testing.T) {
	var (
		stderr bytes.Buffer
		nl     recordingNetlink
	)

	environ := []string{
		"interface=eth0",
		"ip=10.0.2.15",
		"subnet=255.255.255.0",
		"router=10.0.2.2 10.0.2.3",
		"dns=10.0.2.3",
		"REALM_LOG_LEVEL=debug",
	}

	exitCode := run([]string{"udhcpc-handler", "bound"}, environ, &stderr, nl.open())

	assert.Equal(t, 0, exitCode)
	assert.True(t, nl.closed)

	require.Len(t, nl.addrs, 1)
	assert.Equal(t, "10.0.2.15/24", nl.addrs[0].IPNet.String())

	require.Len(t, nl.routes, 2)
	assert.Equal(t, "10.0.2.2", nl.routes[0].Gw.String())
	assert.Equal(t, 0, nl.routes[0].Priority)
	assert.Equal(t, "10.0.2.3", nl.routes[1].Gw.String())
	assert.Equal(t, 1, nl.routes[1].Priority)

	assert.Contains(t, stderr.String(), "Event applied")
}

func TestRun_Deconfig(t *testing.T) {
	var (
		stderr bytes.Buffer
		nl     recordingNetlink
	)

	environ := []string{"interface=eth0", "ip=10.0.2.15"}

	require.Equal(t, 0, run([]string{"udhcpc-handler", "bound"}, environ, &stderr, nl.open()))
	require.Equal(t, 0, run([]string{"udhcpc-handler", "deconfig"}, []string{"interface=eth0"}, &stderr, nl.open()))

	assert.Empty(t, nl.addrs)
}

func TestRun_ApplyErrorExitsZero(t *testing.T) {
	var (
		stderr bytes.Buffer
		nl     recordingNetlink
	)

	exitCode := run([]string{"udhcpc-handler", "renew"}, []string{"interface=eth9"}, &stderr, nl.open())

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stderr.String(), "Event not applied completely")
}

func TestRun_NetlinkErrorExitsZero(t *testing.T) {
	var stderr bytes.Buffer

	open := func() (netconf.Netlink, func(), error) {
		return nil, nil, assert.AnError
	}

	exitCode := run([]string{"udhcpc-handler", "deconfig"}, []string{"interface=eth0"}, &stderr, open)

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stderr.String(), "Netlink not available")
}

func TestRun_ResolvConf(t *testing.T) {
	var (
		stderr bytes.Buffer
		nl     recordingNetlink
	)

	dir := t.TempDir()
	resolvConf := filepath.Join(dir, "resolv.conf")

	environ := []string{
		"interface=eth0",
		"ip=10.0.2.15",
		"dns=10.0.2.3",
		"domain=realm.internal",
		"REALM_RESOLV_CONF=" + resolvConf,
		"REALM_NETCONF_LOCK=" + filepath.Join(dir, "netconf.lock"),
	}

	require.Equal(t, 0, run([]string{"udhcpc-handler", "bound"}, environ, &stderr, nl.open()))

	content, err := os.ReadFile(resolvConf)
	require.NoError(t, err)
	assert.Contains(t, string(content), "search realm.internal\n")
	assert.Contains(t, string(content), "nameserver 10.0.2.3\n")
	assert.FileExists(t, filepath.Join(dir, "netconf.lock"))
}

func TestRun_InvalidLogLevel(t *testing.T) {
	var stderr bytes.Buffer

	exitCode := run(
		[]string{"udhcpc-handler", "leasefail"},
		[]string{"REALM_LOG_LEVEL=loud"},
		&stderr,
		failingOpen(t),
	)

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stderr.String(), "Using default settings")
}
