// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package netconf

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/aibor/realminit/internal/lease"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// maxDefaultRouteRemovals bounds the removal loop in case the kernel keeps
// reporting success.
const maxDefaultRouteRemovals = 64

// Configurator applies lease events to the kernel network configuration.
type Configurator struct {
	mu       sync.Mutex
	netlink  Netlink
	resolver Resolver
	lockFile string
}

// Option configures a [Configurator].
type Option func(*Configurator)

// WithResolver sets the [Resolver] policy applied on bound and renew events.
// The default is [NopResolver].
func WithResolver(resolver Resolver) Option {
	return func(c *Configurator) {
		c.resolver = resolver
	}
}

// WithLockFile makes the [Configurator] hold an exclusive flock(2) on the
// given file while applying an event. The file and its directory are created
// if missing.
func WithLockFile(path string) Option {
	return func(c *Configurator) {
		c.lockFile = path
	}
}

// New creates a new [Configurator] using the given [Netlink].
func New(nl Netlink, opts ...Option) *Configurator {
	c := &Configurator{
		netlink:  nl,
		resolver: NopResolver{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Apply applies the given event with its lease data.
//
// On [lease.Deconfig] all IPv4 addresses are removed from the interface.
// Routes and resolver configuration stay untouched.
//
// On [lease.Bound] and [lease.Renew] the leased address replaces any other
// IPv4 address. If the lease has routers, all default routes through the
// interface are removed and one default route per router is added, with
// metrics ascending from 0 in the order given. Finally the [Resolver] policy
// is applied. A failing step does not prevent the following ones, all errors
// are returned joined.
//
// Other events are ignored.
func (c *Configurator) Apply(event lease.Event, data lease.Lease) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if event != lease.Deconfig && !event.CarriesLease() {
		slog.Debug("Ignoring event", slog.String("event", string(event)))
		return nil
	}

	if data.Interface == "" {
		return ErrNoInterface
	}

	unlock, err := lockFile(c.lockFile)
	if err != nil {
		slog.Warn("Applying event without lock",
			slog.String("lock_file", c.lockFile),
			slog.Any("error", err),
		)
	} else {
		defer unlock()
	}

	link, err := c.netlink.LinkByName(data.Interface)
	if err != nil {
		return fmt.Errorf("link %s: %w", data.Interface, err)
	}

	if event == lease.Deconfig {
		return c.removeAddrs(link, nil)
	}

	return c.configure(link, data)
}

func (c *Configurator) configure(link netlink.Link, data lease.Lease) error {
	var errs []error

	if err := c.assignAddr(link, data); err != nil {
		errs = append(errs, err)
	}

	if len(data.Routers) > 0 {
		if err := c.replaceDefaultRoutes(link, data.Routers); err != nil {
			errs = append(errs, err)
		}
	}

	if err := c.resolver.Apply(data); err != nil {
		errs = append(errs, fmt.Errorf("resolver: %w", err))
	}

	return errors.Join(errs...)
}

func (c *Configurator) assignAddr(link netlink.Link, data lease.Lease) error {
	if data.IP == nil {
		return ErrNoAddress
	}

	addr := &netlink.Addr{
		IPNet: &net.IPNet{
			IP:   data.IP,
			Mask: data.Mask(),
		},
		// If nil, netlink computes the broadcast from the mask.
		Broadcast: data.Broadcast,
	}

	if err := c.netlink.AddrReplace(link, addr); err != nil {
		return fmt.Errorf("assign %s: %w", addr.IPNet, err)
	}

	slog.Info("Address assigned",
		slog.String("interface", link.Attrs().Name),
		slog.String("address", addr.IPNet.String()),
	)

	return c.removeAddrs(link, addr)
}

// removeAddrs removes all IPv4 addresses of the link except keep, if given.
func (c *Configurator) removeAddrs(link netlink.Link, keep *netlink.Addr) error {
	addrs, err := c.netlink.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return fmt.Errorf("list addresses: %w", err)
	}

	for _, addr := range addrs {
		if keep != nil && sameAddr(addr, *keep) {
			continue
		}

		err := c.netlink.AddrDel(link, &addr)
		if err != nil && !errors.Is(err, unix.EADDRNOTAVAIL) {
			return fmt.Errorf("remove %s: %w", addr.IPNet, err)
		}

		slog.Info("Address removed",
			slog.String("interface", link.Attrs().Name),
			slog.String("address", addr.IPNet.String()),
		)
	}

	return nil
}

func (c *Configurator) replaceDefaultRoutes(link netlink.Link, routers []net.IP) error {
	index := link.Attrs().Index

	removed := 0

	for ; removed < maxDefaultRouteRemovals; removed++ {
		err := c.netlink.RouteDel(&netlink.Route{
			LinkIndex: index,
			Dst:       defaultDst(),
		})
		if errors.Is(err, unix.ESRCH) {
			break
		}

		if err != nil {
			return fmt.Errorf("remove default route: %w", err)
		}
	}

	if removed == maxDefaultRouteRemovals {
		slog.Warn("Default routes left after removal limit",
			slog.Int("limit", maxDefaultRouteRemovals))
	}

	var errs []error

	for metric, router := range routers {
		route := &netlink.Route{
			LinkIndex: index,
			Dst:       defaultDst(),
			Gw:        router,
			Priority:  metric,
		}

		if err := c.netlink.RouteAdd(route); err != nil {
			errs = append(errs, fmt.Errorf("add default route via %s: %w", router, err))
			continue
		}

		slog.Info("Default route added",
			slog.String("interface", link.Attrs().Name),
			slog.String("gateway", router.String()),
			slog.Int("metric", metric),
		)
	}

	return errors.Join(errs...)
}

func defaultDst() *net.IPNet {
	return &net.IPNet{
		IP:   net.IPv4zero.To4(),
		Mask: net.CIDRMask(0, 8*net.IPv4len),
	}
}

func sameAddr(a, b netlink.Addr) bool {
	if a.IPNet == nil || b.IPNet == nil {
		return false
	}

	aOnes, _ := a.Mask.Size()
	bOnes, _ := b.Mask.Size()

	return a.IP.Equal(b.IP) && aOnes == bOnes
}

func lockFile(path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("lock dir: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock: %w", err)
	}

	fd := int(file.Fd())

	if err := unix.Flock(fd, unix.LOCK_EX); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("flock: %w", err)
	}

	return func() {
		_ = unix.Flock(fd, unix.LOCK_UN)
		_ = file.Close()
	}, nil
}
