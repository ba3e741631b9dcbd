// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package netconf_test

import (
	"errors"
	"net"
	"slices"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

var errLinkNotFound = errors.New("link not found")

// fakeNetlink keeps addresses and routes in memory and mimics the kernel's
// answers for the operations the configurator uses.
type fakeNetlink struct {
	links  map[string]netlink.Link
	addrs  map[int][]netlink.Addr
	routes []netlink.Route

	addrReplaceErr error
	routeDelErr    error
	routeDelCalls  int
}

func newFakeNetlink(names ...string) *fakeNetlink {
	fake := &fakeNetlink{
		links: map[string]netlink.Link{},
		addrs: map[int][]netlink.Addr{},
	}

	for idx, name := range names {
		attrs := netlink.NewLinkAttrs()
		attrs.Name = name
		attrs.Index = idx + 2

		fake.links[name] = &netlink.Dummy{LinkAttrs: attrs}
	}

	return fake
}

func (f *fakeNetlink) LinkByName(name string) (netlink.Link, error) {
	link, ok := f.links[name]
	if !ok {
		return nil, errLinkNotFound
	}

	return link, nil
}

func (f *fakeNetlink) AddrList(link netlink.Link, _ int) ([]netlink.Addr, error) {
	return slices.Clone(f.addrs[link.Attrs().Index]), nil
}

func (f *fakeNetlink) AddrReplace(link netlink.Link, addr *netlink.Addr) error {
	if f.addrReplaceErr != nil {
		return f.addrReplaceErr
	}

	index := link.Attrs().Index

	for idx, existing := range f.addrs[index] {
		if existing.IP.Equal(addr.IP) {
			f.addrs[index][idx] = *addr
			return nil
		}
	}

	f.addrs[index] = append(f.addrs[index], *addr)

	return nil
}

func (f *fakeNetlink) AddrDel(link netlink.Link, addr *netlink.Addr) error {
	index := link.Attrs().Index

	for idx, existing := range f.addrs[index] {
		if existing.IP.Equal(addr.IP) {
			f.addrs[index] = slices.Delete(f.addrs[index], idx, idx+1)
			return nil
		}
	}

	return unix.EADDRNOTAVAIL
}

func (f *fakeNetlink) RouteAdd(route *netlink.Route) error {
	for _, existing := range f.routes {
		if existing.LinkIndex == route.LinkIndex &&
			existing.Gw.Equal(route.Gw) &&
			existing.Priority == route.Priority {
			return unix.EEXIST
		}
	}

	f.routes = append(f.routes, *route)

	return nil
}

func (f *fakeNetlink) RouteDel(route *netlink.Route) error {
	f.routeDelCalls++

	if f.routeDelErr != nil {
		return f.routeDelErr
	}

	for idx, existing := range f.routes {
		if existing.LinkIndex == route.LinkIndex && isDefault(existing.Dst) {
			f.routes = slices.Delete(f.routes, idx, idx+1)
			return nil
		}
	}

	return unix.ESRCH
}

func (f *fakeNetlink) linkIndex(name string) int {
	return f.links[name].Attrs().Index
}

// defaultRoutes returns the metrics of all default routes via the named link
// by gateway.
func (f *fakeNetlink) defaultRoutes(name string) map[string]int {
	routes := map[string]int{}

	for _, route := range f.routes {
		if route.LinkIndex == f.linkIndex(name) && isDefault(route.Dst) {
			routes[route.Gw.String()] = route.Priority
		}
	}

	return routes
}

func (f *fakeNetlink) defaultRouteCount(name string) int {
	count := 0

	for _, route := range f.routes {
		if route.LinkIndex == f.linkIndex(name) && isDefault(route.Dst) {
			count++
		}
	}

	return count
}

func (f *fakeNetlink) addresses(name string) []string {
	addrs := []string{}
	for _, addr := range f.addrs[f.linkIndex(name)] {
		addrs = append(addrs, addr.IPNet.String())
	}

	return addrs
}

// alwaysSucceedingRouteDel never runs out of routes to delete.
type alwaysSucceedingRouteDel struct {
	*fakeNetlink
}

func (f alwaysSucceedingRouteDel) RouteDel(_ *netlink.Route) error {
	f.routeDelCalls++
	return nil
}

func isDefault(dst *net.IPNet) bool {
	if dst == nil {
		return true
	}

	ones, _ := dst.Mask.Size()

	return ones == 0 && dst.IP.IsUnspecified()
}
