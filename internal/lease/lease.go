// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package lease

import (
	"fmt"
	"net"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Lease is the lease data from the environment of a hook invocation.
//
// All fields are optional. Values that do not parse are left empty, the DHCP
// client is trusted and a broken field just means the feature is skipped.
type Lease struct {
	// Interface is the name of the interface the client manages.
	Interface string `mapstructure:"interface"`

	// IP is the leased address.
	IP net.IP `mapstructure:"ip"`

	// Subnet is the netmask in dotted quad notation.
	Subnet net.IPMask `mapstructure:"subnet"`

	// Broadcast is the broadcast address.
	Broadcast net.IP `mapstructure:"broadcast"`

	// Routers are the gateways in order of preference.
	Routers []net.IP `mapstructure:"router"`

	// DNS are the name servers in order of preference.
	DNS []net.IP `mapstructure:"dns"`

	// Domain is the search domain.
	Domain string `mapstructure:"domain"`
}

// FromEnviron decodes a [Lease] from environment entries in "key=value"
// form, like [os.Environ] returns them.
func FromEnviron(environ []string) (Lease, error) {
	vars := make(map[string]string, len(environ))

	for _, entry := range environ {
		key, value, found := strings.Cut(entry, "=")
		if !found {
			continue
		}

		vars[key] = value
	}

	return decode(vars)
}

func decode(vars map[string]string) (Lease, error) {
	var lease Lease

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToIPHook,
			stringToIPMaskHook,
			stringToIPListHook,
		),
		Result: &lease,
	})
	if err != nil {
		return lease, fmt.Errorf("lease decoder: %w", err)
	}

	if err := decoder.Decode(vars); err != nil {
		return lease, fmt.Errorf("decode lease: %w", err)
	}

	lease.Interface = strings.TrimSpace(lease.Interface)
	lease.Domain = strings.TrimSpace(lease.Domain)

	return lease, nil
}

// Mask returns the netmask of the lease. Without a usable subnet it is the
// classful default mask of the address, which is what the kernel would apply.
func (l Lease) Mask() net.IPMask {
	if len(l.Subnet) == net.IPv4len {
		return l.Subnet
	}

	if ip4 := l.IP.To4(); ip4 != nil {
		return ip4.DefaultMask()
	}

	return nil
}

var (
	ipType     = reflect.TypeOf(net.IP{})
	ipMaskType = reflect.TypeOf(net.IPMask{})
	ipListType = reflect.TypeOf([]net.IP{})
)

func parseIPv4(value string) net.IP {
	ip := net.ParseIP(strings.TrimSpace(value))
	if ip == nil {
		return nil
	}

	return ip.To4()
}

func stringToIPHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != ipType {
		return data, nil
	}

	return parseIPv4(data.(string)), nil //nolint:forcetypeassert
}

func stringToIPMaskHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != ipMaskType {
		return data, nil
	}

	ip := parseIPv4(data.(string)) //nolint:forcetypeassert
	if ip == nil {
		return net.IPMask(nil), nil
	}

	mask := net.IPMask(ip)
	if _, bits := mask.Size(); bits == 0 {
		// Not a canonical mask, like 255.0.255.0.
		return net.IPMask(nil), nil
	}

	return mask, nil
}

func stringToIPListHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != ipListType {
		return data, nil
	}

	ips := []net.IP{}

	for _, field := range strings.Fields(data.(string)) { //nolint:forcetypeassert
		if ip := parseIPv4(field); ip != nil {
			ips = append(ips, ip)
		}
	}

	return ips, nil
}
