// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package udhcpc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aibor/realminit/internal/netconf"
	"github.com/go-viper/mapstructure/v2"
)

// Environment variables the init passes to the hook through the DHCP client.
const (
	EnvLockFile   = "REALM_NETCONF_LOCK"
	EnvResolvConf = "REALM_RESOLV_CONF"
	EnvLogLevel   = "REALM_LOG_LEVEL"
)

// Settings configure the hook. They are read from the environment.
type Settings struct {
	// LockFile serializes concurrent hook invocations. Empty disables it.
	LockFile string `mapstructure:"REALM_NETCONF_LOCK"`

	// ResolvConf is rewritten on new leases. Empty leaves the resolver
	// configuration alone.
	ResolvConf string `mapstructure:"REALM_RESOLV_CONF"`

	// LogLevel is the verbosity of the hook.
	LogLevel string `mapstructure:"REALM_LOG_LEVEL"`
}

// SettingsFromEnviron reads the [Settings] from environment entries in
// "key=value" form. Unrelated entries are ignored.
func SettingsFromEnviron(environ []string) (Settings, error) {
	var settings Settings

	vars := make(map[string]string, len(environ))

	for _, entry := range environ {
		key, value, found := strings.Cut(entry, "=")
		if found {
			vars[key] = value
		}
	}

	if err := mapstructure.Decode(vars, &settings); err != nil {
		return settings, fmt.Errorf("decode settings: %w", err)
	}

	return settings, nil
}

// Environ returns the settings as sorted environment entries. Empty
// settings are left out.
func (s Settings) Environ() []string {
	environ := []string{}

	for key, value := range map[string]string{
		EnvLockFile:   s.LockFile,
		EnvResolvConf: s.ResolvConf,
		EnvLogLevel:   s.LogLevel,
	} {
		if value != "" {
			environ = append(environ, key+"="+value)
		}
	}

	slices.Sort(environ)

	return environ
}

// Options returns the [netconf.Option]s for the settings.
func (s Settings) Options() []netconf.Option {
	opts := []netconf.Option{}

	if s.LockFile != "" {
		opts = append(opts, netconf.WithLockFile(s.LockFile))
	}

	if s.ResolvConf != "" {
		opts = append(opts, netconf.WithResolver(netconf.ResolvConf{
			Path: s.ResolvConf,
		}))
	}

	return opts
}
