// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config defines the init configuration and its defaults. A YAML file
// in the initramfs may override any of the defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the init looks for its configuration file.
const DefaultPath = "/etc/realminit.yaml"

// Target tokens recognized on the kernel command line.
const (
	TokenAppManager = "app-manager"
	TokenShell      = "shell"
)

var (
	// ErrInvalidConfig is returned if a config does not pass validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidLogLevel is returned for unknown log level names.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Toolbox is the multi-call binary providing the basic utilities.
type Toolbox struct {
	Path string `yaml:"path"`
	Dir  string `yaml:"dir"`
}

// DHCP configures the DHCP client and the lifecycle handler it calls.
type DHCP struct {
	// Client is the DHCP client executable. It is looked up in PATH.
	Client string `yaml:"client"`

	// Args are passed to the client in addition to the interface and
	// handler arguments.
	Args []string `yaml:"args"`

	// Handler is the executable the client calls on every lease event.
	Handler string `yaml:"handler"`

	// LockFile serializes handler invocations. Empty disables the lock.
	LockFile string `yaml:"lockFile"`

	// ResolvConf is the resolver file the handler rewrites on new leases.
	// Empty leaves the resolver configuration untouched.
	ResolvConf string `yaml:"resolvConf"`
}

// Console configures the console device handed to the target.
type Console struct {
	// Fallback is used if the kernel command line has no console= parameter
	// and no connected console is detected.
	Fallback string `yaml:"fallback"`

	// Var is the environment variable the console device is exported in.
	Var string `yaml:"var"`
}

// Config is the complete init configuration.
type Config struct {
	Toolbox   Toolbox `yaml:"toolbox"`
	Interface string  `yaml:"interface"`
	DHCP      DHCP    `yaml:"dhcp"`
	Console   Console `yaml:"console"`

	// Targets maps kernel command line tokens to executables. Names without
	// a slash are looked up in PATH, which starts with Toolbox.Dir.
	Targets map[string]string `yaml:"targets"`

	// DefaultTarget is run if no token of Targets is on the command line.
	DefaultTarget string `yaml:"defaultTarget"`

	// LogLevel is the verbosity of the init and the handler. It is exported
	// to the target in LogLevelVar.
	LogLevel    string `yaml:"logLevel"`
	LogLevelVar string `yaml:"logLevelVar"`

	// Env is added to the environment of all processes started by the init.
	Env map[string]string `yaml:"env"`
}

// Default returns the configuration used if there is no config file.
func Default() Config {
	return Config{
		Toolbox: Toolbox{
			Path: "/bin/busybox",
			Dir:  "/usr/bin",
		},
		Interface: "eth0",
		DHCP: DHCP{
			Client:   "udhcpc",
			Handler:  "/sbin/udhcpc-handler",
			LockFile: "/run/realminit/netconf.lock",
		},
		Console: Console{
			Fallback: "/dev/console",
			Var:      "CONSOLE",
		},
		Targets: map[string]string{
			TokenAppManager: "/usr/bin/app-manager",
			TokenShell:      "sh",
		},
		DefaultTarget: "/usr/bin/app-manager",
		LogLevel:      "info",
		LogLevelVar:   "LOG_LEVEL",
		Env:           map[string]string{},
	}
}

// Load reads the config file at the given path on top of [Default].
//
// A missing file is not an error, the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.Decode(bytes.NewReader(data)); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Decode overlays the YAML document read from r on the config and validates
// the result. Unknown fields are rejected.
func (c *Config) Decode(r io.Reader) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode: %w", err)
	}

	return c.Validate()
}

// Validate checks that all fields the boot relies on are set.
func (c *Config) Validate() error {
	required := map[string]string{
		"toolbox.path":  c.Toolbox.Path,
		"toolbox.dir":   c.Toolbox.Dir,
		"interface":     c.Interface,
		"dhcp.client":   c.DHCP.Client,
		"dhcp.handler":  c.DHCP.Handler,
		"console.var":   c.Console.Var,
		"defaultTarget": c.DefaultTarget,
		"logLevelVar":   c.LogLevelVar,
	}

	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, name)
		}
	}

	for token, path := range c.Targets {
		if token == "" || path == "" || strings.ContainsAny(token, " \t\n") {
			return fmt.Errorf("%w: target %q: %q", ErrInvalidConfig, token, path)
		}
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// ParseLogLevel parses a log level name, like "debug" or "WARN". An empty
// name is [slog.LevelInfo].
func ParseLogLevel(name string) (slog.Level, error) {
	if name == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, name)
	}

	return level, nil
}
