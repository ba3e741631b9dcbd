// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultConsole is the console device used if neither the kernel command
// line names one nor a connected console is detected.
const DefaultConsole = "/dev/console"

const serialConsoleInfoFile = "/proc/tty/driver/serial"

type console struct {
	path string
	port int
}

// ConsoleDevice returns the device path for the value of a console= kernel
// parameter, like "ttyAMA0" or "ttyS0,115200n8". Options after the first
// comma are dropped. It returns an empty string for an empty value.
func ConsoleDevice(param string) string {
	name, _, _ := strings.Cut(param, ",")
	if name == "" {
		return ""
	}

	if filepath.IsAbs(name) {
		return name
	}

	return "/dev/" + name
}

// ResolveConsole returns the console device to use for the target.
//
// The device named by the console= kernel parameter value takes precedence.
// Without it, the first connected virtio or serial console is used and the
// given fallback as last resort. An empty fallback is [DefaultConsole].
func ResolveConsole(param, fallback string) string {
	if device := ConsoleDevice(param); device != "" {
		return device
	}

	if device, ok := DetectConsole(); ok {
		return device
	}

	if fallback == "" {
		return DefaultConsole
	}

	return fallback
}

// DetectConsole returns the path of the first connected virtio or serial
// console, if any.
func DetectConsole() (string, bool) {
	consoles, err := connectedConsoles()
	if err != nil {
		slog.Debug("Console detection failed", slog.Any("error", err))
		return "", false
	}

	if len(consoles) == 0 {
		return "", false
	}

	return consoles[0].path, true
}

// connectedConsoles returns a slice of consoles that are detected as
// connected on the host.
//
// If virtio consoles are present (/dev/hvc*) then only those are used.
// Otherwise serial consoles (/dev/ttyS*) are used.
func connectedConsoles() ([]console, error) {
	consoles := virtConsolesConnected()
	if len(consoles) > 0 {
		return consoles, nil
	}

	serialInfo, err := os.ReadFile(serialConsoleInfoFile)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return serialConsolesConnectedFromBytes(serialInfo), nil
}

// virtConsolesConnected returns a slice of virtio consoles (/dev/hvc*) that
// are connected on the host.
func virtConsolesConnected() []console {
	consoles := []console{}

	for port := range 8 {
		path := consolePath("hvc", port)

		hvc, err := os.Open(path)
		if err != nil {
			// No hvc0 means there are no virtio consoles at all.
			if errors.Is(err, os.ErrNotExist) && len(consoles) == 0 {
				return nil
			}

			// virtio consoles that are not connected on the host return ENODEV.
			continue
		}

		_ = hvc.Close()

		consoles = append(consoles, console{
			path: path,
			port: port,
		})
	}

	return consoles
}

// serialConsolesConnectedFromBytes returns the serial consoles (/dev/ttyS*)
// listed as present in the given serial driver info.
//
// File layout:
//
//	serinfo:1.0 driver revision:
//	0: uart:16550A port:000003F8 irq:4 tx:126 rx:0 RTS|CTS|DTR|DSR|CD
//	1: uart:unknown port:000002F8 irq:3
func serialConsolesConnectedFromBytes(serialInfo []byte) []console {
	consoles := []console{}

	for line := range bytes.Lines(serialInfo) {
		if !bytes.Contains(line, []byte("uart")) ||
			bytes.Contains(line, []byte("uart:unknown")) {
			continue
		}

		portField, _, found := bytes.Cut(line, []byte(":"))
		if !found {
			continue
		}

		port, err := strconv.Atoi(string(bytes.TrimSpace(portField)))
		if err != nil {
			continue
		}

		consoles = append(consoles, console{
			path: consolePath("ttyS", port),
			port: port,
		})
	}

	return consoles
}

func consolePath(typ string, id int) string {
	return "/dev/" + typ + strconv.Itoa(id)
}
