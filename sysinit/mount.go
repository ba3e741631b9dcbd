// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// FSType is a file system type.
type FSType string

// Special file system types.
const (
	FSTypeDevPts FSType = "devpts"
	FSTypeDevTmp FSType = "devtmpfs"
	FSTypeProc   FSType = "proc"
	FSTypeSys    FSType = "sysfs"
	FSTypeTmp    FSType = "tmpfs"

	defaultDirMode = 0o755
)

// EssentialMountPoints returns the pseudo file systems every boot needs:
// process information, kernel and device metadata and device nodes.
func EssentialMountPoints() MountPoints {
	return MountPoints{
		"/dev":  {FSType: FSTypeDevTmp},
		"/proc": {FSType: FSTypeProc},
		"/sys":  {FSType: FSTypeSys},
	}
}

// OptionalMountPoints returns file systems that are nice to have: pseudo
// terminals for interactive shells and a scratch /run for lock files. Their
// failure does not abort the boot.
func OptionalMountPoints() MountPoints {
	return MountPoints{
		"/dev/pts": {FSType: FSTypeDevPts, MayFail: true},
		"/run":     {FSType: FSTypeTmp, Data: "mode=0755", MayFail: true},
	}
}

// MountOptions contains parameters for a mount point.
type MountOptions struct {
	// FSType is the file system type. It must be set to an available [FSType].
	FSType FSType

	// Source is the source device to mount. If empty it is set to the string
	// of the type, which is what the pseudo file systems expect.
	Source string

	// Flags are optional mount flags as defined by mount(2).
	Flags MountFlags

	// Data are optional additional parameters that depend on the [FSType].
	Data string

	// MayFail determines if the mount operation may fail. If set to true, a
	// mount error does not fail a [MountAll] operation.
	MayFail bool
}

// MountPoints is a collection of mount points by path.
type MountPoints map[string]MountOptions

// Mount mounts the file system described by opts at the given path.
//
// If path does not exist, it is created. An existing directory is reused. An
// error is returned if creating the directory or the mount syscall fails.
func Mount(path string, opts MountOptions) error {
	err := os.MkdirAll(path, defaultDirMode)
	if err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}

	return mount(path, opts.Source, string(opts.FSType), opts.Flags, opts.Data)
}

// MountAll mounts the given set of file systems.
//
// The mounts are executed in lexicographic order of the paths, so parents are
// mounted before their children. If only optional mount points failed, it
// returns an [OptionalMountError] with all errors.
func MountAll(mountPoints MountPoints) error {
	var optionalErrs OptionalMountError

	for path, opts := range sortedMap(mountPoints) {
		if err := Mount(path, opts); err != nil {
			if !opts.MayFail {
				return err
			}

			optionalErrs = append(optionalErrs, err)
		}
	}

	if optionalErrs != nil {
		return optionalErrs
	}

	return nil
}

// WithMountPoints returns a setup [Func] that wraps [MountAll] and can be used
// with [Run].
//
// Failing optional mounts are logged. Any other failure aborts the boot.
func WithMountPoints(mountPoints MountPoints) Func {
	return func(_ *State) error {
		err := MountAll(mountPoints)

		var optionalErrs OptionalMountError
		if errors.As(err, &optionalErrs) {
			for _, err := range optionalErrs {
				slog.Info("Optional mount failed", slog.Any("error", err))
			}

			return nil
		}

		return err
	}
}
