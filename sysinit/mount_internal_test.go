// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalMountPoints(t *testing.T) {
	mountPoints := OptionalMountPoints()

	assert.Equal(t, FSTypeDevPts, mountPoints["/dev/pts"].FSType)
	assert.Equal(t, FSTypeTmp, mountPoints["/run"].FSType)

	for path, opts := range mountPoints {
		assert.True(t, opts.MayFail, path)
	}

	for path := range EssentialMountPoints() {
		assert.NotContains(t, mountPoints, path)
	}
}

func TestWithMountPoints_OptionalFailure(t *testing.T) {
	logOut := captureLog(t)

	path := filepath.Join(t.TempDir(), "pts")

	err := WithMountPoints(MountPoints{
		path: {FSType: "nonexistingfs", MayFail: true},
	})(new(State))
	require.NoError(t, err, "optional mounts must not abort the boot")

	assert.Contains(t, logOut.String(), "Optional mount failed")
	assert.DirExists(t, path)
}

func TestMountAll_RequiredFailure(t *testing.T) {
	dir := t.TempDir()

	err := MountAll(MountPoints{
		filepath.Join(dir, "a"): {FSType: "nonexistingfs", MayFail: true},
		filepath.Join(dir, "b"): {FSType: "nonexistingfs"},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, OptionalMountError{})
}
