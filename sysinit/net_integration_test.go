// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build integration_sysinit

package sysinit_test

import (
	"net"
	"testing"

	"github.com/aibor/realminit/sysinit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetInterfaceUp(t *testing.T) {
	err := sysinit.SetInterfaceUp("lo")
	require.NoError(t, err)

	iface, err := net.InterfaceByName("lo")
	require.NoError(t, err, "must get interface")

	assert.NotZero(t, iface.Flags&net.FlagUp)
}

func TestSetInterfaceUp_Missing(t *testing.T) {
	err := sysinit.SetInterfaceUp("realm-missing0")
	require.Error(t, err)
}

func TestWithInterfaceUp_Missing(t *testing.T) {
	err := sysinit.WithInterfaceUp("realm-missing0")(new(sysinit.State))
	require.NoError(t, err, "interface failures must not abort the boot")
}
