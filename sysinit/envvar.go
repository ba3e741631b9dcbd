// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import "fmt"

// EnvVars is a map of environment variable values by name.
type EnvVars map[string]string

// SetEnv sets the given [EnvVars] in the environment of the init process.
// All processes started afterwards inherit them.
func SetEnv(envVars EnvVars) error {
	for key, value := range sortedMap(envVars) {
		err := setenv(key, value)
		if err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}

	return nil
}
