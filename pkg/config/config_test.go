// Quiver
// Copyright (c) 2026 The Quiver Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Quiver.
//
// Quiver is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Quiver is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Quiver.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("creates_default_config_when_missing", func(t *testing.T) {
		tmpDir := t.TempDir()

		cfg, err := NewConfig(tmpDir, BaseDefaults())
		require.NoError(t, err)

		assert.FileExists(t, filepath.Join(tmpDir, CfgFile))
		w, h := cfg.FallbackResolution()
		assert.Equal(t, DefaultResolutionWidth, w)
		assert.Equal(t, DefaultResolutionHeight, h)
		assert.Equal(t, "Quiver", cfg.InhibitAppName())
		assert.True(t, cfg.DisableCompositing())
	})

	t.Run("loads_existing_config", func(t *testing.T) {
		tmpDir := t.TempDir()
		content := `
config_schema = 1
debug_logging = false

[display]
fallback_width = 2560
fallback_height = 1440

[session]
inhibit_app_name = "MyLauncher"
disable_compositing = false
`
		err := os.WriteFile(filepath.Join(tmpDir, CfgFile), []byte(content), 0o600)
		require.NoError(t, err)

		cfg, err := NewConfig(tmpDir, BaseDefaults())
		require.NoError(t, err)

		w, h := cfg.FallbackResolution()
		assert.Equal(t, 2560, w)
		assert.Equal(t, 1440, h)
		assert.Equal(t, "MyLauncher", cfg.InhibitAppName())
		assert.False(t, cfg.DisableCompositing())
	})

	t.Run("rejects_malformed_config", func(t *testing.T) {
		tmpDir := t.TempDir()
		err := os.WriteFile(filepath.Join(tmpDir, CfgFile), []byte("not [valid{ toml"), 0o600)
		require.NoError(t, err)

		_, err = NewConfig(tmpDir, BaseDefaults())
		require.Error(t, err)
	})
}

func TestInstance_SaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := NewConfig(tmpDir, BaseDefaults())
	require.NoError(t, err)

	cfg.SetDebugLogging(true)
	require.NoError(t, cfg.Save())

	reloaded, err := NewConfig(tmpDir, BaseDefaults())
	require.NoError(t, err)
	assert.True(t, reloaded.DebugLogging())
}

func TestInstance_FallbackResolutionGuardsZero(t *testing.T) {
	cfg := Instance{vals: Values{}}

	w, h := cfg.FallbackResolution()

	assert.Equal(t, DefaultResolutionWidth, w)
	assert.Equal(t, DefaultResolutionHeight, h)
}
