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

package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResolution(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		w, h, err := ParseResolution("1920x1080")
		require.NoError(t, err)
		assert.Equal(t, 1920, w)
		assert.Equal(t, 1080, h)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		for _, s := range []string{"", "1920", "x1080", "1920x", "axb", "0x0", "-1x100"} {
			_, _, err := ParseResolution(s)
			assert.Error(t, err, "input %q", s)
		}
	})
}

func TestSortResolutions(t *testing.T) {
	t.Parallel()

	t.Run("orders_widest_first_and_dedupes", func(t *testing.T) {
		t.Parallel()

		got := sortResolutions([]string{
			"1280x720",
			"1920x1080",
			"1280x720",
			"3840x2160",
			"1280x1024",
			"1920x1080",
		})

		assert.Equal(t, []string{
			"3840x2160",
			"1920x1080",
			"1280x1024",
			"1280x720",
		}, got)
	})

	t.Run("empty_input", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, sortResolutions(nil))
	})
}

func TestModeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1920x1080", Mode{Width: 1920, Height: 1080, Refresh: 60}.String())
}
