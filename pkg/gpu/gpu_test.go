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

package gpu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCard(t *testing.T, dir, name, uevent string) {
	t.Helper()
	deviceDir := filepath.Join(dir, name, "device")
	require.NoError(t, os.MkdirAll(deviceDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(deviceDir, "uevent"), []byte(uevent), 0o600))
}

func TestParseUevent(t *testing.T) {
	t.Parallel()

	info := parseUevent([]byte(`DRIVER=amdgpu
PCI_CLASS=38000
PCI_ID=1002:164E
PCI_SUBSYS_ID=1462:7D78
PCI_SLOT_NAME=0000:10:00.0
MODALIAS=pci:v00001002d0000164Esv00001462sd00007D78bc03sc80i00
`))

	assert.Equal(t, "1002:164E", info.PCIID)
	assert.Equal(t, "1462:7D78", info.PCISubsysID)
	assert.Equal(t, "amdgpu", info.Driver)
}

func TestCardsIn(t *testing.T) {
	t.Parallel()

	t.Run("enumerates_cards_and_skips_connectors", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeCard(t, dir, "card0", "DRIVER=i915\nPCI_ID=8086:46A6\nPCI_SUBSYS_ID=1028:0B10\n")
		writeCard(t, dir, "card1", "DRIVER=nvidia\nPCI_ID=10DE:25A0\nPCI_SUBSYS_ID=1028:0B10\n")
		// Connector entries must not be treated as GPUs.
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "card0-HDMI-A-1"), 0o750))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "renderD128"), 0o750))

		cards := cardsIn(dir)

		require.Len(t, cards, 2)
		assert.Equal(t, "i915", cards["card0"].Driver)
		assert.Equal(t, "10DE:25A0", cards["card1"].PCIID)
	})

	t.Run("skips_card_without_uevent", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeCard(t, dir, "card0", "DRIVER=i915\nPCI_ID=8086:46A6\n")
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "card1", "device"), 0o750))

		cards := cardsIn(dir)

		require.Len(t, cards, 1)
		assert.Contains(t, cards, "card0")
	})

	t.Run("missing_directory_degrades_to_empty", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, cardsIn(filepath.Join(t.TempDir(), "nope")))
	})
}
