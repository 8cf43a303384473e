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

// Package gpu probes the graphics hardware a game will render on.
// GPUs are enumerated from /sys/class/drm so no lspci call is needed;
// lspci is only used for human-readable adapter descriptions.
package gpu

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

const drmPath = "/sys/class/drm"

// cardPattern matches DRM card entries ("card0"), not their connectors
// ("card0-HDMI-A-1").
var cardPattern = regexp.MustCompile(`^card\d+$`)

// Info describes one GPU from its DRM uevent.
type Info struct {
	PCIID       string
	PCISubsysID string
	Driver      string
}

// Cards returns the GPUs present on the system, keyed by DRM card name.
func Cards() map[string]Info {
	return cardsIn(drmPath)
}

func cardsIn(dir string) map[string]Info {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn().Err(err).Str("path", dir).Msg("cannot enumerate DRM devices")
		return nil
	}

	cards := make(map[string]Info)
	for _, entry := range entries {
		name := entry.Name()
		if !cardPattern.MatchString(name) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name, "device", "uevent"))
		if err != nil {
			log.Error().Err(err).Str("card", name).
				Msg("unable to get GPU information")
			continue
		}
		info := parseUevent(data)
		if info.PCIID == "" && info.Driver == "" {
			log.Error().Str("card", name).Msg("unable to get GPU information")
			continue
		}
		log.Info().Msgf("GPU: %s %s (%s drivers)",
			info.PCIID, info.PCISubsysID, info.Driver)
		cards[name] = info
	}
	return cards
}

// parseUevent extracts the PCI identifiers and kernel driver from a DRM
// device uevent file.
func parseUevent(data []byte) Info {
	var info Info
	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch key {
		case "PCI_ID":
			info.PCIID = value
		case "PCI_SUBSYS_ID":
			info.PCISubsysID = value
		case "DRIVER":
			info.Driver = value
		}
	}
	return info
}

// MultiGPU reports whether more than one GPU is present, which decides
// whether games get launched with PRIME render offload.
func MultiGPU() bool {
	return len(Cards()) > 1
}
