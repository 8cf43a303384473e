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
	"context"
	"strings"
	"time"

	"github.com/QuiverProject/quiver-core/pkg/helpers/command"
	"github.com/rs/zerolog/log"
)

// lspciTimeout bounds the listing call; lspci can hang on broken buses.
const lspciTimeout = 3 * time.Second

// displaySubclasses are the PCI device subclasses that render to a screen.
var displaySubclasses = []string{
	"VGA",
	"XGA",
	"3D controller",
	"Display controller",
}

// Adapter is a display controller as listed by lspci.
type Adapter struct {
	Slot        string
	Description string
}

// Adapters lists the graphics adapters on the PCI bus. A missing lspci
// binary degrades to an empty list.
func Adapters(ctx context.Context, cmd command.Executor) []Adapter {
	ctx, cancel := context.WithTimeout(ctx, lspciTimeout)
	defer cancel()

	out, err := cmd.Output(ctx, "lspci")
	if err != nil {
		log.Warn().Err(err).
			Msg("lspci is not available, list of graphics cards not available")
		return nil
	}
	return parseAdapters(out)
}

func parseAdapters(out []byte) []Adapter {
	var adapters []Adapter
	for _, line := range strings.Split(string(out), "\n") {
		if !isDisplayLine(line) {
			continue
		}
		slot, rest, found := strings.Cut(line, " ")
		if !found {
			continue
		}
		_, desc, found := strings.Cut(rest, ": ")
		if !found {
			continue
		}
		adapters = append(adapters, Adapter{Slot: slot, Description: desc})
	}
	return adapters
}

func isDisplayLine(line string) bool {
	for _, subclass := range displaySubclasses {
		if strings.Contains(line, subclass) {
			return true
		}
	}
	return false
}

// HasAdapterDescription reports whether any graphics adapter's
// description contains the given text, e.g. "NVIDIA".
func HasAdapterDescription(ctx context.Context, cmd command.Executor, match string) bool {
	for _, adapter := range Adapters(ctx, cmd) {
		if strings.Contains(adapter.Description, match) {
			return true
		}
	}
	return false
}
