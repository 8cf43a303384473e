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

// Package display detects connected monitors and switches resolutions.
//
// Three display managers are supported, tried in order of capability:
// Mutter's DisplayConfig DBus API (the only one that works on Wayland),
// the native X RandR protocol, and the xrandr command line tool.
package display

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Mode is a display mode.
type Mode struct {
	Width   int
	Height  int
	Refresh float64
}

func (m Mode) String() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// Output is a connected display output.
type Output struct {
	Name    string
	Mode    Mode
	X       int
	Y       int
	Primary bool
}

// Manager reads and changes the display configuration.
type Manager interface {
	// Outputs lists connected display outputs.
	Outputs(ctx context.Context) ([]Output, error)

	// Resolutions lists available resolutions as "WxH" strings, widest
	// first, de-duplicated across outputs.
	Resolutions(ctx context.Context) ([]string, error)

	// CurrentResolution reports the resolution of the primary output.
	CurrentResolution(ctx context.Context) (width, height int, err error)

	// SetResolution switches the primary output to the given resolution.
	SetResolution(ctx context.Context, width, height int) error
}

// ParseResolution parses a "WxH" string.
func ParseResolution(s string) (width, height int, err error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid resolution %q", s)
	}
	width, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resolution %q", s)
	}
	height, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resolution %q", s)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid resolution %q", s)
	}
	return width, height, nil
}

// sortResolutions de-duplicates and orders "WxH" strings widest first,
// the order resolution pickers present them in.
func sortResolutions(resolutions []string) []string {
	seen := make(map[string]bool, len(resolutions))
	unique := make([]string, 0, len(resolutions))
	for _, res := range resolutions {
		if !seen[res] {
			seen[res] = true
			unique = append(unique, res)
		}
	}
	sort.SliceStable(unique, func(i, j int) bool {
		wi, hi, erri := ParseResolution(unique[i])
		wj, hj, errj := ParseResolution(unique[j])
		if erri != nil || errj != nil {
			return erri == nil
		}
		if wi != wj {
			return wi > wj
		}
		return hi > hj
	})
	return unique
}
