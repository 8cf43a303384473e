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
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/QuiverProject/quiver-core/pkg/helpers/command"
)

// BaseDPI is the unscaled desktop DPI.
const BaseDPI = 96

// DefaultDPI computes the DPI of the primary monitor, which the launcher
// passes on to WINE. The desktop scale factor is read from GDK_SCALE,
// then from the X resource database; without either the base DPI is
// assumed.
func DefaultDPI(ctx context.Context, cmd command.Executor) int {
	if scale := os.Getenv("GDK_SCALE"); scale != "" {
		if n, err := strconv.Atoi(scale); err == nil && n > 0 {
			return BaseDPI * n
		}
	}

	out, err := cmd.Output(ctx, "xrdb", "-query")
	if err == nil {
		if dpi, ok := parseXftDPI(out); ok {
			return dpi
		}
	}

	return BaseDPI
}

// parseXftDPI extracts the Xft.dpi setting from `xrdb -query` output.
func parseXftDPI(out []byte) (int, bool) {
	for _, line := range strings.Split(string(out), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found || strings.TrimSpace(key) != "Xft.dpi" {
			continue
		}
		// Some desktops write fractional DPI values.
		dpi, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || dpi <= 0 {
			return 0, false
		}
		return int(dpi), true
	}
	return 0, false
}
