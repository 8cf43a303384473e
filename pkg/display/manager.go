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

	"github.com/QuiverProject/quiver-core/pkg/helpers/command"
	"github.com/rs/zerolog/log"
)

// NewManager returns the best display manager available in this session.
// Mutter's DBus API is preferred since it's the only one that works on
// Wayland; a direct X RandR connection comes next, and the xrandr tool is
// the fallback that always constructs.
func NewManager(ctx context.Context, cmd command.Executor) Manager {
	mutter, err := NewMutter(ctx)
	if err == nil {
		log.Debug().Msg("using Mutter DisplayConfig display manager")
		return mutter
	}
	log.Debug().Err(err).Msg("Mutter display manager unavailable")

	xrandrNative, err := NewRandR()
	if err == nil {
		log.Debug().Msg("using native RandR display manager")
		return xrandrNative
	}
	log.Debug().Err(err).Msg("native RandR display manager unavailable")

	log.Debug().Msg("falling back to xrandr subprocess display manager")
	return NewLegacy(cmd)
}
