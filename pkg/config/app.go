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

var AppVersion = "DEVELOPMENT"

const (
	AppName = "quiver"
	LogFile = "core.log"
	CfgFile = "config.toml"

	// Resolution reported when no display manager can tell us better.
	DefaultResolutionWidth  = 1280
	DefaultResolutionHeight = 720
)
