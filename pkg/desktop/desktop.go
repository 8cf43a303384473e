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

// Package desktop classifies the desktop session a game runs inside of.
// Detection is pure environment variable matching so results are stable
// for the lifetime of the process.
package desktop

import (
	"os"
	"strings"
)

// Environment is the detected desktop environment family.
type Environment int

const (
	// EnvironmentNone means DESKTOP_SESSION is empty or unset.
	EnvironmentNone Environment = iota
	EnvironmentPlasma
	EnvironmentMate
	EnvironmentXfce
	EnvironmentDeepin
	EnvironmentUnknown
)

func (e Environment) String() string {
	switch e {
	case EnvironmentPlasma:
		return "plasma"
	case EnvironmentMate:
		return "mate"
	case EnvironmentXfce:
		return "xfce"
	case EnvironmentDeepin:
		return "deepin"
	case EnvironmentNone:
		return "none"
	default:
		return "unknown"
	}
}

// CurrentEnvironment classifies the DESKTOP_SESSION environment variable.
// Sessions we have no integration for report EnvironmentUnknown; an empty
// or unset variable reports EnvironmentNone.
func CurrentEnvironment() Environment {
	return classifySession(os.Getenv("DESKTOP_SESSION"))
}

func classifySession(session string) Environment {
	session = strings.ToLower(session)
	switch {
	case session == "":
		return EnvironmentNone
	case strings.HasSuffix(session, "mate"):
		return EnvironmentMate
	case strings.HasSuffix(session, "xfce"):
		return EnvironmentXfce
	case strings.HasSuffix(session, "deepin"):
		return EnvironmentDeepin
	case strings.Contains(session, "plasma"):
		return EnvironmentPlasma
	default:
		return EnvironmentUnknown
	}
}

// DisplayServer is the session's display protocol.
type DisplayServer int

const (
	DisplayServerUnknown DisplayServer = iota
	DisplayServerX11
	DisplayServerWayland
)

func (ds DisplayServer) String() string {
	switch ds {
	case DisplayServerX11:
		return "x11"
	case DisplayServerWayland:
		return "wayland"
	default:
		return "unknown"
	}
}

// CurrentDisplayServer detects the display server from the session
// environment. Wayland is checked first since XWayland sessions set
// DISPLAY as well.
func CurrentDisplayServer() DisplayServer {
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return DisplayServerWayland
	}
	if os.Getenv("DISPLAY") != "" {
		return DisplayServerX11
	}
	return DisplayServerUnknown
}
