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

// Package screensaver keeps the screen saver away while a game is running.
//
// Most desktops expose the org.freedesktop.ScreenSaver interface on the
// session bus; MATE and XFCE ship their own equivalents which are tried
// first on those desktops. All failures are non-fatal: a launcher that
// cannot inhibit the screen saver still launches the game.
package screensaver

import (
	"context"
	"fmt"
	"sync"

	"github.com/QuiverProject/quiver-core/pkg/desktop"
	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"
)

// Cookie is the opaque handle returned by a successful inhibit request.
// The zero Cookie means inhibition failed or was never requested.
type Cookie uint32

// candidate is a screen saver DBus interface to try.
type candidate struct {
	dest  string
	path  dbus.ObjectPath
	iface string
}

var (
	freedesktopSaver = candidate{
		dest:  "org.freedesktop.ScreenSaver",
		path:  "/org/freedesktop/ScreenSaver",
		iface: "org.freedesktop.ScreenSaver",
	}
	gnomeSaver = candidate{
		dest:  "org.gnome.ScreenSaver",
		path:  "/org/gnome/ScreenSaver",
		iface: "org.gnome.ScreenSaver",
	}
	mateSaver = candidate{
		dest:  "org.mate.ScreenSaver",
		path:  "/",
		iface: "org.mate.ScreenSaver",
	}
	xfceSaver = candidate{
		dest:  "org.xfce.ScreenSaver",
		path:  "/",
		iface: "org.xfce.ScreenSaver",
	}
)

// candidatesFor lists the interfaces to try for a desktop environment,
// most specific first.
func candidatesFor(env desktop.Environment) []candidate {
	switch env {
	case desktop.EnvironmentMate:
		return []candidate{mateSaver, freedesktopSaver, gnomeSaver}
	case desktop.EnvironmentXfce:
		return []candidate{xfceSaver, freedesktopSaver, gnomeSaver}
	default:
		return []candidate{freedesktopSaver, gnomeSaver}
	}
}

// sessionBus is the part of *dbus.Conn the inhibitor needs.
type sessionBus interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	BusObject() dbus.BusObject
}

// Inhibitor issues screen saver inhibit requests over the session bus.
type Inhibitor struct {
	bus     sessionBus
	appName string
	env     desktop.Environment

	mu     sync.Mutex
	proxy  dbus.BusObject
	iface  string
	picked bool
}

// NewInhibitor returns an Inhibitor for the given desktop environment.
// No connection is made until the first Inhibit call.
func NewInhibitor(env desktop.Environment, appName string) *Inhibitor {
	return &Inhibitor{env: env, appName: appName}
}

// ensureProxy connects to the session bus and picks the first candidate
// interface whose service is actually registered. When none is found the
// default interface is used anyway: DBus activation may still start it.
func (i *Inhibitor) ensureProxy(ctx context.Context) (dbus.BusObject, string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.picked {
		return i.proxy, i.iface, nil
	}

	if i.bus == nil {
		conn, err := dbus.SessionBus()
		if err != nil {
			return nil, "", fmt.Errorf("failed to connect to session bus: %w", err)
		}
		i.bus = conn
	}

	candidates := candidatesFor(i.env)
	chosen := candidates[0]

	var names []string
	err := i.bus.BusObject().
		CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).
		Store(&names)
	if err != nil {
		log.Warn().Err(err).Msg("cannot list session bus names, assuming default screen saver interface")
	} else {
		registered := make(map[string]bool, len(names))
		for _, name := range names {
			registered[name] = true
		}
		found := false
		for _, c := range candidates {
			if registered[c.dest] {
				chosen = c
				found = true
				break
			}
		}
		if !found {
			log.Debug().Str("iface", chosen.iface).
				Msg("no screen saver service registered, relying on bus activation")
		}
	}

	i.proxy = i.bus.Object(chosen.dest, chosen.path)
	i.iface = chosen.iface
	i.picked = true
	log.Debug().Str("iface", i.iface).Msg("screen saver interface selected")
	return i.proxy, i.iface, nil
}

// Inhibit asks the screen saver to stay away while a game runs. The
// returned cookie reverses the request via Uninhibit. A zero cookie means
// the request failed; the failure has already been logged.
func (i *Inhibitor) Inhibit(ctx context.Context, gameName string) Cookie {
	proxy, iface, err := i.ensureProxy(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("screen saver inhibit unavailable")
		return 0
	}

	reason := "Running game: " + gameName
	var cookie uint32
	err = proxy.CallWithContext(ctx, iface+".Inhibit", 0, i.appName, reason).
		Store(&cookie)
	if err != nil {
		log.Warn().Err(err).Str("iface", iface).Msg("screen saver inhibit failed")
		return 0
	}

	log.Debug().Uint32("cookie", cookie).Str("game", gameName).
		Msg("screen saver inhibited")
	return Cookie(cookie)
}

// Uninhibit reverses an earlier Inhibit call. The zero cookie is a no-op.
func (i *Inhibitor) Uninhibit(ctx context.Context, cookie Cookie) {
	if cookie == 0 {
		return
	}

	proxy, iface, err := i.ensureProxy(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("screen saver uninhibit unavailable")
		return
	}

	call := proxy.CallWithContext(ctx, iface+".UnInhibit", 0, uint32(cookie))
	if call.Err != nil {
		log.Warn().Err(call.Err).Uint32("cookie", uint32(cookie)).
			Msg("screen saver uninhibit failed")
		return
	}

	log.Debug().Uint32("cookie", uint32(cookie)).Msg("screen saver uninhibited")
}
