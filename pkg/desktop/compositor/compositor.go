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

// Package compositor toggles desktop compositing around game sessions.
//
// Compositing effects interfere with exclusive fullscreen rendering, so
// the launcher turns them off before a game starts and restores them when
// it exits. Disable/Enable calls must be strictly nested: each Disable
// records whether it actually changed system state, and only the matching
// Enable reverses it, so overlapping game sessions never re-enable
// compositing under a session that still needs it off.
package compositor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/QuiverProject/quiver-core/pkg/desktop"
	"github.com/QuiverProject/quiver-core/pkg/helpers/command"
	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"
)

const (
	kwinService          = "org.kde.KWin"
	kwinCompositorPath   = "/Compositor"
	kwinCompositingIface = "org.kde.kwin.Compositing"

	wmSwitcherService   = "com.deepin.WMSwitcher"
	wmSwitcherPath      = "/com/deepin/WMSwitcher"
	wmSwitcherInterface = "com.deepin.WMSwitcher"

	// CurrentWM reports this when the compositing window manager is active.
	deepinCompositingWM = "deepin wm"
)

// ErrUnbalanced is returned by Enable when there is no matching Disable
// call to pop. This is a caller contract violation.
var ErrUnbalanced = errors.New("compositor: enable without matching disable")

// State is the probed compositing state.
type State int

const (
	StateUnknown State = iota
	StateDisabled
	StateEnabled
)

func (s State) String() string {
	switch s {
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// sessionBus is the part of *dbus.Conn the manager needs. Tests provide
// a fake; production uses the shared session bus connection.
type sessionBus interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
}

// Manager tracks nested compositing disable requests for one process.
type Manager struct {
	cmd command.Executor
	bus sessionBus
	env desktop.Environment

	mu       sync.Mutex
	disabled []bool // one entry per Disable call: did it change state?
}

// NewManager returns a Manager for the given desktop environment. The
// session bus is connected lazily, on the first environment that needs it.
func NewManager(env desktop.Environment, cmd command.Executor) *Manager {
	return &Manager{env: env, cmd: cmd}
}

func (m *Manager) session() (sessionBus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bus != nil {
		return m.bus, nil
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	m.bus = conn
	return m.bus, nil
}

// Status probes whether compositing is currently active. Environments we
// have no integration for, and any probe failure, report StateUnknown.
func (m *Manager) Status(ctx context.Context) State {
	switch m.env {
	case desktop.EnvironmentPlasma:
		return m.kwinStatus()
	case desktop.EnvironmentMate:
		return m.commandStatus(ctx, "gsettings",
			"get", "org.mate.Marco.general", "compositing-manager")
	case desktop.EnvironmentXfce:
		return m.commandStatus(ctx, "xfconf-query",
			"--channel=xfwm4", "--property=/general/use_compositing")
	case desktop.EnvironmentDeepin:
		return m.deepinStatus()
	default:
		return StateUnknown
	}
}

func (m *Manager) kwinStatus() State {
	bus, err := m.session()
	if err != nil {
		log.Warn().Err(err).Msg("cannot probe KWin compositing state")
		return StateUnknown
	}
	variant, err := bus.Object(kwinService, kwinCompositorPath).
		GetProperty(kwinCompositingIface + ".active")
	if err != nil {
		log.Warn().Err(err).Msg("KWin compositing property unavailable")
		return StateUnknown
	}
	active, ok := variant.Value().(bool)
	if !ok {
		return StateUnknown
	}
	if active {
		return StateEnabled
	}
	return StateDisabled
}

func (m *Manager) deepinStatus() State {
	bus, err := m.session()
	if err != nil {
		log.Warn().Err(err).Msg("cannot probe deepin window manager")
		return StateUnknown
	}
	var wm string
	err = bus.Object(wmSwitcherService, wmSwitcherPath).
		Call(wmSwitcherInterface+".CurrentWM", 0).Store(&wm)
	if err != nil {
		log.Warn().Err(err).Msg("deepin WMSwitcher unavailable")
		return StateUnknown
	}
	if strings.TrimSpace(wm) == deepinCompositingWM {
		return StateEnabled
	}
	return StateDisabled
}

// commandStatus probes a boolean desktop setting via a settings tool that
// prints "true" or "false".
func (m *Manager) commandStatus(ctx context.Context, name string, args ...string) State {
	out, err := m.cmd.Output(ctx, name, args...)
	if err != nil {
		log.Warn().Err(err).Str("tool", name).Msg("compositing probe failed")
		return StateUnknown
	}
	switch strings.TrimSpace(string(out)) {
	case "true":
		return StateEnabled
	case "false":
		return StateDisabled
	default:
		return StateUnknown
	}
}

// Disable turns compositing off if no earlier Disable call already did.
// Every call must be matched by exactly one Enable call. An unknown probe
// result is treated as enabled so the stop command still runs.
func (m *Manager) Disable(ctx context.Context) error {
	enabled := m.Status(ctx) != StateDisabled

	m.mu.Lock()
	for _, changed := range m.disabled {
		if changed {
			// An earlier call already turned compositing off.
			enabled = false
			break
		}
	}
	m.disabled = append(m.disabled, enabled)
	m.mu.Unlock()

	if !enabled {
		return nil
	}
	log.Debug().Str("env", m.env.String()).Msg("disabling compositing")
	return m.setCompositing(ctx, false)
}

// Enable pops the most recent Disable call and restores compositing only
// if that call actually disabled it.
func (m *Manager) Enable(ctx context.Context) error {
	m.mu.Lock()
	if len(m.disabled) == 0 {
		m.mu.Unlock()
		return ErrUnbalanced
	}
	changed := m.disabled[len(m.disabled)-1]
	m.disabled = m.disabled[:len(m.disabled)-1]
	m.mu.Unlock()

	if !changed {
		return nil
	}
	log.Debug().Str("env", m.env.String()).Msg("re-enabling compositing")
	return m.setCompositing(ctx, true)
}

// Depth reports how many Disable calls are currently unmatched.
func (m *Manager) Depth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.disabled)
}

func (m *Manager) setCompositing(ctx context.Context, enable bool) error {
	switch m.env {
	case desktop.EnvironmentPlasma:
		method := kwinCompositingIface + ".suspend"
		if enable {
			method = kwinCompositingIface + ".resume"
		}
		bus, err := m.session()
		if err != nil {
			log.Warn().Err(err).Msg("cannot toggle KWin compositing")
			return nil
		}
		call := bus.Object(kwinService, kwinCompositorPath).Call(method, 0)
		if call.Err != nil {
			log.Warn().Err(call.Err).Str("method", method).
				Msg("KWin compositing toggle failed")
		}
	case desktop.EnvironmentMate:
		m.startCommand(ctx, "gsettings",
			"set", "org.mate.Marco.general", "compositing-manager",
			fmt.Sprintf("%t", enable))
	case desktop.EnvironmentXfce:
		m.startCommand(ctx, "xfconf-query",
			"--channel=xfwm4", "--property=/general/use_compositing",
			fmt.Sprintf("--set=%t", enable))
	case desktop.EnvironmentDeepin:
		// Deepin only offers a toggle, used for both directions.
		bus, err := m.session()
		if err != nil {
			log.Warn().Err(err).Msg("cannot toggle deepin window manager")
			return nil
		}
		call := bus.Object(wmSwitcherService, wmSwitcherPath).
			Call(wmSwitcherInterface+".RequestSwitchWM", 0)
		if call.Err != nil {
			log.Warn().Err(call.Err).Msg("deepin window manager switch failed")
		}
	default:
		log.Debug().Str("env", m.env.String()).
			Msg("no compositor commands for this desktop environment")
	}
	return nil
}

// startCommand fires a settings tool without waiting for it. Missing
// binaries and permission errors are logged only: compositing toggles are
// best effort.
func (m *Manager) startCommand(ctx context.Context, name string, args ...string) {
	if err := m.cmd.Start(ctx, name, args...); err != nil {
		log.Warn().Err(err).Str("tool", name).Msg("compositor command failed to start")
	}
}
