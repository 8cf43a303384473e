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
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"
)

const (
	mutterService   = "org.gnome.Mutter.DisplayConfig"
	mutterPath      = "/org/gnome/Mutter/DisplayConfig"
	mutterInterface = "org.gnome.Mutter.DisplayConfig"

	// ApplyMonitorsConfig method: apply but don't persist to disk.
	mutterApplyTemporary = uint32(1)
)

// Wire types for GetCurrentState, in field order of the DBus signature
// (u a((ssss)a(siiddada{sv})a{sv}) a(iiduba(ssss)a{sv}) a{sv}).

type mutterMonitorSpec struct {
	Connector string
	Vendor    string
	Product   string
	Serial    string
}

type mutterMode struct {
	ID              string
	Width           int32
	Height          int32
	RefreshRate     float64
	PreferredScale  float64
	SupportedScales []float64
	Properties      map[string]dbus.Variant
}

type mutterMonitor struct {
	Spec       mutterMonitorSpec
	Modes      []mutterMode
	Properties map[string]dbus.Variant
}

type mutterLogicalMonitor struct {
	X          int32
	Y          int32
	Scale      float64
	Transform  uint32
	Primary    bool
	Monitors   []mutterMonitorSpec
	Properties map[string]dbus.Variant
}

// Wire types for ApplyMonitorsConfig (a(iiduba(ssa{sv}))).

type mutterModeAssignment struct {
	Connector  string
	ModeID     string
	Properties map[string]dbus.Variant
}

type mutterLogicalConfig struct {
	X         int32
	Y         int32
	Scale     float64
	Transform uint32
	Primary   bool
	Monitors  []mutterModeAssignment
}

func (m *mutterMonitor) currentMode() (mutterMode, bool) {
	for _, mode := range m.Modes {
		if v, ok := mode.Properties["is-current"]; ok {
			if current, ok := v.Value().(bool); ok && current {
				return mode, true
			}
		}
	}
	return mutterMode{}, false
}

// bestMode picks the highest refresh rate mode matching the resolution.
func (m *mutterMonitor) bestMode(width, height int) (mutterMode, bool) {
	var best mutterMode
	found := false
	for _, mode := range m.Modes {
		if int(mode.Width) != width || int(mode.Height) != height {
			continue
		}
		if !found || mode.RefreshRate > best.RefreshRate {
			best = mode
			found = true
		}
	}
	return best, found
}

// mutterBus is the part of *dbus.Conn the Mutter manager needs.
type mutterBus interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	BusObject() dbus.BusObject
}

// Mutter talks to the org.gnome.Mutter.DisplayConfig session bus API.
type Mutter struct {
	bus mutterBus
}

// NewMutter connects to the session bus and verifies the Mutter
// DisplayConfig service is registered.
func NewMutter(ctx context.Context) (*Mutter, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	m := &Mutter{bus: conn}
	if err := m.checkService(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mutter) checkService(ctx context.Context) error {
	var names []string
	err := m.bus.BusObject().
		CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).
		Store(&names)
	if err != nil {
		return fmt.Errorf("failed to list session bus names: %w", err)
	}
	for _, name := range names {
		if name == mutterService {
			return nil
		}
	}
	return errors.New("Mutter DisplayConfig service not on session bus")
}

func (m *Mutter) currentState(ctx context.Context) (
	serial uint32,
	monitors []mutterMonitor,
	logical []mutterLogicalMonitor,
	err error,
) {
	var props map[string]dbus.Variant
	obj := m.bus.Object(mutterService, mutterPath)
	err = obj.CallWithContext(ctx, mutterInterface+".GetCurrentState", 0).
		Store(&serial, &monitors, &logical, &props)
	if err != nil {
		err = fmt.Errorf("GetCurrentState failed: %w", err)
	}
	return serial, monitors, logical, err
}

// logicalFor finds the logical monitor a physical connector belongs to.
func logicalFor(logical []mutterLogicalMonitor, connector string) (mutterLogicalMonitor, bool) {
	for _, lm := range logical {
		for _, spec := range lm.Monitors {
			if spec.Connector == connector {
				return lm, true
			}
		}
	}
	return mutterLogicalMonitor{}, false
}

func (m *Mutter) Outputs(ctx context.Context) ([]Output, error) {
	_, monitors, logical, err := m.currentState(ctx)
	if err != nil {
		return nil, err
	}

	outputs := make([]Output, 0, len(monitors))
	for i := range monitors {
		mon := &monitors[i]
		out := Output{Name: mon.Spec.Connector}
		if mode, ok := mon.currentMode(); ok {
			out.Mode = Mode{
				Width:   int(mode.Width),
				Height:  int(mode.Height),
				Refresh: mode.RefreshRate,
			}
		}
		if lm, ok := logicalFor(logical, mon.Spec.Connector); ok {
			out.X = int(lm.X)
			out.Y = int(lm.Y)
			out.Primary = lm.Primary
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func (m *Mutter) Resolutions(ctx context.Context) ([]string, error) {
	_, monitors, _, err := m.currentState(ctx)
	if err != nil {
		return nil, err
	}

	var resolutions []string
	for i := range monitors {
		for _, mode := range monitors[i].Modes {
			resolutions = append(resolutions,
				fmt.Sprintf("%dx%d", mode.Width, mode.Height))
		}
	}
	return sortResolutions(resolutions), nil
}

func (m *Mutter) CurrentResolution(ctx context.Context) (int, int, error) {
	_, monitors, logical, err := m.currentState(ctx)
	if err != nil {
		return 0, 0, err
	}

	for i := range monitors {
		mon := &monitors[i]
		lm, ok := logicalFor(logical, mon.Spec.Connector)
		if !ok || !lm.Primary {
			continue
		}
		if mode, ok := mon.currentMode(); ok {
			return int(mode.Width), int(mode.Height), nil
		}
	}
	return 0, 0, errors.New("no primary monitor with a current mode")
}

// SetResolution switches the primary monitor to the requested resolution
// and keeps every other monitor on its current mode.
func (m *Mutter) SetResolution(ctx context.Context, width, height int) error {
	serial, monitors, logical, err := m.currentState(ctx)
	if err != nil {
		return err
	}

	monitorFor := make(map[string]*mutterMonitor, len(monitors))
	for i := range monitors {
		monitorFor[monitors[i].Spec.Connector] = &monitors[i]
	}

	configs := make([]mutterLogicalConfig, 0, len(logical))
	for _, lm := range logical {
		if len(lm.Monitors) == 0 {
			continue
		}
		assignments := make([]mutterModeAssignment, 0, len(lm.Monitors))
		for _, spec := range lm.Monitors {
			mon, ok := monitorFor[spec.Connector]
			if !ok {
				continue
			}
			var mode mutterMode
			if lm.Primary {
				mode, ok = mon.bestMode(width, height)
				if !ok {
					return fmt.Errorf("no %dx%d mode on output %s",
						width, height, spec.Connector)
				}
			} else {
				mode, ok = mon.currentMode()
				if !ok {
					log.Warn().Str("output", spec.Connector).
						Msg("output has no current mode, leaving it out of config")
					continue
				}
			}
			assignments = append(assignments, mutterModeAssignment{
				Connector:  spec.Connector,
				ModeID:     mode.ID,
				Properties: map[string]dbus.Variant{},
			})
		}
		if len(assignments) == 0 {
			continue
		}
		configs = append(configs, mutterLogicalConfig{
			X:         lm.X,
			Y:         lm.Y,
			Scale:     lm.Scale,
			Transform: lm.Transform,
			Primary:   lm.Primary,
			Monitors:  assignments,
		})
	}

	obj := m.bus.Object(mutterService, mutterPath)
	call := obj.CallWithContext(ctx, mutterInterface+".ApplyMonitorsConfig", 0,
		serial, mutterApplyTemporary, configs, map[string]dbus.Variant{})
	if call.Err != nil {
		return fmt.Errorf("ApplyMonitorsConfig failed: %w", call.Err)
	}
	return nil
}
