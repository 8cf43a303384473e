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

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const SchemaVersion = 1

type Values struct {
	Display      Display `toml:"display,omitempty"`
	Session      Session `toml:"session,omitempty"`
	ConfigSchema int     `toml:"config_schema"`
	DebugLogging bool    `toml:"debug_logging"`
}

type Display struct {
	// FallbackWidth and FallbackHeight are reported as the current
	// resolution when every display manager fails.
	FallbackWidth  int `toml:"fallback_width,omitempty"`
	FallbackHeight int `toml:"fallback_height,omitempty"`
}

type Session struct {
	// InhibitAppName is the application name sent with screen saver
	// inhibit requests.
	InhibitAppName string `toml:"inhibit_app_name,omitempty"`
	// DisableCompositing turns desktop compositing off for the duration
	// of a game session.
	DisableCompositing bool `toml:"disable_compositing"`
}

// Instance is a thread-safe view of the loaded config file.
type Instance struct {
	appPath string
	vals    Values
	mu      sync.RWMutex
}

func BaseDefaults() Values {
	return Values{
		ConfigSchema: SchemaVersion,
		Display: Display{
			FallbackWidth:  DefaultResolutionWidth,
			FallbackHeight: DefaultResolutionHeight,
		},
		Session: Session{
			InhibitAppName:     "Quiver",
			DisableCompositing: true,
		},
	}
}

// NewConfig loads the config file from configDir, creating it with
// defaults if it doesn't exist yet.
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfg := Instance{
		appPath: filepath.Join(configDir, CfgFile),
		vals:    defaults,
	}

	exists := true
	_, err := os.Stat(cfg.appPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			exists = false
		} else {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	if exists {
		err := cfg.Load()
		if err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		log.Info().Msg("no config file found, creating default")
		err := cfg.Save()
		if err != nil {
			return nil, fmt.Errorf("error saving default config: %w", err)
		}
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.appPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.appPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	newVals := BaseDefaults()
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	c.vals = newVals

	if c.vals.DebugLogging {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.appPath == "" {
		return errors.New("config path not set")
	}

	err := os.MkdirAll(filepath.Dir(c.appPath), 0o750)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(c.appPath, data, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// FallbackResolution returns the resolution assumed when detection fails.
func (c *Instance) FallbackResolution() (width, height int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	w := c.vals.Display.FallbackWidth
	h := c.vals.Display.FallbackHeight
	if w <= 0 || h <= 0 {
		return DefaultResolutionWidth, DefaultResolutionHeight
	}
	return w, h
}

func (c *Instance) InhibitAppName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Session.InhibitAppName == "" {
		return "Quiver"
	}
	return c.vals.Session.InhibitAppName
}

func (c *Instance) DisableCompositing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Session.DisableCompositing
}
