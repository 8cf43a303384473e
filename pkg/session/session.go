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

// Package session applies desktop tweaks around a running game:
// compositing off, screen saver inhibited, gamma restored afterwards.
package session

import (
	"context"

	"github.com/QuiverProject/quiver-core/pkg/config"
	"github.com/QuiverProject/quiver-core/pkg/desktop/screensaver"
	"github.com/QuiverProject/quiver-core/pkg/display"
	"github.com/QuiverProject/quiver-core/pkg/helpers/command"
	"github.com/rs/zerolog/log"
)

// Compositor is the part of compositor.Manager a session needs.
type Compositor interface {
	Disable(ctx context.Context) error
	Enable(ctx context.Context) error
}

// Inhibitor is the part of screensaver.Inhibitor a session needs.
type Inhibitor interface {
	Inhibit(ctx context.Context, gameName string) screensaver.Cookie
	Uninhibit(ctx context.Context, cookie screensaver.Cookie)
}

// Session holds the desktop state changes made for one running game.
// Begin and End must be called in pairs; sessions may nest.
type Session struct {
	cfg   *config.Instance
	comp  Compositor
	saver Inhibitor
	cmd   command.Executor

	cookie              screensaver.Cookie
	compositingDisabled bool
}

func New(cfg *config.Instance, comp Compositor, saver Inhibitor, cmd command.Executor) *Session {
	return &Session{cfg: cfg, comp: comp, saver: saver, cmd: cmd}
}

// Begin applies the configured desktop tweaks for a game. Failures are
// logged and never block the game from starting.
func (s *Session) Begin(ctx context.Context, gameName string) {
	if s.cfg.DisableCompositing() {
		if err := s.comp.Disable(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to disable compositing")
		} else {
			s.compositingDisabled = true
		}
	}

	s.cookie = s.saver.Inhibit(ctx, gameName)
	log.Info().Str("game", gameName).Msg("desktop session tweaks applied")
}

// End reverses the tweaks made by Begin and restores display gamma the
// game may have altered.
func (s *Session) End(ctx context.Context) {
	s.saver.Uninhibit(ctx, s.cookie)
	s.cookie = 0

	if s.compositingDisabled {
		if err := s.comp.Enable(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to re-enable compositing")
		}
		s.compositingDisabled = false
	}

	display.RestoreGamma(ctx, s.cmd)
}
