//go:build linux

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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/QuiverProject/quiver-core/pkg/cli"
	"github.com/QuiverProject/quiver-core/pkg/config"
	"github.com/QuiverProject/quiver-core/pkg/desktop"
	"github.com/QuiverProject/quiver-core/pkg/desktop/compositor"
	"github.com/QuiverProject/quiver-core/pkg/desktop/screensaver"
	"github.com/QuiverProject/quiver-core/pkg/helpers/command"
	"github.com/QuiverProject/quiver-core/pkg/session"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags()

	quietMode := flag.Bool(
		"quiet",
		false,
		"don't copy logs to stderr",
	)

	flags.Pre()

	if os.Geteuid() == 0 {
		return errors.New("quiver cannot be run as root")
	}

	var logWriters []io.Writer
	if !*quietMode {
		logWriters = []io.Writer{os.Stderr}
	}

	cfg := cli.Setup(config.BaseDefaults(), logWriters)

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := &command.RealExecutor{}
	flags.Post(ctx, cfg, cmd)

	// No action flag: the remaining arguments are a game command to run
	// with the desktop tweaks applied around it.
	if flag.NArg() == 0 {
		flag.Usage()
		return errors.New("no command given")
	}

	return runGame(ctx, cfg, cmd, flag.Args())
}

func runGame(
	ctx context.Context,
	cfg *config.Instance,
	cmd command.Executor,
	args []string,
) error {
	env := desktop.CurrentEnvironment()
	gameName := filepath.Base(args[0])

	sess := session.New(
		cfg,
		compositor.NewManager(env, cmd),
		screensaver.NewInhibitor(env, cfg.InhibitAppName()),
		cmd,
	)

	sess.Begin(ctx, gameName)
	// End must run even when the game is interrupted, so use a context
	// no longer tied to the signal handler.
	defer sess.End(context.WithoutCancel(ctx))

	log.Info().Strs("command", args).Msg("launching game")
	if err := cmd.Run(ctx, args[0], args[1:]...); err != nil {
		return fmt.Errorf("error running %s: %w", gameName, err)
	}
	return nil
}
