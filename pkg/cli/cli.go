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

package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/QuiverProject/quiver-core/pkg/config"
	"github.com/QuiverProject/quiver-core/pkg/desktop"
	"github.com/QuiverProject/quiver-core/pkg/desktop/compositor"
	"github.com/QuiverProject/quiver-core/pkg/desktop/screensaver"
	"github.com/QuiverProject/quiver-core/pkg/display"
	"github.com/QuiverProject/quiver-core/pkg/gpu"
	"github.com/QuiverProject/quiver-core/pkg/helpers"
	"github.com/QuiverProject/quiver-core/pkg/helpers/command"
	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Flags struct {
	Outputs      *bool
	Resolutions  *bool
	Resolution   *string
	GPUs         *bool
	DPI          *bool
	Compositing  *string
	Inhibit      *string
	RestoreGamma *bool
	Version      *bool
}

// SetupFlags defines all CLI flags. Add any custom flags before
// calling Pre.
func SetupFlags() *Flags {
	return &Flags{
		Outputs: flag.Bool(
			"outputs",
			false,
			"list connected display outputs",
		),
		Resolutions: flag.Bool(
			"resolutions",
			false,
			"list available resolutions, widest first",
		),
		Resolution: flag.String(
			"resolution",
			"",
			"switch the primary output to WxH",
		),
		GPUs: flag.Bool(
			"gpus",
			false,
			"list GPUs and graphics adapters",
		),
		DPI: flag.Bool(
			"dpi",
			false,
			"print the desktop's effective DPI",
		),
		Compositing: flag.String(
			"compositing",
			"",
			"control desktop compositing: off, on or status",
		),
		Inhibit: flag.String(
			"inhibit",
			"",
			"inhibit the screen saver for the named game until interrupted",
		),
		RestoreGamma: flag.Bool(
			"restore-gamma",
			false,
			"reset the X display gamma to 1.0",
		),
		Version: flag.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

// Pre runs flag parsing and actions any immediate flags that don't
// require environment setup.
func (f *Flags) Pre() {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("Quiver v%s (linux)\n", config.AppVersion)
		os.Exit(0)
	}
}

func fatal(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func outputsFlag(ctx context.Context, cmd command.Executor) {
	mgr := display.NewManager(ctx, cmd)
	defer closeManager(mgr)

	outputs, err := mgr.Outputs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("error listing outputs")
		fatal("Error listing outputs: %v\n", err)
	}

	for _, output := range outputs {
		line := fmt.Sprintf("%s %s+%d+%d", output.Name, output.Mode, output.X, output.Y)
		if output.Primary {
			line += " primary"
		}
		_, _ = fmt.Println(line)
	}
	os.Exit(0)
}

func resolutionsFlag(ctx context.Context, cfg *config.Instance, cmd command.Executor) {
	mgr := display.NewManager(ctx, cmd)
	defer closeManager(mgr)

	resolutions, err := mgr.Resolutions(ctx)
	if err != nil {
		// Detection failing doesn't stop a game from being configured:
		// offer the fallback resolution instead.
		log.Warn().Err(err).Msg("error listing resolutions, using fallback")
		width, height := cfg.FallbackResolution()
		resolutions = []string{fmt.Sprintf("%dx%d", width, height)}
	}

	for _, res := range resolutions {
		_, _ = fmt.Println(res)
	}
	os.Exit(0)
}

func resolutionFlag(ctx context.Context, cmd command.Executor, value string) {
	width, height, err := display.ParseResolution(value)
	if err != nil {
		fatal("Error: %v\n", err)
	}

	mgr := display.NewManager(ctx, cmd)
	defer closeManager(mgr)

	if err := mgr.SetResolution(ctx, width, height); err != nil {
		log.Error().Err(err).Msg("error setting resolution")
		fatal("Error setting resolution: %v\n", err)
	}
	os.Exit(0)
}

func gpusFlag(ctx context.Context, cmd command.Executor) {
	for name, card := range gpu.Cards() {
		_, _ = fmt.Printf("%s: %s %s (%s)\n",
			name, card.PCIID, card.PCISubsysID, card.Driver)
	}
	for _, adapter := range gpu.Adapters(ctx, cmd) {
		_, _ = fmt.Printf("%s: %s\n", adapter.Slot, adapter.Description)
	}
	os.Exit(0)
}

func compositingFlag(ctx context.Context, cmd command.Executor, action string) {
	comp := compositor.NewManager(desktop.CurrentEnvironment(), cmd)

	switch action {
	case "off":
		if err := comp.Disable(ctx); err != nil {
			log.Error().Err(err).Msg("error disabling compositing")
			fatal("Error disabling compositing: %v\n", err)
		}
	case "on":
		if err := comp.Enable(ctx); err != nil {
			log.Error().Err(err).Msg("error enabling compositing")
			fatal("Error enabling compositing: %v\n", err)
		}
	case "status":
		_, _ = fmt.Println(comp.Status(ctx))
	default:
		fatal("Error: compositing flag requires off, on or status\n")
	}
	os.Exit(0)
}

func inhibitFlag(ctx context.Context, cfg *config.Instance, gameName string) {
	saver := screensaver.NewInhibitor(desktop.CurrentEnvironment(), cfg.InhibitAppName())

	cookie := saver.Inhibit(ctx, gameName)
	if cookie == 0 {
		fatal("Error: could not inhibit the screen saver\n")
	}
	_, _ = fmt.Fprintf(os.Stderr, "Screen saver inhibited for %s, ctrl-c to release\n", gameName)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	// The signal that ended the wait also cancelled ctx, so release with
	// a context that still works.
	saver.Uninhibit(context.WithoutCancel(ctx), cookie)
	os.Exit(0)
}

func closeManager(mgr display.Manager) {
	if closer, ok := mgr.(io.Closer); ok {
		_ = closer.Close()
	}
}

// Post actions all remaining flags once logging and config are set up.
func (f *Flags) Post(ctx context.Context, cfg *config.Instance, cmd command.Executor) {
	switch {
	case *f.Outputs:
		outputsFlag(ctx, cmd)
	case *f.Resolutions:
		resolutionsFlag(ctx, cfg, cmd)
	case *f.Resolution != "":
		resolutionFlag(ctx, cmd, *f.Resolution)
	case *f.GPUs:
		gpusFlag(ctx, cmd)
	case *f.DPI:
		_, _ = fmt.Println(display.DefaultDPI(ctx, cmd))
		os.Exit(0)
	case *f.Compositing != "":
		compositingFlag(ctx, cmd, *f.Compositing)
	case *f.Inhibit != "":
		inhibitFlag(ctx, cfg, *f.Inhibit)
	case *f.RestoreGamma:
		display.RestoreGamma(ctx, cmd)
		os.Exit(0)
	}
}

// Setup initializes logging and the user config. Returns a user config
// object.
func Setup(defaults config.Values, writers []io.Writer) *config.Instance {
	dataDir := filepath.Join(xdg.DataHome, config.AppName)
	if err := helpers.InitLogging(dataDir, writers); err != nil {
		fatal("Error initializing logging: %v\n", err)
	}

	configDir := filepath.Join(xdg.ConfigHome, config.AppName)
	cfg, err := config.NewConfig(configDir, defaults)
	if err != nil {
		fatal("Error loading config: %v\n", err)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return cfg
}
