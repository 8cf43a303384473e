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

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

// RandR speaks the X RandR protocol directly. It does not work on
// Wayland sessions (XWayland only exposes a virtual output).
type RandR struct {
	conn *xgb.Conn
	root xproto.Window
}

// NewRandR opens the X display named by the DISPLAY environment variable.
func NewRandR() (*RandR, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("cannot open X display: %w", err)
	}
	if err := randr.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("RandR extension not available: %w", err)
	}
	root := xproto.Setup(conn).DefaultScreen(conn).Root
	return &RandR{conn: conn, root: root}, nil
}

// Close releases the X connection. It implements io.Closer so callers
// holding only the Manager interface can still release the connection.
func (r *RandR) Close() error {
	r.conn.Close()
	return nil
}

// modeRefresh computes the refresh rate in Hz from RandR mode timings.
func modeRefresh(info randr.ModeInfo) float64 {
	total := float64(info.Htotal) * float64(info.Vtotal)
	if total == 0 {
		return 0
	}
	return float64(info.DotClock) / total
}

func modeByID(res *randr.GetScreenResourcesReply, id randr.Mode) (randr.ModeInfo, bool) {
	for _, info := range res.Modes {
		if randr.Mode(info.Id) == id {
			return info, true
		}
	}
	return randr.ModeInfo{}, false
}

func (r *RandR) Outputs(_ context.Context) ([]Output, error) {
	res, err := randr.GetScreenResources(r.conn, r.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("GetScreenResources failed: %w", err)
	}
	primary, err := randr.GetOutputPrimary(r.conn, r.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("GetOutputPrimary failed: %w", err)
	}

	var outputs []Output
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(r.conn, output, 0).Reply()
		if err != nil {
			continue
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(r.conn, info.Crtc, 0).Reply()
		if err != nil {
			continue
		}
		mode := Mode{Width: int(crtc.Width), Height: int(crtc.Height)}
		if modeInfo, ok := modeByID(res, crtc.Mode); ok {
			mode.Refresh = modeRefresh(modeInfo)
		}
		outputs = append(outputs, Output{
			Name:    string(info.Name),
			Mode:    mode,
			X:       int(crtc.X),
			Y:       int(crtc.Y),
			Primary: output == primary.Output,
		})
	}
	return outputs, nil
}

func (r *RandR) Resolutions(_ context.Context) ([]string, error) {
	res, err := randr.GetScreenResources(r.conn, r.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("GetScreenResources failed: %w", err)
	}

	resolutions := make([]string, 0, len(res.Modes))
	for _, info := range res.Modes {
		resolutions = append(resolutions,
			fmt.Sprintf("%dx%d", info.Width, info.Height))
	}
	return sortResolutions(resolutions), nil
}

func (r *RandR) CurrentResolution(ctx context.Context) (int, int, error) {
	outputs, err := r.Outputs(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, out := range outputs {
		if out.Primary {
			return out.Mode.Width, out.Mode.Height, nil
		}
	}
	// No primary flag set: fall back to the first active output.
	if len(outputs) > 0 {
		return outputs[0].Mode.Width, outputs[0].Mode.Height, nil
	}
	return 0, 0, errors.New("no active outputs")
}

func (r *RandR) SetResolution(_ context.Context, width, height int) error {
	res, err := randr.GetScreenResources(r.conn, r.root).Reply()
	if err != nil {
		return fmt.Errorf("GetScreenResources failed: %w", err)
	}
	primary, err := randr.GetOutputPrimary(r.conn, r.root).Reply()
	if err != nil {
		return fmt.Errorf("GetOutputPrimary failed: %w", err)
	}

	target, crtc, err := r.findTarget(res, primary.Output)
	if err != nil {
		return err
	}

	mode, ok := r.findMode(res, target, width, height)
	if !ok {
		return fmt.Errorf("no %dx%d mode on primary output", width, height)
	}

	crtcInfo, err := randr.GetCrtcInfo(r.conn, crtc, 0).Reply()
	if err != nil {
		return fmt.Errorf("GetCrtcInfo failed: %w", err)
	}

	_, err = randr.SetCrtcConfig(
		r.conn, crtc,
		xproto.TimeCurrentTime, res.ConfigTimestamp,
		crtcInfo.X, crtcInfo.Y,
		mode, crtcInfo.Rotation, crtcInfo.Outputs,
	).Reply()
	if err != nil {
		return fmt.Errorf("SetCrtcConfig failed: %w", err)
	}
	return nil
}

// findTarget resolves the output to reconfigure: the primary output when
// set, otherwise the first connected output with an active CRTC.
func (r *RandR) findTarget(
	res *randr.GetScreenResourcesReply, primary randr.Output,
) (randr.Output, randr.Crtc, error) {
	candidates := res.Outputs
	if primary != 0 {
		candidates = append([]randr.Output{primary}, candidates...)
	}
	for _, output := range candidates {
		info, err := randr.GetOutputInfo(r.conn, output, 0).Reply()
		if err != nil {
			continue
		}
		if info.Connection == randr.ConnectionConnected && info.Crtc != 0 {
			return output, info.Crtc, nil
		}
	}
	return 0, 0, errors.New("no connected output with an active CRTC")
}

// findMode picks the highest refresh mode supported by the output that
// matches the resolution.
func (r *RandR) findMode(
	res *randr.GetScreenResourcesReply, output randr.Output, width, height int,
) (randr.Mode, bool) {
	info, err := randr.GetOutputInfo(r.conn, output, 0).Reply()
	if err != nil {
		return 0, false
	}

	var best randr.Mode
	bestRefresh := -1.0
	for _, id := range info.Modes {
		modeInfo, ok := modeByID(res, id)
		if !ok {
			continue
		}
		if int(modeInfo.Width) != width || int(modeInfo.Height) != height {
			continue
		}
		if refresh := modeRefresh(modeInfo); refresh > bestRefresh {
			best = id
			bestRefresh = refresh
		}
	}
	return best, bestRefresh >= 0
}
