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
	"regexp"
	"strconv"
	"strings"

	"github.com/QuiverProject/quiver-core/pkg/helpers/command"
)

// Legacy drives the xrandr command line tool. Last resort when neither
// Mutter nor a direct X connection is available.
type Legacy struct {
	cmd command.Executor
}

func NewLegacy(cmd command.Executor) *Legacy {
	return &Legacy{cmd: cmd}
}

// geometryPattern matches xrandr geometry tokens like "1920x1080+0+0".
var geometryPattern = regexp.MustCompile(`^(\d+)x(\d+)\+(\d+)\+(\d+)$`)

// resolutionPattern matches mode tokens like "1920x1080" or "1920x1080i".
var resolutionPattern = regexp.MustCompile(`^(\d+)x(\d+)i?$`)

// parseQuery parses `xrandr --query` output into connected outputs and
// the list of advertised modes.
func parseQuery(out []byte) (outputs []Output, modes []string) {
	var current *Output
	for _, line := range strings.Split(string(out), "\n") {
		if line == "" {
			continue
		}
		if line[0] != ' ' && line[0] != '\t' {
			current = nil
			fields := strings.Fields(line)
			if len(fields) < 3 || fields[1] != "connected" {
				continue
			}
			output := Output{Name: fields[0]}
			for _, field := range fields[2:] {
				if field == "primary" {
					output.Primary = true
					continue
				}
				if m := geometryPattern.FindStringSubmatch(field); m != nil {
					output.Mode.Width, _ = strconv.Atoi(m[1])
					output.Mode.Height, _ = strconv.Atoi(m[2])
					output.X, _ = strconv.Atoi(m[3])
					output.Y, _ = strconv.Atoi(m[4])
					break
				}
			}
			outputs = append(outputs, output)
			current = &outputs[len(outputs)-1]
			continue
		}

		// Indented lines are mode listings for the preceding output.
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if !resolutionPattern.MatchString(fields[0]) {
			continue
		}
		modes = append(modes, fields[0])

		// A '*' suffix marks the active mode; record its refresh rate.
		if current != nil {
			for _, rate := range fields[1:] {
				if !strings.Contains(rate, "*") {
					continue
				}
				cleaned := strings.TrimRight(rate, "*+ ")
				if refresh, err := strconv.ParseFloat(cleaned, 64); err == nil {
					current.Mode.Refresh = refresh
				}
			}
		}
	}
	return outputs, modes
}

func (l *Legacy) query(ctx context.Context) ([]Output, []string, error) {
	out, err := l.cmd.Output(ctx, "xrandr", "--query")
	if err != nil {
		return nil, nil, fmt.Errorf("xrandr query failed: %w", err)
	}
	outputs, modes := parseQuery(out)
	return outputs, modes, nil
}

func (l *Legacy) Outputs(ctx context.Context) ([]Output, error) {
	outputs, _, err := l.query(ctx)
	return outputs, err
}

func (l *Legacy) Resolutions(ctx context.Context) ([]string, error) {
	_, modes, err := l.query(ctx)
	if err != nil {
		return nil, err
	}
	normalized := make([]string, 0, len(modes))
	for _, mode := range modes {
		// Drop interlaced markers so callers get plain WxH strings.
		normalized = append(normalized, strings.TrimSuffix(mode, "i"))
	}
	return sortResolutions(normalized), nil
}

func (l *Legacy) CurrentResolution(ctx context.Context) (int, int, error) {
	outputs, _, err := l.query(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, out := range outputs {
		if out.Primary && out.Mode.Width > 0 {
			return out.Mode.Width, out.Mode.Height, nil
		}
	}
	for _, out := range outputs {
		if out.Mode.Width > 0 {
			return out.Mode.Width, out.Mode.Height, nil
		}
	}
	return 0, 0, errors.New("no connected outputs reported by xrandr")
}

func (l *Legacy) SetResolution(ctx context.Context, width, height int) error {
	resolution := fmt.Sprintf("%dx%d", width, height)

	outputs, _, err := l.query(ctx)
	if err == nil {
		for _, out := range outputs {
			if out.Primary {
				return l.run(ctx, "--output", out.Name, "--mode", resolution)
			}
		}
	}
	// No primary output known: let xrandr pick the screen size itself.
	return l.run(ctx, "-s", resolution)
}

func (l *Legacy) run(ctx context.Context, args ...string) error {
	if err := l.cmd.Run(ctx, "xrandr", args...); err != nil {
		return fmt.Errorf("xrandr %s failed: %w", strings.Join(args, " "), err)
	}
	return nil
}
