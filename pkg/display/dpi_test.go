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
	"testing"

	"github.com/QuiverProject/quiver-core/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestParseXftDPI(t *testing.T) {
	t.Parallel()

	t.Run("integer_value", func(t *testing.T) {
		t.Parallel()
		dpi, ok := parseXftDPI([]byte("Xft.antialias:\t1\nXft.dpi:\t144\nXft.hinting:\t1\n"))
		assert.True(t, ok)
		assert.Equal(t, 144, dpi)
	})

	t.Run("fractional_value", func(t *testing.T) {
		t.Parallel()
		dpi, ok := parseXftDPI([]byte("Xft.dpi:\t120.5\n"))
		assert.True(t, ok)
		assert.Equal(t, 120, dpi)
	})

	t.Run("missing_key", func(t *testing.T) {
		t.Parallel()
		_, ok := parseXftDPI([]byte("Xft.antialias:\t1\n"))
		assert.False(t, ok)
	})

	t.Run("garbage_value", func(t *testing.T) {
		t.Parallel()
		_, ok := parseXftDPI([]byte("Xft.dpi:\tlots\n"))
		assert.False(t, ok)
	})
}

func TestDefaultDPI(t *testing.T) {
	t.Run("gdk_scale_takes_precedence", func(t *testing.T) {
		t.Setenv("GDK_SCALE", "2")

		cmd := &mocks.MockCommandExecutor{}
		dpi := DefaultDPI(context.Background(), cmd)

		assert.Equal(t, 192, dpi)
		cmd.AssertNotCalled(t, "Output", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reads_xrdb", func(t *testing.T) {
		t.Setenv("GDK_SCALE", "")

		cmd := &mocks.MockCommandExecutor{}
		cmd.On("Output", mock.Anything, "xrdb", []string{"-query"}).
			Return([]byte("Xft.dpi:\t144\n"), nil)

		assert.Equal(t, 144, DefaultDPI(context.Background(), cmd))
	})

	t.Run("defaults_when_nothing_available", func(t *testing.T) {
		t.Setenv("GDK_SCALE", "")

		cmd := &mocks.MockCommandExecutor{}
		cmd.On("Output", mock.Anything, "xrdb", []string{"-query"}).
			Return([]byte(nil), errors.New("xrdb: not found"))

		assert.Equal(t, BaseDPI, DefaultDPI(context.Background(), cmd))
	})
}

func TestRestoreGamma(t *testing.T) {
	t.Parallel()

	t.Run("invokes_xgamma", func(t *testing.T) {
		t.Parallel()

		cmd := &mocks.MockCommandExecutor{}
		cmd.On("Start", mock.Anything, "xgamma", []string{"-gamma", "1.0"}).Return(nil)

		RestoreGamma(context.Background(), cmd)

		cmd.AssertExpectations(t)
	})

	t.Run("missing_binary_is_not_fatal", func(t *testing.T) {
		t.Parallel()

		cmd := &mocks.MockCommandExecutor{}
		cmd.On("Start", mock.Anything, "xgamma", mock.Anything).
			Return(errors.New("xgamma: not found"))

		RestoreGamma(context.Background(), cmd)
	})
}
