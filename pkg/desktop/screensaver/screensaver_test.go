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

package screensaver

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/QuiverProject/quiver-core/pkg/desktop"
	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	method string
	args   []any
}

// fakeBusObject serves canned replies keyed by method name.
type fakeBusObject struct {
	dbus.BusObject
	bodies  map[string][]any
	callErr map[string]error

	mu     sync.Mutex
	called []recordedCall
}

func (f *fakeBusObject) CallWithContext(
	_ context.Context, method string, _ dbus.Flags, args ...any,
) *dbus.Call {
	f.mu.Lock()
	f.called = append(f.called, recordedCall{method: method, args: args})
	f.mu.Unlock()
	return &dbus.Call{Body: f.bodies[method], Err: f.callErr[method]}
}

func (f *fakeBusObject) calls() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.called...)
}

type fakeBus struct {
	busObj  *fakeBusObject
	objects map[string]*fakeBusObject
}

func (f *fakeBus) Object(dest string, _ dbus.ObjectPath) dbus.BusObject {
	if obj, ok := f.objects[dest]; ok {
		return obj
	}
	return &fakeBusObject{callErr: map[string]error{}}
}

func (f *fakeBus) BusObject() dbus.BusObject {
	return f.busObj
}

func newFakeBus(registered []string, savers map[string]*fakeBusObject) *fakeBus {
	return &fakeBus{
		busObj: &fakeBusObject{
			bodies: map[string][]any{
				"org.freedesktop.DBus.ListNames": {registered},
			},
		},
		objects: savers,
	}
}

func TestCandidatesFor(t *testing.T) {
	t.Parallel()

	t.Run("mate_tries_own_interface_first", func(t *testing.T) {
		t.Parallel()
		cs := candidatesFor(desktop.EnvironmentMate)
		require.Len(t, cs, 3)
		assert.Equal(t, "org.mate.ScreenSaver", cs[0].iface)
		assert.Equal(t, dbus.ObjectPath("/"), cs[0].path)
	})

	t.Run("xfce_tries_own_interface_first", func(t *testing.T) {
		t.Parallel()
		cs := candidatesFor(desktop.EnvironmentXfce)
		assert.Equal(t, "org.xfce.ScreenSaver", cs[0].iface)
	})

	t.Run("others_default_to_freedesktop", func(t *testing.T) {
		t.Parallel()
		for _, env := range []desktop.Environment{
			desktop.EnvironmentPlasma,
			desktop.EnvironmentDeepin,
			desktop.EnvironmentNone,
			desktop.EnvironmentUnknown,
		} {
			cs := candidatesFor(env)
			require.Len(t, cs, 2)
			assert.Equal(t, "org.freedesktop.ScreenSaver", cs[0].iface)
			assert.Equal(t, "org.gnome.ScreenSaver", cs[1].iface)
		}
	})
}

func TestInhibitor_InhibitReturnsCookie(t *testing.T) {
	t.Parallel()

	saver := &fakeBusObject{
		bodies: map[string][]any{
			"org.freedesktop.ScreenSaver.Inhibit": {uint32(4242)},
		},
	}
	i := NewInhibitor(desktop.EnvironmentPlasma, "Quiver")
	i.bus = newFakeBus(
		[]string{"org.freedesktop.ScreenSaver"},
		map[string]*fakeBusObject{"org.freedesktop.ScreenSaver": saver},
	)

	cookie := i.Inhibit(context.Background(), "Celeste")

	assert.Equal(t, Cookie(4242), cookie)
	calls := saver.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []any{"Quiver", "Running game: Celeste"}, calls[0].args)
}

func TestInhibitor_InhibitFailureReturnsZeroCookie(t *testing.T) {
	t.Parallel()

	saver := &fakeBusObject{
		callErr: map[string]error{
			"org.freedesktop.ScreenSaver.Inhibit": errors.New("not allowed"),
		},
	}
	i := NewInhibitor(desktop.EnvironmentPlasma, "Quiver")
	i.bus = newFakeBus(
		[]string{"org.freedesktop.ScreenSaver"},
		map[string]*fakeBusObject{"org.freedesktop.ScreenSaver": saver},
	)

	cookie := i.Inhibit(context.Background(), "Celeste")

	assert.Equal(t, Cookie(0), cookie)
}

func TestInhibitor_PicksEnvironmentInterface(t *testing.T) {
	t.Parallel()

	mate := &fakeBusObject{
		bodies: map[string][]any{
			"org.mate.ScreenSaver.Inhibit": {uint32(7)},
		},
	}
	i := NewInhibitor(desktop.EnvironmentMate, "Quiver")
	i.bus = newFakeBus(
		[]string{"org.mate.ScreenSaver", "org.freedesktop.ScreenSaver"},
		map[string]*fakeBusObject{"org.mate.ScreenSaver": mate},
	)

	cookie := i.Inhibit(context.Background(), "game")

	assert.Equal(t, Cookie(7), cookie)
}

func TestInhibitor_FallsBackWhenOwnInterfaceMissing(t *testing.T) {
	t.Parallel()

	// Older XFCE releases don't ship org.xfce.ScreenSaver.
	freedesktop := &fakeBusObject{
		bodies: map[string][]any{
			"org.freedesktop.ScreenSaver.Inhibit": {uint32(11)},
		},
	}
	i := NewInhibitor(desktop.EnvironmentXfce, "Quiver")
	i.bus = newFakeBus(
		[]string{"org.freedesktop.ScreenSaver"},
		map[string]*fakeBusObject{"org.freedesktop.ScreenSaver": freedesktop},
	)

	cookie := i.Inhibit(context.Background(), "game")

	assert.Equal(t, Cookie(11), cookie)
}

func TestInhibitor_Uninhibit(t *testing.T) {
	t.Parallel()

	saver := &fakeBusObject{
		bodies: map[string][]any{
			"org.freedesktop.ScreenSaver.Inhibit": {uint32(99)},
		},
	}
	i := NewInhibitor(desktop.EnvironmentPlasma, "Quiver")
	i.bus = newFakeBus(
		[]string{"org.freedesktop.ScreenSaver"},
		map[string]*fakeBusObject{"org.freedesktop.ScreenSaver": saver},
	)

	ctx := context.Background()
	cookie := i.Inhibit(ctx, "game")
	i.Uninhibit(ctx, cookie)

	calls := saver.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "org.freedesktop.ScreenSaver.UnInhibit", calls[1].method)
	assert.Equal(t, []any{uint32(99)}, calls[1].args)
}

// ctxAwareBusObject fails calls once their context is cancelled, the way
// a real bus connection does.
type ctxAwareBusObject struct {
	fakeBusObject
}

func (f *ctxAwareBusObject) CallWithContext(
	ctx context.Context, method string, flags dbus.Flags, args ...any,
) *dbus.Call {
	if err := ctx.Err(); err != nil {
		return &dbus.Call{Err: err}
	}
	return f.fakeBusObject.CallWithContext(ctx, method, flags, args...)
}

type ctxAwareBus struct {
	busObj dbus.BusObject
	saver  dbus.BusObject
}

func (b *ctxAwareBus) Object(string, dbus.ObjectPath) dbus.BusObject {
	return b.saver
}

func (b *ctxAwareBus) BusObject() dbus.BusObject {
	return b.busObj
}

func TestInhibitor_UninhibitAfterInterrupt(t *testing.T) {
	t.Parallel()

	saver := &ctxAwareBusObject{fakeBusObject{
		bodies: map[string][]any{
			"org.freedesktop.ScreenSaver.Inhibit":   {uint32(13)},
			"org.freedesktop.ScreenSaver.UnInhibit": {},
		},
	}}
	busObj := &ctxAwareBusObject{fakeBusObject{
		bodies: map[string][]any{
			"org.freedesktop.DBus.ListNames": {[]string{"org.freedesktop.ScreenSaver"}},
		},
	}}
	i := NewInhibitor(desktop.EnvironmentPlasma, "Quiver")
	i.bus = &ctxAwareBus{busObj: busObj, saver: saver}

	ctx, cancel := context.WithCancel(context.Background())
	cookie := i.Inhibit(ctx, "game")
	require.Equal(t, Cookie(13), cookie)

	// An interrupt cancels the caller's context before cleanup runs; the
	// release still has to reach the bus.
	cancel()
	i.Uninhibit(ctx, cookie)
	calls := saver.calls()
	require.Len(t, calls, 1, "cancelled context must not reach the bus")

	i.Uninhibit(context.WithoutCancel(ctx), cookie)
	calls = saver.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "org.freedesktop.ScreenSaver.UnInhibit", calls[1].method)
	assert.Equal(t, []any{uint32(13)}, calls[1].args)
}

func TestInhibitor_UninhibitZeroCookieIsNoop(t *testing.T) {
	t.Parallel()

	saver := &fakeBusObject{}
	i := NewInhibitor(desktop.EnvironmentPlasma, "Quiver")
	i.bus = newFakeBus(
		[]string{"org.freedesktop.ScreenSaver"},
		map[string]*fakeBusObject{"org.freedesktop.ScreenSaver": saver},
	)

	i.Uninhibit(context.Background(), 0)

	assert.Empty(t, saver.calls())
}
