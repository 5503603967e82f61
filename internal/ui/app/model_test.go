package app

import (
	"context"
	"errors"
	"testing"
	"time"

	sessiondto "lootledger/internal/modules/session/dto"
	apperrors "lootledger/internal/platform/errors"
)

type call struct {
	name string
	args []any
}

type fakeSession struct {
	calls []call
	err   error
}

func (f *fakeSession) record(name string, args ...any) {
	f.calls = append(f.calls, call{name: name, args: args})
}

func (f *fakeSession) Start(_ context.Context, identity string) (sessiondto.SessionOutput, error) {
	f.record("start", identity)
	return sessiondto.SessionOutput{Identity: identity, Status: "active"}, f.err
}
func (f *fakeSession) Pause(_ context.Context, identity string) (sessiondto.SessionOutput, error) {
	f.record("pause", identity)
	return sessiondto.SessionOutput{}, f.err
}
func (f *fakeSession) Resume(_ context.Context, identity string) (sessiondto.SessionOutput, error) {
	f.record("resume", identity)
	return sessiondto.SessionOutput{}, f.err
}
func (f *fakeSession) Stop(_ context.Context, identity string) (sessiondto.SessionOutput, error) {
	f.record("stop", identity)
	return sessiondto.SessionOutput{}, f.err
}
func (f *fakeSession) Connect(_ context.Context, identity string) (sessiondto.SessionOutput, error) {
	f.record("connect", identity)
	return sessiondto.SessionOutput{}, f.err
}
func (f *fakeSession) Disconnect(_ context.Context, identity string) (sessiondto.SessionOutput, error) {
	f.record("disconnect", identity)
	return sessiondto.SessionOutput{}, f.err
}
func (f *fakeSession) Active(_ context.Context, _ string) (sessiondto.SessionOutput, error) {
	return sessiondto.SessionOutput{}, apperrors.ErrNoActiveSession
}
func (f *fakeSession) Loot(_ context.Context, identity string, itemID, count int64) (sessiondto.SignalOutput, error) {
	f.record("loot", identity, itemID, count)
	return sessiondto.SignalOutput{Bucket: "gathering", ValuePerUnit: 255}, f.err
}
func (f *fakeSession) Sell(_ context.Context, identity string, itemID, count, proceeds int64) (sessiondto.SignalOutput, error) {
	f.record("sell", identity, itemID, count, proceeds)
	return sessiondto.SignalOutput{}, f.err
}
func (f *fakeSession) Remove(_ context.Context, identity string, itemID, count int64, reason string) (sessiondto.SignalOutput, error) {
	f.record("remove", identity, itemID, count, reason)
	return sessiondto.SignalOutput{}, f.err
}
func (f *fakeSession) Money(_ context.Context, identity string, amount int64, source string) (sessiondto.SignalOutput, error) {
	f.record("money", identity, amount, source)
	return sessiondto.SignalOutput{}, f.err
}
func (f *fakeSession) Counter(_ context.Context, identity, name string, value, max int64) (sessiondto.SignalOutput, error) {
	f.record("counter", identity, name, value, max)
	return sessiondto.SignalOutput{CounterDelta: 3}, f.err
}
func (f *fakeSession) Archive(_ context.Context, sessionID string) (sessiondto.UndoToken, error) {
	f.record("archive", sessionID)
	return sessiondto.UndoToken{Token: "tok-archive", Kind: "archive", ExpiresAt: time.Now().Add(time.Minute)}, f.err
}
func (f *fakeSession) Delete(_ context.Context, sessionID string) (sessiondto.UndoToken, error) {
	f.record("delete", sessionID)
	return sessiondto.UndoToken{Token: "tok-delete", Kind: "delete"}, f.err
}
func (f *fakeSession) Undo(_ context.Context, token string) (sessiondto.UndoOutput, error) {
	f.record("undo", token)
	return sessiondto.UndoOutput{Kind: "archive", Restored: []string{"s1"}}, f.err
}
func (f *fakeSession) List(_ context.Context, _ string, _ bool) ([]sessiondto.SessionOutput, error) {
	return nil, nil
}

func runPalette(t *testing.T, m Model, input string) (Model, commandDoneMsg) {
	t.Helper()
	next, cmd := m.executePalette(input)
	model := next.(Model)
	if cmd == nil {
		return model, commandDoneMsg{}
	}
	done, ok := cmd().(commandDoneMsg)
	if !ok {
		t.Fatalf("palette %q did not produce commandDoneMsg", input)
	}
	return model, done
}

func TestPaletteParsesAmountsAndItems(t *testing.T) {
	t.Parallel()
	port := &fakeSession{}
	m := NewModel("Thrall-Draenor", port, nil, time.Second)

	cases := []struct {
		input string
		want  call
	}{
		{"loot 2589 4", call{"loot", []any{"Thrall-Draenor", int64(2589), int64(4)}}},
		{"sell 4306 2 1s50c", call{"sell", []any{"Thrall-Draenor", int64(4306), int64(2), int64(150)}}},
		{"remove 4306 1 destroyed junk", call{"remove", []any{"Thrall-Draenor", int64(4306), int64(1), "destroyed junk"}}},
		{"money -2g Repair", call{"money", []any{"Thrall-Draenor", int64(-20000), "Repair"}}},
		{"counter honor 40 15000", call{"counter", []any{"Thrall-Draenor", "honor", int64(40), int64(15000)}}},
	}
	for _, tc := range cases {
		if _, done := runPalette(t, m, tc.input); done.err != nil {
			t.Fatalf("%q: %v", tc.input, done.err)
		}
		got := port.calls[len(port.calls)-1]
		if got.name != tc.want.name || len(got.args) != len(tc.want.args) {
			t.Fatalf("%q: got %+v, want %+v", tc.input, got, tc.want)
		}
		for i := range got.args {
			if got.args[i] != tc.want.args[i] {
				t.Fatalf("%q arg %d: got %v, want %v", tc.input, i, got.args[i], tc.want.args[i])
			}
		}
	}
}

func TestPaletteRejectsMalformedInputWithoutCalling(t *testing.T) {
	t.Parallel()
	port := &fakeSession{}
	m := NewModel("Thrall-Draenor", port, nil, time.Second)

	for _, input := range []string{"loot abc 1", "sell 1 2", "money lots Quest", "counter honor x 1", "archive", "bogus"} {
		model, _ := runPalette(t, m, input)
		if model.status == "" || model.status == "ready" {
			t.Fatalf("%q: expected usage status, got %q", input, model.status)
		}
	}
	if len(port.calls) != 0 {
		t.Fatalf("expected no port calls, got %+v", port.calls)
	}
}

func TestArchiveRemembersUndoToken(t *testing.T) {
	t.Parallel()
	port := &fakeSession{}
	m := NewModel("Thrall-Draenor", port, nil, time.Second)

	m, done := runPalette(t, m, "archive s1")
	if done.undo != "tok-archive" {
		t.Fatalf("expected undo token, got %+v", done)
	}
	next, _ := m.Update(done)
	m = next.(Model)
	if m.lastUndo != "tok-archive" {
		t.Fatalf("expected lastUndo tok-archive, got %q", m.lastUndo)
	}

	m, _ = runPalette(t, m, "undo")
	if m.lastUndo != "" {
		t.Fatalf("undo token must be consumed")
	}
	got := port.calls[len(port.calls)-1]
	if got.name != "undo" || got.args[0] != "tok-archive" {
		t.Fatalf("unexpected call %+v", got)
	}
}

func TestCommandErrorSurfacesInStatus(t *testing.T) {
	t.Parallel()
	port := &fakeSession{err: apperrors.ErrNoActiveSession}
	m := NewModel("Thrall-Draenor", port, nil, time.Second)

	m, done := runPalette(t, m, "pause")
	if !errors.Is(done.err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", done.err)
	}
	next, _ := m.Update(done)
	if got := next.(Model).status; got != apperrors.ErrNoActiveSession.Error() {
		t.Fatalf("unexpected status %q", got)
	}
}
