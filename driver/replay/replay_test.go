package replay

import (
	"context"
	"testing"
	"time"

	"github.com/duelgame/shell"
)

func TestSourceDeliversInOrder(t *testing.T) {
	src := New(
		shell.EventWindowCreated{Handle: "w"},
		shell.EventSuspend{},
		shell.EventResume{},
		shell.EventDestroy{},
	)
	defer src.Close()

	var got []string
	for ev := range src.Events() {
		got = append(got, ev.String())
	}
	want := []string{"window-created", "suspend", "resume", "destroy"}
	if len(got) != len(want) {
		t.Fatalf("received %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSourceCloseStopsDelivery(t *testing.T) {
	src := NewPaced(time.Hour, shell.EventSuspend{})
	if err := src.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	select {
	case _, ok := <-src.Events():
		if ok {
			t.Error("received an event after Close")
		}
	case <-time.After(time.Second):
		t.Error("channel not closed after Close")
	}
}

func TestManualSend(t *testing.T) {
	src := NewManual(2)
	if !src.Send(shell.EventSuspend{}) {
		t.Fatal("Send() = false on open source")
	}
	if err := src.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if src.Send(shell.EventResume{}) {
		t.Error("Send() = true after Close")
	}

	if ev := <-src.Events(); ev.String() != "suspend" {
		t.Errorf("event = %q, want %q", ev.String(), "suspend")
	}
	if _, ok := <-src.Events(); ok {
		t.Error("channel still open after Close and drain")
	}
}

func TestSourceDrivesApp(t *testing.T) {
	app := shell.New(shell.DefaultConfig().WithSize(64, 64))
	src := New(
		shell.EventWindowCreated{Handle: "w"},
		shell.EventWindowResized{Width: 128, Height: 128},
		shell.EventCloseRequested{},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Run(ctx, src); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if app.State() != shell.StateDestroyed {
		t.Errorf("State() = %v, want %v", app.State(), shell.StateDestroyed)
	}
}
