package core

import "testing"

func TestTrySendDropsWhenFull(t *testing.T) {
	c := NewClient("a")

	for i := 0; i < eventBuffer; i++ {
		if !c.TrySend(Event{Kind: EventSignal}) {
			t.Fatalf("send %d rejected with buffer space left", i)
		}
	}
	if c.TrySend(Event{Kind: EventSignal}) {
		t.Fatal("send accepted past buffer capacity")
	}
}

func TestTrySendAfterClose(t *testing.T) {
	c := NewClient("a")
	c.Close()
	c.Close() // idempotent

	if c.TrySend(Event{Kind: EventSignal}) {
		t.Fatal("send accepted after close")
	}
}

func TestRoomReference(t *testing.T) {
	c := NewClient("a")
	if got := c.Room(); got != "" {
		t.Fatalf("fresh client has room %q", got)
	}
	c.SetRoom("1234")
	if got := c.Room(); got != "1234" {
		t.Fatalf("room = %q, want 1234", got)
	}
}
