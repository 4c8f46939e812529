package core

import (
	"strconv"
	"testing"
	"time"
)

func TestCreateAllocatesUniqueCodes(t *testing.T) {
	reg := testRegistry(time.Minute)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		snap, err := reg.Create(NewClient(strconv.Itoa(i)))
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if seen[snap.RoomID] {
			t.Fatalf("duplicate room code %s", snap.RoomID)
		}
		seen[snap.RoomID] = true

		n, err := strconv.Atoi(snap.RoomID)
		if err != nil || n < 1000 || n > 9999 {
			t.Fatalf("room code %q outside 1000-9999", snap.RoomID)
		}
	}
}

func TestCreateReportsExhaustedCodeSpace(t *testing.T) {
	reg := testRegistry(time.Hour)
	defer reg.Shutdown()

	filler := NewClient("filler")
	for code := 1000; code <= 9999; code++ {
		reg.CreateOrExtend(strconv.Itoa(code), filler)
	}

	if _, err := reg.Create(NewClient("late")); err != ErrNoFreeCodes {
		t.Fatalf("expected ErrNoFreeCodes, got %v", err)
	}
	if got := len(reg.Rooms()); got != 9000 {
		t.Fatalf("expected 9000 live rooms, got %d", got)
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	reg := testRegistry(time.Minute)

	_, err := reg.Join("9999", NewClient("a"))
	if err != ErrRoomNotFound {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if got := len(reg.Rooms()); got != 0 {
		t.Fatalf("failed join must not register a room, got %d rooms", got)
	}
}

func TestRelayFanOut(t *testing.T) {
	reg := testRegistry(time.Minute)

	alice := NewClient("alice")
	bob := NewClient("bob")
	carol := NewClient("carol")

	snap, err := reg.Create(alice)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	alice.SetRoom(snap.RoomID)
	for _, c := range []*Client{bob, carol} {
		if _, err := reg.Join(snap.RoomID, c); err != nil {
			t.Fatalf("join %s: %v", c.ID, err)
		}
		c.SetRoom(snap.RoomID)
	}

	reg.Relay(bob, []byte(`"hello"`))

	for _, c := range []*Client{alice, carol} {
		ev := mustEvent(t, c.Events, EventSignal)
		if ev.SenderID != "bob" {
			t.Fatalf("recipient %s: sender = %q, want bob", c.ID, ev.SenderID)
		}
		if string(ev.Payload) != `"hello"` {
			t.Fatalf("recipient %s: payload = %q", c.ID, ev.Payload)
		}
	}

	// Sender never receives its own signal, and each recipient got it once.
	mustNoEvent(t, bob.Events)
	mustNoEvent(t, alice.Events)
	mustNoEvent(t, carol.Events)
}

func TestRelayWithoutRoomIsNoop(t *testing.T) {
	reg := testRegistry(time.Minute)

	loner := NewClient("loner")
	reg.Relay(loner, []byte(`{}`))
	mustNoEvent(t, loner.Events)
}

func TestRemoveMemberIdempotent(t *testing.T) {
	reg := testRegistry(time.Minute)

	alice := NewClient("alice")
	bob := NewClient("bob")
	snap, err := reg.Create(alice)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	alice.SetRoom(snap.RoomID)
	if _, err := reg.Join(snap.RoomID, bob); err != nil {
		t.Fatalf("join: %v", err)
	}
	bob.SetRoom(snap.RoomID)

	reg.RemoveMember(snap.RoomID, bob)
	reg.RemoveMember(snap.RoomID, bob)
	reg.RemoveMember("0000", bob) // nonexistent room is safe too

	rooms := reg.Rooms()
	if len(rooms) != 1 || rooms[0].Members != 1 {
		t.Fatalf("unexpected rooms after removal: %+v", rooms)
	}

	reg.Relay(alice, []byte(`1`))
	mustNoEvent(t, bob.Events)
}

func TestEmptyRoomSurvivesUntilDeadline(t *testing.T) {
	reg := testRegistry(time.Minute)

	alice := NewClient("alice")
	snap, err := reg.Create(alice)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	reg.RemoveMember(snap.RoomID, alice)

	if got := len(reg.Rooms()); got != 1 {
		t.Fatalf("empty room must persist, got %d rooms", got)
	}

	bob := NewClient("bob")
	if _, err := reg.Join(snap.RoomID, bob); err != nil {
		t.Fatalf("join into emptied room: %v", err)
	}
}

func TestRoomExpiresAfterTTL(t *testing.T) {
	reg := testRegistry(50 * time.Millisecond)

	alice := NewClient("alice")
	snap, err := reg.Create(alice)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	mustClosed(t, alice)
	if got := len(reg.Rooms()); got != 0 {
		t.Fatalf("expired room still registered, %d rooms", got)
	}
	if _, err := reg.Join(snap.RoomID, NewClient("late")); err != ErrRoomNotFound {
		t.Fatalf("join after expiry: got %v, want ErrRoomNotFound", err)
	}
}

func TestJoinExtendsDeadlineForAllMembers(t *testing.T) {
	const ttl = 200 * time.Millisecond
	reg := testRegistry(ttl)

	alice := NewClient("alice")
	snap, err := reg.Create(alice)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Join shortly before the original deadline pushes it out for everyone.
	time.Sleep(100 * time.Millisecond)
	bob := NewClient("bob")
	if _, err := reg.Join(snap.RoomID, bob); err != nil {
		t.Fatalf("join: %v", err)
	}

	// Past the original deadline, but within the extended one.
	time.Sleep(150 * time.Millisecond)
	select {
	case <-alice.Done():
		t.Fatal("alice closed before extended deadline")
	default:
	}
	if got := len(reg.Rooms()); got != 1 {
		t.Fatalf("room expired despite extension, %d rooms", got)
	}

	mustClosed(t, alice)
	mustClosed(t, bob)
}

func TestTeardownClosesMembers(t *testing.T) {
	reg := testRegistry(time.Minute)

	alice := NewClient("alice")
	bob := NewClient("bob")
	snap, err := reg.Create(alice)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := reg.Join(snap.RoomID, bob); err != nil {
		t.Fatalf("join: %v", err)
	}

	if !reg.Teardown(snap.RoomID) {
		t.Fatal("teardown of live room reported not found")
	}
	mustClosed(t, alice)
	mustClosed(t, bob)

	if reg.Teardown(snap.RoomID) {
		t.Fatal("second teardown must report not found")
	}
}

func TestShutdownClosesEverything(t *testing.T) {
	reg := testRegistry(time.Minute)

	var clients []*Client
	for i := 0; i < 5; i++ {
		c := NewClient(strconv.Itoa(i))
		if _, err := reg.Create(c); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		clients = append(clients, c)
	}

	reg.Shutdown()
	for _, c := range clients {
		mustClosed(t, c)
	}
	if got := len(reg.Rooms()); got != 0 {
		t.Fatalf("rooms remain after shutdown: %d", got)
	}
}
