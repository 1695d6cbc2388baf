package chat

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/DanteBelNan/sockets-server/internal/domain"
)

type emit struct {
	scope   string // "all" | "room" | "conn"
	target  string
	event   string
	payload any
}

// fakeTransport records every emit and keeps a transport-level roster, so
// tests can check both fan-out and roster/registry consistency.
type fakeTransport struct {
	mu    sync.Mutex
	emits []emit
	rooms map[string]map[string]bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{rooms: make(map[string]map[string]bool)}
}

func (f *fakeTransport) EmitAll(event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emits = append(f.emits, emit{scope: "all", event: event, payload: payload})
}

func (f *fakeTransport) EmitRoom(roomID, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emits = append(f.emits, emit{scope: "room", target: roomID, event: event, payload: payload})
}

func (f *fakeTransport) EmitConn(connID, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emits = append(f.emits, emit{scope: "conn", target: connID, event: event, payload: payload})
}

func (f *fakeTransport) Join(roomID, connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rooms[roomID] == nil {
		f.rooms[roomID] = make(map[string]bool)
	}
	f.rooms[roomID][connID] = true
}

func (f *fakeTransport) Leave(roomID, connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rooms[roomID], connID)
}

func (f *fakeTransport) ClearRoom(roomID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rooms, roomID)
}

func (f *fakeTransport) roomSize(roomID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rooms[roomID])
}

func (f *fakeTransport) byEvent(scope, event string) []emit {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []emit
	for _, e := range f.emits {
		if e.scope == scope && e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeTransport) all() []emit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]emit(nil), f.emits...)
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emits = nil
}

var (
	userA = domain.User{ID: "uA", Username: "alice"}
	userB = domain.User{ID: "uB", Username: "bob"}
	userC = domain.User{ID: "uC", Username: "carol"}
)

func newTestCoordinator() (*Coordinator, *Registry, *fakeTransport) {
	reg := NewRegistry()
	tr := newFakeTransport()
	return NewCoordinator(reg, tr), reg, tr
}

// checkConsistency verifies the core invariant: every room's member count
// equals the number of sessions whose joined set contains it.
func checkConsistency(t *testing.T, c *Coordinator, reg *Registry) {
	t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, room := range reg.List() {
		members := 0
		for _, sess := range c.sessions {
			if sess.inRoom(room.ID) {
				members++
			}
		}
		if members != room.UserCount {
			t.Fatalf("room %s: count=%d but %d sessions joined", room.ID, room.UserCount, members)
		}
	}
}

func TestCreateRoomBroadcastsToNamespace(t *testing.T) {
	c, reg, tr := newTestCoordinator()
	c.Connect("c1", userA)

	c.CreateRoom("c1", "r1", "General")

	room, err := reg.Get("r1")
	if err != nil {
		t.Fatalf("room not in registry: %v", err)
	}
	if room.UserCount != 0 {
		t.Fatalf("created room must have 0 members, got %d", room.UserCount)
	}

	created := tr.byEvent("all", EventRoomCreated)
	if len(created) != 1 {
		t.Fatalf("expected 1 namespace broadcast, got %d", len(created))
	}
	got, ok := created[0].payload.(domain.Room)
	if !ok || got.ID != "r1" || got.CreatorID != "uA" {
		t.Fatalf("unexpected payload: %+v", created[0].payload)
	}
}

func TestCreateRoomDuplicateErrorsRequesterOnly(t *testing.T) {
	c, reg, tr := newTestCoordinator()
	c.Connect("c1", userA)
	c.Connect("c2", userB)

	c.CreateRoom("c1", "r1", "General")
	tr.reset()

	c.CreateRoom("c2", "r1", "Other")

	if got := tr.byEvent("all", EventRoomCreated); len(got) != 0 {
		t.Fatalf("duplicate create must not broadcast, got %d", len(got))
	}
	errs := tr.byEvent("conn", EventError)
	if len(errs) != 1 || errs[0].target != "c2" {
		t.Fatalf("expected one error to c2, got %+v", errs)
	}

	room, _ := reg.Get("r1")
	if room.CreatorID != "uA" {
		t.Fatalf("duplicate create mutated the room: %+v", room)
	}
}

func TestCreateRoomEmptyID(t *testing.T) {
	c, reg, tr := newTestCoordinator()
	c.Connect("c1", userA)

	c.CreateRoom("c1", "", "General")

	if reg.Len() != 0 {
		t.Fatalf("empty id must not create a room")
	}
	if errs := tr.byEvent("conn", EventError); len(errs) != 1 {
		t.Fatalf("expected error to requester, got %+v", errs)
	}
}

func TestGetRoomsEmitsToRequesterOnly(t *testing.T) {
	c, _, tr := newTestCoordinator()
	c.Connect("c1", userA)
	c.CreateRoom("c1", "r1", "General")
	tr.reset()

	c.GetRooms("c1")

	lists := tr.byEvent("conn", EventRoomsList)
	if len(lists) != 1 || lists[0].target != "c1" {
		t.Fatalf("expected rooms list to c1, got %+v", lists)
	}
	rooms, ok := lists[0].payload.([]domain.Room)
	if !ok || len(rooms) != 1 || rooms[0].ID != "r1" {
		t.Fatalf("unexpected list payload: %+v", lists[0].payload)
	}
}

// Scenario: create r1 → B joins (count 1) → B leaves → auto-vacuum with a
// single namespace-wide deletion broadcast.
func TestJoinLeaveAutoVacuum(t *testing.T) {
	c, reg, tr := newTestCoordinator()
	c.Connect("cA", userA)
	c.Connect("cB", userB)
	c.CreateRoom("cA", "r1", "General")
	tr.reset()

	c.JoinRoom("cB", "r1")

	room, _ := reg.Get("r1")
	if room.UserCount != 1 {
		t.Fatalf("expected count 1 after join, got %d", room.UserCount)
	}
	joined := tr.byEvent("room", EventUserJoined)
	if len(joined) != 1 || joined[0].target != "r1" {
		t.Fatalf("expected user joined broadcast to r1, got %+v", joined)
	}
	ev := joined[0].payload.(MemberEvent)
	if ev.UserID != "uB" || ev.Username != "bob" || ev.Count != 1 {
		t.Fatalf("unexpected join payload: %+v", ev)
	}
	if tr.roomSize("r1") != 1 {
		t.Fatalf("transport roster out of sync: %d", tr.roomSize("r1"))
	}
	checkConsistency(t, c, reg)

	tr.reset()
	c.LeaveRoom("cB", "r1")

	if _, err := reg.Get("r1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("empty room must be auto-deleted")
	}
	deleted := tr.byEvent("all", EventRoomDeleted)
	if len(deleted) != 1 {
		t.Fatalf("room deleted must broadcast exactly once, got %d", len(deleted))
	}
	if deleted[0].payload != "r1" {
		t.Fatalf("auto-vacuum payload must be the bare id, got %+v", deleted[0].payload)
	}
	if got := tr.byEvent("room", EventUserLeft); len(got) != 0 {
		t.Fatalf("no user left broadcast when the room vanishes, got %+v", got)
	}
	checkConsistency(t, c, reg)
}

func TestLeaveWithRemainingMembers(t *testing.T) {
	c, reg, tr := newTestCoordinator()
	c.Connect("cA", userA)
	c.Connect("cB", userB)
	c.CreateRoom("cA", "r1", "General")
	c.JoinRoom("cA", "r1")
	c.JoinRoom("cB", "r1")
	tr.reset()

	c.LeaveRoom("cB", "r1")

	room, err := reg.Get("r1")
	if err != nil {
		t.Fatalf("room must survive while members remain: %v", err)
	}
	if room.UserCount != 1 {
		t.Fatalf("expected count 1, got %d", room.UserCount)
	}
	left := tr.byEvent("room", EventUserLeft)
	if len(left) != 1 {
		t.Fatalf("expected user left broadcast, got %+v", left)
	}
	if ev := left[0].payload.(MemberEvent); ev.UserID != "uB" || ev.Count != 1 {
		t.Fatalf("unexpected leave payload: %+v", ev)
	}
	checkConsistency(t, c, reg)
}

func TestJoinMissingRoom(t *testing.T) {
	c, _, tr := newTestCoordinator()
	c.Connect("c1", userA)

	c.JoinRoom("c1", "ghost")

	errs := tr.byEvent("conn", EventError)
	if len(errs) != 1 || errs[0].target != "c1" {
		t.Fatalf("expected error to requester, got %+v", errs)
	}
	if tr.roomSize("ghost") != 0 {
		t.Fatalf("join of missing room must not touch the roster")
	}
}

func TestLeaveNotAMemberIsSilent(t *testing.T) {
	c, reg, tr := newTestCoordinator()
	c.Connect("cA", userA)
	c.Connect("cB", userB)
	c.CreateRoom("cA", "r1", "General")
	c.JoinRoom("cA", "r1")
	tr.reset()

	c.LeaveRoom("cB", "r1") // never joined
	c.LeaveRoom("cB", "ghost")

	if got := tr.all(); len(got) != 0 {
		t.Fatalf("leave must be a silent no-op, got %+v", got)
	}
	room, _ := reg.Get("r1")
	if room.UserCount != 1 {
		t.Fatalf("stranger leave mutated the count: %d", room.UserCount)
	}
}

// Joining a room while already in another implicitly leaves the old one.
func TestJoinSwitchesRooms(t *testing.T) {
	c, reg, tr := newTestCoordinator()
	c.Connect("cA", userA)
	c.Connect("cB", userB)
	c.CreateRoom("cA", "r1", "One")
	c.CreateRoom("cA", "r2", "Two")
	c.JoinRoom("cA", "r1")
	c.JoinRoom("cB", "r1")
	tr.reset()

	c.JoinRoom("cA", "r2")

	r1, _ := reg.Get("r1")
	r2, _ := reg.Get("r2")
	if r1.UserCount != 1 || r2.UserCount != 1 {
		t.Fatalf("expected r1=1 r2=1, got r1=%d r2=%d", r1.UserCount, r2.UserCount)
	}
	if len(tr.byEvent("room", EventUserLeft)) != 1 {
		t.Fatalf("implicit leave must announce user left")
	}
	if len(tr.byEvent("room", EventUserJoined)) != 1 {
		t.Fatalf("join must announce user joined")
	}

	sess := c.sessions["cA"]
	if sess.inRoom("r1") || !sess.inRoom("r2") {
		t.Fatalf("session must be in r2 only: %v", sess.roomIDs())
	}
	checkConsistency(t, c, reg)
}

func TestDeleteRoomByNonCreator(t *testing.T) {
	c, reg, tr := newTestCoordinator()
	c.Connect("cA", userA)
	c.Connect("cB", userB)
	c.CreateRoom("cA", "r1", "General")
	tr.reset()

	c.DeleteRoom("cB", "r1")

	errs := tr.byEvent("conn", EventError)
	if len(errs) != 1 || errs[0].target != "cB" {
		t.Fatalf("expected error to cB, got %+v", errs)
	}
	if got := tr.byEvent("all", EventRoomDeleted); len(got) != 0 {
		t.Fatalf("unauthorized delete must not broadcast")
	}
	if _, err := reg.Get("r1"); err != nil {
		t.Fatalf("room must still exist: %v", err)
	}
}

func TestDeleteRoomByCreator(t *testing.T) {
	c, reg, tr := newTestCoordinator()
	c.Connect("cA", userA)
	c.Connect("cB", userB)
	c.CreateRoom("cA", "r1", "General")
	c.JoinRoom("cB", "r1")
	tr.reset()

	c.DeleteRoom("cA", "r1")

	if _, err := reg.Get("r1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("room must be gone")
	}
	if tr.roomSize("r1") != 0 {
		t.Fatalf("roster must be force-cleared")
	}
	if c.sessions["cB"].inRoom("r1") {
		t.Fatalf("member sessions must drop the room")
	}

	// two broadcast shapes, member-scoped rich payload first
	var roomIdx, allIdx = -1, -1
	for i, e := range tr.all() {
		if e.event != EventRoomDeleted {
			continue
		}
		switch e.scope {
		case "room":
			roomIdx = i
			notice := e.payload.(RoomDeletedNotice)
			if notice.RoomID != "r1" || notice.DeletedBy.ID != "uA" {
				t.Fatalf("unexpected notice: %+v", notice)
			}
		case "all":
			allIdx = i
			if e.payload != "r1" {
				t.Fatalf("namespace shape must be the bare id, got %+v", e.payload)
			}
		}
	}
	if roomIdx == -1 || allIdx == -1 {
		t.Fatalf("both deletion broadcasts required, got %+v", tr.all())
	}
	if roomIdx > allIdx {
		t.Fatalf("member-scoped broadcast must come first")
	}
	checkConsistency(t, c, reg)
}

func TestDeleteMissingRoom(t *testing.T) {
	c, _, tr := newTestCoordinator()
	c.Connect("cA", userA)

	c.DeleteRoom("cA", "ghost")

	if errs := tr.byEvent("conn", EventError); len(errs) != 1 {
		t.Fatalf("expected error to requester, got %+v", errs)
	}
}

func TestChatMessageToRoomMembers(t *testing.T) {
	c, _, tr := newTestCoordinator()
	c.Connect("cA", userA)
	c.CreateRoom("cA", "r1", "General")
	c.JoinRoom("cA", "r1")
	tr.reset()

	c.ChatMessage("cA", "r1", "alice", "hello")

	msgs := tr.byEvent("room", EventChatMessage)
	if len(msgs) != 1 || msgs[0].target != "r1" {
		t.Fatalf("expected room broadcast, got %+v", msgs)
	}
	m := msgs[0].payload.(RoomMessage)
	if m.ID != "cA" || m.UserID != "uA" || m.Message != "hello" || m.Room != "r1" {
		t.Fatalf("unexpected message payload: %+v", m)
	}
}

func TestChatMessageFromNonMemberDropped(t *testing.T) {
	c, _, tr := newTestCoordinator()
	c.Connect("cA", userA)
	c.Connect("cB", userB)
	c.CreateRoom("cA", "r1", "General")
	c.JoinRoom("cA", "r1")
	tr.reset()

	c.ChatMessage("cB", "r1", "bob", "let me in")

	// dropped silently: no broadcast, and no error that would leak membership
	if got := tr.all(); len(got) != 0 {
		t.Fatalf("non-member message must be dropped silently, got %+v", got)
	}
}

func TestDisconnectLeavesEveryRoomOnce(t *testing.T) {
	c, reg, tr := newTestCoordinator()
	c.Connect("cA", userA)
	c.Connect("cB", userB)
	c.CreateRoom("cA", "r1", "One")
	c.CreateRoom("cA", "r2", "Two")
	c.JoinRoom("cB", "r2") // keeps r2 alive after A leaves
	c.JoinRoom("cA", "r1")

	// wedge A into a second room directly, keeping every structure in step,
	// so the disconnect sweep has more than one membership to visit
	c.mu.Lock()
	c.sessions["cA"].rooms["r2"] = struct{}{}
	c.mu.Unlock()
	reg.Increment("r2")
	tr.Join("r2", "cA")
	tr.reset()

	c.Disconnect("cA")

	if _, err := reg.Get("r1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("r1 must be auto-deleted when its last member disconnects")
	}
	r2, err := reg.Get("r2")
	if err != nil {
		t.Fatalf("r2 must survive: %v", err)
	}
	if r2.UserCount != 1 {
		t.Fatalf("r2 count must drop to 1, got %d", r2.UserCount)
	}
	if len(tr.byEvent("all", EventRoomDeleted)) != 1 {
		t.Fatalf("exactly one auto-vacuum broadcast expected")
	}
	if len(tr.byEvent("room", EventUserLeft)) != 1 {
		t.Fatalf("exactly one user left broadcast expected")
	}
	if _, ok := c.sessions["cA"]; ok {
		t.Fatalf("session must be destroyed on disconnect")
	}
	checkConsistency(t, c, reg)
}

func TestEventsForUnknownConnectionIgnored(t *testing.T) {
	c, reg, tr := newTestCoordinator()

	c.CreateRoom("ghost", "r1", "General")
	c.JoinRoom("ghost", "r1")
	c.LeaveRoom("ghost", "r1")
	c.DeleteRoom("ghost", "r1")
	c.ChatMessage("ghost", "r1", "x", "y")
	c.Disconnect("ghost")

	if reg.Len() != 0 {
		t.Fatalf("unregistered connection must not mutate state")
	}
	if got := tr.all(); len(got) != 0 {
		t.Fatalf("unregistered connection must not emit, got %+v", got)
	}
}

// Concurrent joins and leaves on one room must converge with no lost updates.
func TestConcurrentJoinLeaveConverges(t *testing.T) {
	c, reg, tr := newTestCoordinator()
	c.Connect("anchor", userC)
	c.CreateRoom("anchor", "r1", "General")
	c.JoinRoom("anchor", "r1") // keeps the room from vacuuming mid-test

	const n = 64
	conns := make([]string, n)
	for i := range conns {
		conns[i] = fmt.Sprintf("c%d", i)
		c.Connect(conns[i], domain.User{ID: fmt.Sprintf("u%d", i), Username: fmt.Sprintf("user%d", i)})
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for _, id := range conns {
		go func(id string) {
			defer wg.Done()
			c.JoinRoom(id, "r1")
			c.LeaveRoom(id, "r1")
		}(id)
	}
	wg.Wait()

	room, err := reg.Get("r1")
	if err != nil {
		t.Fatalf("room vanished: %v", err)
	}
	if room.UserCount != 1 {
		t.Fatalf("expected only the anchor left, got %d", room.UserCount)
	}
	if tr.roomSize("r1") != 1 {
		t.Fatalf("roster out of sync: %d", tr.roomSize("r1"))
	}
	checkConsistency(t, c, reg)
}
